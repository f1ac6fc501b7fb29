package api

import (
	"time"

	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/infrastructure"
	"github.com/JaimeStill/attest/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	// DownloadURL is the path blobs are served under, e.g. /api/storage/download.
	DownloadURL string
	// SigningLink is the public origin plus signing page path sessions link to.
	SigningLink string
	SessionTTL  time.Duration
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Cache:     infra.Cache,
			Clock:     infra.Clock,
		},
		Pagination:  cfg.API.Pagination,
		DownloadURL: cfg.API.BasePath + "/storage/download",
		SigningLink: cfg.Signing.PublicOrigin + cfg.Signing.BasePath,
		SessionTTL:  cfg.Signing.SessionTTLDuration(),
	}
}
