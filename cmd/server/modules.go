package main

import (
	"encoding/json"
	"net/http"

	"github.com/JaimeStill/attest/internal/api"
	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/infrastructure"
	"github.com/JaimeStill/attest/internal/signpage"
	"github.com/JaimeStill/attest/pkg/middleware"
	"github.com/JaimeStill/attest/pkg/module"
)

// Modules holds the mounted sub-applications.
type Modules struct {
	API  *module.Module
	Sign *module.Module
}

// NewModules builds the API and the public signing page over one shared
// set of domain systems.
func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	runtime := api.NewRuntime(cfg, infra)
	domain := api.NewDomain(runtime)

	apiModule, err := api.NewModule(cfg, runtime, domain)
	if err != nil {
		return nil, err
	}

	signLogger := infra.Logger.With("module", "sign")
	signModule, err := signpage.NewModule(domain.Signing, cfg.Signing.BasePath, signLogger)
	if err != nil {
		return nil, err
	}
	signModule.Use(middleware.Recover(signLogger))
	signModule.Use(middleware.Logger(signLogger))

	return &Modules{
		API:  apiModule,
		Sign: signModule,
	}, nil
}

// Mount registers every module on router.
func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Sign)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			writeStatus(w, http.StatusServiceUnavailable, "not ready")
			return
		}
		if err := infra.Database.Ping(r.Context()); err != nil {
			infra.Logger.Warn("readiness check failed", "error", err)
			writeStatus(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})

	return router
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

