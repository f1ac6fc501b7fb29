package api

import (
	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/internal/signing"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Documents documents.System
	Signing   signing.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	docsSystem := documents.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
		runtime.DownloadURL,
	)

	sessions := signing.NewStore(
		db,
		runtime.Clock,
		runtime.Logger,
		runtime.Pagination,
		runtime.SessionTTL,
		runtime.SigningLink,
	)

	signingSystem := signing.New(
		docsSystem,
		sessions,
		runtime.Storage,
		runtime.Cache,
		runtime.Clock,
		runtime.Logger,
		runtime.Pagination,
		runtime.DownloadURL,
	)

	return &Domain{
		Documents: docsSystem,
		Signing:   signingSystem,
	}
}
