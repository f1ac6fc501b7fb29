package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/attest/internal/config"
	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/openapi"
	"github.com/JaimeStill/attest/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Documents.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Signing.Handler().Routes(),
		newStorageHandler(runtime.Storage, runtime.Logger).routes(),
	}
	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.API.OpenAPI, cfg.Version)
	spec.AddServer(cfg.API.BasePath)
	spec.Components.AddSchemas(documents.Schemas())
	spec.Components.AddSchemas(signing.Schemas())
	spec.Components.AddSchemas(storageSchemas)
	routes.Describe(spec, "", groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return fmt.Errorf("marshal openapi: %w", err)
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(data))

	return nil
}
