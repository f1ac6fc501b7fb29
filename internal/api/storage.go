package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/attest/pkg/handlers"
	"github.com/JaimeStill/attest/pkg/openapi"
	"github.com/JaimeStill/attest/pkg/routes"
	"github.com/JaimeStill/attest/pkg/storage"
)

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download, OpenAPI: storageSpec.download},
			{Method: "GET", Pattern: "/{key...}", Handler: h.find, OpenAPI: storageSpec.find},
		},
	}
}

var storageSpec = struct {
	find     *openapi.Operation
	download *openapi.Operation
}{
	find: &openapi.Operation{
		Summary:    "Find blob metadata",
		Tags:       []string{"Storage"},
		Parameters: []*openapi.Parameter{openapi.KeyParam("key", "Blob key")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Blob metadata", "BlobMeta"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	download: &openapi.Operation{
		Summary:     "Download a blob",
		Description: "PDFs are served inline unless the download query parameter is set.",
		Tags:        []string{"Storage"},
		Parameters: []*openapi.Parameter{
			openapi.KeyParam("key", "Blob key"),
			openapi.QueryParam("download", "string", "Force an attachment disposition", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Blob content",
				Content: map[string]*openapi.MediaType{
					"application/pdf": {Schema: &openapi.Schema{Type: "string", Format: "binary"}},
				},
			},
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

var storageSchemas = map[string]*openapi.Schema{
	"BlobMeta": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"key":            {Type: "string"},
			"content_type":   {Type: "string"},
			"content_length": {Type: "integer"},
			"last_modified":  {Type: "string", Format: "date-time"},
		},
	},
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

// download streams a blob. PDFs are served inline so the signing page and
// the preparer's viewer can embed them.
func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	disposition := "attachment"
	if result.ContentType == "application/pdf" && r.URL.Query().Get("download") == "" {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set(
		"Content-Disposition",
		mime.FormatMediaType(disposition, map[string]string{"filename": path.Base(key)}),
	)
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("download interrupted", "key", key, "error", err)
	}
}
