package signing

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/pkg/handlers"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/routes"
)

const maxCommandBytes = 4 << 20

// Handler provides HTTP endpoints for the preparer's signing operations and
// session audit, plus a JSON submission endpoint for signers.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler for sys.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "signing"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for signing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/signing",
		Children: []routes.Group{
			{
				Prefix: "/documents",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/{id}/layout", Handler: h.Layout, OpenAPI: spec.Layout},
					{Method: "POST", Pattern: "/{id}/sign", Handler: h.SignAsPreparer, OpenAPI: spec.SignAsPreparer},
					{Method: "POST", Pattern: "/{id}/send", Handler: h.Send, OpenAPI: spec.Send},
				},
			},
			{
				Prefix: "/sessions",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: spec.List},
					{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: spec.Search},
					{Method: "GET", Pattern: "/{id}", Handler: h.Resolve, OpenAPI: spec.Resolve},
					{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit, OpenAPI: spec.Submit},
				},
			},
		},
	}
}

// Layout returns page dimensions for a document.
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	layout, err := h.sys.PageLayout(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, layout)
}

// SignAsPreparer embeds the preparer's signature and returns the signed document.
func (h *Handler) SignAsPreparer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var cmd SignCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	doc, err := h.sys.SignAsPreparer(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// Send opens a signing session and returns it with the shareable link.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := h.documentID(w, r)
	if !ok {
		return
	}

	var cmd SendCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	result, err := h.sys.SendForSignature(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

// List returns a paginated list of sessions filtered by query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.Sessions().List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.Sessions().List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Resolve returns a session as the signer would see it. Expired and
// completed sessions are included in the error body.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sys.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		status := MapHTTPStatus(err)
		if sess == nil {
			handlers.RespondError(w, h.logger, status, err)
			return
		}
		h.logger.Warn("session not signable", "id", sess.ID, "error", err)
		handlers.RespondJSON(w, status, map[string]any{
			"error":   err.Error(),
			"kind":    Classify(err),
			"session": sess,
		})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, sess)
}

// Submit signs a session from a JSON body.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	result, err := h.sys.Sign(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommandBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return false
	}
	return true
}
