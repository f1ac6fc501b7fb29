package signpage

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/web"
)

const maxFormBytes = 4 << 20

// Handler renders the signing page.
type Handler struct {
	sys    signing.System
	pages  *web.TemplateSet
	logger *slog.Logger
}

// NewHandler creates a Handler that renders with pages.
func NewHandler(sys signing.System, pages *web.TemplateSet, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		pages:  pages,
		logger: logger.With("handler", "signpage"),
	}
}

type view struct {
	SessionID    string
	DocumentName string
	DocumentURL  string
	ClientName   string
	ExpiresAt    time.Time
	Markers      int
	Notice       string
	Message      string
	Retryable    bool
	Signature    string
	Signer       string
	SignedURL    string
}

func newView(id string, f *signing.Flow) view {
	v := view{
		SessionID: id,
		Message:   f.Message(),
		Retryable: f.Retryable(),
		Signature: f.Signature(),
		Signer:    f.Signer(),
		SignedURL: f.SignedURL(),
	}
	if sess := f.Session(); sess != nil {
		v.DocumentName = sess.DocumentName
		v.DocumentURL = sess.DocumentURL
		v.ClientName = sess.ClientName
		v.ExpiresAt = sess.ExpiresAt
		v.Markers = len(sess.Markers)
		if v.Signer == "" {
			v.Signer = sess.ClientName
		}
	}
	return v
}

// Page resolves the session and renders the signing form, or the reason it
// cannot be signed.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	flow := h.load(r, id)

	if flow.State() != signing.StateReady {
		h.render(w, statusFor(flow), errorView, newView(id, flow))
		return
	}
	h.render(w, http.StatusOK, signView, newView(id, flow))
}

// Submit signs the session with the posted signature. A failure that can be
// retried re-renders with the signature kept so the signer does not redraw.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	flow := h.load(r, id)
	if flow.State() != signing.StateReady {
		h.render(w, statusFor(flow), errorView, newView(id, flow))
		return
	}

	signature := r.PostForm.Get("signature")
	signer := strings.TrimSpace(r.PostForm.Get("signer_name"))

	if !flow.Draw(signature, signer) || !flow.Submit() {
		v := newView(id, flow)
		v.Signer = firstNonEmpty(signer, v.Signer)
		v.Notice = "Draw your signature in the box before signing."
		h.render(w, http.StatusBadRequest, signView, v)
		return
	}

	result, err := h.sys.Sign(r.Context(), id, signing.SubmitCommand{
		Signature:  signature,
		SignerName: signer,
	})
	if err != nil {
		flow.Failed(err)
		h.logger.Warn("signing submission failed", "session_id", id, "kind", flow.Kind(), "error", err)
		h.render(w, signing.MapHTTPStatus(err), errorView, newView(id, flow))
		return
	}

	flow.Succeeded(result.Document.URL)
	v := newView(id, flow)
	if result.Document.SignedBy != nil {
		v.Signer = *result.Document.SignedBy
	}
	h.render(w, http.StatusOK, signedView, v)
}

// NotFound renders the invalid-link page for any unmatched path.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	flow := signing.NewFlow()
	flow.Loaded(nil, signing.ErrNotFound)
	h.render(w, http.StatusNotFound, errorView, newView("", flow))
}

func (h *Handler) load(r *http.Request, id string) *signing.Flow {
	sess, err := h.sys.Resolve(r.Context(), id)

	flow := signing.NewFlow()
	flow.Loaded(sess, err)
	if flow.Kind() == signing.ErrorUnavailable {
		h.logger.Error("session lookup failed", "session_id", id, "error", err)
	}
	return flow
}

func (h *Handler) render(w http.ResponseWriter, status int, v web.ViewDef, data view) {
	if err := h.pages.Render(w, status, v, data); err != nil {
		h.logger.Error("render failed", "view", v.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func statusFor(f *signing.Flow) int {
	switch f.Kind() {
	case signing.ErrorNotFound:
		return http.StatusNotFound
	case signing.ErrorExpired:
		return http.StatusGone
	case signing.ErrorAlreadyCompleted:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
