package signing

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/coords"
	"github.com/JaimeStill/attest/pkg/pdfmark"
)

// Domain errors for signing operations.
var (
	ErrNotFound             = errors.New("signing session not found")
	ErrExpired              = errors.New("signing session has expired")
	ErrAlreadyCompleted     = errors.New("signing session already completed")
	ErrInvalidState         = errors.New("signing session cannot be completed")
	ErrSubmissionInProgress = errors.New("a signature for this session is already being submitted")
	ErrInvalidMarker        = errors.New("invalid marker")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrInvalidRequest       = errors.New("invalid request")
)

// MapHTTPStatus maps signing, coordinate, and PDF errors to HTTP status codes,
// deferring to documents.MapHTTPStatus for anything else.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrSubmissionInProgress),
		errors.Is(err, ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrExpired):
		return http.StatusGone
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidMarker),
		errors.Is(err, ErrInvalidSignature),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, coords.ErrLayoutNotReady):
		return http.StatusBadRequest
	case errors.Is(err, pdfmark.ErrUnreadableDocument),
		errors.Is(err, pdfmark.ErrInvalidSignatureImage),
		errors.Is(err, pdfmark.ErrPageOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return documents.MapHTTPStatus(err)
	}
}
