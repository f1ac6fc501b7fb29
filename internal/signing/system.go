package signing

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/cache"
	"github.com/JaimeStill/attest/pkg/coords"
	"github.com/JaimeStill/attest/pkg/pagination"
	"github.com/JaimeStill/attest/pkg/storage"
)

// System defines the public contract for signing operations.
type System interface {
	Handler() *Handler
	Sessions() Store

	// PageLayout returns the natural size of every page of a document.
	PageLayout(ctx context.Context, documentID uuid.UUID) (*Layout, error)
	// SignAsPreparer embeds the preparer's signature at one marker and
	// records the result as a new signed document.
	SignAsPreparer(ctx context.Context, documentID uuid.UUID, cmd SignCommand) (*documents.Document, error)
	// SendForSignature stores client markers, burns "sign here" labels into
	// a preview copy when there are any, and opens a session.
	SendForSignature(ctx context.Context, documentID uuid.UUID, cmd SendCommand) (*SendResult, error)
	// Resolve loads a session for the external signer.
	Resolve(ctx context.Context, id string) (*Session, error)
	// Sign embeds the signer's signature at every session marker, records
	// the signed document, and completes the session.
	Sign(ctx context.Context, id string, cmd SubmitCommand) (*SignResult, error)
}

// Layout is the page geometry a viewer needs to place markers.
type Layout struct {
	DocumentID uuid.UUID     `json:"document_id"`
	PageCount  int           `json:"page_count"`
	Pages      []coords.Size `json:"pages"`
}

// SignCommand is the preparer signing their own document.
type SignCommand struct {
	Marker     UIMarker `json:"marker"`
	Signature  string   `json:"signature"`
	SignerName string   `json:"signer_name"`
}

// SendCommand sends a document to a client. ClientID and ClientName default
// to the document's owner.
type SendCommand struct {
	Markers    []UIMarker `json:"markers"`
	ClientID   string     `json:"client_id,omitempty"`
	ClientName string     `json:"client_name,omitempty"`
}

// SendResult is a new session and its shareable link.
type SendResult struct {
	Session *Session `json:"session"`
	Link    string   `json:"link"`
}

// SubmitCommand is the external signer's submission. Signature is a PNG or
// JPEG data URL. SignerName defaults to the session's client name.
type SubmitCommand struct {
	Signature  string `json:"signature"`
	SignerName string `json:"signer_name"`
}

// SignResult is a completed session and its signed document.
type SignResult struct {
	Session  *Session            `json:"session"`
	Document *documents.Document `json:"document"`
}

type system struct {
	docs        documents.System
	sessions    Store
	storage     storage.System
	locks       cache.System
	clock       clockwork.Clock
	logger      *slog.Logger
	pagination  pagination.Config
	downloadURL string
}

// New creates the signing system. downloadURL is the path prefix blob keys
// are served under, used for preview copies.
func New(
	docs documents.System,
	sessions Store,
	store storage.System,
	locks cache.System,
	clock clockwork.Clock,
	logger *slog.Logger,
	pagination pagination.Config,
	downloadURL string,
) System {
	return &system{
		docs:        docs,
		sessions:    sessions,
		storage:     store,
		locks:       locks,
		clock:       clock,
		logger:      logger.With("system", "signing"),
		pagination:  pagination,
		downloadURL: strings.TrimRight(downloadURL, "/"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) Sessions() Store {
	return s.sessions
}

func (s *system) Resolve(ctx context.Context, id string) (*Session, error) {
	return s.sessions.Resolve(ctx, id)
}
