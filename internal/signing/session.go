// Package signing implements signing sessions and the operations that place,
// burn in, and embed signatures: the preparer's sign-own and send-to-client
// actions and the external signer's submission.
package signing

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/internal/documents"
	"github.com/JaimeStill/attest/pkg/coords"
)

// Status is the persisted state of a session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Marker is a client signature position in document space (points, origin
// at the bottom-left of the page). Page is 1-indexed.
type Marker struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Page   int     `json:"page"`
}

// Rect returns the marker's rectangle.
func (m Marker) Rect() coords.Rect {
	return coords.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// Session is a shareable request for an external party to sign a document.
// It moves from pending to completed once and is never deleted.
type Session struct {
	ID                uuid.UUID  `json:"session_id"`
	DocumentID        uuid.UUID  `json:"document_id"`
	DocumentName      string     `json:"document_name"`
	DocumentURL       string     `json:"document_url"`
	OriginalURL       *string    `json:"original_url,omitempty"`
	ClientID          string     `json:"client_id"`
	ClientName        string     `json:"client_name"`
	Status            Status     `json:"status"`
	Markers           []Marker   `json:"markers,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	SignedAt          *time.Time `json:"signed_at,omitempty"`
	SignedDocumentURL *string    `json:"signed_document_url,omitempty"`
	SignedDocumentID  *uuid.UUID `json:"signed_document_id,omitempty"`
}

// Expired reports whether now is at or past ExpiresAt. Stored status does
// not matter.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CreateCommand describes a new session. PreviewURL is set when client
// markers were burned into a separate preview copy.
type CreateCommand struct {
	Document   documents.Document
	ClientID   string
	ClientName string
	Markers    []Marker
	PreviewURL string
}

// CompleteCommand records the signed artifact for a session.
type CompleteCommand struct {
	SignedDocumentID  uuid.UUID
	SignedDocumentURL string
}
