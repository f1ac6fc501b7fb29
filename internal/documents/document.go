// Package documents implements the document store: PDF metadata in
// PostgreSQL and document bytes in blob storage. Documents are immutable;
// signing produces a new document rather than altering an existing one.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// TypePDF is the only document type the store accepts.
const TypePDF = "pdf"

// SignedPrefix is prepended to the original name of a signed copy.
const SignedPrefix = "Signed - "

// Document is a stored PDF and its metadata.
type Document struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Path             string     `json:"path"`
	URL              string     `json:"url"`
	ClientID         string     `json:"client_id"`
	ClientName       string     `json:"client_name"`
	Size             int64      `json:"size"`
	Type             string     `json:"type"`
	PageCount        *int       `json:"page_count,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	SignedBy         *string    `json:"signed_by,omitempty"`
	SignedAt         *time.Time `json:"signed_at,omitempty"`
	SignedViaSession *uuid.UUID `json:"signed_via_session,omitempty"`
}

// Signed reports whether the document is a signed copy.
func (d *Document) Signed() bool {
	return d.SignedAt != nil
}

// CreateCommand carries the bytes and metadata for a new document.
// The Signed* fields are set only when recording a signed copy.
type CreateCommand struct {
	Data             []byte
	Name             string
	ClientID         string
	ClientName       string
	SignedBy         *string
	SignedAt         *time.Time
	SignedViaSession *uuid.UUID
}
