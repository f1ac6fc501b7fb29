package signing

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/attest/pkg/query"
	"github.com/JaimeStill/attest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "signing_sessions", "s").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("document_name", "DocumentName").
	Project("document_url", "DocumentURL").
	Project("original_url", "OriginalURL").
	Project("client_id", "ClientID").
	Project("client_name", "ClientName").
	Project("status", "Status").
	Project("markers", "Markers").
	Project("created_at", "CreatedAt").
	Project("expires_at", "ExpiresAt").
	Project("signed_at", "SignedAt").
	Project("signed_document_url", "SignedDocumentURL").
	Project("signed_document_id", "SignedDocumentID")

const returning = `id, document_id, document_name, document_url, original_url, client_id,
	client_name, status, markers, created_at, expires_at, signed_at, signed_document_url,
	signed_document_id`

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional exact-match criteria for session queries.
type Filters struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	ClientID   *string    `json:"client_id,omitempty"`
	Status     *Status    `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("ClientID", f.ClientID).
		WhereEquals("Status", status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// An unparseable document_id is ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("document_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.DocumentID = &id
		}
	}
	if v := values.Get("client_id"); v != "" {
		f.ClientID = &v
	}
	if v := values.Get("status"); v != "" {
		s := Status(v)
		f.Status = &s
	}
	return f
}

func scanSession(s repository.Scanner) (Session, error) {
	var (
		sess    Session
		markers []byte
	)
	err := s.Scan(
		&sess.ID,
		&sess.DocumentID,
		&sess.DocumentName,
		&sess.DocumentURL,
		&sess.OriginalURL,
		&sess.ClientID,
		&sess.ClientName,
		&sess.Status,
		&markers,
		&sess.CreatedAt,
		&sess.ExpiresAt,
		&sess.SignedAt,
		&sess.SignedDocumentURL,
		&sess.SignedDocumentID,
	)
	if err != nil {
		return sess, err
	}

	if len(markers) > 0 {
		if err := json.Unmarshal(markers, &sess.Markers); err != nil {
			return sess, fmt.Errorf("decode markers for %s: %w", sess.ID, err)
		}
	}
	return sess, nil
}

// encodeMarkers returns nil for an empty list so the column stays NULL.
func encodeMarkers(markers []Marker) ([]byte, error) {
	if len(markers) == 0 {
		return nil, nil
	}
	return json.Marshal(markers)
}
