package documents

import (
	"net/url"

	"github.com/JaimeStill/attest/pkg/query"
	"github.com/JaimeStill/attest/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("name", "Name").
	Project("path", "Path").
	Project("client_id", "ClientID").
	Project("client_name", "ClientName").
	Project("size", "Size").
	Project("type", "Type").
	Project("page_count", "PageCount").
	Project("uploaded_at", "UploadedAt").
	Project("signed_by", "SignedBy").
	Project("signed_at", "SignedAt").
	Project("signed_via_session", "SignedViaSession")

// returning mirrors the projection order for INSERT ... RETURNING.
const returning = `id, name, path, client_id, client_name, size, type, page_count,
	uploaded_at, signed_by, signed_at, signed_via_session`

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional exact-match criteria for document queries.
// Nil fields are ignored.
type Filters struct {
	ClientID *string `json:"client_id,omitempty"`
	SignedBy *string `json:"signed_by,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("ClientID", f.ClientID).
		WhereEquals("SignedBy", f.SignedBy)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if v := values.Get("client_id"); v != "" {
		f.ClientID = &v
	}
	if v := values.Get("signed_by"); v != "" {
		f.SignedBy = &v
	}
	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Name,
		&d.Path,
		&d.ClientID,
		&d.ClientName,
		&d.Size,
		&d.Type,
		&d.PageCount,
		&d.UploadedAt,
		&d.SignedBy,
		&d.SignedAt,
		&d.SignedViaSession,
	)
	return d, err
}
