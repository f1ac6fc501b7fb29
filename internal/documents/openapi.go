package documents

import "github.com/JaimeStill/attest/pkg/openapi"

type docsSpec struct {
	List   *openapi.Operation
	Find   *openapi.Operation
	Upload *openapi.Operation
	Search *openapi.Operation
	Delete *openapi.Operation
}

var spec = docsSpec{
	List: &openapi.Operation{
		Summary: "List documents",
		Tags:    []string{"Documents"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search by name or client name", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields. Prefix with - for descending", false),
			openapi.QueryParam("client_id", "string", "Filter by owning client", false),
			openapi.QueryParam("signed_by", "string", "Filter by signer name", false),
		},
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Paginated documents",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: openapi.PageOf("Document")},
				},
			},
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find a document",
		Tags:       []string{"Documents"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Upload: &openapi.Operation{
		Summary:     "Upload a PDF",
		Description: "Stores the file and records it against the owning client.",
		Tags:        []string{"Documents"},
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {Schema: openapi.SchemaRef("DocumentUpload")},
			},
		},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			413: openapi.ResponseRef("PayloadTooLarge"),
			415: openapi.ResponseRef("UnsupportedMedia"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search documents",
		Tags:        []string{"Documents"},
		RequestBody: openapi.RequestBodyJSON("DocumentSearch", true),
		Responses: map[int]*openapi.Response{
			200: {
				Description: "Paginated documents",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: openapi.PageOf("Document")},
				},
			},
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Delete: &openapi.Operation{
		Summary:     "Delete a document",
		Description: "Documents referenced by signing sessions cannot be deleted; sessions are kept as the signing record.",
		Tags:        []string{"Documents"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			204: {Description: "Deleted"},
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
}

// Schemas returns the component schemas referenced by document operations.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"name":               {Type: "string", Example: "engagement-letter.pdf"},
				"path":               {Type: "string", Description: "Blob storage key"},
				"url":                {Type: "string", Description: "Download URL"},
				"client_id":          {Type: "string"},
				"client_name":        {Type: "string"},
				"size":               {Type: "integer", Description: "Size in bytes"},
				"type":               {Type: "string", Enum: []any{TypePDF}},
				"page_count":         {Type: "integer"},
				"uploaded_at":        {Type: "string", Format: "date-time"},
				"signed_by":          {Type: "string"},
				"signed_at":          {Type: "string", Format: "date-time"},
				"signed_via_session": {Type: "string", Format: "uuid"},
			},
		},
		"DocumentUpload": {
			Type:     "object",
			Required: []string{"file", "client_id", "client_name"},
			Properties: map[string]*openapi.Schema{
				"file":        {Type: "string", Format: "binary"},
				"client_id":   {Type: "string"},
				"client_name": {Type: "string"},
			},
		},
		"DocumentSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":      {Type: "integer"},
				"page_size": {Type: "integer"},
				"search":    {Type: "string"},
				"sort":      {Type: "string"},
				"client_id": {Type: "string"},
				"signed_by": {Type: "string"},
			},
		},
	}
}
