package signing

import "github.com/JaimeStill/attest/pkg/openapi"

type signingSpec struct {
	Layout         *openapi.Operation
	SignAsPreparer *openapi.Operation
	Send           *openapi.Operation
	List           *openapi.Operation
	Search         *openapi.Operation
	Resolve        *openapi.Operation
	Submit         *openapi.Operation
}

var sessionPage = &openapi.Response{
	Description: "Paginated sessions",
	Content: map[string]*openapi.MediaType{
		"application/json": {Schema: openapi.PageOf("Session")},
	},
}

var spec = signingSpec{
	Layout: &openapi.Operation{
		Summary:    "Get page layout",
		Tags:       []string{"Signing"},
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Page count and page sizes in points", "Layout"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
	SignAsPreparer: &openapi.Operation{
		Summary:     "Sign as preparer",
		Description: "Embeds the preparer's signature at one marker and stores the result as a new signed document.",
		Tags:        []string{"Signing"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		RequestBody: openapi.RequestBodyJSON("SignCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Signed document", "Document"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
	Send: &openapi.Operation{
		Summary:     "Send for signature",
		Description: "Opens a signing session for the document's client and returns the shareable link.",
		Tags:        []string{"Signing"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Document ID")},
		RequestBody: openapi.RequestBodyJSON("SendCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Session and link", "SendResult"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
	List: &openapi.Operation{
		Summary: "List sessions",
		Tags:    []string{"Sessions"},
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search by document or client name", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields. Prefix with - for descending", false),
			openapi.QueryParam("document_id", "string", "Filter by source document", false),
			openapi.QueryParam("client_id", "string", "Filter by client", false),
			openapi.QueryParam("status", "string", "Filter by status (pending, completed)", false),
		},
		Responses: map[int]*openapi.Response{200: sessionPage},
	},
	Search: &openapi.Operation{
		Summary:     "Search sessions",
		Tags:        []string{"Sessions"},
		RequestBody: openapi.RequestBodyJSON("SessionSearch", true),
		Responses: map[int]*openapi.Response{
			200: sessionPage,
			400: openapi.ResponseRef("BadRequest"),
		},
	},
	Resolve: &openapi.Operation{
		Summary:     "Resolve a session",
		Description: "Returns the session as the signer sees it. Expired and completed sessions are returned inside the error body.",
		Tags:        []string{"Sessions"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Session ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Signable session", "Session"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseJSON("Session already completed", "SessionState"),
			410: openapi.ResponseJSON("Session expired", "SessionState"),
		},
	},
	Submit: &openapi.Operation{
		Summary:     "Submit a signature",
		Description: "Signs the document at every client marker and completes the session. Succeeds at most once per session.",
		Tags:        []string{"Sessions"},
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Session ID")},
		RequestBody: openapi.RequestBodyJSON("SubmitCommand", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Completed session and signed document", "SignResult"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
			410: openapi.ResponseRef("Gone"),
			422: openapi.ResponseRef("Unprocessable"),
		},
	},
}

// Schemas returns the component schemas referenced by signing operations.
func Schemas() map[string]*openapi.Schema {
	number := &openapi.Schema{Type: "number"}
	signature := &openapi.Schema{
		Type:        "string",
		Description: "PNG or JPEG image as a base64 data URL",
		Example:     "data:image/png;base64,iVBORw0KGgo...",
	}

	return map[string]*openapi.Schema{
		"Rect": {
			Type:     "object",
			Required: []string{"x", "y", "width", "height"},
			Properties: map[string]*openapi.Schema{
				"x": number, "y": number, "width": number, "height": number,
			},
		},
		"Size": {
			Type:     "object",
			Required: []string{"width", "height"},
			Properties: map[string]*openapi.Schema{
				"width": number, "height": number,
			},
		},
		"Marker": {
			Type:        "object",
			Description: "Signature position in PDF points, origin at the bottom-left of the page",
			Properties: map[string]*openapi.Schema{
				"id":     {Type: "string"},
				"page":   {Type: "integer"},
				"x":      number,
				"y":      number,
				"width":  number,
				"height": number,
			},
		},
		"UIMarker": {
			Type:        "object",
			Description: "Marker rectangle in viewer pixels, origin at the top-left, with the measured page container",
			Required:    []string{"page", "role", "rect", "container"},
			Properties: map[string]*openapi.Schema{
				"id":        {Type: "string"},
				"page":      {Type: "integer"},
				"role":      {Type: "string", Enum: []any{string(RolePreparer), string(RoleClient)}},
				"rect":      openapi.SchemaRef("Rect"),
				"container": openapi.SchemaRef("Size"),
			},
		},
		"Layout": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document_id": {Type: "string", Format: "uuid"},
				"page_count":  {Type: "integer"},
				"pages":       openapi.ArrayOf("Size"),
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session_id":          {Type: "string", Format: "uuid"},
				"document_id":         {Type: "string", Format: "uuid"},
				"document_name":       {Type: "string"},
				"document_url":        {Type: "string", Description: "Preview with sign-here markers when available"},
				"original_url":        {Type: "string"},
				"client_id":           {Type: "string"},
				"client_name":         {Type: "string"},
				"status":              {Type: "string", Enum: []any{string(StatusPending), string(StatusCompleted)}},
				"markers":             openapi.ArrayOf("Marker"),
				"created_at":          {Type: "string", Format: "date-time"},
				"expires_at":          {Type: "string", Format: "date-time"},
				"signed_at":           {Type: "string", Format: "date-time"},
				"signed_document_url": {Type: "string"},
				"signed_document_id":  {Type: "string", Format: "uuid"},
			},
		},
		"SessionState": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"error":   {Type: "string"},
				"kind":    {Type: "string", Enum: []any{string(ErrorExpired), string(ErrorAlreadyCompleted)}},
				"session": openapi.SchemaRef("Session"),
			},
		},
		"SignCommand": {
			Type:     "object",
			Required: []string{"marker", "signature"},
			Properties: map[string]*openapi.Schema{
				"marker":      openapi.SchemaRef("UIMarker"),
				"signature":   signature,
				"signer_name": {Type: "string"},
			},
		},
		"SendCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"markers":     openapi.ArrayOf("UIMarker"),
				"client_id":   {Type: "string", Description: "Defaults to the document's client"},
				"client_name": {Type: "string", Description: "Defaults to the document's client"},
			},
		},
		"SendResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session": openapi.SchemaRef("Session"),
				"link":    {Type: "string", Description: "Shareable signing page URL"},
			},
		},
		"SubmitCommand": {
			Type:     "object",
			Required: []string{"signature"},
			Properties: map[string]*openapi.Schema{
				"signature":   signature,
				"signer_name": {Type: "string", Description: "Defaults to the session's client name"},
			},
		},
		"SignResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"session":  openapi.SchemaRef("Session"),
				"document": openapi.SchemaRef("Document"),
			},
		},
		"SessionSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"search":      {Type: "string"},
				"sort":        {Type: "string"},
				"document_id": {Type: "string", Format: "uuid"},
				"client_id":   {Type: "string"},
				"status":      {Type: "string"},
			},
		},
	}
}
