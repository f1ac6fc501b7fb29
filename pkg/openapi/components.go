package openapi

import "maps"

// NewComponents creates Components with the shared paging schema and one
// error response per status the API returns.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: name,-uploaded_at"},
				},
			},
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":       errorResponse("Invalid request"),
			"NotFound":         errorResponse("Resource not found"),
			"Conflict":         errorResponse("Conflicting state"),
			"Gone":             errorResponse("Signing link has expired"),
			"PayloadTooLarge":  errorResponse("Upload exceeds the size limit"),
			"UnsupportedMedia": errorResponse("Upload is not a PDF"),
			"Unprocessable":    errorResponse("Document or signature image could not be processed"),
		},
	}
}

func errorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
