package openapi

import "maps"

// Components holds reusable schemas and responses.
type Components struct {
	Schemas   map[string]*Schema   `json:"schemas,omitempty"`
	Responses map[string]*Response `json:"responses,omitempty"`
}

// errorResponses are the shared failure responses, keyed by component name.
var errorResponses = map[string]string{
	"BadRequest":          "Malformed request or invalid run configuration",
	"NotFound":            "Record set, meta-explanation or blob not found",
	"Conflict":            "Duplicate name or a run already in progress for the record set",
	"PayloadTooLarge":     "Upload exceeds the configured maximum size",
	"UnprocessableEntity": "Records are well formed but cannot be evaluated",
}

// NewComponents returns the error envelope, the paging request and the
// shared error responses.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:       "object",
				Required:   []string{"error"},
				Properties: map[string]*Schema{"error": {Type: "string"}},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number, starting at 1", Example: 1},
					"page_size": {Type: "integer", Example: 20},
					"search":    {Type: "string"},
					"sort":      {Type: "string", Description: "Comma-separated fields, - prefix for descending", Example: "-created_at"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorResponses)),
	}

	for name, desc := range errorResponses {
		c.Responses[name] = ResponseJSON(desc, "Error")
	}
	return c
}

// AddSchemas merges schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
