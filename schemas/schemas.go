// Package schemas embeds the OpenAPI document the server validates requests
// against.
package schemas

import _ "embed"

// OpenAPISpec is the raw OpenAPI 3.0 document for the importer API.
//
//go:embed openapi.yaml
var OpenAPISpec []byte
