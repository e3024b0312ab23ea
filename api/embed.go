// Package api carries the OpenAPI description of the HTTP adapter so servers
// can serve it without reading from disk.
package api

import _ "embed"

//go:embed openapi.yaml
var Spec []byte
