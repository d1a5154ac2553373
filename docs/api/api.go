// Package api carries the OpenAPI document served at /swagger.
package api

import _ "embed"

// OpenAPI is the wallet ledger OpenAPI 3 document in YAML.
//
//go:embed openapi.yaml
var OpenAPI []byte
