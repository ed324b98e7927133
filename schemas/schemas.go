// Package schemas embeds the JSON Schema documents shipped with the service.
package schemas

import _ "embed"

// ModelBundle is the JSON Schema every model bundle must satisfy.
//
//go:embed model_bundle.schema.json
var ModelBundle []byte
