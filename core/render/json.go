// Package render — JSON renderer.
// Writes the Result envelope exactly as the output boundary defines it:
// {"success":true,"data":...} or {"success":false,"error":...}.
package render

import (
	"fmt"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// JSONRenderer serializes a Result.
type JSONRenderer struct {
	Pretty bool
}

// NewJSONRenderer creates a JSONRenderer. pretty indents the output.
func NewJSONRenderer(pretty bool) *JSONRenderer {
	return &JSONRenderer{Pretty: pretty}
}

// Render marshals the result. Failed results render too, since they are the
// failure format of the output boundary.
func (r *JSONRenderer) Render(result core.Result, _ core.SourceMeta) ([]byte, error) {
	indent := ""
	if r.Pretty {
		indent = "  "
	}
	data, err := core.EncodeJSON(result, indent)
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
