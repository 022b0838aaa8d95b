package core

import (
	"bytes"
	"encoding/json"
)

// SourceLocation is the serialized form of a block's Location.
type SourceLocation struct {
	File   string `json:"file"`
	Lineno int    `json:"lineno"`
	Path   string `json:"path"`
}

// BlockNode is one block of the document IR.
type BlockNode struct {
	Context        string          `json:"context"`
	ContentModel   string          `json:"content_model"`
	Content        string          `json:"content"`
	Level          int             `json:"level"`
	Style          *string         `json:"style"`
	Title          *string         `json:"title"`
	ID             *string         `json:"id"`
	Attributes     Attributes      `json:"attributes"`
	RawContent     *string         `json:"raw_content,omitempty"`
	SourceLocation *SourceLocation `json:"source_location,omitempty"`
	Lines          []string        `json:"lines,omitzero"`
	Children       []BlockNode     `json:"children"`

	AdmonitionName *string `json:"admonition_name,omitempty"`
	Text           *string `json:"text,omitempty"`
	Marker         *string `json:"marker,omitempty"`
	Language       *Value  `json:"language,omitempty"`
	Linenums       *Value  `json:"linenums,omitempty"`
}

// DocumentIR is the document-level IR handed to serializers.
type DocumentIR struct {
	Title      *string     `json:"title"`
	Attributes Attributes  `json:"attributes"`
	Blocks     []BlockNode `json:"blocks"`
}

// Result is the only value written to the output boundary: either a
// DocumentIR or an error message.
type Result struct {
	Success bool        `json:"success"`
	Data    *DocumentIR `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Succeeded wraps a DocumentIR.
func Succeeded(doc *DocumentIR) Result {
	return Result{Success: true, Data: doc}
}

// MarshalJSON emits exactly {"success":true,"data":...} or
// {"success":false,"error":...}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return EncodeJSON(struct {
			Success bool        `json:"success"`
			Data    *DocumentIR `json:"data"`
		}{true, r.Data}, "")
	}
	return EncodeJSON(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{false, r.Error}, "")
}

// EncodeJSON marshals v without escaping <, > and &. A non-empty indent
// indents nested values by that string. No trailing newline is written.
func EncodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Failed wraps an error message.
func Failed(msg string) Result {
	return Result{Success: false, Error: msg}
}

// SourceMeta describes where a converted document came from.
type SourceMeta struct {
	Source      string
	ConvertedAt string // ISO8601
}

// OptionalString returns nil for the empty string and a pointer otherwise.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
