// Package core defines the pipeline interfaces and shared types for adocpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import "context"

// FetchResult holds raw AsciiDoc source and where it came from.
type FetchResult struct {
	Source     string
	StatusCode int
	Content    string
}

// Fetcher retrieves raw AsciiDoc source from a path or URL.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (*FetchResult, error)
}

// Normalizer repairs loosely formatted document headers. It never fails.
type Normalizer interface {
	Normalize(content string) string
}

// Parser turns normalized AsciiDoc into a document tree.
type Parser interface {
	Parse(content string) (*Document, error)
}

// Assembler projects a document tree into the serializable IR.
type Assembler interface {
	Assemble(doc *Document) (*DocumentIR, error)
}

// Renderer converts a Result into a final output format.
type Renderer interface {
	Render(result Result, meta SourceMeta) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".json", ".pdf").
	Extension() string
}

// Embedder generates a vector embedding for a text input.
type Embedder interface {
	Embed(ctx context.Context, text string, model string) ([]float64, error)
}
