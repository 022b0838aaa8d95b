// Package chunk splits a document IR into word-count chunks for embedding.
// Uses a simple whitespace tokenizer (words ≈ tokens). Chunks never cross a
// heading, so every chunk belongs to exactly one section.
package chunk

import (
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// DefaultChunkSize is used when a non-positive size is given.
const DefaultChunkSize = 512

// Chunk is a run of words under one heading.
type Chunk struct {
	Heading string
	Text    string
}

// Chunker splits text into fixed-size token chunks.
type Chunker struct {
	ChunkSize int // number of tokens (words) per chunk
}

// New creates a Chunker with the given chunk size.
// Defaults to DefaultChunkSize if chunkSize <= 0.
func New(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunker{ChunkSize: chunkSize}
}

// Chunk splits the input text into slices of at most ChunkSize words.
// Each chunk is a contiguous block of words joined by spaces.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += c.ChunkSize {
		end := i + c.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// ChunkDocument collects the text of every block in document order and
// chunks it per heading scope. Headings themselves are not chunk text.
func (c *Chunker) ChunkDocument(doc *core.DocumentIR) []Chunk {
	if doc == nil {
		return nil
	}

	var (
		chunks  []Chunk
		heading string
		parts   []string
	)
	flush := func() {
		for _, text := range c.Chunk(strings.Join(parts, "\n")) {
			chunks = append(chunks, Chunk{Heading: heading, Text: text})
		}
		parts = nil
	}

	var walk func(nodes []core.BlockNode)
	walk = func(nodes []core.BlockNode) {
		for _, n := range nodes {
			switch core.Context(n.Context) {
			case core.ContextSection:
				flush()
				heading = n.Content
				if n.Title != nil {
					heading = *n.Title
				}
				walk(n.Children)
			case core.ContextHeading:
				flush()
				heading = n.Content
			case core.ContextTable, core.ContextUList, core.ContextOList:
				// Rows and items carry the text; the container content repeats it.
				walk(n.Children)
			case core.ContextTableRow:
				cells := make([]string, len(n.Children))
				for i, cell := range n.Children {
					cells[i] = cell.Content
				}
				parts = append(parts, strings.Join(cells, " "))
			default:
				if len(n.Children) > 0 && n.Context != string(core.ContextListItem) {
					walk(n.Children)
					continue
				}
				if n.Content != "" {
					parts = append(parts, n.Content)
				}
				walk(n.Children)
			}
		}
	}
	walk(doc.Blocks)
	flush()
	return chunks
}
