// Package render — Embeddings renderer.
// Chunks the document IR per heading and calls an Ollama-compatible
// embedding API for each chunk.
// Output is a human-readable .embeddings.txt file.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/chunk"
)

const (
	// DefaultEmbeddingsURL is the local Ollama embeddings endpoint.
	DefaultEmbeddingsURL = "http://localhost:11434/api/embeddings"
	embeddingTimeout     = 60 * time.Second
)

// OllamaEmbedder calls an Ollama-compatible embeddings endpoint.
type OllamaEmbedder struct {
	URL    string
	client *http.Client
}

// NewOllamaEmbedder creates an OllamaEmbedder. An empty url selects
// DefaultEmbeddingsURL.
func NewOllamaEmbedder(url string) *OllamaEmbedder {
	if url == "" {
		url = DefaultEmbeddingsURL
	}
	return &OllamaEmbedder{
		URL:    url,
		client: &http.Client{Timeout: embeddingTimeout},
	}
}

// ollamaRequest is the request body for the Ollama embeddings API.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse is the response body from the Ollama embeddings API.
type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed calls the embedding API for a single text input.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, model string) ([]float64, error) {
	bodyBytes, err := json.Marshal(ollamaRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embeddings API returned %d: %s", resp.StatusCode, string(body))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding embeddings response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned an empty vector")
	}
	return out.Embedding, nil
}

// EmbeddingsRenderer generates embeddings from document chunks.
type EmbeddingsRenderer struct {
	Model     string
	ChunkSize int
	embedder  core.Embedder
}

// NewEmbeddingsRenderer creates an EmbeddingsRenderer.
func NewEmbeddingsRenderer(embedder core.Embedder, model string, chunkSize int) *EmbeddingsRenderer {
	return &EmbeddingsRenderer{
		Model:     model,
		ChunkSize: chunkSize,
		embedder:  embedder,
	}
}

// Render chunks the document, embeds each chunk, and produces
// the human-readable .embeddings.txt output.
func (r *EmbeddingsRenderer) Render(result core.Result, meta core.SourceMeta) ([]byte, error) {
	doc, err := documentOf(result)
	if err != nil {
		return nil, err
	}

	chunker := chunk.New(r.ChunkSize)
	chunks := chunker.ChunkDocument(doc)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no content to embed")
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "# source: %s\n", meta.Source)
	if meta.ConvertedAt != "" {
		fmt.Fprintf(&buf, "# converted_at: %s\n", meta.ConvertedAt)
	}
	fmt.Fprintf(&buf, "# model: %s\n", r.Model)
	fmt.Fprintf(&buf, "# chunk_size: %d\n\n", chunker.ChunkSize)

	ctx := context.Background()
	for i, c := range chunks {
		embedding, err := r.embedder.Embed(ctx, c.Text, r.Model)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", i+1, err)
		}
		log.Debug().Int("chunk", i+1).Int("dims", len(embedding)).Msg("chunk embedded")

		fmt.Fprintf(&buf, "--- chunk %d ---\n", i+1)
		if c.Heading != "" {
			fmt.Fprintf(&buf, "HEADING: %s\n", c.Heading)
		}
		fmt.Fprintf(&buf, "TEXT:\n%s\n\n", c.Text)

		vecStrs := make([]string, len(embedding))
		for j, v := range embedding {
			vecStrs[j] = fmt.Sprintf("%.4f", v)
		}
		fmt.Fprintf(&buf, "VECTOR:\n[%s]\n\n", strings.Join(vecStrs, ", "))
	}

	return []byte(buf.String()), nil
}

// Extension returns the file extension for embeddings output.
func (r *EmbeddingsRenderer) Extension() string {
	return ".embeddings.txt"
}
