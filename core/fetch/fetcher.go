// Package fetch implements the Fetcher interface.
// It loads AsciiDoc source from local files or over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gaurav-prasanna/adocpipe/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "adocpipe/1.0 (https://github.com/gaurav-prasanna/adocpipe)"
	// maxBodySize caps remote documents.
	maxBodySize = 32 << 20
)

// HTTPFetcher fetches documents via HTTP.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher with a sensible timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch retrieves the document at the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*core.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "text/asciidoc, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &core.FetchResult{
		Source:     rawURL,
		StatusCode: resp.StatusCode,
		Content:    string(body),
	}, nil
}

// FileFetcher reads documents from the local filesystem.
type FileFetcher struct{}

// Fetch reads the file at path.
func (FileFetcher) Fetch(ctx context.Context, path string) (*core.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &core.FetchResult{Source: path, Content: string(data)}, nil
}

// SourceFetcher routes http(s) URLs to HTTP and everything else to the
// filesystem.
type SourceFetcher struct {
	http *HTTPFetcher
	file FileFetcher
}

// New creates a SourceFetcher.
func New() *SourceFetcher {
	return &SourceFetcher{http: NewHTTPFetcher()}
}

// Fetch loads source from a URL or a file path.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) (*core.FetchResult, error) {
	if IsURL(source) {
		return f.http.Fetch(ctx, source)
	}
	return f.file.Fetch(ctx, source)
}

// IsURL reports whether source is an absolute http or https URL.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
