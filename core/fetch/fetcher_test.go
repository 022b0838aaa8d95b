package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceFetcher_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.adoc")
	require.NoError(t, os.WriteFile(path, []byte("= Doc\n"), 0o644))

	res, err := New().Fetch(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, path, res.Source)
	assert.Equal(t, "= Doc\n", res.Content)

	_, err = New().Fetch(t.Context(), filepath.Join(t.TempDir(), "missing.adoc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSourceFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "text/asciidoc")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		if r.URL.Path == "/missing.adoc" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("= Remote\n"))
	}))
	defer srv.Close()

	res, err := New().Fetch(t.Context(), srv.URL+"/doc.adoc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "= Remote\n", res.Content)

	_, err = New().Fetch(t.Context(), srv.URL+"/missing.adoc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.adoc", true},
		{"http://localhost:8080/x", true},
		{"docs/a.adoc", false},
		{"/abs/a.adoc", false},
		{"file:///a.adoc", false},
		{"C:\\docs\\a.adoc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsURL(tt.in), tt.in)
	}
}
