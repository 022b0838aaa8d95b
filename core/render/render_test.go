package render

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/pipeline"
)

const sample = `= User Guide
Jane Doe <jane@example.com>
:toc:

Intro paragraph.

== Install

[source,bash]
----
make install
----

NOTE: Needs root.

* first
* second
** nested

.Versions
|===
|Name |Version

|go |1.25
|===

++++
<p>Hello <b>world</b></p>
++++

'''
`

func convert(t *testing.T, src string) core.Result {
	t.Helper()
	res := pipeline.Default().Run(src)
	require.True(t, res.Success, res.Error)
	return res
}

func TestJSONRenderer(t *testing.T) {
	res := convert(t, "= T\n\nbody")

	data, err := NewJSONRenderer(false).Render(res, core.SourceMeta{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `{"success":true,"data":{`))
	assert.NotContains(t, string(data), "\n")

	pretty, err := NewJSONRenderer(true).Render(res, core.SourceMeta{})
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"success\": true")
	assert.JSONEq(t, string(data), string(pretty))

	failed, err := NewJSONRenderer(false).Render(core.Failed("boom"), core.SourceMeta{})
	require.NoError(t, err)
	assert.Equal(t, `{"success":false,"error":"boom"}`, string(failed))

	assert.Equal(t, ".json", NewJSONRenderer(false).Extension())
}

func TestJSONRenderer_NoHTMLEscaping(t *testing.T) {
	res := convert(t, "= T\n\n[source,html]\n----\n<tag> & more\n----\n")

	for _, pretty := range []bool{false, true} {
		data, err := NewJSONRenderer(pretty).Render(res, core.SourceMeta{})
		require.NoError(t, err)
		assert.Contains(t, string(data), `<tag> & more`)
		assert.NotContains(t, string(data), `\u003c`)
		assert.NotContains(t, string(data), `\u0026`)
		assert.False(t, strings.HasSuffix(string(data), "\n"))
	}

	failed, err := NewJSONRenderer(false).Render(core.Failed("expected <x>"), core.SourceMeta{})
	require.NoError(t, err)
	assert.Equal(t, `{"success":false,"error":"expected <x>"}`, string(failed))
}

func TestJSONRenderer_Shape(t *testing.T) {
	data, err := NewJSONRenderer(false).Render(convert(t, sample), core.SourceMeta{})
	require.NoError(t, err)

	var out struct {
		Data struct {
			Blocks []map[string]any `json:"blocks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	for _, b := range out.Data.Blocks {
		for _, key := range []string{"context", "content_model", "content", "level", "style", "title", "id", "attributes", "children"} {
			assert.Contains(t, b, key)
		}
	}
}

func TestMarkdownRenderer(t *testing.T) {
	data, err := NewMarkdownRenderer().Render(convert(t, sample), core.SourceMeta{Source: "guide.adoc"})
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "# User Guide\n"))
	assert.Contains(t, md, "Intro paragraph.")
	assert.Contains(t, md, "## Install")
	assert.Contains(t, md, "```bash\nmake install\n```")
	assert.Contains(t, md, "> **NOTE:** Needs root.")
	assert.Contains(t, md, "- first\n- second\n  - nested\n")
	assert.Contains(t, md, "**Versions**")
	assert.Contains(t, md, "| Name | Version |\n| --- | --- |\n| go | 1.25 |")
	assert.Contains(t, md, "Hello **world**")
	assert.Contains(t, md, "\n---\n")
	assert.Equal(t, ".md", NewMarkdownRenderer().Extension())
}

func TestPDFRenderer(t *testing.T) {
	data, err := NewPDFRenderer().Render(convert(t, sample), core.SourceMeta{Source: "guide.adoc"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Equal(t, ".pdf", NewPDFRenderer().Extension())
}

func TestSourceLine(t *testing.T) {
	assert.Equal(t, "", sourceLine(core.SourceMeta{}))
	assert.Equal(t, "Source: guide.adoc", sourceLine(core.SourceMeta{Source: "guide.adoc"}))
	assert.Equal(t, "Source: guide.adoc | Converted: 2024-05-01T10:00:00Z",
		sourceLine(core.SourceMeta{Source: "guide.adoc", ConvertedAt: "2024-05-01T10:00:00Z"}))
}

func TestHTMLText(t *testing.T) {
	text, err := htmlText("<div><p>Hello\n <b>world</b></p><p>again</p></div>")
	require.NoError(t, err)
	assert.Equal(t, "Hello worldagain", text)
}

func TestRenderers_RejectFailedResult(t *testing.T) {
	renderers := []core.Renderer{
		NewMarkdownRenderer(),
		NewPDFRenderer(),
		NewEmbeddingsRenderer(NewOllamaEmbedder(""), "m", 10),
	}
	for _, r := range renderers {
		_, err := r.Render(core.Failed("boom"), core.SourceMeta{})
		assert.True(t, errors.Is(err, ErrFailedResult))
		assert.Contains(t, err.Error(), "boom")
	}
}

func TestEmbeddingsRenderer(t *testing.T) {
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic", req.Model)
		prompts = append(prompts, req.Prompt)
		_, _ = w.Write([]byte(`{"embedding":[0.5,-0.25]}`))
	}))
	defer srv.Close()

	r := NewEmbeddingsRenderer(NewOllamaEmbedder(srv.URL), "nomic", 2)
	meta := core.SourceMeta{Source: "doc.adoc", ConvertedAt: "2024-05-01T10:00:00Z"}
	data, err := r.Render(convert(t, "= Doc\n\none two three"), meta)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "# source: doc.adoc\n# converted_at: 2024-05-01T10:00:00Z\n# model: nomic\n# chunk_size: 2\n")
	assert.Contains(t, out, "--- chunk 1 ---\nHEADING: Doc\nTEXT:\none two\n")
	assert.Contains(t, out, "--- chunk 2 ---")
	assert.Contains(t, out, "VECTOR:\n[0.5000, -0.2500]")
	assert.Equal(t, []string{"one two", "three"}, prompts)
}

func TestOllamaEmbedder_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder(srv.URL).Embed(t.Context(), "x", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	assert.Equal(t, DefaultEmbeddingsURL, NewOllamaEmbedder("").URL)
}
