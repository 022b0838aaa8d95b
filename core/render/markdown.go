// Package render provides output renderers for the adocpipe pipeline.
// This file implements the Markdown renderer, which walks the document IR.
package render

import (
	"errors"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// ErrFailedResult is returned by renderers that can only render a document.
var ErrFailedResult = errors.New("conversion failed")

// documentOf returns the DocumentIR of a successful result.
func documentOf(result core.Result) (*core.DocumentIR, error) {
	if !result.Success {
		return nil, fmt.Errorf("%w: %s", ErrFailedResult, result.Error)
	}
	if result.Data == nil {
		return nil, fmt.Errorf("%w: empty document", ErrFailedResult)
	}
	return result.Data, nil
}

// MarkdownRenderer renders a DocumentIR as GitHub-flavored Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render converts the document into Markdown.
func (r *MarkdownRenderer) Render(result core.Result, meta core.SourceMeta) ([]byte, error) {
	doc, err := documentOf(result)
	if err != nil {
		return nil, err
	}

	var w mdWriter
	for _, b := range doc.Blocks {
		if err := w.block(b, ""); err != nil {
			return nil, err
		}
	}
	return []byte(strings.TrimRight(w.buf.String(), "\n") + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

type mdWriter struct {
	buf strings.Builder
}

// para writes text as one paragraph, each line prefixed with indent.
func (w *mdWriter) para(text, indent string) {
	for _, line := range strings.Split(text, "\n") {
		w.buf.WriteString(indent + line + "\n")
	}
	w.buf.WriteString("\n")
}

func (w *mdWriter) blockTitle(b core.BlockNode, indent string) {
	if b.Title != nil && b.Context != string(core.ContextSection) {
		w.para("**"+*b.Title+"**", indent)
	}
}

func (w *mdWriter) children(children []core.BlockNode, indent string) error {
	for _, c := range children {
		if err := w.block(c, indent); err != nil {
			return err
		}
	}
	return nil
}

func (w *mdWriter) block(b core.BlockNode, indent string) error {
	switch core.Context(b.Context) {
	case core.ContextSection:
		title := b.Content
		if b.Title != nil {
			title = *b.Title
		}
		w.para(headingMarks(b.Level)+" "+title, indent)
		return w.children(b.Children, indent)

	case core.ContextHeading:
		w.para(headingMarks(b.Level)+" "+b.Content, indent)

	case core.ContextListing, core.ContextLiteral:
		w.blockTitle(b, indent)
		lang := ""
		if b.Language != nil {
			lang = b.Language.String()
		}
		w.buf.WriteString(indent + "```" + lang + "\n")
		for _, line := range strings.Split(b.Content, "\n") {
			w.buf.WriteString(indent + line + "\n")
		}
		w.buf.WriteString(indent + "```\n\n")

	case core.ContextAdmonition:
		name := "NOTE"
		if b.AdmonitionName != nil {
			name = strings.ToUpper(*b.AdmonitionName)
		}
		w.para("**"+name+":** "+b.Content, indent+"> ")

	case core.ContextQuote, core.ContextVerse:
		w.blockTitle(b, indent)
		w.para(b.Content, indent+"> ")
		if a, ok := b.Attributes.Lookup("attribution"); ok {
			w.para("-- "+a, indent)
		}

	case core.ContextSidebar, core.ContextExample, core.ContextOpen:
		w.blockTitle(b, indent)
		if len(b.Children) > 0 {
			return w.children(b.Children, indent)
		}
		w.para(b.Content, indent)

	case core.ContextUList, core.ContextOList:
		w.blockTitle(b, indent)
		if err := w.list(b, indent); err != nil {
			return err
		}
		w.buf.WriteString("\n")

	case core.ContextTable:
		w.blockTitle(b, indent)
		w.table(b, indent)

	case core.ContextPass:
		md, err := htmltomarkdown.ConvertString(strings.Join(b.Lines, "\n"))
		if err != nil {
			return fmt.Errorf("converting passthrough HTML: %w", err)
		}
		if md = strings.TrimSpace(md); md != "" {
			w.para(md, indent)
		}

	case core.ContextImage:
		target, _ := b.Attributes.Lookup("target")
		alt, _ := b.Attributes.Lookup("alt")
		w.para(fmt.Sprintf("![%s](%s)", alt, target), indent)

	case core.ContextThematicBreak:
		w.para("---", indent)

	case core.ContextPageBreak:

	default:
		w.blockTitle(b, indent)
		if b.Content != "" {
			w.para(b.Content, indent)
		}
	}
	return nil
}

// list writes list items; nested lists and attached blocks are indented
// under their item.
func (w *mdWriter) list(b core.BlockNode, indent string) error {
	ordered := b.Context == string(core.ContextOList)
	for i, item := range b.Children {
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", i+1)
		}
		text := item.Content
		if item.Text != nil {
			text = *item.Text
		}
		child := indent + strings.Repeat(" ", len(marker))
		w.buf.WriteString(indent + marker + strings.ReplaceAll(text, "\n", "\n"+child) + "\n")

		for _, c := range item.Children {
			if c.Context == string(core.ContextUList) || c.Context == string(core.ContextOList) {
				if err := w.list(c, child); err != nil {
					return err
				}
				continue
			}
			w.buf.WriteString("\n")
			if err := w.block(c, child); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *mdWriter) table(b core.BlockNode, indent string) {
	var header []string
	var body [][]string
	for _, row := range b.Children {
		cells := make([]string, len(row.Children))
		for i, c := range row.Children {
			cells[i] = strings.ReplaceAll(strings.ReplaceAll(c.Content, "|", `\|`), "\n", " ")
		}
		if row.Style != nil && *row.Style == "header" {
			header = cells
			continue
		}
		body = append(body, cells)
	}

	cols := len(header)
	for _, r := range body {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}

	pad := func(cells []string) []string {
		for len(cells) < cols {
			cells = append(cells, "")
		}
		return cells
	}
	row := func(cells []string) {
		w.buf.WriteString(indent + "| " + strings.Join(pad(cells), " | ") + " |\n")
	}

	row(header)
	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}
	row(sep)
	for _, r := range body {
		row(r)
	}
	w.buf.WriteString("\n")
}

// headingMarks maps an IR level to Markdown "#" marks; the document title
// (level 0) becomes "#".
func headingMarks(level int) string {
	n := level + 1
	if n > 6 {
		n = 6
	}
	return strings.Repeat("#", n)
}
