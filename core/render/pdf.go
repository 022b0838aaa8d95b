// Package render — PDF renderer.
// Lays out the document IR with gofpdf: headings get variable font sizes,
// code blocks a monospace font on a grey background, tables a bordered grid.
// Images are rendered as their alt text.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// PDFRenderer renders a DocumentIR as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the document into PDF bytes.
func (r *PDFRenderer) Render(result core.Result, meta core.SourceMeta) ([]byte, error) {
	doc, err := documentOf(result)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	if line := sourceLine(meta); line != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		w.text(5, line, false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}

	for _, b := range doc.Blocks {
		if err := w.block(b, 0); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// sourceLine is the grey provenance line printed above the document.
func sourceLine(meta core.SourceMeta) string {
	var parts []string
	if meta.Source != "" {
		parts = append(parts, "Source: "+meta.Source)
	}
	if meta.ConvertedAt != "" {
		parts = append(parts, "Converted: "+meta.ConvertedAt)
	}
	return strings.Join(parts, " | ")
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

type pdfWriter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) text(height float64, s string, fill bool) {
	w.pdf.MultiCell(0, height, w.tr(s), "", "L", fill)
}

func (w *pdfWriter) body(s string) {
	w.pdf.SetFont("Helvetica", "", 10)
	w.text(5, s, false)
	w.pdf.Ln(3)
}

func (w *pdfWriter) title(b core.BlockNode) {
	if b.Title == nil || b.Context == string(core.ContextSection) {
		return
	}
	w.pdf.SetFont("Helvetica", "B", 10)
	w.text(5, *b.Title, false)
}

func (w *pdfWriter) block(b core.BlockNode, indent float64) error {
	left, _, right, _ := w.pdf.GetMargins()
	w.pdf.SetX(left + indent)

	switch core.Context(b.Context) {
	case core.ContextSection:
		title := b.Content
		if b.Title != nil {
			title = *b.Title
		}
		w.heading(title, b.Level)
		return w.children(b.Children, indent)

	case core.ContextHeading:
		w.heading(b.Content, b.Level)

	case core.ContextListing, core.ContextLiteral:
		w.title(b)
		w.pdf.Ln(2)
		w.pdf.SetFont("Courier", "", 9)
		w.pdf.SetFillColor(245, 245, 245)
		for _, line := range strings.Split(b.Content, "\n") {
			w.text(4.5, line, true)
		}
		w.pdf.Ln(4)

	case core.ContextAdmonition:
		name := "NOTE"
		if b.AdmonitionName != nil {
			name = strings.ToUpper(*b.AdmonitionName)
		}
		w.pdf.SetFont("Helvetica", "B", 10)
		w.text(5, name+":", false)
		w.body(b.Content)

	case core.ContextQuote, core.ContextVerse:
		w.title(b)
		w.pdf.SetFont("Helvetica", "I", 10)
		w.text(5, b.Content, false)
		if a, ok := b.Attributes.Lookup("attribution"); ok {
			w.text(5, "-- "+a, false)
		}
		w.pdf.Ln(3)

	case core.ContextSidebar, core.ContextExample, core.ContextOpen:
		w.title(b)
		if len(b.Children) > 0 {
			return w.children(b.Children, indent)
		}
		w.body(b.Content)

	case core.ContextUList, core.ContextOList:
		w.title(b)
		return w.list(b, indent)

	case core.ContextTable:
		w.title(b)
		w.table(b)

	case core.ContextPass:
		text, err := htmlText(strings.Join(b.Lines, "\n"))
		if err != nil {
			return err
		}
		if text != "" {
			w.body(text)
		}

	case core.ContextImage:
		alt, _ := b.Attributes.Lookup("alt")
		w.pdf.SetFont("Helvetica", "I", 9)
		w.text(5, "[image: "+alt+"]", false)
		w.pdf.Ln(3)

	case core.ContextThematicBreak:
		y := w.pdf.GetY() + 2
		pageW, _ := w.pdf.GetPageSize()
		w.pdf.Line(left, y, pageW-right, y)
		w.pdf.Ln(6)

	case core.ContextPageBreak:
		w.pdf.AddPage()

	default:
		w.title(b)
		if b.Content != "" {
			w.body(b.Content)
		}
	}
	return nil
}

func (w *pdfWriter) children(children []core.BlockNode, indent float64) error {
	for _, c := range children {
		if err := w.block(c, indent); err != nil {
			return err
		}
	}
	return nil
}

// heading sets the font size from the IR level; the document title (level 0)
// is the largest.
func (w *pdfWriter) heading(text string, level int) {
	sizes := map[int]float64{0: 20, 1: 16, 2: 14, 3: 12, 4: 11, 5: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	w.pdf.Ln(4)
	w.pdf.SetFont("Helvetica", "B", size)
	w.text(size*0.6, text, false)
	w.pdf.Ln(2)
}

func (w *pdfWriter) list(b core.BlockNode, indent float64) error {
	left, _, _, _ := w.pdf.GetMargins()
	ordered := b.Context == string(core.ContextOList)
	for i, item := range b.Children {
		bullet := "- "
		if ordered {
			bullet = fmt.Sprintf("%d. ", i+1)
		}
		text := item.Content
		if item.Text != nil {
			text = *item.Text
		}
		w.pdf.SetX(left + indent)
		w.pdf.SetFont("Helvetica", "", 10)
		w.text(5, bullet+text, false)
		for _, c := range item.Children {
			if err := w.block(c, indent+6); err != nil {
				return err
			}
		}
	}
	w.pdf.Ln(3)
	return nil
}

func (w *pdfWriter) table(b core.BlockNode) {
	cols := 0
	for _, row := range b.Children {
		if len(row.Children) > cols {
			cols = len(row.Children)
		}
	}
	if cols == 0 {
		return
	}

	pageW, _ := w.pdf.GetPageSize()
	left, _, right, _ := w.pdf.GetMargins()
	cellW := (pageW - left - right) / float64(cols)

	for _, row := range b.Children {
		style := ""
		if row.Style != nil && *row.Style == "header" {
			style = "B"
		}
		w.pdf.SetFont("Helvetica", style, 9)
		for i := 0; i < cols; i++ {
			text := ""
			if i < len(row.Children) {
				text = strings.ReplaceAll(row.Children[i].Content, "\n", " ")
			}
			w.pdf.CellFormat(cellW, 6, w.tr(text), "1", 0, "L", false, 0, "")
		}
		w.pdf.Ln(-1)
	}
	w.pdf.Ln(3)
}

// htmlText reduces an HTML fragment to its whitespace-collapsed text.
func htmlText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing passthrough HTML: %w", err)
	}
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
