package core

import "strings"

// Context tags the kind of a parsed block.
type Context string

const (
	ContextSection       Context = "section"
	ContextHeading       Context = "heading"
	ContextPreamble      Context = "preamble"
	ContextParagraph     Context = "paragraph"
	ContextListing       Context = "listing"
	ContextLiteral       Context = "literal"
	ContextSidebar       Context = "sidebar"
	ContextExample       Context = "example"
	ContextQuote         Context = "quote"
	ContextVerse         Context = "verse"
	ContextAdmonition    Context = "admonition"
	ContextPass          Context = "pass"
	ContextOpen          Context = "open"
	ContextUList         Context = "ulist"
	ContextOList         Context = "olist"
	ContextListItem      Context = "list_item"
	ContextTable         Context = "table"
	ContextTableRow      Context = "table_row"
	ContextTableCell     Context = "table_cell"
	ContextImage         Context = "image"
	ContextThematicBreak Context = "thematic_break"
	ContextPageBreak     Context = "page_break"
)

// ContentModel describes how a block holds its content.
type ContentModel string

const (
	ContentEmpty    ContentModel = "empty"
	ContentSimple   ContentModel = "simple"
	ContentCompound ContentModel = "compound"
	ContentVerbatim ContentModel = "verbatim"
	ContentRaw      ContentModel = "raw"
)

// Location is where a block starts in its source document.
type Location struct {
	File   string
	Lineno int
	Path   string
}

// Source is the raw text a block was parsed from, held either as one string
// or as a sequence of lines.
type Source struct {
	text  string
	lines []string
	multi bool
}

// ScalarSource wraps a single string.
func ScalarSource(text string) *Source {
	return &Source{text: text}
}

// LineSource wraps a line sequence.
func LineSource(lines []string) *Source {
	return &Source{lines: lines, multi: true}
}

// String returns the source text; line sequences are joined with "\n".
func (s *Source) String() string {
	if s.multi {
		return strings.Join(s.lines, "\n")
	}
	return s.text
}

// Lines returns the source as a line sequence. Scalar sources become a
// single-element sequence.
func (s *Source) Lines() []string {
	if s.multi {
		return s.lines
	}
	return []string{s.text}
}

// Cell is one table cell.
type Cell struct {
	Text string
}

// Rows is the row-group structure of a table. Each row is an ordered
// sequence of cells.
type Rows struct {
	Head [][]*Cell
	Body [][]*Cell
	Foot [][]*Cell
}

// Block is one node of a parsed document tree. Optional capabilities are
// nil when the block does not expose them.
type Block struct {
	Context      Context
	ContentModel ContentModel
	Style        string
	Title        string
	ID           string
	// Level is the section or heading depth; meaningful for those contexts only.
	Level      int
	Attributes Attributes

	Source  *Source
	Lines   []string
	Content *string

	// List item fields.
	Text   *string
	Marker *string

	Rows     *Rows
	Blocks   []*Block
	Location *Location
}

// Attr returns the named attribute rendered as a string.
func (b *Block) Attr(name string) (string, bool) {
	return b.Attributes.Lookup(name)
}

// Document is the root of a parsed tree.
type Document struct {
	Title string
	// Header reports whether the source carried a document header.
	Header     bool
	Attributes Attributes
	Blocks     []*Block
	// TitleLocation points at the "= Title" line when source maps are on.
	TitleLocation *Location
}

// Doctitle returns the document title, if any.
func (d *Document) Doctitle() (string, bool) {
	if d.Title == "" {
		return "", false
	}
	return d.Title, true
}
