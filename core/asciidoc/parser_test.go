package asciidoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/adocpipe/core"
)

func parse(t *testing.T, src string) *core.Document {
	t.Helper()
	doc, err := New().Parse(src)
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc
}

func attr(t *testing.T, attrs core.Attributes, key string) string {
	t.Helper()
	v, ok := attrs.Lookup(key)
	require.True(t, ok, "attribute %q missing", key)
	return v
}

func TestParse_Header(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		"= User Guide",
		"Jane Q Doe <jane@example.com>",
		"v2.1, 2024-05-06: Second edition",
		":toc: left",
		":experimental:",
		"",
		"Body text.",
	}, "\n"))

	assert.True(t, doc.Header)
	assert.Equal(t, "User Guide", doc.Title)
	assert.Equal(t, "User Guide", attr(t, doc.Attributes, "doctitle"))
	assert.Equal(t, "Jane Q Doe", attr(t, doc.Attributes, "author"))
	assert.Equal(t, "Jane", attr(t, doc.Attributes, "firstname"))
	assert.Equal(t, "Q", attr(t, doc.Attributes, "middlename"))
	assert.Equal(t, "Doe", attr(t, doc.Attributes, "lastname"))
	assert.Equal(t, "JD", attr(t, doc.Attributes, "authorinitials"))
	assert.Equal(t, "jane@example.com", attr(t, doc.Attributes, "email"))
	assert.Equal(t, "2.1", attr(t, doc.Attributes, "revnumber"))
	assert.Equal(t, "2024-05-06", attr(t, doc.Attributes, "revdate"))
	assert.Equal(t, "Second edition", attr(t, doc.Attributes, "revremark"))
	assert.Equal(t, "left", attr(t, doc.Attributes, "toc"))
	assert.Equal(t, "", attr(t, doc.Attributes, "experimental"))

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, core.ContextParagraph, doc.Blocks[0].Context)
	require.NotNil(t, doc.TitleLocation)
	assert.Equal(t, 1, doc.TitleLocation.Lineno)
}

func TestParse_HeaderEndsAtBodyLine(t *testing.T) {
	doc := parse(t, "= Report\nHello world\n")
	assert.Equal(t, "Report", doc.Title)
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, []string{"Hello world"}, doc.Blocks[0].Lines)
	assert.False(t, doc.Attributes.Has("author"))
}

func TestParse_DatedProseAfterTitleStaysBody(t *testing.T) {
	doc := parse(t, "= Report\nShipped on 2024-05-01 to all customers.\n\nMore.\n")
	assert.False(t, doc.Attributes.Has("revdate"))
	assert.False(t, doc.Attributes.Has("revnumber"))
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, []string{"Shipped on 2024-05-01 to all customers."}, doc.Blocks[0].Lines)
	assert.Equal(t, []string{"More."}, doc.Blocks[1].Lines)
}

func TestParse_RevisionLineShapes(t *testing.T) {
	tests := []struct {
		line     string
		revision bool
	}{
		{"v1.0", true},
		{"v2.1, 2024-05-06: Second edition", true},
		{"1.4, 2023-01-02", true},
		{"2024-05-06", true},
		{"2024-05-06: Draft", true},
		{"Shipped on 2024-05-01 to all customers.", false},
		{"2024-05-06 was a good day", false},
		{"v2 of the API", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.revision, revisionRegex.MatchString(tt.line))
		})
	}
}

func TestParse_SeededAttributes(t *testing.T) {
	seed := core.Attributes{
		"experimental": core.Bool(true),
		"toc":          core.String("left"),
	}
	doc, err := NewWithOptions(Options{SourceMap: true, Attributes: seed}).Parse("= T\n:toc: right\n\ntext\n")
	require.NoError(t, err)

	assert.Equal(t, core.Bool(true), doc.Attributes["experimental"])
	assert.Equal(t, "right", attr(t, doc.Attributes, "toc"))
	assert.Equal(t, core.String("left"), seed["toc"])
}

func TestParse_NoHeader(t *testing.T) {
	doc := parse(t, "First paragraph\nstill first.\n\nSecond.\n")
	assert.False(t, doc.Header)
	assert.Equal(t, "", doc.Title)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, []string{"First paragraph", "still first."}, doc.Blocks[0].Lines)
	assert.Equal(t, "First paragraph\nstill first.", doc.Blocks[0].Source.String())
	assert.Equal(t, 4, doc.Blocks[1].Location.Lineno)
}

func TestParse_UnsetAttribute(t *testing.T) {
	doc := parse(t, "= T\n:a: 1\n:a!:\n\ntext\n")
	assert.False(t, doc.Attributes.Has("a"))
}

func TestParse_Sections(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		"= Doc",
		"",
		"== Intro",
		"",
		"Intro text.",
		"",
		"=== Detail",
		"",
		"Detail text.",
		"",
		"== Next",
		"",
		"Next text.",
	}, "\n"))

	require.Len(t, doc.Blocks, 2)
	intro := doc.Blocks[0]
	assert.Equal(t, core.ContextSection, intro.Context)
	assert.Equal(t, "Intro", intro.Title)
	assert.Equal(t, 1, intro.Level)
	assert.Equal(t, "_intro", intro.ID)
	require.Len(t, intro.Blocks, 2)
	assert.Equal(t, core.ContextParagraph, intro.Blocks[0].Context)

	detail := intro.Blocks[1]
	assert.Equal(t, core.ContextSection, detail.Context)
	assert.Equal(t, 2, detail.Level)
	assert.Equal(t, "Detail text.", *detail.Content)

	assert.Equal(t, "Next", doc.Blocks[1].Title)
	assert.Equal(t, 11, doc.Blocks[1].Location.Lineno)
}

func TestParse_DuplicateSectionIDs(t *testing.T) {
	doc := parse(t, "== Setup\n\na\n\n== Setup\n\nb\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "_setup", doc.Blocks[0].ID)
	assert.Equal(t, "_setup_2", doc.Blocks[1].ID)
}

func TestParse_SectionMetadataStaysWithSection(t *testing.T) {
	doc := parse(t, "== One\n\ntext\n\n[[custom]]\n== Two\n\nmore\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "custom", doc.Blocks[1].ID)
}

func TestParse_DiscreteHeading(t *testing.T) {
	doc := parse(t, "[discrete]\n=== Aside\n\ntext\n")
	require.Len(t, doc.Blocks, 2)
	h := doc.Blocks[0]
	assert.Equal(t, core.ContextHeading, h.Context)
	assert.Equal(t, 2, h.Level)
	assert.Equal(t, "Aside", *h.Content)
	assert.Empty(t, h.Blocks)
}

func TestParse_SourceListing(t *testing.T) {
	doc := parse(t, "[source,go,linenums]\n.Example\n----\nfunc main() {\n\tfmt.Println(\"<tag>\")\n}\n----\n")
	require.Len(t, doc.Blocks, 1)
	b := doc.Blocks[0]
	assert.Equal(t, core.ContextListing, b.Context)
	assert.Equal(t, core.ContentVerbatim, b.ContentModel)
	assert.Equal(t, "source", b.Style)
	assert.Equal(t, "Example", b.Title)
	assert.Equal(t, "go", attr(t, b.Attributes, "language"))
	assert.True(t, b.Attributes.Has("linenums"))
	assert.Equal(t, "func main() {\n\tfmt.Println(\"<tag>\")\n}", b.Source.String())
	assert.Len(t, b.Lines, 3)
}

func TestParse_LiteralBlocks(t *testing.T) {
	doc := parse(t, "....\nkeep   spacing\n....\n\n  indented\n    more\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, core.ContextLiteral, doc.Blocks[0].Context)
	assert.Equal(t, "keep   spacing", *doc.Blocks[0].Content)
	assert.Equal(t, core.ContextLiteral, doc.Blocks[1].Context)
	assert.Equal(t, []string{"indented", "  more"}, doc.Blocks[1].Lines)
}

func TestParse_Admonitions(t *testing.T) {
	doc := parse(t, "WARNING: Hot surface.\n\n[TIP]\nUse gloves.\n\n[IMPORTANT]\n====\nInside.\n====\n")
	require.Len(t, doc.Blocks, 3)

	warn := doc.Blocks[0]
	assert.Equal(t, core.ContextAdmonition, warn.Context)
	assert.Equal(t, "WARNING", warn.Style)
	assert.Equal(t, "warning", attr(t, warn.Attributes, "name"))
	assert.Equal(t, []string{"Hot surface."}, warn.Lines)

	tip := doc.Blocks[1]
	assert.Equal(t, core.ContextAdmonition, tip.Context)
	assert.Equal(t, "Tip", attr(t, tip.Attributes, "textlabel"))

	imp := doc.Blocks[2]
	assert.Equal(t, core.ContextAdmonition, imp.Context)
	assert.Equal(t, core.ContentCompound, imp.ContentModel)
	require.Len(t, imp.Blocks, 1)
	assert.Equal(t, "Inside.", *imp.Content)
}

func TestParse_CompoundBlocks(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		".Side",
		"****",
		"Sidebar text.",
		"",
		"----",
		"code",
		"----",
		"****",
		"",
		"[quote, Ada Lovelace, Notes]",
		"____",
		"Quoted.",
		"____",
		"",
		"[verse, Poet]",
		"____",
		"Line one",
		"  line two",
		"____",
		"",
		"++++",
		"<p>raw</p>",
		"++++",
		"",
		"--",
		"Open.",
		"--",
	}, "\n"))

	require.Len(t, doc.Blocks, 5)

	side := doc.Blocks[0]
	assert.Equal(t, core.ContextSidebar, side.Context)
	assert.Equal(t, "Side", side.Title)
	require.Len(t, side.Blocks, 2)
	assert.Equal(t, core.ContextListing, side.Blocks[1].Context)
	assert.Nil(t, side.Lines)

	quote := doc.Blocks[1]
	assert.Equal(t, core.ContextQuote, quote.Context)
	assert.Equal(t, "Ada Lovelace", attr(t, quote.Attributes, "attribution"))
	assert.Equal(t, "Notes", attr(t, quote.Attributes, "citetitle"))

	verse := doc.Blocks[2]
	assert.Equal(t, core.ContextVerse, verse.Context)
	assert.Equal(t, []string{"Line one", "  line two"}, verse.Lines)

	pass := doc.Blocks[3]
	assert.Equal(t, core.ContextPass, pass.Context)
	assert.Equal(t, core.ContentRaw, pass.ContentModel)

	assert.Equal(t, core.ContextOpen, doc.Blocks[4].Context)
}

func TestParse_Lists(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		"* one",
		"* two",
		"continued",
		"** nested a",
		"** nested b",
		"* three",
		"+",
		"Attached paragraph.",
		"",
		". first",
		". second",
	}, "\n"))

	require.Len(t, doc.Blocks, 2)
	ul := doc.Blocks[0]
	assert.Equal(t, core.ContextUList, ul.Context)
	require.Len(t, ul.Blocks, 3)

	two := ul.Blocks[1]
	assert.Equal(t, core.ContextListItem, two.Context)
	assert.Equal(t, "two\ncontinued", *two.Text)
	assert.Equal(t, "*", *two.Marker)
	require.Len(t, two.Blocks, 1)
	nested := two.Blocks[0]
	assert.Equal(t, core.ContextUList, nested.Context)
	require.Len(t, nested.Blocks, 2)
	assert.Equal(t, "**", *nested.Blocks[0].Marker)

	three := ul.Blocks[2]
	require.Len(t, three.Blocks, 1)
	assert.Equal(t, core.ContextParagraph, three.Blocks[0].Context)
	assert.Equal(t, "three\nAttached paragraph.", *three.Content)

	ol := doc.Blocks[1]
	assert.Equal(t, core.ContextOList, ol.Context)
	assert.Equal(t, "arabic", ol.Style)
	assert.Len(t, ol.Blocks, 2)
}

func TestParse_ListItemBracketedText(t *testing.T) {
	doc := parse(t, "* item one\n[see docs]\n* item two\n")
	require.Len(t, doc.Blocks, 1)
	items := doc.Blocks[0].Blocks
	require.Len(t, items, 2)
	assert.Equal(t, "item one\n[see docs]", *items[0].Text)
	assert.Equal(t, "item two", *items[1].Text)

	doc = parse(t, "* item\n[source,go]\n----\ncode\n----\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "item", *doc.Blocks[0].Blocks[0].Text)
	listing := doc.Blocks[1]
	assert.Equal(t, core.ContextListing, listing.Context)
	assert.Equal(t, "go", attr(t, listing.Attributes, "language"))
}

func TestParse_Table(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		".Sizes",
		"|===",
		"|A |B",
		"",
		"|1 |2",
		"|3 |4",
		"|===",
	}, "\n"))

	require.Len(t, doc.Blocks, 1)
	tbl := doc.Blocks[0]
	assert.Equal(t, core.ContextTable, tbl.Context)
	assert.Equal(t, "Sizes", tbl.Title)
	require.NotNil(t, tbl.Rows)
	require.Len(t, tbl.Rows.Head, 1)
	assert.Equal(t, "A", tbl.Rows.Head[0][0].Text)
	assert.Equal(t, "B", tbl.Rows.Head[0][1].Text)
	require.Len(t, tbl.Rows.Body, 2)
	assert.Equal(t, "4", tbl.Rows.Body[1][1].Text)

	n, ok := tbl.Attributes["colcount"].Integer()
	require.True(t, ok)
	assert.EqualValues(t, 2, n)
	n, _ = tbl.Attributes["rowcount"].Integer()
	assert.EqualValues(t, 3, n)
}

func TestParse_TableColsAndCellPerLine(t *testing.T) {
	doc := parse(t, strings.Join([]string{
		`[cols="2*,1",options="header"]`,
		"|===",
		"|Name",
		"|Kind",
		"|Size",
		"|a.txt",
		"|file",
		"|12",
		"|===",
	}, "\n"))

	tbl := doc.Blocks[0]
	require.Len(t, tbl.Rows.Head, 1)
	assert.Equal(t, []string{"Name", "Kind", "Size"}, cellTexts(tbl.Rows.Head[0]))
	require.Len(t, tbl.Rows.Body, 1)
	assert.Equal(t, []string{"a.txt", "file", "12"}, cellTexts(tbl.Rows.Body[0]))
}

func TestParse_TableNoHeader(t *testing.T) {
	doc := parse(t, "[%noheader]\n|===\n|x |y\n\n|z |w\n|===\n")
	tbl := doc.Blocks[0]
	assert.Empty(t, tbl.Rows.Head)
	assert.Len(t, tbl.Rows.Body, 2)
}

func TestParse_ImageAndBreaks(t *testing.T) {
	doc := parse(t, "image::images/team-photo.png[]\n\n'''\n\n<<<\n\nimage::logo.svg[Logo,200,100]\n")
	require.Len(t, doc.Blocks, 4)
	img := doc.Blocks[0]
	assert.Equal(t, core.ContextImage, img.Context)
	assert.Equal(t, "team photo", attr(t, img.Attributes, "alt"))
	assert.Equal(t, core.ContextThematicBreak, doc.Blocks[1].Context)
	assert.Equal(t, core.ContextPageBreak, doc.Blocks[2].Context)
	assert.Equal(t, "Logo", attr(t, doc.Blocks[3].Attributes, "alt"))
	assert.Equal(t, "200", attr(t, doc.Blocks[3].Attributes, "width"))
}

func TestParse_CommentsAreDropped(t *testing.T) {
	doc := parse(t, "// note\ntext\n\n////\nhidden\n////\n\nmore\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, []string{"text"}, doc.Blocks[0].Lines)
}

func TestParse_BlockAttributeShorthand(t *testing.T) {
	doc := parse(t, "[#intro.lead%hardbreaks]\nHello\n")
	b := doc.Blocks[0]
	assert.Equal(t, "intro", b.ID)
	assert.Equal(t, "lead", attr(t, b.Attributes, "role"))
	assert.True(t, b.Attributes.Has("hardbreaks-option"))
	assert.Equal(t, "", b.Style)
}

func TestParse_SourceMapOff(t *testing.T) {
	doc, err := NewWithOptions(Options{SourceMap: false}).Parse("= T\n\ntext\n")
	require.NoError(t, err)
	assert.Nil(t, doc.TitleLocation)
	assert.Nil(t, doc.Blocks[0].Location)
}

func TestParse_UnterminatedBlocksCloseAtEnd(t *testing.T) {
	doc := parse(t, "text\n\n----\ncode\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, core.ContextListing, doc.Blocks[1].Context)
	assert.Equal(t, []string{"code"}, doc.Blocks[1].Lines)
	assert.Equal(t, 3, doc.Blocks[1].Location.Lineno)

	doc = parse(t, "= Doc\n\nSome text\n\n----\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, core.ContextListing, doc.Blocks[1].Context)
	assert.Equal(t, []string{}, doc.Blocks[1].Lines)

	doc = parse(t, "****\ninside\n")
	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, core.ContextSidebar, doc.Blocks[0].Context)
	require.Len(t, doc.Blocks[0].Blocks, 1)
	assert.Equal(t, []string{"inside"}, doc.Blocks[0].Blocks[0].Lines)

	doc = parse(t, "Notes\n\n====\n")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, core.ContextExample, doc.Blocks[1].Context)
	assert.Empty(t, doc.Blocks[1].Blocks)

	doc = parse(t, "|===\n|a\n")
	require.Len(t, doc.Blocks, 1)
	require.NotNil(t, doc.Blocks[0].Rows)
	require.Len(t, doc.Blocks[0].Rows.Body, 1)
	assert.Equal(t, []string{"a"}, cellTexts(doc.Blocks[0].Rows.Body[0]))

	doc = parse(t, "////\nnever closed\n")
	assert.Empty(t, doc.Blocks)
}

func TestParse_InvalidEncoding(t *testing.T) {
	_, err := New().Parse("bad \xff byte")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func cellTexts(row []*core.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.Text
	}
	return out
}
