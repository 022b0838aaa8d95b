package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/extract"
)

func paragraph(text string) *core.Block {
	return &core.Block{
		Context:      core.ContextParagraph,
		ContentModel: core.ContentSimple,
		Attributes:   core.Attributes{},
		Lines:        []string{text},
	}
}

func TestAssemble_TitleHeading(t *testing.T) {
	doc := &core.Document{
		Title:         "Report",
		Header:        true,
		Attributes:    core.Attributes{"doctype": core.String("article")},
		TitleLocation: &core.Location{File: "<content>", Lineno: 1, Path: "<content>"},
		Blocks:        []*core.Block{paragraph("Hello world")},
	}

	ir, err := New().Assemble(doc)
	require.NoError(t, err)

	require.NotNil(t, ir.Title)
	assert.Equal(t, "Report", *ir.Title)
	assert.Equal(t, core.String("article"), ir.Attributes["doctype"])
	require.Len(t, ir.Blocks, 2)

	head := ir.Blocks[0]
	assert.Equal(t, "heading", head.Context)
	assert.Equal(t, "empty", head.ContentModel)
	assert.Equal(t, "Report", head.Content)
	assert.Equal(t, 0, head.Level)
	assert.Equal(t, []string{"= Report"}, head.Lines)
	assert.Empty(t, head.Children)
	assert.NotNil(t, head.Children)
	assert.Nil(t, head.RawContent)
	assert.Equal(t, 1, head.SourceLocation.Lineno)

	assert.Equal(t, "paragraph", ir.Blocks[1].Context)
	assert.Equal(t, "Hello world", ir.Blocks[1].Content)
}

func TestAssemble_NoTitle(t *testing.T) {
	ir, err := New().Assemble(&core.Document{Blocks: []*core.Block{paragraph("text")}})
	require.NoError(t, err)
	assert.Nil(t, ir.Title)
	assert.NotNil(t, ir.Attributes)
	require.Len(t, ir.Blocks, 1)
	assert.Equal(t, "paragraph", ir.Blocks[0].Context)
}

func TestAssemble_NoiseParagraphs(t *testing.T) {
	tests := []struct {
		text string
		kept bool
	}{
		{"", false},
		{"   ", false},
		{"---", false},
		{"::", false},
		{". .", false},
		{"----", true},
		{"ok", true},
		{"a.", true},
		{"<br>", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ir, err := New().Assemble(&core.Document{Blocks: []*core.Block{paragraph(tt.text)}})
			require.NoError(t, err)
			if tt.kept {
				assert.Len(t, ir.Blocks, 1)
			} else {
				assert.Empty(t, ir.Blocks)
			}
		})
	}
}

func TestAssemble_NonParagraphsNeverSkipped(t *testing.T) {
	doc := &core.Document{Blocks: []*core.Block{
		{Context: core.ContextListing, Source: core.ScalarSource("")},
		{Context: core.ContextThematicBreak},
		{Context: core.ContextSidebar, Lines: []string{"-"}},
	}}

	ir, err := New().Assemble(doc)
	require.NoError(t, err)
	assert.Len(t, ir.Blocks, 3)
}

func TestAssemble_CustomNoiseRule(t *testing.T) {
	opts, err := CompileOptions(4, `^[\s\-]*$`)
	require.NoError(t, err)

	ir, err := NewWithOptions(opts).Assemble(&core.Document{Blocks: []*core.Block{
		paragraph("----"),
		paragraph("::"),
	}})
	require.NoError(t, err)
	require.Len(t, ir.Blocks, 1)
	assert.Equal(t, "::", ir.Blocks[0].Content)

	_, err = CompileOptions(3, "[")
	assert.Error(t, err)
}

func TestAssemble_MalformedTree(t *testing.T) {
	_, err := New().Assemble(nil)
	assert.ErrorIs(t, err, extract.ErrMalformedTree)

	_, err = New().Assemble(&core.Document{Blocks: []*core.Block{paragraph("a"), nil}})
	assert.ErrorIs(t, err, extract.ErrMalformedTree)
}
