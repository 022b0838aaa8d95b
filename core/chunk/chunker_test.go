package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/adocpipe/core"
)

func TestChunk(t *testing.T) {
	c := New(3)
	assert.Equal(t, []string{"a b c", "d e"}, c.Chunk("a  b\nc d\te"))
	assert.Nil(t, c.Chunk("   "))
	assert.Equal(t, DefaultChunkSize, New(0).ChunkSize)
}

func node(ctx core.Context, content string, children ...core.BlockNode) core.BlockNode {
	return core.BlockNode{Context: string(ctx), Content: content, Children: children}
}

func TestChunkDocument(t *testing.T) {
	title := "Setup"
	section := node(core.ContextSection, "ignored",
		node(core.ContextParagraph, "install the tool"),
		node(core.ContextTable, "|A |B |",
			node(core.ContextTableRow, "", node(core.ContextTableCell, "A"), node(core.ContextTableCell, "B")),
		),
	)
	section.Title = &title

	doc := &core.DocumentIR{Blocks: []core.BlockNode{
		node(core.ContextHeading, "Guide"),
		node(core.ContextParagraph, "one two three four"),
		section,
		node(core.ContextUList, "x\ny",
			node(core.ContextListItem, "x", node(core.ContextParagraph, "attached")),
			node(core.ContextListItem, "y"),
		),
	}}

	chunks := New(3).ChunkDocument(doc)
	require.Len(t, chunks, 5)
	assert.Equal(t, Chunk{Heading: "Guide", Text: "one two three"}, chunks[0])
	assert.Equal(t, Chunk{Heading: "Guide", Text: "four"}, chunks[1])
	assert.Equal(t, Chunk{Heading: "Setup", Text: "install the tool"}, chunks[2])
	assert.Equal(t, Chunk{Heading: "Setup", Text: "A B x"}, chunks[3])
	assert.Equal(t, Chunk{Heading: "Setup", Text: "attached y"}, chunks[4])
}

func TestChunkDocument_Empty(t *testing.T) {
	assert.Nil(t, New(3).ChunkDocument(nil))
	assert.Empty(t, New(3).ChunkDocument(&core.DocumentIR{}))
}
