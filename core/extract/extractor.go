// Package extract projects parsed AsciiDoc blocks into IR block nodes.
// It:
//  1. Picks the block's text with a per-context strategy
//  2. Strips HTML-like tags from everything except code blocks
//  3. Copies metadata through and recurses into children, expanding
//     tables into synthetic row and cell nodes
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// ErrMalformedTree is returned when the block tree has an unexpected shape.
var ErrMalformedTree = errors.New("malformed block tree")

// contentStrategy chooses the text of a block.
type contentStrategy func(b *core.Block) (string, error)

// strategies maps every known context to its content strategy. Contexts
// missing from the table use fallbackContent.
var strategies = map[core.Context]contentStrategy{
	core.ContextListItem:   listItemContent,
	core.ContextParagraph:  proseContent,
	core.ContextSidebar:    proseContent,
	core.ContextExample:    proseContent,
	core.ContextQuote:      proseContent,
	core.ContextVerse:      proseContent,
	core.ContextLiteral:    proseContent,
	core.ContextAdmonition: proseContent,
	core.ContextListing:    listingContent,
	core.ContextTable:      tableContent,

	core.ContextSection:       fallbackContent,
	core.ContextHeading:       fallbackContent,
	core.ContextPreamble:      fallbackContent,
	core.ContextPass:          fallbackContent,
	core.ContextOpen:          fallbackContent,
	core.ContextUList:         fallbackContent,
	core.ContextOList:         fallbackContent,
	core.ContextImage:         fallbackContent,
	core.ContextThematicBreak: fallbackContent,
	core.ContextPageBreak:     fallbackContent,
}

func strategyFor(ctx core.Context) contentStrategy {
	if s, ok := strategies[ctx]; ok {
		return s
	}
	return fallbackContent
}

// isCode reports contexts whose content is source text, where "<" and ">"
// are meaningful.
func isCode(ctx core.Context) bool {
	return ctx == core.ContextListing || ctx == core.ContextLiteral
}

var (
	tagRegex        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripTags removes tag-like "<...>" runs and collapses whitespace. Text
// without both "<" and ">" is returned unchanged.
func StripTags(s string) string {
	if !strings.Contains(s, "<") || !strings.Contains(s, ">") {
		return s
	}
	s = tagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// BlockExtractor converts blocks into IR nodes. It holds no state, so one
// value can serve concurrent walks.
type BlockExtractor struct{}

// New creates a BlockExtractor.
func New() *BlockExtractor {
	return &BlockExtractor{}
}

// Extract converts b and its descendants. depth is the nesting depth of b
// and becomes its level unless b is a section or heading.
func (e *BlockExtractor) Extract(b *core.Block, depth int) (core.BlockNode, error) {
	if b == nil {
		return core.BlockNode{}, fmt.Errorf("nil block at depth %d: %w", depth, ErrMalformedTree)
	}

	content, err := strategyFor(b.Context)(b)
	if err != nil {
		return core.BlockNode{}, err
	}
	if !isCode(b.Context) {
		content = StripTags(content)
	}
	raw := content

	node := core.BlockNode{
		Context:      string(b.Context),
		ContentModel: string(b.ContentModel),
		Content:      content,
		Level:        resolveLevel(b, depth),
		Style:        core.OptionalString(b.Style),
		Title:        core.OptionalString(b.Title),
		ID:           core.OptionalString(b.ID),
		Attributes:   b.Attributes.Clone(),
		RawContent:   &raw,
		Lines:        blockLines(b),
	}
	if loc := b.Location; loc != nil {
		node.SourceLocation = &core.SourceLocation{File: loc.File, Lineno: loc.Lineno, Path: loc.Path}
	}

	if b.Context == core.ContextTable {
		node.Children, err = expandTable(b.Rows, depth)
	} else {
		node.Children, err = e.extractChildren(b.Blocks, depth+1)
	}
	if err != nil {
		return core.BlockNode{}, err
	}

	augment(&node, b)
	return node, nil
}

func (e *BlockExtractor) extractChildren(blocks []*core.Block, depth int) ([]core.BlockNode, error) {
	children := make([]core.BlockNode, 0, len(blocks))
	for _, child := range blocks {
		n, err := e.Extract(child, depth)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return children, nil
}

func resolveLevel(b *core.Block, depth int) int {
	switch b.Context {
	case core.ContextSection:
		return b.Level
	case core.ContextHeading:
		if b.Level == 0 {
			if v, ok := b.Attr("level"); ok {
				if n, err := strconv.Atoi(v); err == nil {
					return n
				}
			}
		}
		return b.Level
	}
	return depth
}

// blockLines prefers the block's own lines, then its source.
func blockLines(b *core.Block) []string {
	switch {
	case b.Lines != nil:
		return slices.Clone(b.Lines)
	case b.Source != nil:
		return slices.Clone(b.Source.Lines())
	}
	return nil
}

// augment adds the fields specific to admonitions, list items and code blocks.
func augment(n *core.BlockNode, b *core.Block) {
	switch b.Context {
	case core.ContextAdmonition:
		name := "NOTE"
		if v, ok := b.Attr("name"); ok {
			name = v
		} else if v, ok := b.Attr("style"); ok {
			name = v
		}
		n.AdmonitionName = &name
	case core.ContextListItem:
		n.Text = b.Text
		n.Marker = b.Marker
	case core.ContextListing, core.ContextLiteral:
		if v, ok := b.Attributes.Get("language"); ok && !v.IsNull() {
			n.Language = &v
		}
		if v, ok := b.Attributes.Get("linenums"); ok && !v.IsNull() {
			n.Linenums = &v
		}
	}
}

func listItemContent(b *core.Block) (string, error) {
	if b.Text != nil {
		return *b.Text, nil
	}
	return "", nil
}

func proseContent(b *core.Block) (string, error) {
	switch {
	case len(b.Lines) > 0:
		return strings.Join(b.Lines, "\n"), nil
	case b.Source != nil:
		return b.Source.String(), nil
	case b.Content != nil:
		return *b.Content, nil
	}
	return "", nil
}

func listingContent(b *core.Block) (string, error) {
	switch {
	case b.Source != nil:
		return b.Source.String(), nil
	case b.Lines != nil:
		return strings.Join(b.Lines, "\n"), nil
	}
	return "", nil
}

func fallbackContent(b *core.Block) (string, error) {
	switch {
	case b.Source != nil:
		return b.Source.String(), nil
	case len(b.Lines) > 0:
		return strings.Join(b.Lines, "\n"), nil
	case b.Content != nil:
		return *b.Content, nil
	case b.Text != nil:
		return *b.Text, nil
	}
	return "", nil
}
