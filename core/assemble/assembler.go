// Package assemble builds the document IR from a parsed document.
package assemble

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
	"github.com/gaurav-prasanna/adocpipe/core/extract"
)

// DefaultNoisePattern matches paragraphs made only of layout punctuation.
const DefaultNoisePattern = `^[\s\-.:]*$`

// DefaultNoiseMaxLength is the longest paragraph that can count as noise.
const DefaultNoiseMaxLength = 3

// Options controls which top-level paragraphs are dropped as noise.
type Options struct {
	NoiseMaxLength int
	NoisePattern   *regexp.Regexp
}

// DefaultOptions returns the built-in noise rule.
func DefaultOptions() Options {
	return Options{
		NoiseMaxLength: DefaultNoiseMaxLength,
		NoisePattern:   regexp.MustCompile(DefaultNoisePattern),
	}
}

// CompileOptions builds Options from a configured pattern.
func CompileOptions(maxLength int, pattern string) (Options, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Options{}, fmt.Errorf("noise pattern: %w", err)
	}
	return Options{NoiseMaxLength: maxLength, NoisePattern: re}, nil
}

// DocumentAssembler wraps extracted blocks with document metadata.
type DocumentAssembler struct {
	opts      Options
	extractor *extract.BlockExtractor
}

// New creates a DocumentAssembler with the default noise rule.
func New() *DocumentAssembler {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a DocumentAssembler with a custom noise rule.
func NewWithOptions(opts Options) *DocumentAssembler {
	return &DocumentAssembler{opts: opts, extractor: extract.New()}
}

// Assemble converts doc into a DocumentIR. A document title becomes a
// level-0 heading ahead of the body blocks.
func (a *DocumentAssembler) Assemble(doc *core.Document) (*core.DocumentIR, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document: %w", extract.ErrMalformedTree)
	}

	ir := &core.DocumentIR{
		Attributes: doc.Attributes.Clone(),
		Blocks:     []core.BlockNode{},
	}

	if title, ok := doc.Doctitle(); ok {
		ir.Title = &title
		if doc.Header {
			ir.Blocks = append(ir.Blocks, titleHeading(title, doc.TitleLocation))
		}
	}

	skipped := 0
	for _, b := range doc.Blocks {
		node, err := a.extractor.Extract(b, 0)
		if err != nil {
			return nil, err
		}
		if b.Context == core.ContextParagraph && a.isNoise(node.Content) {
			skipped++
			continue
		}
		ir.Blocks = append(ir.Blocks, node)
	}

	log.Debug().
		Str("stage", "assemble").
		Int("blocks", len(ir.Blocks)).
		Int("skipped", skipped).
		Msg("document assembled")

	return ir, nil
}

// isNoise reports whether paragraph content is empty or short layout
// punctuation such as "---" or "::".
func (a *DocumentAssembler) isNoise(content string) bool {
	content = strings.TrimSpace(content)
	if content == "" {
		return true
	}
	if a.opts.NoisePattern == nil {
		return false
	}
	return utf8.RuneCountInString(content) <= a.opts.NoiseMaxLength && a.opts.NoisePattern.MatchString(content)
}

func titleHeading(title string, loc *core.Location) core.BlockNode {
	node := core.BlockNode{
		Context:      string(core.ContextHeading),
		ContentModel: string(core.ContentEmpty),
		Content:      title,
		Level:        0,
		Attributes:   core.Attributes{},
		Lines:        []string{"= " + title},
		Children:     []core.BlockNode{},
	}
	if loc != nil {
		node.SourceLocation = &core.SourceLocation{File: loc.File, Lineno: loc.Lineno, Path: loc.Path}
	}
	return node
}
