// Package normalize implements the Normalizer interface.
// It makes AsciiDoc header parsing lenient by dropping blank lines that sit
// between the document title and the first line of body content, so the
// parser does not end the header early. Everything else passes through
// byte for byte.
package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Default author and revision line patterns.
const (
	DefaultAuthorPattern   = `^[A-Za-z].*<.*@.*>.*$`
	DefaultRevisionPattern = `^v\d+\.\d+.*\d{4}-\d{2}-\d{2}.*$`
)

// headerState drives the normalizer. Transitions only move forward.
type headerState int

const (
	seekingTitle headerState = iota
	inHeader
	inBody
)

var attributeRegex = regexp.MustCompile(`^:[^:]+:`)

// labeledParagraphRegex matches a block title such as ".Example".
var labeledParagraphRegex = regexp.MustCompile(`^\.[\w\s]+`)

// bodyPrefixes start section titles, delimited blocks, attribute lists and
// list items.
var bodyPrefixes = []string{"==", "----", "****", "|===", "++++", "[", "*"}

// Policy holds the patterns that recognise author and revision lines inside
// a header. A line matching any pattern stays part of the header.
type Policy struct {
	AuthorPatterns   []*regexp.Regexp
	RevisionPatterns []*regexp.Regexp
}

// DefaultPolicy returns the built-in author and revision patterns.
func DefaultPolicy() Policy {
	return Policy{
		AuthorPatterns:   []*regexp.Regexp{regexp.MustCompile(DefaultAuthorPattern)},
		RevisionPatterns: []*regexp.Regexp{regexp.MustCompile(DefaultRevisionPattern)},
	}
}

// CompilePolicy builds a Policy from pattern strings. An empty list keeps the
// corresponding default.
func CompilePolicy(authors, revisions []string) (Policy, error) {
	p := DefaultPolicy()
	if len(authors) > 0 {
		res, err := compileAll(authors)
		if err != nil {
			return Policy{}, fmt.Errorf("author pattern: %w", err)
		}
		p.AuthorPatterns = res
	}
	if len(revisions) > 0 {
		res, err := compileAll(revisions)
		if err != nil {
			return Policy{}, fmt.Errorf("revision pattern: %w", err)
		}
		p.RevisionPatterns = res
	}
	return p, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// HeaderNormalizer drops blank lines inside the document header.
type HeaderNormalizer struct {
	policy Policy
}

// New creates a HeaderNormalizer with the default policy.
func New() *HeaderNormalizer {
	return &HeaderNormalizer{policy: DefaultPolicy()}
}

// NewWithPolicy creates a HeaderNormalizer with custom header patterns.
func NewWithPolicy(p Policy) *HeaderNormalizer {
	return &HeaderNormalizer{policy: p}
}

// Normalize returns content with blank header lines removed. Line
// terminators of the kept lines are preserved.
func (n *HeaderNormalizer) Normalize(content string) string {
	lines := splitLines(content)
	var b strings.Builder
	b.Grow(len(content))

	state := seekingTitle
	dropped := 0

	for i, line := range lines {
		stripped := strings.TrimSpace(line)

		switch state {
		case seekingTitle:
			b.WriteString(line)
			if strings.HasPrefix(stripped, "= ") {
				state = inHeader
			} else if stripped != "" && !strings.HasPrefix(stripped, "//") {
				// The first significant line is not a title: nothing to repair.
				for _, rest := range lines[i+1:] {
					b.WriteString(rest)
				}
				return b.String()
			}

		case inHeader:
			switch {
			case stripped == "":
				dropped++
			case attributeRegex.MatchString(stripped), strings.HasPrefix(stripped, "//"):
				b.WriteString(line)
			case n.isAuthorOrRevision(stripped):
				b.WriteString(line)
			case isBodyStart(stripped):
				state = inBody
				b.WriteString(line)
			default:
				// Any other content, such as a plain paragraph, ends the header.
				state = inBody
				b.WriteString(line)
			}

		case inBody:
			b.WriteString(line)
		}
	}

	log.Debug().
		Str("stage", "normalize").
		Int("lines_in", len(lines)).
		Int("lines_out", len(lines)-dropped).
		Msg("header normalized")

	return b.String()
}

func (n *HeaderNormalizer) isAuthorOrRevision(line string) bool {
	for _, re := range n.policy.AuthorPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	for _, re := range n.policy.RevisionPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func isBodyStart(line string) bool {
	for _, p := range bodyPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return labeledParagraphRegex.MatchString(line)
}

// splitLines splits s after each "\n", keeping terminators. A trailing
// empty fragment is not returned.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
