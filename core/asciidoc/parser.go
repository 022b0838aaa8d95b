package asciidoc

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// DefaultDocName names in-memory sources in source locations.
const DefaultDocName = "<content>"

// Options control a parse.
type Options struct {
	// SourceMap records the source location of every block.
	SourceMap bool
	// DocName is reported as the file and path of source locations.
	DocName string
	// Attributes seed the document attributes. Entries in the document
	// override them.
	Attributes core.Attributes
}

// DefaultOptions returns source maps on and DefaultDocName.
func DefaultOptions() Options {
	return Options{SourceMap: true, DocName: DefaultDocName}
}

// Parser implements core.Parser.
type Parser struct {
	opts Options
}

// Ensure Parser implements the interface.
var _ core.Parser = (*Parser)(nil)

// New creates a Parser with DefaultOptions.
func New() *Parser {
	return &Parser{opts: DefaultOptions()}
}

// NewWithOptions creates a Parser with the given options.
func NewWithOptions(opts Options) *Parser {
	if opts.DocName == "" {
		opts.DocName = DefaultDocName
	}
	return &Parser{opts: opts}
}

// Parse reads AsciiDoc source into a document tree.
func (p *Parser) Parse(content string) (*core.Document, error) {
	if !utf8.ValidString(content) {
		return nil, ErrInvalidEncoding
	}

	attrs := p.opts.Attributes.Clone()
	attrs["doctype"] = core.String("article")
	st := &parseState{
		opts: p.opts,
		r:    newReader(content),
		doc:  &core.Document{Attributes: attrs},
		ids:  make(map[string]int),
	}

	st.parseHeader()
	blocks, _ := st.parseBlocks("", -1)
	st.doc.Blocks = blocks

	log.Debug().
		Str("stage", "parse").
		Bool("header", st.doc.Header).
		Int("blocks", len(blocks)).
		Msg("document parsed")

	return st.doc, nil
}

// reader walks source lines. Line terminators and trailing carriage
// returns are removed.
type reader struct {
	lines []string
	pos   int
}

func newReader(content string) *reader {
	if content == "" {
		return &reader{}
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return &reader{lines: lines}
}

func (r *reader) peek() (string, bool) {
	return r.peekAt(0)
}

// peekAt returns the line n positions past the one peek would return.
func (r *reader) peekAt(n int) (string, bool) {
	if r.pos+n >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos+n], true
}

func (r *reader) next() string {
	l := r.lines[r.pos]
	r.pos++
	return l
}

// lineno is the 1-based number of the line peek would return.
func (r *reader) lineno() int { return r.pos + 1 }

func (r *reader) skipBlank() {
	for r.pos < len(r.lines) && strings.TrimSpace(r.lines[r.pos]) == "" {
		r.pos++
	}
}

// parseState holds everything a single Parse call mutates.
type parseState struct {
	opts        Options
	r           *reader
	doc         *core.Document
	ids         map[string]int
	listMarkers []string
}

func (s *parseState) location(line int) *core.Location {
	if !s.opts.SourceMap {
		return nil
	}
	return &core.Location{File: s.opts.DocName, Lineno: line, Path: s.opts.DocName}
}

var (
	docTitleRegex  = regexp.MustCompile(`^=\s+(\S.*?)\s*$`)
	attrEntryRegex = regexp.MustCompile(`^:(!?[A-Za-z0-9_][A-Za-z0-9_-]*!?):(?:\s+(.*?))?\s*$`)
	authorRegex    = regexp.MustCompile(`^([A-Za-z][^<>;]*?)\s*<([^<>@\s]+@[^<>\s]+)>\s*$`)
	revisionRegex  = regexp.MustCompile(`^(?:v\d+(?:\.\d+)*|\d+(?:\.\d+)+|\d{4}-\d{2}-\d{2})(?:\s*[,:].*)?$`)
)

// parseHeader reads leading comments and attribute entries, then the
// optional document header. The header ends at the first blank line or the
// first line that is not an author, revision, attribute or comment line.
func (s *parseState) parseHeader() {
	for {
		s.r.skipBlank()
		line, ok := s.r.peek()
		if !ok {
			return
		}
		switch {
		case isCommentBlockDelimiter(line):
			s.skipCommentBlock()
			continue
		case isCommentLine(line):
			s.r.next()
			continue
		case attrEntryRegex.MatchString(line):
			s.r.next()
			s.setAttribute(line)
			continue
		}
		break
	}

	line, _ := s.r.peek()
	m := docTitleRegex.FindStringSubmatch(line)
	if m == nil {
		return
	}
	titleLine := s.r.lineno()
	s.r.next()
	s.doc.Title = m[1]
	s.doc.Header = true
	s.doc.TitleLocation = s.location(titleLine)
	s.doc.Attributes["doctitle"] = core.String(m[1])

	// 0: expecting author, 1: expecting revision, 2: attributes only.
	phase := 0
	for {
		line, ok := s.r.peek()
		if !ok || strings.TrimSpace(line) == "" {
			return
		}
		switch {
		case isCommentBlockDelimiter(line):
			s.skipCommentBlock()
		case isCommentLine(line):
			s.r.next()
		case attrEntryRegex.MatchString(line):
			s.r.next()
			s.setAttribute(line)
			phase = 2
		case phase == 0 && authorRegex.MatchString(line):
			s.r.next()
			a := authorRegex.FindStringSubmatch(line)
			s.setAuthor(a[1], a[2])
			phase = 1
		case phase <= 1 && revisionRegex.MatchString(strings.TrimSpace(line)):
			s.r.next()
			s.setRevision(strings.TrimSpace(line))
			phase = 2
		default:
			return
		}
	}
}

// setAttribute applies an attribute entry line to the document.
func (s *parseState) setAttribute(line string) {
	m := attrEntryRegex.FindStringSubmatch(line)
	if m == nil {
		return
	}
	name := m[1]
	if strings.HasPrefix(name, "!") || strings.HasSuffix(name, "!") {
		delete(s.doc.Attributes, strings.Trim(name, "!"))
		return
	}
	s.doc.Attributes[name] = core.String(m[2])
	if name == "author" {
		s.setAuthor(m[2], "")
	}
}

func (s *parseState) setAuthor(name, email string) {
	name = strings.TrimSpace(name)
	attrs := s.doc.Attributes
	attrs["author"] = core.String(name)

	parts := strings.Fields(name)
	if len(parts) > 0 {
		attrs["firstname"] = core.String(parts[0])
		initials := firstRune(parts[0])
		if len(parts) > 1 {
			last := parts[len(parts)-1]
			attrs["lastname"] = core.String(last)
			initials += firstRune(last)
		}
		if len(parts) > 2 {
			attrs["middlename"] = core.String(strings.Join(parts[1:len(parts)-1], " "))
		}
		attrs["authorinitials"] = core.String(strings.ToUpper(initials))
	}
	if email != "" {
		attrs["email"] = core.String(email)
	}
}

// setRevision parses "v1.2, 2024-01-01: remark".
func (s *parseState) setRevision(line string) {
	rest := line
	var number, date, remark string
	if i := strings.Index(rest, ":"); i >= 0 {
		remark = strings.TrimSpace(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.Index(rest, ","); i >= 0 {
		number = strings.TrimSpace(rest[:i])
		date = strings.TrimSpace(rest[i+1:])
	} else if strings.HasPrefix(rest, "v") {
		number = strings.TrimSpace(rest)
	} else {
		date = strings.TrimSpace(rest)
	}
	number = strings.TrimLeft(number, "vV")

	attrs := s.doc.Attributes
	if number != "" {
		attrs["revnumber"] = core.String(number)
	}
	if date != "" {
		attrs["revdate"] = core.String(date)
	}
	if remark != "" {
		attrs["revremark"] = core.String(remark)
	}
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

func isCommentLine(line string) bool {
	return strings.HasPrefix(line, "//") && !isCommentBlockDelimiter(line)
}

func isCommentBlockDelimiter(line string) bool {
	return len(line) >= 4 && strings.Trim(line, "/") == ""
}

func (s *parseState) skipCommentBlock() {
	start := s.r.lineno()
	delim := s.r.next()
	for {
		line, ok := s.r.peek()
		if !ok {
			warnUnterminated("comment", start)
			return
		}
		s.r.next()
		if line == delim {
			return
		}
	}
}

// generateID derives a section id the way AsciiDoc processors do by
// default: "_" prefix, lower case, non-word runs replaced by "_".
func (s *parseState) generateID(title string) string {
	var b strings.Builder
	b.WriteByte('_')
	sep := false
	for _, r := range strings.ToLower(title) {
		if r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= utf8.RuneSelf {
			b.WriteRune(r)
			sep = false
			continue
		}
		if !sep {
			b.WriteByte('_')
			sep = true
		}
	}
	id := strings.TrimRight(b.String(), "_")
	if id == "" {
		id = "_"
	}
	return s.uniqueID(id)
}

func (s *parseState) uniqueID(id string) string {
	n := s.ids[id]
	s.ids[id] = n + 1
	if n == 0 {
		return id
	}
	return fmt.Sprintf("%s_%d", id, n+1)
}
