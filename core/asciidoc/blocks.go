package asciidoc

import (
	"math"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

var (
	sectionRegex       = regexp.MustCompile(`^(={1,6})\s+(\S.*?)\s*$`)
	blockTitleRegex    = regexp.MustCompile(`^\.([^\s.].*)$`)
	anchorRegex        = regexp.MustCompile(`^\[\[([A-Za-z_:][\w:.-]*)(?:,\s*(.+))?\]\]$`)
	imageRegex         = regexp.MustCompile(`^image::([^\[\s]+)\[(.*)\]$`)
	admonitionRegex    = regexp.MustCompile(`^(NOTE|TIP|IMPORTANT|WARNING|CAUTION):\s+(.*)$`)
	delimiterRegex     = regexp.MustCompile(`^(-{4,}|\.{4,}|\*{4,}|={4,}|_{4,}|\+{4,}|--)$`)
	tableDelimiterRgx  = regexp.MustCompile(`^\|={3,}$`)
	olistStyles        = []string{"arabic", "loweralpha", "lowerroman", "upperalpha", "upperroman"}
	admonitionLabels   = map[string]string{"NOTE": "Note", "TIP": "Tip", "IMPORTANT": "Important", "WARNING": "Warning", "CAUTION": "Caution"}
	noSectionsInsideLv = math.MaxInt32
)

func isAttrListLine(line string) bool {
	return len(line) >= 2 && line[0] == '[' && line[len(line)-1] == ']' && !strings.HasPrefix(line, "[[")
}

func isDelimiter(line string) bool {
	return delimiterRegex.MatchString(line) || tableDelimiterRgx.MatchString(line) || isCommentBlockDelimiter(line)
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// parseBlocks reads blocks until the end of input, until the line equal to
// until (which is consumed), or until a section title at or above
// sectionLevel. It reports whether the until line was found.
func (s *parseState) parseBlocks(until string, sectionLevel int) ([]*core.Block, bool) {
	var blocks []*core.Block
	meta := &blockMeta{}
	metaStart := -1

	for {
		line, ok := s.r.peek()
		if !ok {
			return blocks, false
		}
		if until != "" && line == until {
			s.r.next()
			return blocks, true
		}

		switch {
		case isBlank(line):
			s.r.next()
			continue
		case isCommentBlockDelimiter(line):
			s.skipCommentBlock()
			continue
		case isCommentLine(line):
			s.r.next()
			continue
		case meta.empty() && attrEntryRegex.MatchString(line):
			s.r.next()
			s.setAttribute(line)
			continue
		}

		if s.readMeta(line, meta) {
			if metaStart < 0 {
				metaStart = s.r.pos
			}
			s.r.next()
			continue
		}

		if m := sectionRegex.FindStringSubmatch(line); m != nil {
			level := len(m[1]) - 1
			if until == "" && meta.style != "discrete" && meta.style != "float" {
				if level <= sectionLevel {
					// The section belongs to an ancestor; leave its metadata for it.
					if metaStart >= 0 {
						s.r.pos = metaStart
					}
					return blocks, false
				}
				blocks = append(blocks, s.parseSection(meta, level, m[2]))
			} else {
				blocks = append(blocks, s.newHeading(meta, level, m[2]))
			}
			meta, metaStart = &blockMeta{}, -1
			continue
		}

		if b := s.parseBlock(meta); b != nil {
			blocks = append(blocks, b)
		}
		meta, metaStart = &blockMeta{}, -1
	}
}

// readMeta consumes anchors, attribute lists and block titles into meta.
func (s *parseState) readMeta(line string, meta *blockMeta) bool {
	if m := anchorRegex.FindStringSubmatch(line); m != nil {
		meta.id = m[1]
		if m[2] != "" {
			if meta.attrs == nil {
				meta.attrs = core.Attributes{}
			}
			meta.attrs["reftext"] = core.String(m[2])
		}
		return true
	}
	if isAttrListLine(line) {
		parseAttrList(line[1:len(line)-1], meta)
		return true
	}
	if m := blockTitleRegex.FindStringSubmatch(line); m != nil {
		meta.title = m[1]
		return true
	}
	return false
}

func (s *parseState) newBlock(ctx core.Context, model core.ContentModel, meta *blockMeta, line int) *core.Block {
	return &core.Block{
		Context:      ctx,
		ContentModel: model,
		Title:        meta.title,
		ID:           meta.id,
		Attributes:   meta.attributes(),
		Location:     s.location(line),
	}
}

func (s *parseState) parseSection(meta *blockMeta, level int, title string) *core.Block {
	sec := s.newBlock(core.ContextSection, core.ContentCompound, meta, s.r.lineno())
	s.r.next()
	sec.Style = meta.style
	sec.Title = title
	sec.Level = level
	if sec.ID == "" {
		sec.ID = s.generateID(title)
	} else {
		s.uniqueID(sec.ID)
	}

	sec.Blocks, _ = s.parseBlocks("", level)
	sec.Content = compoundContent(sec.Blocks)
	return sec
}

// newHeading builds a discrete heading. It is never a container.
func (s *parseState) newHeading(meta *blockMeta, level int, title string) *core.Block {
	h := s.newBlock(core.ContextHeading, core.ContentEmpty, meta, s.r.lineno())
	s.r.next()
	h.Style = meta.style
	h.Title = title
	h.Level = level
	if h.ID == "" {
		h.ID = s.generateID(title)
	}
	text := title
	h.Content = &text
	return h
}

// parseBlock parses the single block starting at the current line.
func (s *parseState) parseBlock(meta *blockMeta) *core.Block {
	line, _ := s.r.peek()
	start := s.r.lineno()

	switch {
	case tableDelimiterRgx.MatchString(line):
		return s.parseTable(meta)
	case delimiterRegex.MatchString(line):
		return s.parseDelimited(meta)
	case line == "'''":
		s.r.next()
		return s.newBlock(core.ContextThematicBreak, core.ContentEmpty, meta, start)
	case line == "<<<":
		s.r.next()
		return s.newBlock(core.ContextPageBreak, core.ContentEmpty, meta, start)
	case imageRegex.MatchString(line):
		s.r.next()
		return s.newImage(meta, imageRegex.FindStringSubmatch(line), start)
	}

	if _, ok := matchListItem(line); ok {
		return s.parseList(meta)
	}

	if m := admonitionRegex.FindStringSubmatch(line); m != nil && meta.style == "" {
		s.r.next()
		lines := append([]string{m[2]}, s.readParagraphLines()...)
		b := s.simpleBlock(meta, lines, start)
		asAdmonition(b, m[1])
		return b
	}

	if line[0] == ' ' || line[0] == '\t' {
		lines := dedent(s.readParagraphLines())
		b := s.simpleBlock(meta, lines, start)
		if meta.style == "" {
			b.Context = core.ContextLiteral
			b.ContentModel = core.ContentVerbatim
			b.Style = "literal"
			return b
		}
		s.styleParagraph(b, meta)
		return b
	}

	b := s.simpleBlock(meta, s.readParagraphLines(), start)
	s.styleParagraph(b, meta)
	return b
}

// readParagraphLines consumes lines up to a blank line, a delimiter or the
// end of input. Inside lists a continuation marker or a new item also ends
// the paragraph.
func (s *parseState) readParagraphLines() []string {
	var lines []string
	inList := len(s.listMarkers) > 0
	for {
		line, ok := s.r.peek()
		if !ok || isBlank(line) || isDelimiter(line) {
			return lines
		}
		if len(lines) > 0 && inList {
			if line == "+" {
				return lines
			}
			if _, item := matchListItem(line); item {
				return lines
			}
		}
		s.r.next()
		if isCommentLine(line) {
			continue
		}
		lines = append(lines, line)
	}
}

func (s *parseState) simpleBlock(meta *blockMeta, lines []string, start int) *core.Block {
	b := s.newBlock(core.ContextParagraph, core.ContentSimple, meta, start)
	text := strings.Join(lines, "\n")
	b.Lines = lines
	b.Source = core.ScalarSource(text)
	b.Content = &text
	return b
}

// styleParagraph re-types a paragraph according to its declared style.
func (s *parseState) styleParagraph(b *core.Block, meta *blockMeta) {
	style := meta.style
	switch {
	case admonitionLabels[style] != "":
		asAdmonition(b, style)
	case style == "source" || style == "listing":
		b.Context = core.ContextListing
		b.ContentModel = core.ContentVerbatim
		b.Style = style
		s.applySource(b, meta)
	case style == "literal":
		b.Context = core.ContextLiteral
		b.ContentModel = core.ContentVerbatim
		b.Style = style
	case style == "quote":
		b.Context = core.ContextQuote
		b.Style = style
		applyAttribution(b, meta)
	case style == "verse":
		b.Context = core.ContextVerse
		b.ContentModel = core.ContentVerbatim
		b.Style = style
		applyAttribution(b, meta)
	case style == "pass":
		b.Context = core.ContextPass
		b.ContentModel = core.ContentRaw
		b.Style = style
	case style == "sidebar":
		b.Context = core.ContextSidebar
		b.Style = style
	case style == "example":
		b.Context = core.ContextExample
		b.Style = style
	case style == "normal":
	default:
		b.Style = style
	}
}

func asAdmonition(b *core.Block, style string) {
	b.Context = core.ContextAdmonition
	b.Style = style
	b.Attributes["name"] = core.String(strings.ToLower(style))
	b.Attributes["textlabel"] = core.String(admonitionLabels[style])
}

// applySource records the language and line numbering of source blocks.
func (s *parseState) applySource(b *core.Block, meta *blockMeta) {
	lang := meta.positionalAt(2)
	if lang == "" {
		lang, _ = b.Attributes.Lookup("language")
	}
	if lang == "" && b.Style == "source" {
		lang, _ = s.doc.Attributes.Lookup("source-language")
	}
	if lang != "" {
		b.Attributes["language"] = core.String(lang)
	}
	if meta.positionalAt(3) == "linenums" || meta.hasOption("linenums") {
		b.Attributes["linenums"] = core.String("")
	}
}

func applyAttribution(b *core.Block, meta *blockMeta) {
	if a := meta.positionalAt(2); a != "" {
		b.Attributes["attribution"] = core.String(a)
	}
	if c := meta.positionalAt(3); c != "" {
		b.Attributes["citetitle"] = core.String(c)
	}
}

// parseDelimited parses a delimited block other than tables and comments.
func (s *parseState) parseDelimited(meta *blockMeta) *core.Block {
	start := s.r.lineno()
	delim := s.r.next()

	switch {
	case delim == "--":
		return s.compoundBlock(meta, delim, start, core.ContextOpen, "open")
	case delim[0] == '-':
		return s.verbatimBlock(meta, delim, start, core.ContextListing, "listing")
	case delim[0] == '.':
		return s.verbatimBlock(meta, delim, start, core.ContextLiteral, "literal")
	case delim[0] == '*':
		return s.compoundBlock(meta, delim, start, core.ContextSidebar, "sidebar")
	case delim[0] == '=':
		return s.compoundBlock(meta, delim, start, core.ContextExample, "example")
	case delim[0] == '_':
		if meta.style == "verse" {
			return s.verbatimBlock(meta, delim, start, core.ContextVerse, "verse")
		}
		return s.compoundBlock(meta, delim, start, core.ContextQuote, "quote")
	default:
		return s.verbatimBlock(meta, delim, start, core.ContextPass, "pass")
	}
}

func (s *parseState) verbatimBlock(meta *blockMeta, delim string, start int, ctx core.Context, kind string) *core.Block {
	var lines []string
	for {
		line, ok := s.r.peek()
		if !ok {
			warnUnterminated(kind, start)
			break
		}
		s.r.next()
		if line == delim {
			break
		}
		lines = append(lines, line)
	}
	if lines == nil {
		lines = []string{}
	}

	model := core.ContentVerbatim
	if ctx == core.ContextPass {
		model = core.ContentRaw
	}
	b := s.newBlock(ctx, model, meta, start)
	text := strings.Join(lines, "\n")
	b.Lines = lines
	b.Source = core.ScalarSource(text)
	b.Content = &text

	b.Style = kind
	if meta.style != "" {
		b.Style = meta.style
	}
	switch {
	case ctx == core.ContextListing && meta.style == "literal":
		b.Context = core.ContextLiteral
	case ctx == core.ContextLiteral && meta.style == "source":
		b.Context = core.ContextListing
	}
	if b.Context == core.ContextListing {
		s.applySource(b, meta)
	}
	if b.Context == core.ContextVerse {
		applyAttribution(b, meta)
	}
	return b
}

func (s *parseState) compoundBlock(meta *blockMeta, delim string, start int, ctx core.Context, kind string) *core.Block {
	children, closed := s.parseBlocks(delim, noSectionsInsideLv)
	if !closed {
		warnUnterminated(kind, start)
	}

	b := s.newBlock(ctx, core.ContentCompound, meta, start)
	b.Blocks = children
	b.Content = compoundContent(children)
	b.Style = kind
	if meta.style != "" {
		b.Style = meta.style
	}
	if admonitionLabels[meta.style] != "" && (ctx == core.ContextExample || ctx == core.ContextOpen) {
		asAdmonition(b, meta.style)
	}
	if ctx == core.ContextQuote {
		applyAttribution(b, meta)
	}
	return b
}

func (s *parseState) newImage(meta *blockMeta, m []string, start int) *core.Block {
	b := s.newBlock(core.ContextImage, core.ContentEmpty, meta, start)
	b.Style = meta.style

	inner := &blockMeta{}
	parseAttrList(m[2], inner)
	for k, v := range inner.attrs {
		b.Attributes[k] = v
	}
	alt := inner.positionalAt(1)
	if alt == "" {
		alt = defaultAlt(m[1])
	}
	b.Attributes["target"] = core.String(m[1])
	b.Attributes["alt"] = core.String(alt)
	if w := inner.positionalAt(2); w != "" {
		b.Attributes["width"] = core.String(w)
	}
	if h := inner.positionalAt(3); h != "" {
		b.Attributes["height"] = core.String(h)
	}
	return b
}

// defaultAlt derives alt text from an image file name.
func defaultAlt(target string) string {
	name := target
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(name)
}

// dedent removes the indentation common to all non-blank lines.
func dedent(lines []string) []string {
	indent := -1
	for _, l := range lines {
		if isBlank(l) {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			out[i] = l[indent:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

// blockText is the plain text a block contributes to its parent's content.
func blockText(b *core.Block) string {
	switch {
	case b.Content != nil:
		return *b.Content
	case b.Text != nil:
		return *b.Text
	}
	return ""
}

// compoundContent joins the text of child blocks.
func compoundContent(children []*core.Block) *string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if t := blockText(c); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(parts, "\n")
	return &text
}
