package asciidoc

import (
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

var (
	ulistRegex = regexp.MustCompile(`^\s*(-|\*{1,5})\s+(\S.*)$`)
	olistRegex = regexp.MustCompile(`^\s*(\.{1,5}|\d+\.)\s+(\S.*)$`)
	digitDot   = regexp.MustCompile(`^\d+\.$`)
)

type listItemMatch struct {
	ctx    core.Context
	marker string
	text   string
}

func matchListItem(line string) (listItemMatch, bool) {
	if m := ulistRegex.FindStringSubmatch(line); m != nil {
		return listItemMatch{ctx: core.ContextUList, marker: m[1], text: m[2]}, true
	}
	if m := olistRegex.FindStringSubmatch(line); m != nil {
		return listItemMatch{ctx: core.ContextOList, marker: m[1], text: m[2]}, true
	}
	return listItemMatch{}, false
}

// markerKey groups explicit numbers ("1.", "2.") into one marker.
func markerKey(m listItemMatch) string {
	if digitDot.MatchString(m.marker) {
		return "1."
	}
	return m.marker
}

func (s *parseState) markerOpen(key string) bool {
	for _, k := range s.listMarkers {
		if k == key {
			return true
		}
	}
	return false
}

// parseList reads consecutive items sharing the first item's marker. An
// item with an unseen marker opens a nested list under the previous item;
// a marker owned by an enclosing list ends this one.
func (s *parseState) parseList(meta *blockMeta) *core.Block {
	line, _ := s.r.peek()
	first, _ := matchListItem(line)
	key := markerKey(first)

	list := s.newBlock(first.ctx, core.ContentCompound, meta, s.r.lineno())
	list.Style = meta.style
	if first.ctx == core.ContextOList && list.Style == "" {
		list.Style = olistStyles[0]
		if n := strings.Count(first.marker, "."); first.marker[0] == '.' && n <= len(olistStyles) {
			list.Style = olistStyles[n-1]
		}
	}

	s.listMarkers = append(s.listMarkers, key)
	defer func() { s.listMarkers = s.listMarkers[:len(s.listMarkers)-1] }()

	for {
		line, ok := s.r.peek()
		if !ok {
			break
		}
		if isBlank(line) {
			save := s.r.pos
			s.r.skipBlank()
			// Only an item of an open list continues across blank lines.
			next, ok := s.r.peek()
			if m, item := matchListItem(next); !ok || !item || !s.markerOpen(markerKey(m)) {
				s.r.pos = save
				break
			}
			continue
		}

		m, item := matchListItem(line)
		if !item {
			break
		}
		if k := markerKey(m); k == key && m.ctx == first.ctx {
			list.Blocks = append(list.Blocks, s.parseListItem(m))
			continue
		} else if s.markerOpen(k) || len(list.Blocks) == 0 {
			break
		}

		last := list.Blocks[len(list.Blocks)-1]
		last.Blocks = append(last.Blocks, s.parseList(&blockMeta{}))
		last.Content = itemContent(last)
	}

	list.Content = compoundContent(list.Blocks)
	return list
}

func (s *parseState) parseListItem(m listItemMatch) *core.Block {
	start := s.r.lineno()
	s.r.next()

	lines := []string{m.text}
	for {
		line, ok := s.r.peek()
		if !ok || isBlank(line) || isDelimiter(line) || line == "+" || s.metaForNextBlock(line) {
			break
		}
		if _, item := matchListItem(line); item {
			break
		}
		s.r.next()
		if isCommentLine(line) {
			continue
		}
		lines = append(lines, strings.TrimSpace(line))
	}

	text := strings.Join(lines, "\n")
	marker := m.marker
	item := &core.Block{
		Context:      core.ContextListItem,
		ContentModel: core.ContentCompound,
		Attributes:   core.Attributes{},
		Text:         &text,
		Marker:       &marker,
		Location:     s.location(start),
	}

	// "+" attaches the following block to the item.
	for {
		line, ok := s.r.peek()
		if !ok || line != "+" {
			break
		}
		s.r.next()
		if child := s.parseAttached(); child != nil {
			item.Blocks = append(item.Blocks, child)
		}
	}
	item.Content = itemContent(item)
	return item
}

// metaForNextBlock reports whether an attribute list line inside item text
// belongs to a block that starts on the following line.
func (s *parseState) metaForNextBlock(line string) bool {
	if !isAttrListLine(line) {
		return false
	}
	next, ok := s.r.peekAt(1)
	return ok && (next == "+" || isDelimiter(next))
}

// parseAttached parses the metadata and block following a list
// continuation.
func (s *parseState) parseAttached() *core.Block {
	meta := &blockMeta{}
	for {
		line, ok := s.r.peek()
		if !ok || isBlank(line) {
			return nil
		}
		if !s.readMeta(line, meta) {
			break
		}
		s.r.next()
	}
	return s.parseBlock(meta)
}

// itemContent is the item text followed by the text of attached blocks.
func itemContent(item *core.Block) *string {
	parts := []string{*item.Text}
	if len(item.Blocks) > 0 {
		if rest := *compoundContent(item.Blocks); rest != "" {
			parts = append(parts, rest)
		}
	}
	text := strings.Join(parts, "\n")
	return &text
}
