package asciidoc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// cellSpecRegex matches the span/alignment/style prefix before a cell
// separator, e.g. "2+", "3*", ".2+^", "a".
var cellSpecRegex = regexp.MustCompile(`^(?:\d+\*)?(?:\d*(?:\.\d+)?\+)?(?:[<^>](?:\.[<^>])?)?[adehlmsv]?$`)

// parseTable reads a "|===" block into row groups.
func (s *parseState) parseTable(meta *blockMeta) *core.Block {
	start := s.r.lineno()
	delim := s.r.next()

	var raw []string
	for {
		line, ok := s.r.peek()
		if !ok {
			warnUnterminated("table", start)
			break
		}
		s.r.next()
		if line == delim {
			break
		}
		raw = append(raw, line)
	}

	cells, firstRow := parseCells(raw)
	cols := columnCount(meta)
	if cols == 0 {
		cols = firstRow
	}

	// The first line forms an implicit header when it holds a whole row and
	// is followed by a blank line.
	implicit := len(raw) > 1 && !isBlank(raw[0]) && isBlank(raw[1]) && firstRow == cols
	header := meta.hasOption("header") || (implicit && !meta.hasOption("noheader"))
	footer := meta.hasOption("footer")

	var rows [][]*core.Cell
	if cols > 0 {
		for i := 0; i < len(cells); i += cols {
			end := i + cols
			if end > len(cells) {
				log.Warn().Int("line", start).Int("cells", len(cells)-i).Msg("incomplete table row")
				end = len(cells)
			}
			row := make([]*core.Cell, 0, end-i)
			for _, text := range cells[i:end] {
				row = append(row, &core.Cell{Text: text})
			}
			rows = append(rows, row)
		}
	}

	group := &core.Rows{}
	if header && len(rows) > 0 {
		group.Head, rows = rows[:1], rows[1:]
	}
	if footer && len(rows) > 0 {
		group.Foot, rows = rows[len(rows)-1:], rows[:len(rows)-1]
	}
	group.Body = rows

	b := s.newBlock(core.ContextTable, core.ContentCompound, meta, start)
	b.Style = meta.style
	b.Rows = group
	b.Attributes["colcount"] = core.Int(cols)
	b.Attributes["rowcount"] = core.Int(len(group.Head) + len(group.Body) + len(group.Foot))
	if header {
		b.Attributes["header-option"] = core.String("")
	}
	b.Content = tableText(group)
	return b
}

// parseCells splits table lines into cell texts. Text on a line before its
// first separator continues the previous cell unless it is a cell spec. It
// also reports how many cells the first non-blank line starts.
func parseCells(raw []string) ([]string, int) {
	var (
		cells    []string
		firstRow = -1
	)
	for _, line := range raw {
		if isBlank(line) {
			continue
		}
		parts := splitCells(line)
		lead := strings.TrimSpace(parts[0])
		if lead != "" && !(len(parts) > 1 && cellSpecRegex.MatchString(lead)) {
			if n := len(cells); n > 0 {
				cells[n-1] = strings.TrimSpace(cells[n-1] + "\n" + lead)
			} else {
				cells = append(cells, lead)
			}
		}
		for _, p := range parts[1:] {
			cells = append(cells, strings.TrimSpace(p))
		}
		if firstRow < 0 {
			firstRow = len(parts) - 1
		}
	}
	if firstRow < 0 {
		firstRow = 0
	}
	return cells, firstRow
}

// splitCells splits on unescaped "|". The first element is the text before
// the first separator.
func splitCells(line string) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '|' {
			cur.WriteByte('|')
			i++
			continue
		}
		if c == '|' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	return append(parts, cur.String())
}

// columnCount reads the cols attribute: "3", "1,2,1" or "2*,1".
func columnCount(meta *blockMeta) int {
	spec, ok := meta.attrs.Lookup("cols")
	if !ok {
		return 0
	}
	spec = strings.TrimSpace(spec)
	if n, err := strconv.Atoi(spec); err == nil {
		return n
	}
	count := 0
	for _, part := range strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '*'); i > 0 {
			if n, err := strconv.Atoi(part[:i]); err == nil {
				count += n
				continue
			}
		}
		count++
	}
	return count
}

func tableText(g *core.Rows) *string {
	var lines []string
	for _, group := range [][][]*core.Cell{g.Head, g.Body, g.Foot} {
		for _, row := range group {
			texts := make([]string, len(row))
			for i, c := range row {
				texts[i] = c.Text
			}
			lines = append(lines, strings.Join(texts, " "))
		}
	}
	text := strings.Join(lines, "\n")
	return &text
}
