package asciidoc

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

// blockMeta collects the metadata lines (attribute lists, anchors and block
// titles) that precede a block.
type blockMeta struct {
	style      string
	title      string
	id         string
	positional []string
	options    []string
	roles      []string
	attrs      core.Attributes
}

func (m *blockMeta) empty() bool {
	return m.style == "" && m.title == "" && m.id == "" &&
		len(m.positional) == 0 && len(m.options) == 0 && len(m.roles) == 0 && len(m.attrs) == 0
}

// positionalAt returns the 1-based positional attribute n.
func (m *blockMeta) positionalAt(n int) string {
	if n < 1 || n > len(m.positional) {
		return ""
	}
	return m.positional[n-1]
}

func (m *blockMeta) hasOption(name string) bool {
	for _, o := range m.options {
		if o == name {
			return true
		}
	}
	return false
}

// attributes materializes the metadata into a block attribute map.
func (m *blockMeta) attributes() core.Attributes {
	out := m.attrs.Clone()
	for i, v := range m.positional {
		out[strconv.Itoa(i+1)] = core.String(v)
	}
	if m.style != "" {
		out["style"] = core.String(m.style)
	}
	if m.id != "" {
		out["id"] = core.String(m.id)
	}
	if len(m.roles) > 0 {
		out["role"] = core.String(strings.Join(m.roles, " "))
	}
	for _, o := range m.options {
		out[o+"-option"] = core.String("")
	}
	return out
}

// parseAttrList reads the body of a "[...]" line into m.
func parseAttrList(body string, m *blockMeta) {
	if m.attrs == nil {
		m.attrs = core.Attributes{}
	}
	for _, entry := range splitAttrList(body) {
		if key, value, ok := namedAttr(entry); ok {
			switch key {
			case "id":
				m.id = value
			case "role":
				m.roles = append(m.roles, strings.Fields(value)...)
			case "options", "opts":
				for _, o := range strings.Split(value, ",") {
					if o = strings.TrimSpace(o); o != "" {
						m.options = append(m.options, o)
					}
				}
			default:
				m.attrs[key] = core.String(value)
			}
			continue
		}

		value := unquote(entry)
		if len(m.positional) == 0 {
			value = m.parseShorthand(value)
		}
		m.positional = append(m.positional, value)
	}
}

// parseShorthand splits "style#id.role%option" and returns the style part.
func (m *blockMeta) parseShorthand(s string) string {
	end := strings.IndexAny(s, "#.%")
	if end < 0 {
		if s != "" {
			m.style = s
		}
		return s
	}
	style := s[:end]
	if style != "" {
		m.style = style
	}

	rest := s[end:]
	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		next := strings.IndexAny(rest, "#.%")
		var part string
		if next < 0 {
			part, rest = rest, ""
		} else {
			part, rest = rest[:next], rest[next:]
		}
		if part == "" {
			continue
		}
		switch kind {
		case '#':
			m.id = part
		case '.':
			m.roles = append(m.roles, part)
		case '%':
			m.options = append(m.options, part)
		}
	}
	return style
}

// splitAttrList splits on commas outside double or single quotes.
func splitAttrList(body string) []string {
	var (
		out   []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range body {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			cur.WriteRune(r)
		case r == ',':
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if last := strings.TrimSpace(cur.String()); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}

func namedAttr(entry string) (string, string, bool) {
	eq := strings.IndexByte(entry, '=')
	if eq <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(entry[:eq])
	if !isAttrName(key) {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(entry[eq+1:])), true
}

func isAttrName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
