package extract

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/adocpipe/core"
)

const (
	styleHeader = "header"
	styleBody   = "body"
	styleFooter = "footer"
)

// tableContent renders the rows as "|a |b |" lines, header first.
func tableContent(b *core.Block) (string, error) {
	if b.Rows == nil {
		return "", nil
	}
	var lines []string
	if len(b.Rows.Head) > 0 {
		line, err := rowLine(b.Rows.Head[0])
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	for _, row := range b.Rows.Body {
		line, err := rowLine(row)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func rowLine(row []*core.Cell) (string, error) {
	texts, err := cellTexts(row)
	if err != nil {
		return "", err
	}
	return "|" + strings.Join(texts, " |") + " |", nil
}

func cellTexts(row []*core.Cell) ([]string, error) {
	texts := make([]string, len(row))
	for i, c := range row {
		if c == nil {
			return nil, fmt.Errorf("table cell %d is nil: %w", i+1, ErrMalformedTree)
		}
		texts[i] = c.Text
	}
	return texts, nil
}

// expandTable synthesizes table_row nodes, each holding table_cell nodes:
// the first header row, then body rows numbered from 1, then footer rows
// continuing that numbering.
func expandTable(rows *core.Rows, depth int) ([]core.BlockNode, error) {
	children := []core.BlockNode{}
	if rows == nil {
		return children, nil
	}

	if len(rows.Head) > 0 {
		texts, err := cellTexts(rows.Head[0])
		if err != nil {
			return nil, err
		}
		row := rowNode(styleHeader, core.Attributes{"role": core.String(styleHeader)}, depth)
		for i, text := range texts {
			row.Children = append(row.Children, cellNode(text, core.Attributes{
				"column": core.Int(i + 1),
				"role":   core.String(styleHeader),
			}, depth))
		}
		children = append(children, row)
	}

	groups := []struct {
		style string
		rows  [][]*core.Cell
	}{
		{styleBody, rows.Body},
		{styleFooter, rows.Foot},
	}
	n := 0
	for _, g := range groups {
		for _, cells := range g.rows {
			n++
			texts, err := cellTexts(cells)
			if err != nil {
				return nil, err
			}
			attrs := core.Attributes{"row": core.Int(n)}
			if g.style == styleFooter {
				attrs["role"] = core.String(styleFooter)
			}
			row := rowNode(g.style, attrs, depth)
			for i, text := range texts {
				row.Children = append(row.Children, cellNode(text, core.Attributes{
					"column": core.Int(i + 1),
					"row":    core.Int(n),
				}, depth))
			}
			children = append(children, row)
		}
	}
	return children, nil
}

func rowNode(style string, attrs core.Attributes, depth int) core.BlockNode {
	return core.BlockNode{
		Context:      string(core.ContextTableRow),
		ContentModel: string(core.ContentCompound),
		Level:        depth + 1,
		Style:        core.OptionalString(style),
		Attributes:   attrs,
		Children:     []core.BlockNode{},
	}
}

func cellNode(text string, attrs core.Attributes, depth int) core.BlockNode {
	return core.BlockNode{
		Context:      string(core.ContextTableCell),
		ContentModel: string(core.ContentSimple),
		Content:      text,
		Level:        depth + 2,
		Attributes:   attrs,
		Children:     []core.BlockNode{},
	}
}
