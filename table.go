package tabtext

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// writeTable draws the assembled table in a box, or space-separated with a
// dashed rule under the header for BorderNone. The legend follows as plain
// lines.
func writeTable(w io.Writer, a *Assembled) error {
	widths := make([]int, len(a.Columns))
	aligns := make([]Alignment, len(a.Columns))
	for i, c := range a.Columns {
		widths[i], aligns[i] = c.Width, c.Align
	}
	var header []string
	if !a.NoHeaders {
		header = a.Header()
	}

	var err error
	if a.Border == BorderNone {
		err = renderPlainTable(w, a, header, widths, aligns)
	} else {
		err = renderBorderedTable(w, a, header, widths, aligns)
	}
	if err != nil {
		return err
	}
	for _, kv := range a.Legend {
		if _, err := fmt.Fprintln(w, kv.String()); err != nil {
			return err
		}
	}
	return nil
}

func renderPlainTable(w io.Writer, a *Assembled, header []string, widths []int, aligns []Alignment) error {
	if len(header) > 0 {
		if err := writePlainRow(w, header, widths, aligns, a.HeaderStyle); err != nil {
			return err
		}
		sep := make([]string, len(widths))
		for i, width := range widths {
			sep[i] = strings.Repeat("-", width)
		}
		if _, err := fmt.Fprintln(w, strings.Join(sep, "  ")); err != nil {
			return err
		}
	}
	for _, row := range a.Rows {
		if err := writePlainRow(w, row.Cells, widths, aligns, nil); err != nil {
			return err
		}
	}
	return nil
}

func writePlainRow(w io.Writer, cells []string, widths []int, aligns []Alignment, style func(string) string) error {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = styled(alignCell(cells[i], width, aligns[i]), style)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	return err
}

func renderBorderedTable(w io.Writer, a *Assembled, header []string, widths []int, aligns []Alignment) error {
	bc, ok := borderSets[a.Border]
	if !ok {
		bc = borderSets[BorderRounded]
	}
	if err := drawHLine(w, widths, bc.topLeft, bc.horizontal, bc.topTee, bc.topRight); err != nil {
		return err
	}
	if len(header) > 0 {
		if err := drawBorderedRow(w, header, widths, aligns, bc.vertical, a.HeaderStyle); err != nil {
			return err
		}
		if err := drawHLine(w, widths, bc.leftTee, bc.horizontal, bc.cross, bc.rightTee); err != nil {
			return err
		}
	}
	for _, row := range a.Rows {
		if err := drawBorderedRow(w, row.Cells, widths, aligns, bc.vertical, nil); err != nil {
			return err
		}
	}
	return drawHLine(w, widths, bc.bottomLeft, bc.horizontal, bc.bottomTee, bc.bottomRight)
}

func drawHLine(w io.Writer, widths []int, left, fill, mid, right string) error {
	var sb strings.Builder
	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat(fill, width+2))
		if i < len(widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

func drawBorderedRow(w io.Writer, cells []string, widths []int, aligns []Alignment, vert string, style func(string) string) error {
	var sb strings.Builder
	sb.WriteString(vert)
	for i, width := range widths {
		sb.WriteString(" ")
		sb.WriteString(styled(alignCell(cells[i], width, aligns[i]), style))
		sb.WriteString(" ")
		if i < len(widths)-1 {
			sb.WriteString(vert)
		}
	}
	sb.WriteString(vert)
	_, err := fmt.Fprintln(w, sb.String())
	return err
}

// styled applies a style after padding so escape codes never count
// towards the width.
func styled(s string, style func(string) string) string {
	if style == nil {
		return s
	}
	return style(s)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
