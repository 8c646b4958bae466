package tabtext

import (
	"fmt"
	"io"
	"strings"
)

// writeAligned renders padded text columns. With tab "|" this is a GFM
// table: each cell is "| " plus the padded text, cells are joined by a
// space, and a divider line follows the header. With an empty tab the
// columns are only padded.
func writeAligned(w io.Writer, a *Assembled, tab string, noHeaders bool) error {
	lead := ""
	if tab != "" {
		lead = tab + " "
	}
	if !noHeaders {
		if err := writeAlignedRow(w, a, a.Header(), lead); err != nil {
			return err
		}
		if tab != "" {
			sep := make([]string, len(a.Columns))
			for i, c := range a.Columns {
				if c.Align == AlignRight {
					sep[i] = strings.Repeat("-", max(c.Width-1, 0)) + ":"
				} else {
					sep[i] = strings.Repeat("-", c.Width)
				}
			}
			if err := writeAlignedRow(w, a, sep, lead); err != nil {
				return err
			}
		}
	}
	for _, row := range a.Rows {
		if err := writeAlignedRow(w, a, row.Cells, lead); err != nil {
			return err
		}
	}
	return writeLegend(w, a.Legend)
}

func writeAlignedRow(w io.Writer, a *Assembled, cells []string, lead string) error {
	parts := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		parts[i] = lead + alignCell(cells[i], c.Width, c.Align)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

func writeLegend(w io.Writer, legend Legend) error {
	if len(legend) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, kv := range legend {
		if _, err := fmt.Fprintf(w, "- %s\n", kv); err != nil {
			return err
		}
	}
	return nil
}
