package tabtext

import (
	"fmt"
	"html"
	"io"
)

func writeHTML(w io.Writer, a *Assembled) error {
	if _, err := fmt.Fprintln(w, "<table>"); err != nil {
		return err
	}
	if !a.NoHeaders {
		if _, err := fmt.Fprintln(w, "  <thead>"); err != nil {
			return err
		}
		if err := writeHTMLRow(w, a, a.Header(), "th"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, "  </thead>"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "  <tbody>"); err != nil {
		return err
	}
	for _, row := range a.Rows {
		if err := writeHTMLRow(w, a, row.Cells, "td"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "  </tbody>"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "</table>"); err != nil {
		return err
	}
	if len(a.Legend) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "<ul>"); err != nil {
		return err
	}
	for _, kv := range a.Legend {
		if _, err := fmt.Fprintf(w, "  <li>%s</li>\n", html.EscapeString(kv.String())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "</ul>")
	return err
}

func writeHTMLRow(w io.Writer, a *Assembled, cells []string, tag string) error {
	if _, err := fmt.Fprintln(w, "    <tr>"); err != nil {
		return err
	}
	for i, c := range a.Columns {
		if _, err := fmt.Fprintf(w, "      <%s%s>%s</%s>\n", tag, alignStyle(c.Align), html.EscapeString(cells[i]), tag); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "    </tr>")
	return err
}

func alignStyle(align Alignment) string {
	switch align {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
