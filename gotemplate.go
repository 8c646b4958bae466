package tabtext

import (
	"fmt"
	"io"
	"text/template"
)

// writeGoTemplate executes tmplStr once per row with a map from column name
// to cell text.
func writeGoTemplate(w io.Writer, tmplStr string, a *Assembled) error {
	tmpl, err := template.New("").Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, err)
	}
	for _, row := range a.Rows {
		data := make(map[string]string, len(a.Columns))
		for i, c := range a.Columns {
			data[c.Name] = row.Cells[i]
		}
		if err := tmpl.Execute(w, data); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
