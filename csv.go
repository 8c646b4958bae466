package tabtext

import (
	"encoding/csv"
	"io"
)

// writeCSV writes formatted cells with the given delimiter. Missing cells
// are written as "~". A record holding one empty field is written as `""`
// so that it does not read back as a blank line.
func writeCSV(w io.Writer, a *Assembled, comma rune, noHeaders bool) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	write := func(fields []string) error {
		if len(fields) == 1 && fields[0] == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return err
			}
			_, err := io.WriteString(w, "\"\"\n")
			return err
		}
		return cw.Write(fields)
	}
	if !noHeaders {
		if err := write(a.Header()); err != nil {
			return err
		}
	}
	for _, row := range a.Rows {
		if err := write(row.Cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
