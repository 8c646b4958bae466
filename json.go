package tabtext

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// writeJSON writes one record per line inside a bracketed list:
//
//	[
//	 {"a": true},
//	 {"b": 2}
//	]
//
// Only present cells are written, dates as ISO text.
func writeJSON(w io.Writer, a *Assembled) error {
	lines := make([]string, len(a.Rows))
	for i := range a.Rows {
		lines[i] = " " + jsonObject(a, i)
	}
	_, err := io.WriteString(w, "[\n"+strings.Join(lines, ",\n")+"\n]\n")
	return err
}

func writeJSONL(w io.Writer, a *Assembled) error {
	for i := range a.Rows {
		if _, err := io.WriteString(w, jsonObject(a, i)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func jsonObject(a *Assembled, i int) string {
	row := a.Rows[i]
	var parts []string
	for j, c := range a.Columns {
		if !row.Present[j] {
			continue
		}
		parts = append(parts, jsonString(c.Name)+": "+jsonValue(row.Values[j]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func jsonValue(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := reprFloat(v.f)
		if strings.ContainsAny(s, "IN") {
			return "null"
		}
		return s
	case KindText:
		return jsonString(v.s)
	case KindDate, KindDateTime:
		return jsonString(v.iso())
	default:
		return "null"
	}
}

func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
