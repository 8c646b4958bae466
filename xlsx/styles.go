package xlsx

import (
	"slices"
	"strconv"
	"strings"
)

// Number format codes used for typed cells.
const (
	fmtGeneral  = "General"
	fmtDate     = "yyyy-mm-dd"
	fmtDateTime = "yyyy-mm-dd h:mm:ss"
	fmtInt      = "#,##0"
	fmtFloat    = "#,##0.00"
)

// firstCustomNumFmt is the first id available to custom number formats;
// lower ids are builtin.
const firstCustomNumFmt = 164

type cellStyle struct {
	numFmt string
	align  string
}

// styles collects the distinct cell styles of a workbook. Style ids are
// the index plus one; id 0 is the default style.
type styles struct {
	numFmts []string
	xfs     []cellStyle
	ids     map[cellStyle]int
}

func newStyles() *styles {
	return &styles{
		numFmts: []string{fmtDateTime},
		ids:     make(map[cellStyle]int),
	}
}

// id returns the style id for a number format and horizontal alignment,
// registering both on first use.
func (s *styles) id(numFmt, align string) int {
	key := cellStyle{numFmt: numFmt, align: align}
	if id, ok := s.ids[key]; ok {
		return id
	}
	if numFmt != fmtGeneral && !slices.Contains(s.numFmts, numFmt) {
		s.numFmts = append(s.numFmts, numFmt)
	}
	s.xfs = append(s.xfs, key)
	id := len(s.xfs)
	s.ids[key] = id
	return id
}

func (s *styles) numFmtID(code string) int {
	if code == fmtGeneral {
		return 0
	}
	return firstCustomNumFmt + slices.Index(s.numFmts, code)
}

func (s *styles) sheet() xlsxStyleSheet {
	ss := xlsxStyleSheet{
		NumFmts: &xlsxNumFmts{Count: len(s.numFmts)},
		Fixed:   fixedStyles,
		CellXfs: xlsxCellXfs{
			Count: len(s.xfs) + 1,
			Xf:    []xlsxXf{{}},
		},
		CellStyles: xlsxCellStyles{
			Count:     1,
			CellStyle: []xlsxCellStyle{{Name: "Normal"}},
		},
	}
	for i, code := range s.numFmts {
		ss.NumFmts.NumFmt = append(ss.NumFmts.NumFmt, xlsxNumFmt{
			NumFmtID:   firstCustomNumFmt + i,
			FormatCode: code,
		})
	}
	for _, cs := range s.xfs {
		xf := xlsxXf{
			NumFmtID:          s.numFmtID(cs.numFmt),
			ApplyNumberFormat: cs.numFmt != fmtGeneral,
		}
		if cs.align != "" {
			xf.ApplyAlignment = true
			xf.Alignment = &xlsxAlignment{Horizontal: cs.align}
		}
		ss.CellXfs.Xf = append(ss.CellXfs.Xf, xf)
	}
	return ss
}

// builtinDateFormats are the builtin number format ids that display dates
// or times of day.
var builtinDateFormats = map[int]string{
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
}

// dateKind classifies a number format code: 'd' for a date, 't' for a
// date or a bare time with a time of day, 0 for anything else. Quoted
// literals, bracketed sections and the character after a backslash, '_'
// or '*' are ignored.
func dateKind(code string) byte {
	switch code {
	case "d.mm.yy", fmtDate:
		return 'd'
	case "yyyy-mm-dd hh:mm", fmtDateTime:
		return 't'
	}
	var b strings.Builder
	quoted, bracket, skip := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case skip:
			skip = false
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '[':
			bracket = true
		case r == ']':
			bracket = false
		case bracket:
		case r == '\\' || r == '_' || r == '*':
			skip = true
		default:
			b.WriteRune(r)
		}
	}
	plain := b.String()
	switch {
	case strings.ContainsAny(plain, "hs"):
		return 't'
	case strings.ContainsAny(plain, "yd"):
		return 'd'
	default:
		return 0
	}
}

// numFmtKinds maps each cellXfs index to the date kind of its number format.
func numFmtKinds(custom map[int]string, xfNumFmts []int) []byte {
	kinds := make([]byte, len(xfNumFmts))
	for i, id := range xfNumFmts {
		code, ok := custom[id]
		if !ok {
			code, ok = builtinDateFormats[id]
		}
		if ok {
			kinds[i] = dateKind(code)
		}
	}
	return kinds
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
