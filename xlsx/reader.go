package xlsx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"github.com/bjaus/tabtext"
)

// Sentinel errors for programmatic error handling.
var (
	ErrNotWorkbook = errors.New("not a workbook")
	ErrMissingPart = errors.New("missing workbook part")
)

// ReadFile reads the first sheet of the workbook at path.
func ReadFile(path string) (tabtext.Table, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	return Read(f, info.Size())
}

// Read decodes the first sheet of a workbook. The first row holds the
// column names up to the first empty cell; the records follow up to the
// first row without any value. Cells missing from a row read as Null and a
// lone space reads as the empty string.
func Read(r io.ReaderAt, size int64) (tabtext.Table, []string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	pkg := &pkgReader{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pkg.files[f.Name] = f
	}

	shared, err := pkg.sharedStrings()
	if err != nil {
		return nil, nil, err
	}
	kinds, err := pkg.styleKinds()
	if err != nil {
		return nil, nil, err
	}
	sheet, err := pkg.firstSheet()
	if err != nil {
		return nil, nil, err
	}
	doc, err := pkg.open(sheet)
	if err != nil {
		return nil, nil, err
	}
	grid := readGrid(doc.Root(), shared, kinds)
	table, headers := grid.table()
	log.Debug().Str("component", "xlsx").Str("sheet", sheet).Int("rows", len(table)).Msg("workbook read")
	return table, headers, nil
}

type pkgReader struct {
	files map[string]*zip.File
}

func (p *pkgReader) open(name string) (*etree.Document, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotWorkbook, name, err)
	}
	defer rc.Close()
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotWorkbook, name, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s: no root element", ErrNotWorkbook, name)
	}
	return doc, nil
}

// sharedStrings returns the shared string table, which is optional.
func (p *pkgReader) sharedStrings() ([]string, error) {
	doc, err := p.open(partSharedStr)
	if errors.Is(err, ErrMissingPart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, si := range children(doc.Root(), "si") {
		out = append(out, richText(si))
	}
	return out, nil
}

// styleKinds returns the date kind of every cell style.
func (p *pkgReader) styleKinds() ([]byte, error) {
	doc, err := p.open(partStyles)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	custom := make(map[int]string)
	if numFmts := child(root, "numFmts"); numFmts != nil {
		for _, nf := range children(numFmts, "numFmt") {
			custom[atoiDefault(nf.SelectAttrValue("numFmtId", ""), -1)] = nf.SelectAttrValue("formatCode", "")
		}
	}
	var ids []int
	if xfs := child(root, "cellXfs"); xfs != nil {
		for _, xf := range children(xfs, "xf") {
			ids = append(ids, atoiDefault(xf.SelectAttrValue("numFmtId", "0"), 0))
		}
	}
	return numFmtKinds(custom, ids), nil
}

// firstSheet resolves the part name of the first sheet through the
// workbook relationships.
func (p *pkgReader) firstSheet() (string, error) {
	wb, err := p.open(partWorkbook)
	if errors.Is(err, ErrMissingPart) {
		return partFirstSheet, nil
	}
	if err != nil {
		return "", err
	}
	sheets := child(wb.Root(), "sheets")
	if sheets == nil {
		return partFirstSheet, nil
	}
	first := child(sheets, "sheet")
	if first == nil {
		return partFirstSheet, nil
	}
	rid := nsAttr(first, "id")

	rels, err := p.open(partWorkbookRels)
	if errors.Is(err, ErrMissingPart) {
		return partFirstSheet, nil
	}
	if err != nil {
		return "", err
	}
	for _, rel := range children(rels.Root(), "Relationship") {
		if rel.SelectAttrValue("Id", "") == rid {
			return resolveTarget(rel.SelectAttrValue("Target", "")), nil
		}
	}
	return partFirstSheet, nil
}

// resolveTarget turns a relationship target of the workbook into a part
// name. Relative targets are relative to xl/.
func resolveTarget(target string) string {
	if t, ok := strings.CutPrefix(target, "/"); ok {
		return path.Clean(t)
	}
	return path.Join(path.Dir(partWorkbook), target)
}

type grid struct {
	cells  map[int]map[int]tabtext.Value
	maxRow int
}

func readGrid(root *etree.Element, shared []string, kinds []byte) *grid {
	g := &grid{cells: make(map[int]map[int]tabtext.Value)}
	data := child(root, "sheetData")
	if data == nil {
		return g
	}
	rowNum := 0
	for _, row := range children(data, "row") {
		rowNum = atoiDefault(row.SelectAttrValue("r", ""), rowNum+1)
		col := -1
		for _, c := range children(row, "c") {
			if cc, _, ok := splitRef(c.SelectAttrValue("r", "")); ok {
				col = cc
			} else {
				col++
			}
			v, ok := cellValue(c, shared, kinds)
			if !ok {
				continue
			}
			if g.cells[rowNum] == nil {
				g.cells[rowNum] = make(map[int]tabtext.Value)
			}
			g.cells[rowNum][col] = v
			g.maxRow = max(g.maxRow, rowNum)
		}
	}
	return g
}

func (g *grid) table() (tabtext.Table, []string) {
	var headers []string
	for col := 0; ; col++ {
		v, ok := g.cells[1][col]
		if !ok {
			break
		}
		name := v.String()
		if s, isText := v.AsText(); isText {
			name = s
		}
		if name == "" {
			break
		}
		headers = append(headers, name)
	}

	var table tabtext.Table
	for r := 2; r <= g.maxRow; r++ {
		cells := g.cells[r]
		found := false
		var rec tabtext.Record
		for col, name := range headers {
			v, ok := cells[col]
			found = found || ok
			rec.Set(name, v)
		}
		if !found {
			break
		}
		table = append(table, rec)
	}
	return table, headers
}

// cellValue decodes one cell. ok is false for a cell without a value.
func cellValue(c *etree.Element, shared []string, kinds []byte) (tabtext.Value, bool) {
	var text string
	v := child(c, "v")
	if v != nil {
		text = v.Text()
	}
	switch c.SelectAttrValue("t", "n") {
	case "inlineStr":
		is := child(c, "is")
		if is == nil {
			return tabtext.Null(), false
		}
		return textValue(richText(is)), true
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(text))
		if v == nil || err != nil || i < 0 || i >= len(shared) {
			return tabtext.Null(), false
		}
		return textValue(shared[i]), true
	case "str", "e":
		if v == nil {
			return tabtext.Null(), false
		}
		return textValue(text), true
	case "b":
		if v == nil {
			return tabtext.Null(), false
		}
		return tabtext.Bool(text == "1" || strings.EqualFold(text, "true")), true
	case "d":
		if v == nil {
			return tabtext.Null(), false
		}
		return isoValue(text), true
	default:
		if v == nil || text == "" {
			return tabtext.Null(), false
		}
		style := atoiDefault(c.SelectAttrValue("s", "0"), 0)
		var kind byte
		if style >= 0 && style < len(kinds) {
			kind = kinds[style]
		}
		return numberValue(text, kind), true
	}
}

func textValue(s string) tabtext.Value {
	if s == emptyText {
		s = ""
	}
	return tabtext.Text(s)
}

func numberValue(text string, kind byte) tabtext.Value {
	if kind != 0 {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return tabtext.Text(text)
		}
		t := fromSerial(f)
		if kind == 'd' && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return tabtext.DateOf(t)
		}
		return tabtext.DateTimeOf(t)
	}
	if !strings.ContainsAny(text, ".eE") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return tabtext.Int(i)
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return tabtext.Text(text)
	}
	return tabtext.Float(f)
}

// isoValue decodes the ISO 8601 text of a "d" cell.
func isoValue(text string) tabtext.Value {
	for _, layout := range []string{"2006-01-02T15:04:05Z07:00", "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, text); err == nil {
			return tabtext.DateTimeOf(t)
		}
	}
	if t, err := time.Parse("2006-01-02", text); err == nil {
		return tabtext.DateOf(t)
	}
	return tabtext.Text(text)
}

func child(el *etree.Element, tag string) *etree.Element {
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func children(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// nsAttr returns the value of a namespace-prefixed attribute by its local
// name, whatever the prefix.
func nsAttr(el *etree.Element, key string) string {
	for _, a := range el.Attr {
		if a.Key == key && a.Space != "" {
			return a.Value
		}
	}
	return ""
}

// richText joins the text runs of a string item.
func richText(el *etree.Element) string {
	var b strings.Builder
	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "t":
			b.WriteString(c.Text())
		case "r":
			if t := child(c, "t"); t != nil {
				b.WriteString(t.Text())
			}
		}
	}
	return b.String()
}
