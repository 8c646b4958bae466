package xlsx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/bjaus/tabtext"
)

const (
	dataSheet   = "data"
	legendSheet = "legend"
)

// Horizontal alignments.
const (
	alignLeft  = "left"
	alignRight = "right"
)

// WriteFile assembles table with opts and writes it as a workbook to path.
// The workbook is written to a temporary file in the same directory and
// renamed into place, so path is either replaced whole or left untouched.
func WriteFile(path string, table tabtext.Table, opts tabtext.Options) error {
	a, err := tabtext.Assemble(table, opts)
	if err != nil {
		return err
	}
	return Save(path, a)
}

// Save writes an assembled table as a workbook to path, replacing it
// atomically like [WriteFile].
func Save(path string, a *tabtext.Assembled) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := Write(tmp, a); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	log.Debug().Str("component", "xlsx").Str("path", path).Int("rows", len(a.Rows)).Msg("workbook written")
	return nil
}

// Write encodes an assembled table as a workbook with a "data" sheet and,
// when the table has a legend, a "legend" sheet. The archive is built in
// memory; nothing reaches w when encoding fails.
//
// The header row holds the column names. Ints, floats, dates and datetimes
// become numeric cells with a number format, text becomes inline strings,
// booleans become boolean cells and null cells are left out. An empty
// string is stored as a single space so that it stays distinct from a
// missing cell.
func Write(w io.Writer, a *tabtext.Assembled) error {
	st := newStyles()
	sheets := []xlsxWorksheet{dataWorksheet(a, st)}
	names := []string{dataSheet}
	if len(a.Legend) > 0 {
		sheets = append(sheets, legendWorksheet(a.Legend, st))
		names = append(names, legendSheet)
	}

	now := time.Now().UTC()
	parts := []part{
		{partContentTypes, contentTypes(len(sheets))},
		{partRootRels, xlsxRelationships{Relationships: []xlsxRelationship{
			{ID: "rId1", Type: relOfficeDocument, Target: partWorkbook},
			{ID: "rId2", Type: relCore, Target: partCore},
			{ID: "rId3", Type: relExtended, Target: partApp},
		}}},
		{partCore, coreProperties(now)},
		{partApp, xlsxProperties{Application: "tabtext", AppVersion: "3.0"}},
		{partWorkbook, workbook(names)},
		{partWorkbookRels, workbookRels(len(sheets))},
		{partStyles, st.sheet()},
		{partTheme, xlsxTheme{
			XMLNSA: "http://schemas.openxmlformats.org/drawingml/2006/main",
			Name:   "Office Theme",
			Inner:  fixedTheme,
		}},
	}
	for i, ws := range sheets {
		parts = append(parts, part{sheetPart(i), ws})
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		if err := writePart(zw, p, now); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// part is one XML member of the archive.
type part struct {
	name string
	v    any
}

func writePart(zw *zip.Writer, p part, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     p.name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", p.name, err)
	}
	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	if err := xml.NewEncoder(f).Encode(p.v); err != nil {
		return fmt.Errorf("encode %s: %w", p.name, err)
	}
	return nil
}

func sheetPart(i int) string {
	return "xl/worksheets/sheet" + strconv.Itoa(i+1) + ".xml"
}

func contentTypes(sheets int) xlsxTypes {
	t := xlsxTypes{
		Defaults: []xlsxDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []xlsxOverride{
			{PartName: "/" + partWorkbook, ContentType: ctWorkbook},
			{PartName: "/" + partStyles, ContentType: ctStyles},
			{PartName: "/" + partTheme, ContentType: ctTheme},
			{PartName: "/" + partCore, ContentType: ctCore},
			{PartName: "/" + partApp, ContentType: ctExtended},
		},
	}
	for i := range sheets {
		t.Overrides = append(t.Overrides, xlsxOverride{PartName: "/" + sheetPart(i), ContentType: ctWorksheet})
	}
	return t
}

func workbook(names []string) xlsxWorkbook {
	wb := xlsxWorkbook{
		XMLNSR: nsRelationships,
		CalcPr: &xlsxCalcPr{CalcID: 124519, FullCalcOnLoad: true},
	}
	for i, name := range names {
		wb.Sheets = append(wb.Sheets, xlsxSheet{Name: name, SheetID: i + 1, RID: "rId" + strconv.Itoa(i+1)})
	}
	return wb
}

func workbookRels(sheets int) xlsxRelationships {
	var rels xlsxRelationships
	for i := range sheets {
		rels.Relationships = append(rels.Relationships, xlsxRelationship{
			ID:     "rId" + strconv.Itoa(i+1),
			Type:   relWorksheet,
			Target: strings.TrimPrefix(sheetPart(i), "xl/"),
		})
	}
	rels.Relationships = append(rels.Relationships,
		xlsxRelationship{
			ID:     "rId" + strconv.Itoa(sheets+1),
			Type:   relStyles,
			Target: strings.TrimPrefix(partStyles, "xl/"),
		},
		xlsxRelationship{
			ID:     "rId" + strconv.Itoa(sheets+2),
			Type:   relTheme,
			Target: strings.TrimPrefix(partTheme, "xl/"),
		},
	)
	return rels
}

func coreProperties(now time.Time) xlsxCoreProperties {
	stamp := xlsxW3CDTF{Type: "dcterms:W3CDTF", Val: now.Format(time.RFC3339)}
	return xlsxCoreProperties{
		XMLNSCP:      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XMLNSDC:      "http://purl.org/dc/elements/1.1/",
		XMLNSDCTerms: "http://purl.org/dc/terms/",
		XMLNSXSI:     "http://www.w3.org/2001/XMLSchema-instance",
		Creator:      "tabtext",
		Created:      stamp,
		Modified:     stamp,
	}
}

func newWorksheet(selected bool, widths []int, rows []xlsxRow) xlsxWorksheet {
	ws := xlsxWorksheet{
		SheetViews:    xlsxSheetViews{SheetView: []xlsxSheetView{{TabSelected: selected}}},
		SheetFormatPr: xlsxSheetFormatPr{BaseColWidth: 8, DefaultRowHeight: 15},
		SheetData:     xlsxSheetData{Row: rows},
		PageMargins:   xlsxPageMargins{Left: 0.75, Right: 0.75, Top: 1, Bottom: 1, Header: 0.5, Footer: 0.5},
	}
	if len(widths) > 0 && len(rows) > 0 {
		ws.Dimension = &xlsxDimension{Ref: "A1:" + cellRef(len(widths)-1, len(rows))}
		ws.Cols = &xlsxCols{}
		for i, w := range widths {
			ws.Cols.Col = append(ws.Cols.Col, xlsxCol{
				Min:         i + 1,
				Max:         i + 1,
				Width:       float64(w + 1 + w/3),
				CustomWidth: true,
			})
		}
	}
	return ws
}

func dataWorksheet(a *tabtext.Assembled, st *styles) xlsxWorksheet {
	widths := make([]int, len(a.Columns))
	header := xlsxRow{R: 1}
	headerStyle := st.id(fmtGeneral, alignRight)
	for i, c := range a.Columns {
		widths[i] = c.Width
		header.C = append(header.C, textCell(cellRef(i, 1), headerStyle, c.Name))
	}
	rows := []xlsxRow{header}
	for r, row := range a.Rows {
		xr := xlsxRow{R: r + 2}
		for i, c := range a.Columns {
			if !row.Present[i] {
				continue
			}
			if cell, ok := valueCell(cellRef(i, r+2), row.Values[i], numFmtFor(c, a.Currency), st); ok {
				xr.C = append(xr.C, cell)
			}
		}
		rows = append(rows, xr)
	}
	return newWorksheet(true, widths, rows)
}

func legendWorksheet(legend tabtext.Legend, st *styles) xlsxWorksheet {
	style := st.id(fmtGeneral, alignLeft)
	widths := []int{0, 0}
	var rows []xlsxRow
	for i, kv := range legend {
		r := i + 1
		if kv.Key == "" {
			rows = append(rows, xlsxRow{R: r, C: []xlsxC{textCell(cellRef(0, r), style, kv.Value)}})
			widths[0] = max(widths[0], runewidth.StringWidth(kv.Value))
			continue
		}
		rows = append(rows, xlsxRow{R: r, C: []xlsxC{
			textCell(cellRef(0, r), style, kv.Key),
			textCell(cellRef(1, r), style, kv.Value),
		}})
		widths[0] = max(widths[0], runewidth.StringWidth(kv.Key))
		widths[1] = max(widths[1], runewidth.StringWidth(kv.Value))
	}
	return newWorksheet(false, widths, rows)
}

// numFmtFor returns the float number format of a column. Columns whose
// format carries the currency type get the symbol appended.
func numFmtFor(c tabtext.Column, currency string) string {
	if strings.Contains(c.Format, "$}") && currency != "" {
		return fmtFloat + `"` + currency + `"`
	}
	return fmtFloat
}

func valueCell(ref string, v tabtext.Value, floatFmt string, st *styles) (xlsxC, bool) {
	switch v.Kind() {
	case tabtext.KindNull:
		return xlsxC{}, false
	case tabtext.KindBool:
		b, _ := v.AsBool()
		c := xlsxC{R: ref, T: "b", V: "0"}
		if b {
			c.V = "1"
		}
		return c, true
	case tabtext.KindInt:
		i, _ := v.AsInt()
		return xlsxC{R: ref, S: st.id(fmtInt, alignRight), T: "n", V: strconv.FormatInt(i, 10)}, true
	case tabtext.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return textCell(ref, st.id(fmtGeneral, alignLeft), v.String()), true
		}
		return xlsxC{R: ref, S: st.id(floatFmt, alignRight), T: "n", V: formatNumber(f)}, true
	case tabtext.KindText:
		s, _ := v.AsText()
		return textCell(ref, st.id(fmtGeneral, alignLeft), s), true
	case tabtext.KindDate:
		t, _ := v.AsTime()
		return xlsxC{R: ref, S: st.id(fmtDate, alignRight), T: "n", V: strconv.FormatInt(dateSerial(t), 10)}, true
	case tabtext.KindDateTime:
		t, _ := v.AsTime()
		return xlsxC{R: ref, S: st.id(fmtDateTime, alignRight), T: "n", V: formatNumber(dateTimeSerial(t))}, true
	default:
		return xlsxC{}, false
	}
}

// emptyText stands in for the empty string, which spreadsheets do not keep
// apart from an absent cell.
const emptyText = " "

func textCell(ref string, style int, s string) xlsxC {
	if s == "" {
		s = emptyText
	}
	t := xlsxT{Val: s}
	if strings.TrimSpace(s) != s {
		t.Space = "preserve"
	}
	return xlsxC{R: ref, S: style, T: "inlineStr", IS: &xlsxIS{T: t}}
}
