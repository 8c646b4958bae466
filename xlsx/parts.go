package xlsx

import "encoding/xml"

// Namespaces and relationship types of the SpreadsheetML parts written here.
const (
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relStyles         = nsRelationships + "/styles"
	relTheme          = nsRelationships + "/theme"
	relExtended       = nsRelationships + "/extended-properties"
	relCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"

	ctWorkbook  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
	ctTheme     = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtended  = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Part names inside the archive.
const (
	partContentTypes = "[Content_Types].xml"
	partRootRels     = "_rels/.rels"
	partWorkbook     = "xl/workbook.xml"
	partWorkbookRels = "xl/_rels/workbook.xml.rels"
	partStyles       = "xl/styles.xml"
	partTheme        = "xl/theme/theme1.xml"
	partCore         = "docProps/core.xml"
	partApp          = "docProps/app.xml"
	partSharedStr    = "xl/sharedStrings.xml"
	partFirstSheet   = "xl/worksheets/sheet1.xml"
)

// xlsxTypes directly maps the Types element of [Content_Types].xml.
type xlsxTypes struct {
	XMLName   xml.Name       `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []xlsxDefault  `xml:"Default"`
	Overrides []xlsxOverride `xml:"Override"`
}

type xlsxDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xlsxOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// xlsxRelationships directly maps a .rels part.
type xlsxRelationships struct {
	XMLName       xml.Name           `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Relationships []xlsxRelationship `xml:"Relationship"`
}

type xlsxRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// xlsxCoreProperties directly maps the coreProperties element of
// docProps/core.xml.
type xlsxCoreProperties struct {
	XMLName      xml.Name   `xml:"cp:coreProperties"`
	XMLNSCP      string     `xml:"xmlns:cp,attr"`
	XMLNSDC      string     `xml:"xmlns:dc,attr"`
	XMLNSDCTerms string     `xml:"xmlns:dcterms,attr"`
	XMLNSXSI     string     `xml:"xmlns:xsi,attr"`
	Creator      string     `xml:"dc:creator"`
	Created      xlsxW3CDTF `xml:"dcterms:created"`
	Modified     xlsxW3CDTF `xml:"dcterms:modified"`
}

type xlsxW3CDTF struct {
	Type string `xml:"xsi:type,attr"`
	Val  string `xml:",chardata"`
}

// xlsxProperties directly maps the Properties element of docProps/app.xml.
type xlsxProperties struct {
	XMLName     xml.Name `xml:"http://schemas.openxmlformats.org/officeDocument/2006/extended-properties Properties"`
	Application string   `xml:"Application"`
	DocSecurity int      `xml:"DocSecurity"`
	AppVersion  string   `xml:"AppVersion"`
}

// xlsxTheme wraps the fixed theme markup of xl/theme/theme1.xml.
type xlsxTheme struct {
	XMLName xml.Name `xml:"a:theme"`
	XMLNSA  string   `xml:"xmlns:a,attr"`
	Name    string   `xml:"name,attr"`
	Inner   string   `xml:",innerxml"`
}

// xlsxWorkbook directly maps the workbook element of xl/workbook.xml.
type xlsxWorkbook struct {
	XMLName xml.Name    `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main workbook"`
	XMLNSR  string      `xml:"xmlns:r,attr"`
	Sheets  []xlsxSheet `xml:"sheets>sheet"`
	CalcPr  *xlsxCalcPr `xml:"calcPr"`
}

type xlsxSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"r:id,attr"`
}

type xlsxCalcPr struct {
	CalcID         int  `xml:"calcId,attr"`
	FullCalcOnLoad bool `xml:"fullCalcOnLoad,attr"`
}

// xlsxWorksheet directly maps the worksheet element of a sheet part.
type xlsxWorksheet struct {
	XMLName       xml.Name          `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main worksheet"`
	Dimension     *xlsxDimension    `xml:"dimension"`
	SheetViews    xlsxSheetViews    `xml:"sheetViews"`
	SheetFormatPr xlsxSheetFormatPr `xml:"sheetFormatPr"`
	Cols          *xlsxCols         `xml:"cols"`
	SheetData     xlsxSheetData     `xml:"sheetData"`
	PageMargins   xlsxPageMargins   `xml:"pageMargins"`
}

type xlsxDimension struct {
	Ref string `xml:"ref,attr"`
}

type xlsxSheetViews struct {
	SheetView []xlsxSheetView `xml:"sheetView"`
}

type xlsxSheetView struct {
	TabSelected    bool `xml:"tabSelected,attr,omitempty"`
	WorkbookViewID int  `xml:"workbookViewId,attr"`
}

type xlsxSheetFormatPr struct {
	BaseColWidth     int     `xml:"baseColWidth,attr"`
	DefaultRowHeight float64 `xml:"defaultRowHeight,attr"`
}

type xlsxCols struct {
	Col []xlsxCol `xml:"col"`
}

type xlsxCol struct {
	Min         int     `xml:"min,attr"`
	Max         int     `xml:"max,attr"`
	Width       float64 `xml:"width,attr"`
	CustomWidth bool    `xml:"customWidth,attr"`
}

type xlsxSheetData struct {
	Row []xlsxRow `xml:"row"`
}

type xlsxRow struct {
	R int     `xml:"r,attr"`
	C []xlsxC `xml:"c"`
}

// xlsxC is a single cell. Strings are written inline, so there is no
// shared string table on the write side.
type xlsxC struct {
	R  string  `xml:"r,attr"`
	S  int     `xml:"s,attr,omitempty"`
	T  string  `xml:"t,attr,omitempty"`
	V  string  `xml:"v,omitempty"`
	IS *xlsxIS `xml:"is"`
}

type xlsxIS struct {
	T xlsxT `xml:"t"`
}

type xlsxT struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Val   string `xml:",chardata"`
}

type xlsxPageMargins struct {
	Left   float64 `xml:"left,attr"`
	Right  float64 `xml:"right,attr"`
	Top    float64 `xml:"top,attr"`
	Bottom float64 `xml:"bottom,attr"`
	Header float64 `xml:"header,attr"`
	Footer float64 `xml:"footer,attr"`
}

// xlsxStyleSheet directly maps the styleSheet element of xl/styles.xml.
// Fonts, fills, borders and the cell style xfs never vary and are kept as
// raw markup between the number formats and the cell xfs.
type xlsxStyleSheet struct {
	XMLName    xml.Name       `xml:"http://schemas.openxmlformats.org/spreadsheetml/2006/main styleSheet"`
	NumFmts    *xlsxNumFmts   `xml:"numFmts"`
	Fixed      string         `xml:",innerxml"`
	CellXfs    xlsxCellXfs    `xml:"cellXfs"`
	CellStyles xlsxCellStyles `xml:"cellStyles"`
}

type xlsxNumFmts struct {
	Count  int          `xml:"count,attr"`
	NumFmt []xlsxNumFmt `xml:"numFmt"`
}

type xlsxNumFmt struct {
	NumFmtID   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

type xlsxCellXfs struct {
	Count int      `xml:"count,attr"`
	Xf    []xlsxXf `xml:"xf"`
}

type xlsxXf struct {
	NumFmtID          int            `xml:"numFmtId,attr"`
	FontID            int            `xml:"fontId,attr"`
	FillID            int            `xml:"fillId,attr"`
	BorderID          int            `xml:"borderId,attr"`
	XfID              int            `xml:"xfId,attr"`
	ApplyNumberFormat bool           `xml:"applyNumberFormat,attr,omitempty"`
	ApplyAlignment    bool           `xml:"applyAlignment,attr,omitempty"`
	Alignment         *xlsxAlignment `xml:"alignment"`
}

type xlsxAlignment struct {
	Horizontal string `xml:"horizontal,attr,omitempty"`
}

type xlsxCellStyles struct {
	Count     int             `xml:"count,attr"`
	CellStyle []xlsxCellStyle `xml:"cellStyle"`
}

type xlsxCellStyle struct {
	Name      string `xml:"name,attr"`
	XfID      int    `xml:"xfId,attr"`
	BuiltinID int    `xml:"builtinId,attr"`
}

const fixedStyles = `<fonts count="1"><font><sz val="11"/><name val="Calibri"/><family val="2"/><scheme val="minor"/></font></fonts>` +
	`<fills count="2"><fill><patternFill patternType="none"/></fill><fill><patternFill patternType="gray125"/></fill></fills>` +
	`<borders count="1"><border><left/><right/><top/><bottom/><diagonal/></border></borders>` +
	`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>`

// fixedTheme is the Office theme reduced to what a consumer needs to
// resolve theme colors and fonts.
const fixedTheme = `<a:themeElements>` +
	`<a:clrScheme name="Office">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4472C4"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Office">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Office">` +
	`<a:fillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:fillStyleLst>` +
	`<a:lnStyleLst>` +
	`<a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`<a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>` +
	`</a:lnStyleLst>` +
	`<a:effectStyleLst>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`<a:effectStyle><a:effectLst/></a:effectStyle>` +
	`</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>` +
	`</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`<a:objectDefaults/><a:extraClrSchemeLst/>`
