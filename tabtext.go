package tabtext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidTemplate   = errors.New("invalid template")
	ErrColumnConflict    = errors.New("column display name used by two sources")
	ErrMalformedInput    = errors.New("malformed input")
)

// Format represents an output format.
type Format string

const (
	Markdown Format = "markdown"
	Wide     Format = "wide"
	Plain    Format = "text"
	Boxed    Format = "table"
	HTML     Format = "html"
	CSV      Format = "csv"
	TSV      Format = "tsv"
	Data     Format = "data"
	List     Format = "list"
	JSON     Format = "json"
	JSONL    Format = "jsonl"
	YAML     Format = "yaml"
	XLSX     Format = "xlsx"
)

const goTemplatePrefix = "go-template="

var formats = []Format{Markdown, Wide, Plain, Boxed, HTML, CSV, TSV, Data, List, JSON, JSONL, YAML, XLSX}

var aliases = map[string]Format{
	"md":   Markdown,
	"gfm":  Markdown,
	"scsv": CSV,
	"tab":  TSV,
	"dat":  Data,
	"xls":  XLSX,
}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all supported static format names.
// GoTemplate is not included because it is parameterized.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// GoTemplate returns a Format that renders each row through a Go
// text/template. The row is a map from column name to cell text.
func GoTemplate(tmpl string) Format {
	return Format(goTemplatePrefix + tmpl)
}

// ParseFormat parses a format name or alias. Recognizes all static formats
// and go-template=<tmpl> strings.
func ParseFormat(s string) (Format, error) {
	if strings.HasPrefix(s, goTemplatePrefix) {
		return Format(s), nil
	}
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	if f, ok := aliases[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return Markdown, true
	case ".csv", ".scsv":
		return CSV, true
	case ".tsv", ".tab", ".tcsv":
		return TSV, true
	case ".dat":
		return Data, true
	case ".json":
		return JSON, true
	case ".jsonl", ".ndjson":
		return JSONL, true
	case ".yaml", ".yml":
		return YAML, true
	case ".html", ".htm":
		return HTML, true
	case ".xlsx", ".xls":
		return XLSX, true
	default:
		return "", false
	}
}

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Write assembles table with opts and writes it to w in format f. An '@'
// format directive among the selects overrides f.
func Write(w io.Writer, f Format, table Table, opts Options) error {
	a, err := Assemble(table, opts)
	if err != nil {
		return err
	}
	if a.Format != "" {
		f = a.Format
	}
	return Render(w, f, a)
}

// Render writes an assembled table to w in format f.
func Render(w io.Writer, f Format, a *Assembled) error {
	switch f {
	case Markdown:
		return writeAligned(w, a, "|", a.NoHeaders)
	case Wide:
		return writeAligned(w, a, "", a.NoHeaders)
	case Plain:
		return writeAligned(w, a, "", true)
	case Boxed:
		return writeTable(w, a)
	case HTML:
		return writeHTML(w, a)
	case CSV:
		return writeCSV(w, a, ';', a.NoHeaders)
	case TSV:
		return writeCSV(w, a, '\t', a.NoHeaders)
	case Data:
		return writeCSV(w, a, '\t', true)
	case List:
		return writeCSV(w, a, ';', true)
	case JSON:
		return writeJSON(w, a)
	case JSONL:
		return writeJSONL(w, a)
	case YAML:
		return writeYAML(w, a)
	case XLSX:
		return fmt.Errorf("%w: %q is written by the xlsx package", ErrUnsupportedFormat, f)
	default:
		if tmpl, ok := strings.CutPrefix(string(f), goTemplatePrefix); ok {
			return writeGoTemplate(w, tmpl, a)
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Marshal formats table and returns the bytes.
func Marshal(f Format, table Table, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, table, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
