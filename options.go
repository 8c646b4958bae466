package tabtext

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// DefaultMinWidth is the narrowest padded column.
const DefaultMinWidth = 5

// Options is the render configuration passed to every call. The zero value
// renders with the defaults.
type Options struct {
	// Headers are spec strings giving the default column order, formats
	// and renames.
	Headers []string
	// Selects are spec strings choosing the output columns. They take
	// precedence over Headers; entries starting with '@' are directives
	// such as "@noheaders", "@unique" or an output format ("@md", "@csv").
	Selects []string

	// MinWidth floors every padded column. Zero means DefaultMinWidth,
	// a negative value disables the floor.
	MinWidth int
	// NoRightAlign keeps numeric columns left aligned.
	NoRightAlign bool
	NoHeaders    bool
	// Unique drops a row when all selected cells equal the previous row's.
	Unique bool

	// DateDelimiter replaces '-' in rendered dates.
	DateDelimiter string
	// Currency is appended by the "$" format type. Default: DefaultCurrency.
	Currency string

	// Legend is appended below text tables and as a second spreadsheet sheet.
	Legend Legend
	// Border selects the box characters of the Table format.
	Border BorderStyle
	// HeaderStyle wraps header cells of the Table format after padding.
	HeaderStyle func(string) string
}

func (o Options) withDefaults() Options {
	switch {
	case o.MinWidth == 0:
		o.MinWidth = DefaultMinWidth
	case o.MinWidth < 0:
		o.MinWidth = 0
	}
	if o.DateDelimiter == "" {
		o.DateDelimiter = "-"
	}
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	return o
}

// splitDirectives separates '@' directives from column specs.
func splitDirectives(selects []string) (specs []string, directives map[string]string) {
	directives = make(map[string]string)
	for _, s := range selects {
		if name, ok := strings.CutPrefix(s, "@"); ok && name != "" {
			key, val, _ := strings.Cut(name, "=")
			directives[key] = val
			continue
		}
		specs = append(specs, s)
	}
	return specs, directives
}

// applyDirectives folds render directives into the options and returns the
// output format they request, if any.
func (o Options) applyDirectives(directives map[string]string) (Options, Format) {
	var f Format
	for _, key := range slices.Sorted(maps.Keys(directives)) {
		switch key {
		case "noheaders":
			o.NoHeaders = true
		case "unique":
			o.Unique = true
		case "noright":
			o.NoRightAlign = true
		case "md2", "md3", "md4", "md5", "md6":
			o.MinWidth, _ = strconv.Atoi(key[2:])
			f = Markdown
		default:
			if pf, err := ParseFormat(key); err == nil {
				f = pf
			}
		}
	}
	return o, f
}

// KeyValue is a single key-value pair.
type KeyValue struct {
	Key   string
	Value string
}

// Legend holds annotation lines. An entry with an empty Key is a plain line.
type Legend []KeyValue

// LegendLines builds a legend of plain lines.
func LegendLines(lines ...string) Legend {
	out := make(Legend, len(lines))
	for i, l := range lines {
		out[i] = KeyValue{Value: l}
	}
	return out
}

func (kv KeyValue) String() string {
	if kv.Key == "" {
		return kv.Value
	}
	return kv.Key + ": " + kv.Value
}
