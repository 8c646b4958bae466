package tabtext

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"
)

// DefaultCurrency is appended by the "$" format type.
const DefaultCurrency = "€"

var (
	errBadSpec      = errors.New("bad format spec")
	errNotFormatted = errors.New("format does not apply")
)

type tmplPart struct {
	lit  string
	ph   bool
	name string
	spec string
}

type braceTemplate []tmplPart

// parseTemplate splits a brace template into literal text and placeholders.
// Only the brace structure is validated here; specs are checked on use.
func parseTemplate(s string) (braceTemplate, error) {
	var out braceTemplate
	var lit strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				lit.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w: %q", errUnbalanced, s)
			}
			inner := s[i+1 : i+end]
			if strings.ContainsRune(inner, '{') {
				return nil, fmt.Errorf("%w: %q", errUnbalanced, s)
			}
			if lit.Len() > 0 {
				out = append(out, tmplPart{lit: lit.String()})
				lit.Reset()
			}
			name, spec, _ := strings.Cut(inner, ":")
			out = append(out, tmplPart{ph: true, name: name, spec: spec})
			i += end
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				lit.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("%w: %q", errUnbalanced, s)
		default:
			lit.WriteByte(c)
		}
	}
	if lit.Len() > 0 {
		out = append(out, tmplPart{lit: lit.String()})
	}
	return out, nil
}

// formatter applies templates with a fixed render configuration and caches
// parsed templates.
type formatter struct {
	currency  string
	dateDelim string
	cache     map[string]braceTemplate
}

func newFormatter(opts Options) *formatter {
	return &formatter{
		currency:  opts.Currency,
		dateDelim: opts.DateDelimiter,
		cache:     make(map[string]braceTemplate),
	}
}

func (f *formatter) template(s string) (braceTemplate, error) {
	if t, ok := f.cache[s]; ok {
		return t, nil
	}
	t, err := parseTemplate(s)
	if err != nil {
		return nil, err
	}
	f.cache[s] = t
	return t, nil
}

// format renders v through the template, falling back to the default
// rendering when the template does not apply to the value.
func (f *formatter) format(tmpl string, v Value) string {
	if tmpl == "" || v.IsNull() {
		return v.render(f.dateDelim)
	}
	s, err := f.apply(tmpl, v)
	if err != nil {
		log.Debug().Str("component", "format").Str("format", tmpl).Stringer("kind", v.Kind()).Err(err).Msg("format fallback")
		return v.render(f.dateDelim)
	}
	return s
}

func (f *formatter) apply(tmpl string, v Value) (string, error) {
	t, err := f.template(tmpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range t {
		if !p.ph {
			b.WriteString(p.lit)
			continue
		}
		if p.name != "" && p.name != "0" {
			return "", fmt.Errorf("%w: named field %q", errNotFormatted, p.name)
		}
		s, ok := f.formatSpec(p.spec, v)
		if !ok {
			return "", fmt.Errorf("%w: {:%s} on %s", errNotFormatted, p.spec, v.Kind())
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// applyNamed renders a free-form template whose placeholders name columns.
// Each value is already formatted text.
func (f *formatter) applyNamed(tmpl string, vals map[string]string) (string, error) {
	t, err := f.template(tmpl)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range t {
		if !p.ph {
			b.WriteString(p.lit)
			continue
		}
		s, ok := f.formatSpec(p.spec, Text(vals[p.name]))
		if !ok {
			return "", fmt.Errorf("%w: {%s:%s}", errNotFormatted, p.name, p.spec)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

var strftimeVerb = regexp.MustCompile(`%[a-zA-Z]`)

func (f *formatter) formatSpec(raw string, v Value) (string, bool) {
	if (v.kind == KindDate || v.kind == KindDateTime) && strftimeVerb.MatchString(raw) {
		return strftime(v.t, raw)
	}
	sp, err := parseSpec(raw)
	if err != nil {
		return "", false
	}
	switch v.kind {
	case KindNull:
		return "", false
	case KindBool:
		return sp.text(v.render(f.dateDelim))
	case KindText:
		return sp.text(v.s)
	case KindDate, KindDateTime:
		return sp.text(v.render(f.dateDelim))
	case KindInt:
		return sp.integer(v.i, f.currency)
	case KindFloat:
		return sp.float(v.f, f.currency)
	default:
		return "", false
	}
}

// fmtSpec is the parsed form of [[fill]align][sign][#][0][width][,|_][.precision][type].
type fmtSpec struct {
	fill      rune
	align     rune
	sign      rune
	alt       bool
	zero      bool
	width     int
	grouping  rune
	precision int
	typ       rune
}

func isAlign(r rune) bool { return r == '<' || r == '>' || r == '=' || r == '^' }

func parseSpec(s string) (fmtSpec, error) {
	sp := fmtSpec{fill: ' ', precision: -1}
	r := []rune(s)
	i := 0
	switch {
	case len(r) >= 2 && isAlign(r[1]):
		sp.fill, sp.align = r[0], r[1]
		i = 2
	case len(r) >= 1 && isAlign(r[0]):
		sp.align = r[0]
		i = 1
	}
	if i < len(r) && (r[i] == '+' || r[i] == '-' || r[i] == ' ') {
		sp.sign = r[i]
		i++
	}
	if i < len(r) && r[i] == '#' {
		sp.alt = true
		i++
	}
	if i < len(r) && r[i] == '0' {
		sp.zero = true
		i++
	}
	start := i
	for i < len(r) && r[i] >= '0' && r[i] <= '9' {
		i++
	}
	if i > start {
		sp.width, _ = strconv.Atoi(string(r[start:i]))
	}
	if i < len(r) && (r[i] == ',' || r[i] == '_') {
		sp.grouping = r[i]
		i++
	}
	if i < len(r) && r[i] == '.' {
		i++
		start = i
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		if i == start {
			return sp, fmt.Errorf("%w: %q", errBadSpec, s)
		}
		sp.precision, _ = strconv.Atoi(string(r[start:i]))
	}
	if i < len(r) {
		if !strings.ContainsRune("sdnfFeEgG%xXobc$", r[i]) {
			return sp, fmt.Errorf("%w: %q", errBadSpec, s)
		}
		sp.typ = r[i]
		i++
	}
	if i != len(r) {
		return sp, fmt.Errorf("%w: %q", errBadSpec, s)
	}
	return sp, nil
}

func (sp fmtSpec) text(s string) (string, bool) {
	if sp.typ != 0 && sp.typ != 's' {
		return "", false
	}
	if sp.sign != 0 || sp.alt || sp.grouping != 0 || sp.align == '=' {
		return "", false
	}
	if sp.precision >= 0 {
		s = runewidth.Truncate(s, sp.precision, "")
	}
	align := sp.align
	if align == 0 {
		align = '<'
	}
	return pad(s, sp.width, sp.fill, align), true
}

func (sp fmtSpec) integer(i int64, currency string) (string, bool) {
	switch sp.typ {
	case 'f', 'F', 'e', 'E', 'g', 'G', '%', '$':
		return sp.float(float64(i), currency)
	case 's':
		return "", false
	}
	if sp.precision >= 0 {
		return "", false
	}
	neg := i < 0
	u := uint64(i)
	if neg {
		u = uint64(-(i + 1)) + 1
	}
	var digits, prefix string
	switch sp.typ {
	case 0, 'd', 'n':
		digits = group(strconv.FormatUint(u, 10), sp.grouping, 3)
	case 'x':
		digits, prefix = strconv.FormatUint(u, 16), "0x"
	case 'X':
		digits, prefix = strings.ToUpper(strconv.FormatUint(u, 16)), "0X"
	case 'o':
		digits, prefix = strconv.FormatUint(u, 8), "0o"
	case 'b':
		digits, prefix = strconv.FormatUint(u, 2), "0b"
	case 'c':
		if neg || u > math.MaxInt32 {
			return "", false
		}
		return sp.text(string(rune(u)))
	default:
		return "", false
	}
	if prefix != "" {
		digits = group(digits, sp.grouping, 4)
		if !sp.alt {
			prefix = ""
		}
	}
	return sp.number(neg, prefix, digits), true
}

func (sp fmtSpec) float(f float64, currency string) (string, bool) {
	neg := math.Signbit(f) && !math.IsNaN(f)
	a := math.Abs(f)
	upper := sp.typ == 'F' || sp.typ == 'E' || sp.typ == 'G'
	if math.IsInf(a, 0) || math.IsNaN(a) {
		s := "inf"
		if math.IsNaN(a) {
			s = "nan"
		}
		if upper {
			s = strings.ToUpper(s)
		}
		return sp.number(neg, "", s), true
	}
	prec := sp.precision
	var body string
	switch sp.typ {
	case 'f', 'F':
		if prec < 0 {
			prec = 6
		}
		body = groupFloat(strconv.FormatFloat(a, 'f', prec, 64), sp.grouping)
	case 'e', 'E':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(a, byte(sp.typ), prec, 64)
	case 'g', 'G', 'n':
		if prec < 0 {
			prec = 6
		}
		if prec == 0 {
			prec = 1
		}
		verb := byte('g')
		if sp.typ == 'G' {
			verb = 'G'
		}
		body = strconv.FormatFloat(a, verb, prec, 64)
	case '%':
		if prec < 0 {
			prec = 6
		}
		body = groupFloat(strconv.FormatFloat(a*100, 'f', prec, 64), sp.grouping) + "%"
	case '$':
		if prec < 0 {
			prec = 2
		}
		body = groupFloat(strconv.FormatFloat(a, 'f', prec, 64), sp.grouping) + currency
	case 0:
		if prec < 0 {
			body = reprFloat(a)
		} else {
			body = strconv.FormatFloat(a, 'g', max(prec, 1), 64)
			if !strings.ContainsAny(body, ".e") {
				body += ".0"
			}
		}
		body = groupFloat(body, sp.grouping)
	default:
		return "", false
	}
	return sp.number(neg, "", body), true
}

// number assembles sign, prefix and digits and applies padding. Numbers
// align right unless told otherwise.
func (sp fmtSpec) number(neg bool, prefix, body string) string {
	sign := ""
	switch {
	case neg:
		sign = "-"
	case sp.sign == '+':
		sign = "+"
	case sp.sign == ' ':
		sign = " "
	}
	fill, align := sp.fill, sp.align
	if sp.zero && align == 0 {
		fill, align = '0', '='
	}
	if align == 0 {
		align = '>'
	}
	if align == '=' {
		head := sign + prefix
		return head + pad(body, sp.width-runewidth.StringWidth(head), fill, '>')
	}
	return pad(sign+prefix+body, sp.width, fill, align)
}

func pad(s string, width int, fill rune, align rune) string {
	n := width - runewidth.StringWidth(s)
	if n <= 0 {
		return s
	}
	fs := string(fill)
	switch align {
	case '>':
		return strings.Repeat(fs, n) + s
	case '^':
		left := n / 2
		return strings.Repeat(fs, left) + s + strings.Repeat(fs, n-left)
	default:
		return s + strings.Repeat(fs, n)
	}
}

// group inserts sep every n digits from the right.
func group(digits string, sep rune, n int) string {
	if sep == 0 || len(digits) <= n {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % n
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += n {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+n])
	}
	return b.String()
}

func groupFloat(s string, sep rune) string {
	if sep == 0 {
		return s
	}
	end := strings.IndexAny(s, ".eE")
	if end < 0 {
		end = len(s)
	}
	return group(s[:end], sep, 3) + s[end:]
}

// strftime renders t with %-directives. Unknown directives make the
// template inapplicable.
func strftime(t time.Time, layout string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		if layout[i] != '%' || i+1 == len(layout) {
			b.WriteByte(layout[i])
			continue
		}
		i++
		switch layout[i] {
		case 'Y':
			b.WriteString(t.Format("2006"))
		case 'y':
			b.WriteString(t.Format("06"))
		case 'm':
			b.WriteString(t.Format("01"))
		case 'd':
			b.WriteString(t.Format("02"))
		case 'H':
			b.WriteString(t.Format("15"))
		case 'I':
			b.WriteString(t.Format("03"))
		case 'M':
			b.WriteString(t.Format("04"))
		case 'S':
			b.WriteString(t.Format("05"))
		case 'p':
			b.WriteString(t.Format("PM"))
		case 'b':
			b.WriteString(t.Format("Jan"))
		case 'B':
			b.WriteString(t.Format("January"))
		case 'a':
			b.WriteString(t.Format("Mon"))
		case 'A':
			b.WriteString(t.Format("Monday"))
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case '%':
			b.WriteByte('%')
		default:
			return "", false
		}
	}
	return b.String(), true
}

var (
	formatLeft   = regexp.MustCompile(`[{]:[^{}]*<[^{}]*[}]`)
	formatRight  = regexp.MustCompile(`[{]:[^{}]*>[^{}]*[}]`)
	formatNumber = regexp.MustCompile(`[{]:[^{}]*[defghDEFGHMQR$%][}]`)
)

// RightAligned reports whether a column with this normalized format is
// padded on the left. An explicit '<' marker keeps the column left aligned.
func RightAligned(format string) bool {
	if format == "" {
		return false
	}
	if strings.HasPrefix(format, " ") || strings.HasPrefix(format, "{: ") {
		return true
	}
	if formatLeft.MatchString(format) {
		return false
	}
	return formatRight.MatchString(format) || formatNumber.MatchString(format)
}

// FormatValue renders v through a normalized format template using opts,
// falling back to the default rendering when the template does not fit.
func FormatValue(format string, v Value, opts Options) string {
	return newFormatter(opts.withDefaults()).format(format, v)
}
