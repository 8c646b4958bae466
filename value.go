package tabtext

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the active variant of a [Value].
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindDate
	KindDateTime
)

var kindNames = [...]string{"null", "bool", "int", "float", "text", "date", "datetime"}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Sentinel texts shared by every text renderer and loader.
const (
	NullText  = "~"
	FalseText = "(no)"
	TrueText  = "(yes)"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02.1504"
	isoDateTime    = "2006-01-02T15:04:05"
)

// Value is a single table cell. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Date returns a calendar date value.
func Date(year int, month time.Month, day int) Value {
	return Value{kind: KindDate, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateTime returns a date with time of day, kept at second precision.
func DateTime(year int, month time.Month, day, hour, minute, sec int) Value {
	return Value{kind: KindDateTime, t: time.Date(year, month, day, hour, minute, sec, 0, time.UTC)}
}

// DateOf returns the calendar date of t, ignoring its time of day.
func DateOf(t time.Time) Value {
	return Date(t.Year(), t.Month(), t.Day())
}

// DateTimeOf returns t as a DateTime value in its own wall clock.
func DateTimeOf(t time.Time) Value {
	return DateTime(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// Kind reports the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload and whether v is an Int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the numeric payload as float64. Ints convert.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// AsText returns the text payload and whether v is Text.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsTime returns the time payload for Date and DateTime values, in UTC.
func (v Value) AsTime() (time.Time, bool) {
	return v.t, v.kind == KindDate || v.kind == KindDateTime
}

// Equal reports whether both values have the same variant and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindText:
		return v.s == o.s
	case KindDate, KindDateTime:
		return v.t.Equal(o.t)
	default:
		return false
	}
}

// String returns the default text rendering with the standard date delimiter.
func (v Value) String() string { return v.render("-") }

func (v Value) render(dateDelim string) string {
	switch v.kind {
	case KindNull:
		return NullText
	case KindBool:
		if v.b {
			return TrueText
		}
		return FalseText
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', 2, 64)
	case KindText:
		return v.s
	case KindDate:
		return withDelim(v.t.Format(dateLayout), dateDelim)
	case KindDateTime:
		return withDelim(v.t.Format(dateTimeLayout), dateDelim)
	default:
		return ""
	}
}

func withDelim(s, delim string) string {
	if delim == "" || delim == "-" {
		return s
	}
	return strings.ReplaceAll(s, "-", delim)
}

// iso renders dates for the typed renderers (JSON, YAML) without losing seconds.
func (v Value) iso() string {
	if v.kind == KindDate {
		return v.t.Format(dateLayout)
	}
	return v.t.Format(isoDateTime)
}

// reprFloat renders a float so that it always reads back as a float.
func reprFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}

var (
	intPattern      = regexp.MustCompile(`^[-+]?\d+$`)
	floatPattern    = regexp.MustCompile(`^[-+]?(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?$`)
	dateTimePattern = regexp.MustCompile(`^(\d{4})-(\d\d)-(\d\d)[.T ](\d\d):?(\d\d)(?::?(\d\d))?$`)
	datePattern     = regexp.MustCompile(`^(\d{4})-(\d\d)-(\d\d)$`)
)

// GuessValue decodes a text cell the way every text loader does: sentinels
// first, then integer, float, date-time and date patterns, otherwise the
// stripped text. Digit-only text always decodes as an integer.
func GuessValue(s string) Value {
	s = strings.TrimSpace(s)
	switch s {
	case NullText:
		return Null()
	case FalseText:
		return Bool(false)
	case TrueText:
		return Bool(true)
	}
	if intPattern.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(i)
		}
	}
	if floatPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	if m := dateTimePattern.FindStringSubmatch(s); m != nil {
		if v, ok := civil(m[1:]); ok {
			return v
		}
	}
	if m := datePattern.FindStringSubmatch(s); m != nil {
		if v, ok := civil(m[1:]); ok {
			return v
		}
	}
	return Text(s)
}

// civil builds a Date (3 parts) or DateTime (5-6 parts) from digit groups,
// rejecting out-of-range components.
func civil(parts []string) (Value, bool) {
	n := make([]int, 6)
	for i, p := range parts {
		if p == "" {
			continue
		}
		x, err := strconv.Atoi(p)
		if err != nil {
			return Value{}, false
		}
		n[i] = x
	}
	if n[1] < 1 || n[1] > 12 || n[2] < 1 || n[2] > 31 || n[3] > 23 || n[4] > 59 || n[5] > 59 {
		return Value{}, false
	}
	t := time.Date(n[0], time.Month(n[1]), n[2], n[3], n[4], n[5], 0, time.UTC)
	if t.Day() != n[2] {
		return Value{}, false
	}
	if len(parts) == 3 {
		return DateOf(t), true
	}
	return DateTimeOf(t), true
}
