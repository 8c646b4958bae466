package tabtext_test

import (
	"math"
	"testing"
	"time"

	"github.com/bjaus/tabtext"
	"github.com/stretchr/testify/assert"
)

func TestGuessValue(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input string
		want  tabtext.Value
	}{
		"null":          {input: "~", want: tabtext.Null()},
		"false":         {input: "(no)", want: tabtext.Bool(false)},
		"true":          {input: " (yes) ", want: tabtext.Bool(true)},
		"int":           {input: "5678", want: tabtext.Int(5678)},
		"negative int":  {input: "-3", want: tabtext.Int(-3)},
		"leading zeros": {input: "007", want: tabtext.Int(7)},
		"huge digits":   {input: "99999999999999999999", want: tabtext.Float(1e20)},
		"float":         {input: "2.5", want: tabtext.Float(2.5)},
		"exponent":      {input: "1e3", want: tabtext.Float(1000)},
		"date":          {input: "2024-01-02", want: tabtext.Date(2024, time.January, 2)},
		"datetime dot":  {input: "2024-01-02.1030", want: tabtext.DateTime(2024, time.January, 2, 10, 30, 0)},
		"datetime iso":  {input: "2024-01-02T10:30:15", want: tabtext.DateTime(2024, time.January, 2, 10, 30, 15)},
		"bad month":     {input: "2024-13-01", want: tabtext.Text("2024-13-01")},
		"bad day":       {input: "2024-02-30", want: tabtext.Text("2024-02-30")},
		"text":          {input: "  hello ", want: tabtext.Text("hello")},
		"empty":         {input: "", want: tabtext.Text("")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := tabtext.GuessValue(tt.input)
			assert.True(t, tt.want.Equal(got), "got %s %q", got.Kind(), got)
		})
	}
}

func TestValueString(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		v    tabtext.Value
		want string
	}{
		"null":     {v: tabtext.Null(), want: "~"},
		"true":     {v: tabtext.Bool(true), want: "(yes)"},
		"false":    {v: tabtext.Bool(false), want: "(no)"},
		"int":      {v: tabtext.Int(-42), want: "-42"},
		"float":    {v: tabtext.Float(2), want: "2.00"},
		"rounded":  {v: tabtext.Float(3.14159), want: "3.14"},
		"text":     {v: tabtext.Text("x"), want: "x"},
		"date":     {v: tabtext.Date(2024, time.March, 5), want: "2024-03-05"},
		"datetime": {v: tabtext.DateTime(2024, time.March, 5, 7, 8, 9), want: "2024-03-05.0708"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestValueAccessors(t *testing.T) {
	t.Parallel()

	var zero tabtext.Value
	assert.True(t, zero.IsNull())
	assert.Equal(t, tabtext.KindNull, zero.Kind())

	b, ok := tabtext.Bool(true).AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	i, ok := tabtext.Int(7).AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(7), i)

	f, ok := tabtext.Int(7).AsFloat()
	assert.True(t, ok)
	assert.InDelta(t, 7.0, f, 0)

	_, ok = tabtext.Text("7").AsFloat()
	assert.False(t, ok)

	s, ok := tabtext.Text("x").AsText()
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	tm, ok := tabtext.DateTime(2024, time.January, 2, 3, 4, 5).AsTime()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC), tm)

	_, ok = tabtext.Int(1).AsTime()
	assert.False(t, ok)
}

func TestValueEqual(t *testing.T) {
	t.Parallel()
	assert.True(t, tabtext.Float(math.NaN()).Equal(tabtext.Float(math.NaN())))
	assert.False(t, tabtext.Int(1).Equal(tabtext.Float(1)))
	assert.False(t, tabtext.Date(2024, 1, 2).Equal(tabtext.DateTime(2024, 1, 2, 0, 0, 0)))
	assert.True(t, tabtext.Null().Equal(tabtext.Value{}))
}

func TestDateOf(t *testing.T) {
	t.Parallel()
	in := time.Date(2024, time.June, 1, 23, 59, 0, 0, time.FixedZone("X", 3600))
	assert.True(t, tabtext.Date(2024, time.June, 1).Equal(tabtext.DateOf(in)))
	assert.True(t, tabtext.DateTime(2024, time.June, 1, 23, 59, 0).Equal(tabtext.DateTimeOf(in)))
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "datetime", tabtext.KindDateTime.String())
	assert.Equal(t, "kind(99)", tabtext.Kind(99).String())
}
