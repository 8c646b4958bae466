package tabtext_test

import (
	"testing"

	"github.com/bjaus/tabtext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecsClauses(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		spec string
		want tabtext.Rule
	}{
		"plain": {
			spec: "name",
			want: tabtext.Rule{Name: "name", Sources: []string{"name"}, Group: "name"},
		},
		"format and rename": {
			spec: "price:.2f@cost",
			want: tabtext.Rule{Name: "price", Sources: []string{"price"}, Format: "{:.2f}", Rename: "cost", Group: "price"},
		},
		"printf format": {
			spec: "n:%5d",
			want: tabtext.Rule{Name: "n", Sources: []string{"n"}, Format: "{:5d}", Group: "n"},
		},
		"rename and sort key": {
			spec: "n@count@2",
			want: tabtext.Rule{Name: "n", Sources: []string{"n"}, Rename: "count", SortKey: "2", Group: "n"},
		},
		"bare sort key": {
			spec: "n@2",
			want: tabtext.Rule{Name: "n", Sources: []string{"n"}, SortKey: "2", Group: "n"},
		},
		"filter": {
			spec: "n>3",
			want: tabtext.Rule{Name: "n", Sources: []string{"n"}, Filter: &tabtext.Filter{Op: tabtext.OpGreater, Operand: "3"}, Group: "n"},
		},
		"filter with format": {
			spec: "n=x:>4",
			want: tabtext.Rule{Name: "n", Sources: []string{"n"}, Format: "{:>4}", Filter: &tabtext.Filter{Op: tabtext.OpEqual, Operand: "x"}, Group: "n"},
		},
		"template": {
			spec: "{first} {last}@name",
			want: tabtext.Rule{
				Name:     "first last",
				Sources:  []string{"first", "last"},
				Template: "{first} {last}",
				Rename:   "name",
				Group:    "first last",
			},
		},
		"row number": {
			spec: "#",
			want: tabtext.Rule{Name: "#", Sources: []string{"#"}, Group: "#"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rules := tabtext.ParseSpecs(nil, []string{tt.spec})
			require.Empty(t, rules.Diagnostics)
			require.Len(t, rules.Selects, 1)
			assert.Equal(t, tt.want, rules.Selects[0])
		})
	}
}

func TestParseSpecsGroups(t *testing.T) {
	t.Parallel()
	rules := tabtext.ParseSpecs([]string{"x"}, []string{"a|b:d", "c"})
	require.Len(t, rules.Headers, 1)
	require.Len(t, rules.Selects, 3)

	a, b, c := rules.Selects[0], rules.Selects[1], rules.Selects[2]
	assert.Equal(t, "a", b.Group)
	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 0, b.Position)
	assert.Equal(t, 1, b.Clause)
	assert.Equal(t, "c", c.Group)
	assert.Equal(t, 1, c.Position)
	assert.Equal(t, rules.Selects, rules.Active())
}

func TestParseSpecsActiveFallsBackToHeaders(t *testing.T) {
	t.Parallel()
	rules := tabtext.ParseSpecs([]string{"a", "b"}, nil)
	assert.Len(t, rules.Active(), 2)
}

func TestParseSpecsDiagnostics(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"empty":          "",
		"empty name":     ":x",
		"unbalanced":     "{a",
		"stray close":    "a}b{c}",
		"bad format":     "a:{:",
		"empty template": "{}",
	}
	for name, spec := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			rules := tabtext.ParseSpecs(nil, []string{spec, "ok"})
			require.Len(t, rules.Diagnostics, 1)
			assert.Equal(t, spec, rules.Diagnostics[0].Spec)
			assert.Error(t, rules.Diagnostics[0].Err)
			require.Len(t, rules.Selects, 1)
			assert.Equal(t, "ok", rules.Selects[0].Name)
		})
	}
}

func TestParseSpecsPartialGroup(t *testing.T) {
	t.Parallel()
	rules := tabtext.ParseSpecs(nil, []string{"a|{b|c"})
	require.Len(t, rules.Diagnostics, 1)
	assert.Equal(t, "{b", rules.Diagnostics[0].Clause)
	require.Len(t, rules.Selects, 2)
	assert.Equal(t, "a", rules.Selects[1].Group)
}

func TestNormalizeFormat(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		input   string
		want    string
		wantErr require.ErrorAssertionFunc
	}{
		"bare spec":       {input: ".2f", want: "{:.2f}", wantErr: require.NoError},
		"empty":           {input: "", want: "{:}", wantErr: require.NoError},
		"brace template":  {input: "[{:>5}]", want: "[{:>5}]", wantErr: require.NoError},
		"printf":          {input: "%5.1f", want: "{:5.1f}", wantErr: require.NoError},
		"printf left":     {input: "%-8s", want: "{:<8s}", wantErr: require.NoError},
		"printf in text":  {input: "id %i!", want: "id {:d}!", wantErr: require.NoError},
		"printf percent":  {input: "%d%%", want: "{:d}%", wantErr: require.NoError},
		"printf braces":   {input: "%s}", want: "{:s}}}", wantErr: require.NoError},
		"printf in brace": {input: "<{:%05d}>", want: "<{:05d}>", wantErr: require.NoError},
		"alias int":       {input: "{:5i}", want: "{:5n}", wantErr: require.NoError},
		"alias repr":      {input: "r", want: "{:s}", wantErr: require.NoError},
		"unbalanced":      {input: "{:", want: "", wantErr: require.Error},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := tabtext.NormalizeFormat(tt.input)
			tt.wantErr(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRightAligned(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		format string
		want   bool
	}{
		"none":        {format: "", want: false},
		"float":       {format: "{:.2f}", want: true},
		"int":         {format: "{:d}", want: true},
		"currency":    {format: "{:$}", want: true},
		"explicit":    {format: "{:>8}", want: true},
		"left wins":   {format: "{:<8.2f}", want: false},
		"text":        {format: "{:s}", want: false},
		"quoted":      {format: `"{:}"`, want: false},
		"space start": {format: " {:}", want: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tabtext.RightAligned(tt.format))
		})
	}
}

func TestFilterString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ">3", tabtext.Filter{Op: tabtext.OpGreater, Operand: "3"}.String())
}
