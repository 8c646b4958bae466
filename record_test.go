package tabtext_test

import (
	"testing"

	"github.com/bjaus/tabtext"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrder(t *testing.T) {
	t.Parallel()
	r := tabtext.NewRecord(
		tabtext.F("b", tabtext.Int(1)),
		tabtext.F("a", tabtext.Int(2)),
		tabtext.F("b", tabtext.Int(3)),
	)
	assert.Equal(t, []string{"b", "a"}, r.Keys())
	assert.Equal(t, 2, r.Len())
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.True(t, tabtext.Int(3).Equal(v))
}

func TestRecordDelete(t *testing.T) {
	t.Parallel()
	r := tabtext.NewRecord(
		tabtext.F("a", tabtext.Int(1)),
		tabtext.F("b", tabtext.Int(2)),
		tabtext.F("c", tabtext.Int(3)),
	)
	r.Delete("b")
	r.Delete("missing")
	assert.Equal(t, []string{"a", "c"}, r.Keys())
	_, ok := r.Get("b")
	assert.False(t, ok)

	r.Set("b", tabtext.Null())
	assert.Equal(t, []string{"a", "c", "b"}, r.Keys())
}

func TestRecordClone(t *testing.T) {
	t.Parallel()
	r := tabtext.NewRecord(tabtext.F("a", tabtext.Int(1)))
	c := r.Clone()
	c.Set("a", tabtext.Int(9))
	c.Set("z", tabtext.Int(0))
	v, _ := r.Get("a")
	assert.True(t, tabtext.Int(1).Equal(v))
	assert.Equal(t, []string{"a"}, r.Keys())
	assert.False(t, r.Equal(c))
}

func TestRecordZeroValue(t *testing.T) {
	t.Parallel()
	var r tabtext.Record
	_, ok := r.Get("a")
	assert.False(t, ok)
	assert.Empty(t, r.Keys())
	r.Set("a", tabtext.Text("x"))
	assert.Equal(t, []tabtext.Field{tabtext.F("a", tabtext.Text("x"))}, r.Fields())
}

func TestRecordEqual(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		a, b tabtext.Record
		want bool
	}{
		"same": {
			a:    tabtext.NewRecord(tabtext.F("a", tabtext.Int(1))),
			b:    tabtext.NewRecord(tabtext.F("a", tabtext.Int(1))),
			want: true,
		},
		"order matters": {
			a:    tabtext.NewRecord(tabtext.F("a", tabtext.Int(1)), tabtext.F("b", tabtext.Int(2))),
			b:    tabtext.NewRecord(tabtext.F("b", tabtext.Int(2)), tabtext.F("a", tabtext.Int(1))),
			want: false,
		},
		"kind matters": {
			a:    tabtext.NewRecord(tabtext.F("a", tabtext.Int(1))),
			b:    tabtext.NewRecord(tabtext.F("a", tabtext.Text("1"))),
			want: false,
		},
		"empty": {want: true},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestTableColumns(t *testing.T) {
	t.Parallel()
	table := tabtext.Table{
		tabtext.NewRecord(tabtext.F("b", tabtext.Int(1))),
		tabtext.NewRecord(tabtext.F("a", tabtext.Int(1)), tabtext.F("b", tabtext.Int(2))),
		tabtext.NewRecord(tabtext.F("c", tabtext.Int(1))),
	}
	assert.Equal(t, []string{"b", "a", "c"}, table.Columns())
	assert.True(t, table.Equal(table))
	assert.False(t, table.Equal(table[:2]))
}
