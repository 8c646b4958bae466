package tabtext

// Field is a single named value, used to build records in order.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for a [Field].
func F(name string, v Value) Field { return Field{Name: name, Value: v} }

// Record is an insertion-ordered mapping from column name to value.
// The zero Record is empty and ready to use.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns a record holding fields in the given order. A repeated
// name keeps its first position and its last value.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set stores v under name, appending name if it is new.
func (r *Record) Set(name string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.vals[name] = v
}

// Get returns the value for name and whether the record has it.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.vals[name]
	return v, ok
}

// Delete removes name from the record.
func (r *Record) Delete(name string) {
	if _, ok := r.vals[name]; !ok {
		return
	}
	delete(r.vals, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the column names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Fields returns the record contents in insertion order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Name: k, Value: r.vals[k]}
	}
	return out
}

// Len returns the number of columns in the record.
func (r Record) Len() int { return len(r.keys) }

// Clone returns an independent copy.
func (r Record) Clone() Record {
	return NewRecord(r.Fields()...)
}

// Equal reports whether both records hold the same names, in the same
// order, with equal values.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k || !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// Table is an ordered sequence of records. Records need not share columns.
type Table []Record

// Equal reports whether both tables hold equal records in the same order.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if !t[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Columns returns the union of column names in first-seen order.
func (t Table) Columns() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
