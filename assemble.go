package tabtext

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"
)

// Column is one output column of an assembled table.
type Column struct {
	// Name is the header text.
	Name string
	// Sources are the input columns the cells are read from.
	Sources []string
	// Format is the normalized template applied to the cells, if any.
	Format string
	Width  int
	Align  Alignment
}

// Row is one output row. Values, Cells and Present are aligned with the
// assembled columns; a column the record lacks holds Null and is not Present.
type Row struct {
	Values  []Value
	Cells   []string
	Present []bool
	key     string
}

// Assembled is a table resolved against its column specs: the ordered
// columns with their widths, and the filtered and sorted rows.
type Assembled struct {
	Columns     []Column
	Rows        []Row
	Legend      Legend
	NoHeaders   bool
	Diagnostics []Diagnostic
	// Format is the output format requested by an '@' directive, if any.
	Format      Format
	Border      BorderStyle
	HeaderStyle func(string) string
	// Currency is the symbol appended by "$" formats.
	Currency string
}

// Record returns row i as a record of its present cells keyed by header.
func (a *Assembled) Record(i int) Record {
	var r Record
	row := a.Rows[i]
	for j, c := range a.Columns {
		if row.Present[j] {
			r.Set(c.Name, row.Values[j])
		}
	}
	return r
}

// Header returns the column names.
func (a *Assembled) Header() []string {
	out := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		out[i] = c.Name
	}
	return out
}

type colPlan struct {
	rule     Rule
	display  string
	source   string
	format   string
	declared bool
	number   bool
	index    int
	used     bool
}

type plan struct {
	declared []*colPlan
	bySource map[string]*colPlan
	display  map[string]*colPlan
	wildcard bool
	fallback map[string]Rule
	extra    []*colPlan
}

// Assemble resolves the column specs of opts against table: it picks and
// names the columns, filters, formats and sorts the rows and measures the
// column widths. A display name claimed by two different sources is a
// configuration error.
func Assemble(table Table, opts Options) (*Assembled, error) {
	specs, directives := splitDirectives(opts.Selects)
	opts, format := opts.withDefaults().applyDirectives(directives)
	rules := ParseSpecs(opts.Headers, specs)

	p, err := newPlan(rules)
	if err != nil {
		return nil, err
	}
	fm := newFormatter(opts)

	var resolved []map[int]Value
	for num, rec := range table {
		vals, ok, err := p.resolve(num, rec, fm)
		if err != nil {
			return nil, err
		}
		if ok {
			resolved = append(resolved, vals)
		}
	}
	p.markUsed(resolved)

	cols := p.columns()
	a := &Assembled{
		Legend:      opts.Legend,
		NoHeaders:   opts.NoHeaders,
		Diagnostics: rules.Diagnostics,
		Format:      format,
		Border:      opts.Border,
		HeaderStyle: opts.HeaderStyle,
		Currency:    opts.Currency,
	}
	for _, c := range cols {
		align := AlignLeft
		if !opts.NoRightAlign && RightAligned(c.format) {
			align = AlignRight
		}
		a.Columns = append(a.Columns, Column{
			Name:    c.display,
			Sources: c.rule.Sources,
			Format:  c.format,
			Width:   max(opts.MinWidth, runewidth.StringWidth(c.display)),
			Align:   align,
		})
	}

	rows := make([]Row, len(resolved))
	for ri, vals := range resolved {
		row := Row{
			Values:  make([]Value, len(cols)),
			Cells:   make([]string, len(cols)),
			Present: make([]bool, len(cols)),
			key:     p.sortKey(vals),
		}
		for ci, c := range cols {
			v, ok := vals[c.index]
			if !ok {
				row.Cells[ci] = NullText
				continue
			}
			row.Values[ci] = v
			row.Present[ci] = true
			row.Cells[ci] = fm.format(c.format, v)
			if w := runewidth.StringWidth(row.Cells[ci]); w > a.Columns[ci].Width {
				a.Columns[ci].Width = w
			}
		}
		rows[ri] = row
	}

	slices.SortStableFunc(rows, func(x, y Row) int { return strings.Compare(x.key, y.key) })

	if opts.Unique {
		rows = unique(rows, cols)
	}
	a.Rows = rows
	return a, nil
}

func newPlan(rules *Rules) (*plan, error) {
	p := &plan{
		bySource: make(map[string]*colPlan),
		display:  make(map[string]*colPlan),
		fallback: make(map[string]Rule),
	}
	headerDisplay := make(map[string]Rule)
	for _, h := range rules.Headers {
		if h.Combined() {
			continue
		}
		if _, ok := p.fallback[h.Name]; !ok {
			p.fallback[h.Name] = h
		}
		if h.Rename != "" {
			headerDisplay[h.Rename] = h
		}
	}
	selecting := len(rules.Selects) > 0
	active := rules.Active()
	if len(active) == 0 {
		p.wildcard = true
	}
	for _, r := range active {
		if r.Name == AllColumns && !r.Combined() {
			p.wildcard = true
			continue
		}
		c := &colPlan{rule: r, display: r.Display(), format: r.Format, declared: true}
		switch {
		case r.Combined():
		case r.Name == RowNumber:
			c.number = true
		default:
			c.source = r.Name
			if h, ok := headerDisplay[r.Name]; ok && selecting {
				if _, isSource := p.fallback[r.Name]; !isSource {
					c.source = h.Name
					c.rule.Sources = []string{h.Name}
				}
			}
			if c.format == "" {
				c.format = p.fallback[c.source].Format
			}
		}
		if prev, ok := p.display[c.display]; ok {
			if prev.source != "" && prev.source == c.source {
				log.Debug().Str("component", "assemble").Str("column", c.display).Msg("duplicate column spec ignored")
				continue
			}
			return nil, fmt.Errorf("%w: %q", ErrColumnConflict, c.display)
		}
		c.index = len(p.declared)
		p.declared = append(p.declared, c)
		p.display[c.display] = c
		if c.source != "" {
			if _, ok := p.bySource[c.source]; !ok {
				p.bySource[c.source] = c
			}
		}
	}
	return p, nil
}

// column returns the plan for an undeclared source column, creating it on
// first sight when every column is shown.
func (p *plan) column(name string) (*colPlan, error) {
	if c, ok := p.bySource[name]; ok {
		return c, nil
	}
	if !p.wildcard {
		return nil, nil
	}
	h := p.fallback[name]
	c := &colPlan{rule: Rule{Name: name, Sources: []string{name}}, display: name, source: name, format: h.Format}
	if h.Rename != "" {
		c.display = h.Rename
	}
	if _, ok := p.display[c.display]; ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnConflict, c.display)
	}
	c.index = len(p.declared) + len(p.extra)
	p.extra = append(p.extra, c)
	p.bySource[name] = c
	p.display[c.display] = c
	return c, nil
}

// resolve reads the column values of one record keyed by plan index. It
// reports false when a filter drops the record.
func (p *plan) resolve(num int, rec Record, fm *formatter) (map[int]Value, bool, error) {
	vals := make(map[int]Value)
	for _, name := range rec.keys {
		c, err := p.column(name)
		if err != nil {
			return nil, false, err
		}
		if c != nil && c.source == name {
			vals[c.index] = rec.vals[name]
		}
	}
	for _, c := range p.declared {
		switch {
		case c.number:
			vals[c.index] = Int(int64(num + 1))
		case c.rule.Combined():
			if v, ok := p.combine(c, rec, fm); ok {
				vals[c.index] = v
			}
		}
		if f := c.rule.Filter; f != nil && !f.Match(vals[c.index]) {
			return nil, false, nil
		}
	}
	return vals, true, nil
}

// combine renders a template column. Missing sources render as "".
func (p *plan) combine(c *colPlan, rec Record, fm *formatter) (Value, bool) {
	parts := make(map[string]string, len(c.rule.Sources))
	found := false
	for _, name := range c.rule.Sources {
		v, ok := rec.Get(name)
		if !ok {
			parts[name] = ""
			continue
		}
		found = true
		format := p.fallback[name].Format
		if sc, ok := p.bySource[name]; ok && sc.format != "" {
			format = sc.format
		}
		parts[name] = fm.format(format, v)
	}
	if !found {
		return Value{}, false
	}
	s, err := fm.applyNamed(c.rule.Template, parts)
	if err != nil {
		log.Debug().Str("component", "assemble").Str("template", c.rule.Template).Err(err).Msg("template fallback")
		texts := make([]string, 0, len(parts))
		for _, name := range c.rule.Sources {
			texts = append(texts, parts[name])
		}
		s = strings.Join(texts, " ")
	}
	return Text(s), true
}

func (p *plan) markUsed(resolved []map[int]Value) {
	all := append(slices.Clone(p.declared), p.extra...)
	for _, vals := range resolved {
		for i := range vals {
			all[i].used = true
		}
	}
}

// columns returns the used columns: declared ones in declaration order,
// then the others by display name.
func (p *plan) columns() []*colPlan {
	var out []*colPlan
	for _, c := range p.declared {
		if c.used {
			out = append(out, c)
		}
	}
	var extra []*colPlan
	for _, c := range p.extra {
		if c.used {
			extra = append(extra, c)
		}
	}
	slices.SortStableFunc(extra, func(a, b *colPlan) int { return cmp.Compare(a.display, b.display) })
	return append(out, extra...)
}

// sortKey encodes the declared columns of a row. Explicit sort suffixes
// reorder the columns; the others sort as "@"*len(i)+i.
func (p *plan) sortKey(vals map[int]Value) string {
	if len(p.declared) == 0 {
		return ""
	}
	order := p.sortOrder()
	parts := make([]string, len(order))
	for i, c := range order {
		parts[i] = sortFragment(vals[c.index])
	}
	return strings.Join(parts, "\n")
}

func (p *plan) sortOrder() []*colPlan {
	explicit := false
	for _, c := range p.declared {
		if c.rule.SortKey != "" {
			explicit = true
			break
		}
	}
	order := slices.Clone(p.declared)
	if !explicit {
		return order
	}
	key := func(c *colPlan) string {
		if c.rule.SortKey != "" {
			return c.rule.SortKey
		}
		return PositionKey(c.index)
	}
	slices.SortStableFunc(order, func(a, b *colPlan) int { return strings.Compare(key(a), key(b)) })
	return order
}

// PositionKey returns the default sort key of the column at position i:
// '@' repeated for each digit of i, then i.
func PositionKey(i int) string {
	s := strconv.Itoa(i)
	return strings.Repeat("@", len(s)) + s
}

// sortFragment encodes a value so that byte order gives
// null < false < true < numbers < dates < text.
func sortFragment(v Value) string {
	switch v.kind {
	case KindNull:
		return "0"
	case KindBool:
		if v.b {
			return "2"
		}
		return "1"
	case KindInt:
		neg := v.i < 0
		u := uint64(v.i)
		if neg {
			u = uint64(-(v.i + 1)) + 1
		}
		return "3" + numberKey(neg, strconv.FormatUint(u, 10), "000000")
	case KindFloat:
		switch {
		case math.IsNaN(v.f):
			return "3/"
		case math.IsInf(v.f, 1):
			return "32"
		case math.IsInf(v.f, -1):
			return "30"
		}
		s := strconv.FormatFloat(math.Abs(v.f), 'f', 6, 64)
		ip, fp, _ := strings.Cut(s, ".")
		return "3" + numberKey(v.f < 0, ip, fp)
	case KindDate, KindDateTime:
		return "4" + v.iso()
	case KindText:
		return "5" + v.s
	default:
		return "0"
	}
}

// numberDigits fits the integer part of math.MaxFloat64.
const numberDigits = 309

// numberKey is a fixed-width sign-magnitude encoding. Negative magnitudes
// are digit-complemented so larger magnitudes sort first.
func numberKey(neg bool, ip, fp string) string {
	if len(ip) < numberDigits {
		ip = strings.Repeat("0", numberDigits-len(ip)) + ip
	}
	s := ip + "." + fp
	if !neg {
		return "1" + s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= '0' && c <= '9' {
			b[i] = '9' - (c - '0')
		}
	}
	return "0" + string(b)
}

func unique(rows []Row, cols []*colPlan) []Row {
	var out []Row
	for i, row := range rows {
		if i > 0 && sameDeclared(rows[i-1], row, cols) {
			continue
		}
		out = append(out, row)
	}
	return out
}

func sameDeclared(a, b Row, cols []*colPlan) bool {
	seen := false
	for i, c := range cols {
		if !c.declared {
			continue
		}
		seen = true
		if !a.Present[i] || !b.Present[i] || a.Cells[i] != b.Cells[i] {
			return false
		}
	}
	return seen
}

// Match reports whether v satisfies the filter. Null and booleans only
// match '=' against their sentinel text; numbers compare numerically,
// dates by ISO text and everything else as strings.
func (f Filter) Match(v Value) bool {
	var c int
	switch v.kind {
	case KindNull, KindBool:
		return f.Op == OpEqual && strings.TrimSpace(f.Operand) == v.String()
	case KindInt, KindFloat:
		x, _ := v.AsFloat()
		y, err := strconv.ParseFloat(strings.TrimSpace(f.Operand), 64)
		if err != nil {
			c = strings.Compare(v.String(), f.Operand)
		} else {
			c = cmp.Compare(x, y)
		}
	case KindDate, KindDateTime:
		o := GuessValue(f.Operand)
		if t, ok := o.AsTime(); ok {
			c = v.t.Compare(t)
		} else {
			c = strings.Compare(v.iso(), f.Operand)
		}
	default:
		c = strings.Compare(v.s, f.Operand)
	}
	switch f.Op {
	case OpLess:
		return c < 0
	case OpGreater:
		return c > 0
	default:
		return c == 0
	}
}
