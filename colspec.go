package tabtext

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// Reserved column names in select lists.
const (
	RowNumber  = "#" // 1-based position of the row in the output
	AllColumns = "*" // every column not named elsewhere in the list
)

// Op is a row filter comparison.
type Op byte

const (
	OpLess    Op = '<'
	OpGreater Op = '>'
	OpEqual   Op = '='
)

// Filter drops rows whose source value does not satisfy Op against Operand.
type Filter struct {
	Op      Op
	Operand string
}

// String returns the filter in clause syntax.
func (f Filter) String() string { return string(f.Op) + f.Operand }

// Rule is one parsed clause of a header or select spec.
type Rule struct {
	// Name is the source column. For template columns it is the
	// space-joined list of Sources.
	Name string
	// Sources lists the input columns the rule reads.
	Sources []string
	// Template is a free-form template over Sources; non-empty marks a
	// combine column.
	Template string
	// Format is the normalized brace template applied to the value.
	Format  string
	Rename  string
	SortKey string
	Filter  *Filter
	// Group is the name of the first clause of the spec string.
	Group    string
	Position int
	Clause   int
}

// Display returns the output header text.
func (r Rule) Display() string {
	if r.Rename != "" {
		return r.Rename
	}
	return r.Name
}

// Combined reports whether the rule merges several source columns.
func (r Rule) Combined() bool { return r.Template != "" }

// Diagnostic describes a clause that could not be parsed and was skipped.
type Diagnostic struct {
	Spec   string
	Clause string
	Err    error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("column spec %q: clause %q: %v", d.Spec, d.Clause, d.Err)
}

// Rules holds the parsed header and select lists.
type Rules struct {
	Headers     []Rule
	Selects     []Rule
	Diagnostics []Diagnostic
}

// Active returns the rules that decide the column set: the selects when
// given, the headers otherwise.
func (r *Rules) Active() []Rule {
	if len(r.Selects) > 0 {
		return r.Selects
	}
	return r.Headers
}

var (
	errEmptyName       = errors.New("empty column name")
	errUnbalanced      = errors.New("unbalanced braces")
	errTemplateNoNames = errors.New("template names no columns")
)

// ParseSpecs parses header and select spec strings. It never fails:
// clauses that cannot be parsed are logged, reported in Diagnostics and
// left out.
func ParseSpecs(headers, selects []string) *Rules {
	rules := &Rules{}
	rules.Headers = parseSpecList(headers, &rules.Diagnostics)
	rules.Selects = parseSpecList(selects, &rules.Diagnostics)
	return rules
}

func parseSpecList(specs []string, diags *[]Diagnostic) []Rule {
	var out []Rule
	for pos, spec := range specs {
		group := ""
		for idx, clause := range strings.Split(spec, "|") {
			rule, err := parseClause(clause)
			if err != nil {
				d := Diagnostic{Spec: spec, Clause: clause, Err: err}
				log.Warn().Str("component", "colspec").Str("spec", spec).Str("clause", clause).Err(err).Msg("skipping column clause")
				*diags = append(*diags, d)
				continue
			}
			if group == "" {
				group = rule.Name
			}
			rule.Group = group
			rule.Position = pos
			rule.Clause = idx
			out = append(out, rule)
		}
	}
	return out
}

func parseClause(clause string) (Rule, error) {
	var rule Rule
	selcol, rename, _ := strings.Cut(clause, "@")
	switch {
	case strings.Contains(selcol, "{") && !strings.Contains(selcol, "{:"):
		names, err := templateNames(selcol)
		if err != nil {
			return rule, err
		}
		rule.Sources = names
		rule.Name = strings.Join(names, " ")
		rule.Template = selcol
	case strings.Contains(selcol, ":"):
		name, form, _ := strings.Cut(selcol, ":")
		f, err := NormalizeFormat(form)
		if err != nil {
			return rule, err
		}
		rule.Name = name
		rule.Format = f
	default:
		rule.Name = selcol
	}
	if !rule.Combined() {
		if i := strings.IndexAny(rule.Name, "<>="); i >= 0 {
			rule.Filter = &Filter{Op: Op(rule.Name[i]), Operand: rule.Name[i+1:]}
			rule.Name = rule.Name[:i]
		}
		if rule.Name == "" {
			return rule, errEmptyName
		}
		rule.Sources = []string{rule.Name}
	}
	rule.Rename, rule.SortKey = parseRename(rename)
	return rule, nil
}

// parseRename splits the part after '@': "newname", "newname@sortkey", or a
// bare sort key when it does not start with a letter.
func parseRename(s string) (name, sortKey string) {
	if s == "" {
		return "", ""
	}
	if n, k, ok := strings.Cut(s, "@"); ok {
		return n, k
	}
	if unicode.IsLetter([]rune(s)[0]) {
		return s, ""
	}
	return "", s
}

// templateNames returns the column names referenced by a free-form
// template, in order of first use.
func templateNames(tmpl string) ([]string, error) {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				return nil, errUnbalanced
			}
			inner := tmpl[i+1 : i+end]
			if strings.ContainsRune(inner, '{') {
				return nil, errUnbalanced
			}
			name, _, _ := strings.Cut(inner, ":")
			if name == "" {
				return nil, errEmptyName
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			i += end
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				i++
				continue
			}
			return nil, errUnbalanced
		}
	}
	if len(names) == 0 {
		return nil, errTemplateNoNames
	}
	return names, nil
}

var (
	printfDirective = regexp.MustCompile(`%([-+ 0#]*)(\d*)(?:\.(\d+))?([sdiufeEgGxXr%])`)
	printfInBraces  = regexp.MustCompile(`\{:(%[^{}]*)\}`)
	aliasType       = regexp.MustCompile(`(\{[^{}]*:[^{}]*)([iuar])\}`)
)

// NormalizeFormat turns the format part of a clause into a brace template.
// A bare spec is wrapped as "{:spec}", printf directives become brace
// placeholders, and the type letters i/u map to n and r/a map to s.
func NormalizeFormat(form string) (string, error) {
	var out string
	switch {
	case strings.Contains(form, "{"):
		out = printfInBraces.ReplaceAllStringFunc(form, func(m string) string {
			inner := m[2 : len(m)-1]
			if loc := printfDirective.FindStringIndex(inner); loc != nil && loc[0] == 0 && loc[1] == len(inner) {
				return printfToBrace(inner)
			}
			return m
		})
	case printfDirective.MatchString(form):
		out = convertPrintf(form)
	default:
		out = "{:" + form + "}"
	}
	if _, err := parseTemplate(out); err != nil {
		return "", err
	}
	return aliasType.ReplaceAllStringFunc(out, func(m string) string {
		switch m[len(m)-2] {
		case 'i', 'u':
			return m[:len(m)-2] + "n}"
		default:
			return m[:len(m)-2] + "s}"
		}
	}), nil
}

// convertPrintf rewrites a printf-style string into a brace template,
// escaping literal braces.
func convertPrintf(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range printfDirective.FindAllStringIndex(s, -1) {
		b.WriteString(escapeBraces(s[last:loc[0]]))
		b.WriteString(printfToBrace(s[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(escapeBraces(s[last:]))
	return b.String()
}

func printfToBrace(d string) string {
	m := printfDirective.FindStringSubmatch(d)
	if m == nil {
		return escapeBraces(d)
	}
	flags, width, prec, verb := m[1], m[2], m[3], m[4]
	if verb == "%" {
		return "%"
	}
	var spec strings.Builder
	if strings.Contains(flags, "-") {
		spec.WriteByte('<')
	}
	switch {
	case strings.Contains(flags, "+"):
		spec.WriteByte('+')
	case strings.Contains(flags, " "):
		spec.WriteByte(' ')
	}
	if strings.Contains(flags, "#") {
		spec.WriteByte('#')
	}
	if strings.Contains(flags, "0") && !strings.Contains(flags, "-") {
		spec.WriteByte('0')
	}
	spec.WriteString(width)
	if prec != "" {
		spec.WriteString("." + prec)
	}
	switch verb {
	case "i", "u":
		spec.WriteByte('d')
	case "r":
		spec.WriteByte('s')
	default:
		spec.WriteString(verb)
	}
	return "{:" + spec.String() + "}"
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
