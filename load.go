package tabtext

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads a table written in format f and returns it with its column
// names in order. Cells of the text formats decode through [GuessValue].
func Load(r io.Reader, f Format) (Table, []string, error) {
	switch f {
	case Markdown:
		return LoadMarkdown(r)
	case CSV:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, nil, err
		}
		return LoadCSV(bytes.NewReader(data), sniffComma(data))
	case TSV:
		return LoadCSV(r, '\t')
	case JSON:
		return LoadJSON(r)
	case JSONL:
		return LoadJSONL(r)
	case YAML:
		return LoadYAML(r)
	default:
		return nil, nil, fmt.Errorf("%w: cannot load %q", ErrUnsupportedFormat, f)
	}
}

// LoadMarkdown reads the first pipe table of a GFM document. The line
// after the header is the divider; the table ends at the first line that
// does not start with '|'.
func LoadMarkdown(r io.Reader) (Table, []string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var headers []string
	var table Table
	started, divided := false, false
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if !strings.HasPrefix(line, "|") {
			if started {
				break
			}
			continue
		}
		cells := splitPipes(line)
		switch {
		case !started:
			for _, c := range cells {
				headers = append(headers, strings.TrimSpace(c))
			}
			started = true
		case !divided && isDivider(cells):
			divided = true
		default:
			divided = true
			var rec Record
			for i, name := range headers {
				if i < len(cells) {
					rec.Set(name, GuessValue(cells[i]))
				}
			}
			table = append(table, rec)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return table, headers, nil
}

func splitPipes(line string) []string {
	cells := strings.Split(line, "|")[1:]
	if strings.HasSuffix(strings.TrimSpace(line), "|") && len(cells) > 0 {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func isDivider(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" || strings.Trim(c, "-:") != "" {
			return false
		}
	}
	return true
}

// sniffComma picks ';' unless the first line only has commas.
func sniffComma(data []byte) rune {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(first, []byte(";")) == 0 && bytes.Count(first, []byte(",")) > 0 {
		return ','
	}
	return ';'
}

// LoadCSV reads a delimited table whose first record is the header.
func LoadCSV(r io.Reader, comma rune) (Table, []string, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	headers, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	var table Table
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		var rec Record
		for i, name := range headers {
			if i < len(fields) {
				rec.Set(name, GuessValue(fields[i]))
			}
		}
		table = append(table, rec)
	}
	return table, headers, nil
}

// LoadJSON reads a list of flat objects, keeping key order. Strings that
// look like ISO dates decode as dates.
func LoadJSON(r io.Reader) (Table, []string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if tok != json.Delim('[') {
		return nil, nil, fmt.Errorf("%w: expected a list", ErrMalformedInput)
	}
	var table Table
	for dec.More() {
		rec, err := decodeJSONObject(dec)
		if err != nil {
			return nil, nil, err
		}
		table = append(table, rec)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return table, table.Columns(), nil
}

// LoadJSONL reads one flat object per line.
func LoadJSONL(r io.Reader) (Table, []string, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var table Table
	for dec.More() {
		rec, err := decodeJSONObject(dec)
		if err != nil {
			return nil, nil, err
		}
		table = append(table, rec)
	}
	return table, table.Columns(), nil
}

func decodeJSONObject(dec *json.Decoder) (Record, error) {
	var rec Record
	tok, err := dec.Token()
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if tok != json.Delim('{') {
		return rec, fmt.Errorf("%w: expected an object, got %v", ErrMalformedInput, tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return rec, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		key, _ := tok.(string)
		tok, err = dec.Token()
		if err != nil {
			return rec, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		v, err := jsonScalar(tok)
		if err != nil {
			return rec, fmt.Errorf("%w: key %q", err, key)
		}
		rec.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return rec, nil
}

func jsonScalar(tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return Int(i), nil
			}
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return Float(f), nil
	case string:
		return dateOrText(t), nil
	default:
		return Value{}, fmt.Errorf("%w: nested value", ErrMalformedInput)
	}
}

// dateOrText decodes ISO date strings of the typed formats, leaving every
// other string as text.
func dateOrText(s string) Value {
	if datePattern.MatchString(s) || dateTimePattern.MatchString(s) {
		if v := GuessValue(s); v.kind == KindDate || v.kind == KindDateTime {
			return v
		}
	}
	return Text(s)
}

// LoadYAML reads a sequence of flat mappings, keeping key order.
func LoadYAML(r io.Reader) (Table, []string, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.SequenceNode {
		return nil, nil, fmt.Errorf("%w: expected a sequence", ErrMalformedInput)
	}
	var table Table
	for _, item := range doc.Content[0].Content {
		if item.Kind != yaml.MappingNode {
			return nil, nil, fmt.Errorf("%w: line %d: expected a mapping", ErrMalformedInput, item.Line)
		}
		var rec Record
		for i := 0; i+1 < len(item.Content); i += 2 {
			v, err := yamlValue(item.Content[i+1])
			if err != nil {
				return nil, nil, err
			}
			rec.Set(item.Content[i].Value, v)
		}
		table = append(table, rec)
	}
	return table, table.Columns(), nil
}

func yamlValue(n *yaml.Node) (Value, error) {
	if n.Kind != yaml.ScalarNode {
		return Value{}, fmt.Errorf("%w: line %d: nested value", ErrMalformedInput, n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		return Float(f), nil
	case "!!timestamp":
		var t time.Time
		if err := n.Decode(&t); err != nil {
			return Value{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		if datePattern.MatchString(n.Value) {
			return DateOf(t), nil
		}
		return DateTimeOf(t), nil
	default:
		return Text(n.Value), nil
	}
}
