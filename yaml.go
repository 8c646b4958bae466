package tabtext

import (
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// writeYAML writes a sequence of mappings keeping the column order. Dates
// are tagged as timestamps.
func writeYAML(w io.Writer, a *Assembled) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, row := range a.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for j, c := range a.Columns {
			if !row.Present[j] {
				continue
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Name},
				yamlScalar(row.Values[j]))
		}
		seq.Content = append(seq.Content, m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}}); err != nil {
		return err
	}
	return enc.Close()
}

func yamlScalar(v Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.kind {
	case KindNull:
		n.Tag, n.Value = "!!null", "null"
	case KindBool:
		n.Tag, n.Value = "!!bool", jsonValue(v)
	case KindInt:
		n.Tag, n.Value = "!!int", jsonValue(v)
	case KindFloat:
		n.Tag, n.Value = "!!float", reprFloat(v.f)
		switch {
		case math.IsNaN(v.f):
			n.Value = ".nan"
		case math.IsInf(v.f, 1):
			n.Value = ".inf"
		case math.IsInf(v.f, -1):
			n.Value = "-.inf"
		}
	case KindText:
		n.Tag, n.Value = "!!str", v.s
	case KindDate:
		n.Tag, n.Value = "!!timestamp", v.iso()
	case KindDateTime:
		n.Tag, n.Value = "!!timestamp", v.t.Format("2006-01-02 15:04:05")
	}
	return n
}
