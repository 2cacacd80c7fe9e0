package frontmatter

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// SerializeYAML renders fields as a YAML block without delimiters. Mapping keys come out
// sorted at every depth and line endings follow style. No fields give an empty block.
func SerializeYAML(fields map[string]any, style Style) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	root, err := valueNode(fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err = enc.Encode(root)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	if nl := style.Newline; nl != "" && nl != "\n" {
		return bytes.ReplaceAll(buf.Bytes(), []byte("\n"), []byte(nl)), nil
	}
	return buf.Bytes(), nil
}

// valueNode builds the node tree by hand for containers so ordering is explicit;
// scalars go through yaml's own encoder.
func valueNode(v any) (*yaml.Node, error) {
	switch vv := v.(type) {
	case map[string]any:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range slices.Sorted(maps.Keys(vv)) {
			child, err := valueNode(vv[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return n, nil
	case map[any]any:
		m := make(map[string]any, len(vv))
		for k, x := range vv {
			m[fmt.Sprint(k)] = x
		}
		return valueNode(m)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, x := range vv {
			child, err := valueNode(x)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case time.Time:
		// Plain dates such as `date: 2024-05-01` decode to midnight UTC; keep them plain.
		if vv.Location() == time.UTC && vv.Equal(vv.Truncate(24*time.Hour)) {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: vv.Format(time.DateOnly)}, nil
		}
	}
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}
