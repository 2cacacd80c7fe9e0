package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NavItem is one entry of the declarative navigation tree. In YAML it is written as
//
//	- index.md                  # page, label taken from the page title
//	- Home: index.md            # labelled page
//	- Guides:                   # section
//	    - guides/setup.md
//	- Issues: https://example.com/issues
type NavItem struct {
	Label    string
	Path     string
	Children []NavItem
	Section  bool
}

// IsExternal reports whether the item points outside the site.
func (n NavItem) IsExternal() bool {
	return IsExternalURL(n.Path)
}

// IsExternalURL reports whether s carries a URL scheme or is protocol relative.
func IsExternalURL(s string) bool {
	if strings.HasPrefix(s, "//") {
		return true
	}
	i := strings.Index(s, ":")
	if i <= 0 {
		return false
	}
	for _, r := range s[:i] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// UnmarshalYAML decodes the string and single-key mapping forms.
func (n *NavItem) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var p string
		if err := value.Decode(&p); err != nil {
			return err
		}
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("line %d: empty nav entry", value.Line)
		}
		*n = NavItem{Path: p}
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: nav entry must have exactly one label", value.Line)
		}
		var label string
		if err := value.Content[0].Decode(&label); err != nil {
			return err
		}
		target := value.Content[1]
		switch target.Kind {
		case yaml.ScalarNode:
			var p string
			if err := target.Decode(&p); err != nil {
				return err
			}
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("line %d: nav entry %q has no target", target.Line, label)
			}
			*n = NavItem{Label: label, Path: p}
			return nil
		case yaml.SequenceNode:
			var children []NavItem
			if err := target.Decode(&children); err != nil {
				return err
			}
			*n = NavItem{Label: label, Children: children, Section: true}
			return nil
		default:
			return fmt.Errorf("line %d: nav entry %q must be a path or a list", target.Line, label)
		}
	default:
		return fmt.Errorf("line %d: nav entry must be a string or a mapping", value.Line)
	}
}

// MarshalYAML writes the item back in the form it was read.
func (n NavItem) MarshalYAML() (any, error) {
	if n.Section {
		return map[string][]NavItem{n.Label: n.Children}, nil
	}
	if n.Label == "" {
		return n.Path, nil
	}
	return map[string]string{n.Label: n.Path}, nil
}
