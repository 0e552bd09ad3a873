package compiler

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// yamlNode mirrors the loam frontmatter keys so trees can move between a
// directory of documents and a single file without renaming anything.
type yamlNode struct {
	Type        string     `mapstructure:"type"`
	Name        string     `mapstructure:"name"`
	Description string     `mapstructure:"description"`
	Price       float64    `mapstructure:"price"`
	Vegetarian  bool       `mapstructure:"vegetarian"`
	Children    []yamlNode `mapstructure:"children"`
}

// ParseYAML decodes a nested YAML tree. A node without a type is a menu when
// it has children and an item otherwise. Unknown keys are rejected.
func ParseYAML(src []byte) (domain.Node, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("empty document")
	}

	var n yamlNode
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &n,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid menu document: %w", err)
	}
	return n.toDomain()
}

func (n yamlNode) toDomain() (domain.Node, error) {
	typ := n.Type
	if typ == "" {
		typ = domain.NodeTypeItem
		if len(n.Children) > 0 {
			typ = domain.NodeTypeMenu
		}
	}

	switch typ {
	case domain.NodeTypeItem:
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("item %q cannot have children", n.Name)
		}
		return domain.NewItem(n.Name, n.Description, n.Vegetarian, n.Price), nil
	case domain.NodeTypeMenu:
		m := domain.NewMenu(n.Name, n.Description)
		for i, c := range n.Children {
			child, err := c.toDomain()
			if err != nil {
				return nil, fmt.Errorf("menu %q child %d: %w", n.Name, i, err)
			}
			m.Add(child)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("node %q has unknown type %q", n.Name, n.Type)
	}
}
