package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type wireNode struct {
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Price       *float64          `json:"price,omitempty"`
	Vegetarian  bool              `json:"vegetarian,omitempty"`
	Children    []json.RawMessage `json:"children,omitempty"`
}

// MarshalJSON encodes the item as {"type":"item",...}.
func (i *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string  `json:"type"`
		Name        string  `json:"name"`
		Description string  `json:"description,omitempty"`
		Price       float64 `json:"price"`
		Vegetarian  bool    `json:"vegetarian"`
	}{NodeTypeItem, i.name, i.description, i.price, i.vegetarian})
}

// MarshalJSON encodes the menu and its children as {"type":"menu",...}.
func (m *Menu) MarshalJSON() ([]byte, error) {
	children := m.children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(struct {
		Type        string `json:"type"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Children    []Node `json:"children"`
	}{NodeTypeMenu, m.name, m.description, children})
}

// UnmarshalNode decodes a node previously encoded with MarshalJSON.
// A missing type defaults to item.
func UnmarshalNode(data []byte) (Node, error) {
	var w wireNode
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}

	switch w.Type {
	case "", NodeTypeItem:
		if len(w.Children) > 0 {
			return nil, fmt.Errorf("item %q cannot have children", w.Name)
		}
		var price float64
		if w.Price != nil {
			price = *w.Price
		}
		return NewItem(w.Name, w.Description, w.Vegetarian, price), nil
	case NodeTypeMenu:
		if w.Price != nil || w.Vegetarian {
			return nil, fmt.Errorf("menu %q cannot carry item fields", w.Name)
		}
		m := NewMenu(w.Name, w.Description)
		for i, raw := range w.Children {
			child, err := UnmarshalNode(raw)
			if err != nil {
				return nil, fmt.Errorf("menu %q child %d: %w", w.Name, i, err)
			}
			m.Add(child)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown node type %q", w.Type)
	}
}
