package domain

import "fmt"

// Node types as they appear on the wire (JSON, frontmatter, DSL keywords).
const (
	NodeTypeItem = "item"
	NodeTypeMenu = "menu"
)

// Node is a position in a menu tree: either an *Item (leaf) or a *Menu (container).
// The set of implementations is closed; callers switch on the concrete type.
type Node interface {
	Name() string
	Description() string
	node()
}

// Item is a leaf of the tree. It is immutable once created.
type Item struct {
	name        string
	description string
	vegetarian  bool
	price       float64
}

// NewItem creates a leaf.
func NewItem(name, description string, vegetarian bool, price float64) *Item {
	return &Item{
		name:        name,
		description: description,
		vegetarian:  vegetarian,
		price:       price,
	}
}

func (i *Item) node() {}

// Name returns the item name.
func (i *Item) Name() string { return i.name }

// Description returns the item description.
func (i *Item) Description() string { return i.description }

// Price returns the item price.
func (i *Item) Price() float64 { return i.price }

// Vegetarian reports the dietary marker.
func (i *Item) Vegetarian() bool { return i.vegetarian }

func (i *Item) String() string {
	return fmt.Sprintf("%s (%.2f)", i.name, i.price)
}

// Menu is a container holding an ordered sequence of child nodes.
// Children are appended while the tree is assembled; there is no removal.
type Menu struct {
	name        string
	description string
	children    []Node
}

// NewMenu creates a container with optional initial children.
func NewMenu(name, description string, children ...Node) *Menu {
	m := &Menu{
		name:        name,
		description: description,
	}
	return m.Add(children...)
}

func (m *Menu) node() {}

// Name returns the menu name.
func (m *Menu) Name() string { return m.name }

// Description returns the menu description.
func (m *Menu) Description() string { return m.description }

// Add appends children in order and returns the menu for chaining.
// Nil children are ignored.
func (m *Menu) Add(children ...Node) *Menu {
	for _, c := range children {
		if c == nil {
			continue
		}
		// A typed nil pointer is still nil for our purposes.
		switch v := c.(type) {
		case *Item:
			if v == nil {
				continue
			}
		case *Menu:
			if v == nil {
				continue
			}
		}
		m.children = append(m.children, c)
	}
	return m
}

// Len returns the number of direct children.
func (m *Menu) Len() int { return len(m.children) }

// Child returns the i-th direct child.
func (m *Menu) Child(i int) (Node, error) {
	if i < 0 || i >= len(m.children) {
		return nil, fmt.Errorf("%w: %d (menu %q has %d children)", ErrChildIndex, i, m.name, len(m.children))
	}
	return m.children[i], nil
}

// Children returns a copy of the direct children.
func (m *Menu) Children() []Node {
	out := make([]Node, len(m.children))
	copy(out, m.children)
	return out
}

// View returns the backing slice of children without copying.
// Traversals use it to avoid an allocation per level; the slice must not be modified.
func View(m *Menu) []Node { return m.children }

// TypeOf returns the wire type of a node.
func TypeOf(n Node) string {
	switch n.(type) {
	case *Item:
		return NodeTypeItem
	case *Menu:
		return NodeTypeMenu
	default:
		panic(fmt.Sprintf("domain: unknown node type %T", n))
	}
}
