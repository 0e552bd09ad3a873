package dsl

import (
	"github.com/aretw0/arbor/pkg/domain"
)

type itemSpec struct {
	name, description string
	price             float64
	vegetarian        bool
}

type child struct {
	item *itemSpec
	menu *MenuBuilder
}

// MenuBuilder describes a menu and its children in declaration order.
type MenuBuilder struct {
	name, description string
	children          []child
}

// Menu starts a menu description.
func Menu(name, description string) *MenuBuilder {
	return &MenuBuilder{name: name, description: description}
}

// Item appends a leaf.
func (m *MenuBuilder) Item(name, description string, price float64) *MenuBuilder {
	m.children = append(m.children, child{item: &itemSpec{name: name, description: description, price: price}})
	return m
}

// Veg marks the most recently added item as vegetarian.
// It panics if the last child is not an item.
func (m *MenuBuilder) Veg() *MenuBuilder {
	if len(m.children) == 0 || m.children[len(m.children)-1].item == nil {
		panic("dsl: Veg must follow Item")
	}
	m.children[len(m.children)-1].item.vegetarian = true
	return m
}

// Sub appends a nested menu filled in by fn.
func (m *MenuBuilder) Sub(name, description string, fn func(*MenuBuilder)) *MenuBuilder {
	sub := Menu(name, description)
	if fn != nil {
		fn(sub)
	}
	return m.Menu(sub)
}

// Menu appends an existing menu description.
func (m *MenuBuilder) Menu(sub *MenuBuilder) *MenuBuilder {
	m.children = append(m.children, child{menu: sub})
	return m
}

// Build produces a fresh domain tree. Calling it twice yields two
// independent trees.
func (m *MenuBuilder) Build() *domain.Menu {
	out := domain.NewMenu(m.name, m.description)
	for _, c := range m.children {
		switch {
		case c.item != nil:
			out.Add(domain.NewItem(c.item.name, c.item.description, c.item.vegetarian, c.item.price))
		case c.menu != nil:
			out.Add(c.menu.Build())
		}
	}
	return out
}
