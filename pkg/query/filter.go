package query

import (
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/traverse"
)

// Filter reports whether an item should be kept.
type Filter func(*domain.Item) bool

// Vegetarian keeps vegetarian items.
func Vegetarian() Filter {
	return func(i *domain.Item) bool { return i.Vegetarian() }
}

// MaxPrice keeps items priced at or below p.
func MaxPrice(p float64) Filter {
	return func(i *domain.Item) bool { return i.Price() <= p }
}

// NameContains keeps items whose name or description contains term,
// ignoring case. An empty term matches everything.
func NameContains(term string) Filter {
	term = strings.ToLower(term)
	return func(i *domain.Item) bool {
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(i.Name()), term) ||
			strings.Contains(strings.ToLower(i.Description()), term)
	}
}

// All combines filters with a logical AND. Nil filters are ignored.
func All(filters ...Filter) Filter {
	return func(i *domain.Item) bool {
		for _, f := range filters {
			if f != nil && !f(i) {
				return false
			}
		}
		return true
	}
}

// Collect returns the items of root accepted by every filter, in traversal order.
func Collect(root domain.Node, filters ...Filter) []*domain.Item {
	keep := All(filters...)
	var out []*domain.Item
	for item := range traverse.Items(root) {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
