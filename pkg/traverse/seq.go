package traverse

import (
	"iter"

	"github.com/aretw0/arbor/pkg/domain"
)

// Items returns the leaves of root as a range-over-func sequence.
// Each call to the sequence starts a fresh traversal.
func Items(root domain.Node) iter.Seq[*domain.Item] {
	return func(yield func(*domain.Item) bool) {
		it := New(root)
		for it.HasNext() {
			item, err := it.Next()
			if err != nil || !yield(item) {
				return
			}
		}
	}
}

// All returns the remaining leaves of it as a sequence.
// Ranging over it advances the iterator.
func (it *Iterator) All() iter.Seq[*domain.Item] {
	return func(yield func(*domain.Item) bool) {
		for it.HasNext() {
			item, err := it.Next()
			if err != nil || !yield(item) {
				return
			}
		}
	}
}
