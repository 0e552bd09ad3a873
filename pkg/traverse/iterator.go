package traverse

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

type frame struct {
	children []domain.Node
	next     int
}

// Iterator yields the leaves of a tree in depth-first pre-order.
// It is not safe for concurrent use; independent iterators over the same tree
// never share state.
type Iterator struct {
	stack   []frame
	state   domain.TraversalState
	visited int
}

// New creates an iterator positioned before the first leaf of root.
// A nil root behaves like an empty menu.
func New(root domain.Node) *Iterator {
	it := &Iterator{state: domain.StateReady}
	if root == nil {
		it.stack = []frame{{}}
	} else {
		it.stack = []frame{{children: []domain.Node{root}}}
	}
	return it
}

// HasNext reports whether another leaf remains.
// It may be called any number of times without changing what Next returns.
func (it *Iterator) HasNext() bool {
	it.touch()
	return it.settle()
}

// Next returns the next leaf. Once the tree is exhausted it returns an error
// wrapping domain.ErrExhausted.
func (it *Iterator) Next() (*domain.Item, error) {
	it.touch()
	if !it.settle() {
		return nil, fmt.Errorf("next after %d items: %w", it.visited, domain.ErrExhausted)
	}
	top := &it.stack[len(it.stack)-1]
	item := top.children[top.next].(*domain.Item)
	top.next++
	it.visited++
	return item, nil
}

// Remove is not supported: traversals are read-only.
func (it *Iterator) Remove() error {
	return fmt.Errorf("remove during traversal: %w", domain.ErrUnsupported)
}

// State returns the lifecycle state of the iterator.
func (it *Iterator) State() domain.TraversalState { return it.state }

// Visited returns the number of leaves returned so far.
func (it *Iterator) Visited() int { return it.visited }

// Depth returns the number of open menu levels below the root frame.
func (it *Iterator) Depth() int {
	if len(it.stack) == 0 {
		return 0
	}
	return len(it.stack) - 1
}

func (it *Iterator) touch() {
	if it.state == domain.StateReady {
		it.state = domain.StateInProgress
	}
}

// settle pops exhausted frames and descends into menus until the top frame
// points at a leaf. It reports whether such a leaf exists.
func (it *Iterator) settle() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.next >= len(top.children) {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
		switch n := top.children[top.next].(type) {
		case *domain.Item:
			return true
		case *domain.Menu:
			// Advance the parent before pushing so the snapshot of a parent
			// always points past the menu being walked.
			top.next++
			it.stack = append(it.stack, frame{children: domain.View(n)})
		default:
			panic(fmt.Sprintf("traverse: unknown node type %T", n))
		}
	}
	it.state = domain.StateExhausted
	return false
}
