package traverse

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Snapshot captures the iterator position as a plain value.
// Only Positions, State and Visited are filled; identity fields are left to
// the caller.
func (it *Iterator) Snapshot() domain.Cursor {
	positions := make([]int, len(it.stack))
	for i, f := range it.stack {
		positions[i] = f.next
	}
	return domain.Cursor{
		Positions: positions,
		State:     it.state,
		Visited:   it.visited,
	}
}

// Resume rebuilds an iterator over root from a cursor taken with Snapshot.
// It fails with domain.ErrInvalidCursor when the positions do not fit root.
// It does not check the cursor digest; callers compare domain.Fingerprint first.
func Resume(root domain.Node, c domain.Cursor) (*Iterator, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", domain.ErrInvalidCursor)
	}
	if !c.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidCursor, c.State)
	}
	if c.Visited < 0 {
		return nil, fmt.Errorf("%w: negative visited count %d", domain.ErrInvalidCursor, c.Visited)
	}

	it := &Iterator{state: c.State, visited: c.Visited}

	if c.State == domain.StateExhausted {
		if len(c.Positions) != 0 {
			return nil, fmt.Errorf("%w: exhausted cursor with %d open frames", domain.ErrInvalidCursor, len(c.Positions))
		}
		return it, nil
	}
	if len(c.Positions) == 0 {
		return nil, fmt.Errorf("%w: %s cursor without frames", domain.ErrInvalidCursor, c.State)
	}
	if c.State == domain.StateReady && (len(c.Positions) != 1 || c.Positions[0] != 0 || c.Visited != 0) {
		return nil, fmt.Errorf("%w: ready cursor must be at the start", domain.ErrInvalidCursor)
	}

	it.stack = make([]frame, 0, len(c.Positions))
	children := []domain.Node{root}
	for level, pos := range c.Positions {
		if pos < 0 || pos > len(children) {
			return nil, fmt.Errorf("%w: position %d out of range at level %d (%d siblings)", domain.ErrInvalidCursor, pos, level, len(children))
		}
		it.stack = append(it.stack, frame{children: children, next: pos})
		if level == len(c.Positions)-1 {
			break
		}
		// The next frame belongs to the menu just before pos.
		if pos == 0 {
			return nil, fmt.Errorf("%w: level %d has no open menu", domain.ErrInvalidCursor, level)
		}
		m, ok := children[pos-1].(*domain.Menu)
		if !ok {
			return nil, fmt.Errorf("%w: level %d parent %q is not a menu", domain.ErrInvalidCursor, level, children[pos-1].Name())
		}
		children = domain.View(m)
	}
	return it, nil
}
