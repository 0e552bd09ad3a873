package domain

import "errors"

// ErrExhausted is returned by Next when no items remain in a traversal.
var ErrExhausted = errors.New("traversal exhausted")

// ErrUnsupported is returned for mutations attempted through a read-only traversal.
var ErrUnsupported = errors.New("operation not supported")

// ErrNotATree is returned when a node is reachable more than once from the root.
var ErrNotATree = errors.New("node graph is not a tree")

// ErrChildIndex is returned when a child index is out of range.
var ErrChildIndex = errors.New("child index out of range")

// ErrNodeNotFound is returned when a loader cannot find a node ID.
var ErrNodeNotFound = errors.New("node not found")

// ErrCycle is returned when child references loop back to an ancestor.
var ErrCycle = errors.New("cycle detected in child references")

// ErrInvalidCursor is returned when a cursor does not fit the tree it is resumed against.
var ErrInvalidCursor = errors.New("invalid cursor")

// ErrStaleCursor is returned when the tree changed since the cursor was created.
var ErrStaleCursor = errors.New("cursor refers to a previous version of the tree")

// ErrTraversalNotFound is returned when a traversal ID cannot be found in the store.
var ErrTraversalNotFound = errors.New("traversal not found")
