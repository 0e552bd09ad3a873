package domain

import (
	"slices"
	"time"
)

// TraversalState is the lifecycle state of a traversal.
type TraversalState string

const (
	StateReady      TraversalState = "ready"       // Created, nothing asked yet
	StateInProgress TraversalState = "in_progress" // At least one HasNext/Next call
	StateExhausted  TraversalState = "exhausted"   // Terminal
)

func (s TraversalState) String() string { return string(s) }

// Valid reports whether s is one of the known states.
func (s TraversalState) Valid() bool {
	switch s {
	case StateReady, StateInProgress, StateExhausted:
		return true
	}
	return false
}

// Cursor is a plain-value snapshot of a traversal.
//
// Positions holds one entry per open stack frame, from the root outwards.
// Each entry is the index of the next sibling to visit in that frame. The
// first frame always holds the root alone, so Positions[0] is 0 or 1.
type Cursor struct {
	ID        string         `json:"id"`
	Tree      string         `json:"tree"`
	Digest    uint64         `json:"digest"`
	Positions []int          `json:"positions"`
	State     TraversalState `json:"state"`
	Visited   int            `json:"visited"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Sealed carries the encrypted cursor when stored through an encrypting
	// store; the position fields are then empty.
	Sealed string `json:"sealed,omitempty"`
}

// Clone returns a deep copy of the cursor.
func (c *Cursor) Clone() *Cursor {
	if c == nil {
		return nil
	}
	out := *c
	out.Positions = slices.Clone(c.Positions)
	return &out
}
