package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTreeLoad         EventType = "tree_load"
	EventTraversalStart   EventType = "traversal_start"
	EventItem             EventType = "item"
	EventTraversalExhaust EventType = "traversal_exhausted"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Tree      string    `json:"tree"`
}

// TreeEvent is emitted after a tree has been resolved by a loader.
type TreeEvent struct {
	EventBase
	Menus int   `json:"menus"`
	Items int   `json:"items"`
	Err   error `json:"-"`
}

// TraversalEvent describes a step of a persisted traversal.
type TraversalEvent struct {
	EventBase
	TraversalID string `json:"traversal_id"`
	Item        string `json:"item,omitempty"`
	Visited     int    `json:"visited"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnTreeLoad       func(context.Context, *TreeEvent)
	OnTraversalStart func(context.Context, *TraversalEvent)
	OnItem           func(context.Context, *TraversalEvent)
	OnExhausted      func(context.Context, *TraversalEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTreeLoad:       chain(h.OnTreeLoad, other.OnTreeLoad),
		OnTraversalStart: chain(h.OnTraversalStart, other.OnTraversalStart),
		OnItem:           chain(h.OnItem, other.OnItem),
		OnExhausted:      chain(h.OnExhausted, other.OnExhausted),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
