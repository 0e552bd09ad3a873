/*
Package domain contains the core types of the Arbor tree engine.

It defines the two node variants of a menu tree, the serializable traversal
cursor and the sentinel errors shared by every layer. The package is kept pure
and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: a closed sum type implemented by *Item (leaf) and *Menu (container).
  - Cursor: a snapshot of a traversal's explicit stack, safe to persist.
  - LifecycleHooks: optional callbacks for observability.
*/
package domain
