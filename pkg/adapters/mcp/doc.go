/*
Package mcp exposes an Arbor engine over the Model Context Protocol.

Tools:

  - get_menu: a tree as JSON
  - get_graph: a tree as a Mermaid flowchart
  - list_items: filtered items in depth-first order
  - start_traversal / next_item: a persisted, one-item-per-call traversal

The default tree is also published as the arbor://menu resource.
Both stdio and SSE transports are supported.
*/
package mcp
