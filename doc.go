/*
Package arbor is a composite menu tree engine with a resumable, explicit-stack iterator.

A tree is built from two kinds of nodes: menus, which hold an ordered list of
children, and items, which are the leaves. Arbor loads trees from a directory of
Markdown/YAML/JSON documents (through Loam), from whole-tree files in its own
menu language, or from any custom ports.TreeLoader, and walks their items
depth-first in declaration order.

# Concept

The iterator keeps its position as a stack of frames instead of recursion, so
any depth is safe and the position can be captured as a domain.Cursor. Cursors
are persisted by a ports.CursorStore (memory, file, Redis), which lets a
traversal continue across requests and processes ("Durable Traversal").

# Key Features

  - Depth-first leaf iteration with HasNext/Next and range-over-func sequences.
  - Persisted traversals guarded by per-id locks and optional distributed locks.
  - Fingerprinted cursors: a traversal over a changed tree fails instead of drifting.
  - Adapters for HTTP (chi + OpenAPI), MCP and a cobra CLI.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
	)

	func main() {
		// Reads ./menus; the tree served by default is the "menu" document.
		eng, err := arbor.New("./menus")
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		items, err := eng.Items(ctx)
		if err != nil {
			log.Fatal(err)
		}
		for _, item := range items {
			fmt.Println(item.Name(), item.Price())
		}
	}

# Persisted traversals

	cursor, _ := eng.StartTraversal(ctx, "")
	for {
		item, _, err := eng.NextItem(ctx, cursor.ID)
		if errors.Is(err, domain.ErrExhausted) {
			break
		}
		fmt.Println(item)
	}
*/
package arbor
