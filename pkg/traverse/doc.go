/*
Package traverse flattens a menu tree into its leaves.

The Iterator keeps an explicit stack of frames, one per open level, instead of
recursing. Each frame holds the sibling slice of that level and the index of
the next sibling to visit. Memory grows with the depth of the tree, the call
stack does not.

Usage:

	it := traverse.New(root)
	for it.HasNext() {
		item, _ := it.Next()
		fmt.Println(item.Name())
	}

Or with range-over-func:

	for item := range traverse.Items(root) {
		fmt.Println(item.Name())
	}

The iterator state can be captured with Snapshot and rebuilt later with Resume,
which is how persisted traversals survive across requests.
*/
package traverse
