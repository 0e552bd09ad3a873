package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/spf13/cobra"
)

func newGraphCmd(flags *rootFlags) *cobra.Command {
	var tree, traversal string
	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Export the tree as a Mermaid flowchart",
		Long: `Outputs a Mermaid diagram (graph TD) of a tree. With --traversal, the items
already produced by that CLI traversal are highlighted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, args)
			if traversal != "" {
				opts.Store = flags.fileStore()
			}
			env, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if tree == "" {
				tree = env.Engine.Root()
			}
			visited := -1
			if traversal != "" {
				cursor, err := env.Engine.Traversal(ctx, traversal)
				if err != nil {
					return err
				}
				tree, visited = cursor.Tree, cursor.Visited
			}

			root, err := env.Engine.Load(ctx, tree)
			if err != nil {
				return err
			}
			var overlay *graph.GraphOverlay
			if visited >= 0 {
				overlay = graph.OverlayFor(root, visited)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(root, overlay))
			return err
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree ID (default: the configured root)")
	cmd.Flags().StringVar(&traversal, "traversal", "", "Highlight the progress of a traversal")
	return cmd
}
