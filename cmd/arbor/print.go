package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/text"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/query"
	"github.com/spf13/cobra"
)

func newPrintCmd(flags *rootFlags) *cobra.Command {
	var vegetarian, rich, watch bool
	cmd := &cobra.Command{
		Use:   "print [dir]",
		Short: "Print a menu tree",
		Long:  `Prints every menu heading and item of the tree in menu order, or only the vegetarian items.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.env(cmd, args)
			if err != nil {
				return err
			}
			defer env.Close()

			var render func(string) (string, error)
			if rich {
				if render, err = tui.NewRenderer(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			show := func(ctx context.Context) error {
				root, err := env.Engine.Load(ctx, env.Engine.Root())
				if err != nil {
					return err
				}
				switch {
				case vegetarian:
					return text.PrintItems(out, text.VegetarianTitle, query.Collect(root, query.Vegetarian()))
				case render != nil:
					md, err := render(text.Markdown(root))
					if err != nil {
						return err
					}
					_, err = io.WriteString(out, md)
					return err
				default:
					return text.PrintMenu(out, root)
				}
			}

			if watch {
				return cli.Watch(cmd.Context(), env.Engine, env.Logger, show)
			}
			return show(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&vegetarian, "vegetarian", false, "Only print vegetarian items")
	cmd.Flags().BoolVar(&rich, "rich", false, "Render as styled Markdown")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print again whenever a document changes")
	return cmd
}

func newItemsCmd(flags *rootFlags) *cobra.Command {
	var (
		tree       string
		vegetarian bool
		maxPrice   float64
		term       string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "items [dir]",
		Short: "List the items of a tree",
		Long:  `Lists the items of a tree in menu order. Filters combine: an item is listed only if it passes all of them.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filters []query.Filter
			if vegetarian {
				filters = append(filters, query.Vegetarian())
			}
			if cmd.Flags().Changed("max-price") {
				filters = append(filters, query.MaxPrice(maxPrice))
			}
			if term != "" {
				clean, err := query.SanitizeTerm(term)
				if err != nil {
					return err
				}
				filters = append(filters, query.NameContains(clean))
			}

			env, err := flags.env(cmd, args)
			if err != nil {
				return err
			}
			defer env.Close()

			if tree == "" {
				tree = env.Engine.Root()
			}
			root, err := env.Engine.Load(cmd.Context(), tree)
			if err != nil {
				return err
			}
			items := query.Collect(root, filters...)

			if asJSON {
				if items == nil {
					items = []*domain.Item{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			if len(items) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No items found.")
				return err
			}
			for _, item := range items {
				if err := text.PrintItem(cmd.OutOrStdout(), item); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree ID (default: the configured root)")
	cmd.Flags().BoolVar(&vegetarian, "vegetarian", false, "Only vegetarian items")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Only items priced at or below this value")
	cmd.Flags().StringVarP(&term, "query", "q", "", "Text to find in name or description")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")
	return cmd
}
