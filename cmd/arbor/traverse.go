package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/text"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/spf13/cobra"
)

func newTraverseCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traverse",
		Short: "Walk a tree one item per call",
		Long: `Manages persisted traversals stored under .arbor/traversals next to the menus.
Each "next" call prints one item; a traversal survives between invocations.`,
	}

	// Every subcommand shares the file store.
	env := func(cmd *cobra.Command) (*cli.Env, error) {
		opts := flags.options(cmd, nil)
		opts.Store = flags.fileStore()
		return newEnv(cmd, opts)
	}

	var tree string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a traversal and print its ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			cursor, err := e.Engine.StartTraversal(cmd.Context(), tree)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cursor.ID)
			return err
		},
	}
	start.Flags().StringVar(&tree, "tree", "", "Tree ID (default: the configured root)")

	next := &cobra.Command{
		Use:   "next <traversal-id>",
		Short: "Print the next item of a traversal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			item, _, err := e.Engine.NextItem(cmd.Context(), args[0])
			if errors.Is(err, domain.ErrExhausted) {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Traversal %s is exhausted.\n", args[0])
				return err
			}
			if err != nil {
				return err
			}
			return text.PrintItem(cmd.OutOrStdout(), item)
		},
	}

	show := &cobra.Command{
		Use:   "show <traversal-id>",
		Short: "Print the stored state of a traversal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			cursor, err := e.Engine.Traversal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cursor, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List stored traversals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ids, err := e.Engine.Traversals(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				_, err := fmt.Fprintln(out, "No traversals found.")
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <traversal-id>...",
		Short: "Remove one or more traversals",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := env(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			var errs []error
			for _, id := range args {
				if err := e.Engine.StopTraversal(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("removing %s: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed traversal '%s'\n", id)
			}
			return errors.Join(errs...)
		},
	}

	cmd.AddCommand(start, next, show, ls, rm)
	return cmd
}
