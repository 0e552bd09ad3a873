package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/validator"
	"github.com/aretw0/loam"
	"github.com/spf13/cobra"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [dir]",
		Short: "Check the menus for consistency",
		Long: `Crawls the tree from the root document and reports missing children, cycles
and invalid items. Documents no menu references are listed as warnings.
A single menu file is checked by loading every tree it holds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.env(cmd, args)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			source := flags.source(cmd, args)

			info, err := os.Stat(source)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				trees, err := env.Engine.Inspect(ctx)
				if err != nil {
					return fmt.Errorf("validation failed: %w", err)
				}
				for _, t := range trees {
					fmt.Fprintf(out, "%s: %d menus, %d items\n", t.ID, t.Menus, t.Items)
				}
				_, err = fmt.Fprintln(out, "Menus are valid!")
				return err
			}

			repo, err := loam.Init(source, loam.WithStrict(true), loam.WithReadOnly(true))
			if err != nil {
				return fmt.Errorf("failed to initialize loam: %w", err)
			}
			report, err := validator.ValidateTree(ctx, repo, env.Engine.Root())
			if err != nil {
				return err
			}
			for _, id := range report.Unreachable {
				fmt.Fprintf(out, "Warning: %s is not referenced from %s\n", id, report.Root)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			_, err = fmt.Fprintf(out, "Tree %s is valid! (%d nodes)\n", report.Root, report.Visited)
			return err
		},
	}
}
