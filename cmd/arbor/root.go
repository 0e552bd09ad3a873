package main

import (
	"os"
	"path/filepath"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	dir      string
	root     string
	config   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "arbor",
		Short: "Arbor walks nested menus of items",
		Long: `Arbor loads menu trees from Markdown, YAML, JSON or .menu files and
prints, filters and traverses their items in menu order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.dir, "dir", ".", "Menu directory or single menu file")
	pf.StringVar(&flags.root, "root", "", "Tree ID to serve (default from arbor.yaml, then \"menu\")")
	pf.StringVar(&flags.config, "config", "", "Configuration file (default: arbor.yaml next to the menus)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	cmd.AddCommand(
		newPrintCmd(flags),
		newItemsCmd(flags),
		newGraphCmd(flags),
		newValidateCmd(flags),
		newServeCmd(flags),
		newMCPCmd(flags),
		newTraverseCmd(flags),
		newVersionCmd(),
	)
	return cmd
}

// source returns --dir, or the first argument when --dir was not given.
func (f *rootFlags) source(cmd *cobra.Command, args []string) string {
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		return args[0]
	}
	return f.dir
}

func (f *rootFlags) options(cmd *cobra.Command, args []string) cli.Options {
	return cli.Options{
		Source:     f.source(cmd, args),
		ConfigPath: f.config,
		Root:       f.root,
		LogLevel:   f.logLevel,
		LogOutput:  cmd.ErrOrStderr(),
	}
}

func (f *rootFlags) env(cmd *cobra.Command, args []string) (*cli.Env, error) {
	return newEnv(cmd, f.options(cmd, args))
}

func newEnv(cmd *cobra.Command, opts cli.Options) (*cli.Env, error) {
	return cli.NewEnv(cmd.Context(), opts)
}

// fileStore keeps CLI traversals next to the menus, so separate invocations share them.
func (f *rootFlags) fileStore() ports.CursorStore {
	base := f.dir
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		base = filepath.Dir(base)
	}
	return file.NewStore(filepath.Join(base, file.DefaultStoreDir))
}
