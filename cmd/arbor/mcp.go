package main

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(flags *rootFlags) *cobra.Command {
	var (
		transport string
		port      int
	)
	cmd := &cobra.Command{
		Use:   "mcp [dir]",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Starts Arbor as an MCP server so AI agents can browse menus, filter items
and walk traversals as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.env(cmd, args)
			if err != nil {
				return err
			}
			defer env.Close()

			if !cmd.Flags().Changed("transport") {
				transport = env.Config.MCP.Transport
			}
			if !cmd.Flags().Changed("port") {
				port = env.Config.MCP.Port
			}

			srv := mcp.NewServer(env.Engine, mcp.WithLogger(env.Logger))
			switch transport {
			case "stdio":
				env.Logger.Info("Starting Arbor MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				env.Logger.Info("Starting Arbor MCP Server (SSE)", "port", port)
				if err := srv.ServeSSE(cmd.Context(), port); err != nil {
					return err
				}
				env.Logger.Info("MCP Server stopped gracefully")
				return nil
			default:
				return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().IntVar(&port, "port", 8081, "Port to listen on (only for SSE)")
	return cmd
}
