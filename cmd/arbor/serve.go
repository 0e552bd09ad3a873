package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	arborhttp "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		port  int
		redis string
	)
	cmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Start the HTTP server",
		Long: `Serves the menus as a JSON API described by /openapi.yaml, with traversals
kept in memory or in Redis, and Prometheus metrics on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, args)
			opts.RedisAddr = redis
			env, err := newEnv(cmd, opts)
			if err != nil {
				return err
			}
			defer env.Close()

			env.Registry.MustRegister(collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			handler, err := arborhttp.NewHandler(env.Engine,
				arborhttp.WithLogger(env.Logger),
				arborhttp.WithGatherer(env.Registry),
				arborhttp.WithCORSOrigins(env.Config.HTTP.CORSOrigins...))
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("port") {
				port = env.Config.HTTP.Port
			}
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serverErrors := make(chan error, 1)
			go func() {
				env.Logger.Info("Starting Arbor Server", "addr", srv.Addr, "root", env.Engine.Root())
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-cmd.Context().Done():
				env.Logger.Info("Start shutdown")
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					env.Logger.Error("Graceful shutdown did not complete", "err", err)
					return srv.Close()
				}
				env.Logger.Info("Arbor Server stopped gracefully")
				return nil
			}
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on (default from arbor.yaml)")
	cmd.Flags().StringVar(&redis, "redis", "", "Redis address for traversals (default from arbor.yaml)")
	return cmd
}
