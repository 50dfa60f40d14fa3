package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/zclosure/internal/api"
	"github.com/matzehuels/zclosure/pkg/store"
)

const (
	defaultAddr     = ":8080"
	shutdownTimeout = 10 * time.Second
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		cache   cacheFlags
		noStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the closure pipeline over HTTP",
		Long: `Serve the closure pipeline as a JSON API.

Routes:
  GET    /healthz
  POST   /v1/closure
  GET    /v1/runs
  GET    /v1/runs/{id}
  DELETE /v1/runs/{id}`,
		Example: `  zclosure serve --addr :9000
  zclosure serve --redis redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if !cmd.Flags().Changed("addr") && c.cfg().Server.Addr != "" {
				addr = c.cfg().Server.Addr
			}

			runner, err := c.newRunner(ctx, cache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var st store.Store
			if !noStore {
				st, err = c.newStore(ctx)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer st.Close()
			}

			srv := api.New(runner, st, logger)
			if ttl := c.cfg().Store.TTL.Duration; ttl > 0 {
				srv.RunTTL = ttl
			}
			return serve(ctx, addr, srv.Handler(), logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cache.register(cmd)
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not persist runs")

	return cmd
}

// serve runs an HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
