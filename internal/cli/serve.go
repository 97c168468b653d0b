package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relink/pkg/cache"
	relerrors "github.com/matzehuels/relink/pkg/errors"
	"github.com/matzehuels/relink/pkg/pipeline"
	"github.com/matzehuels/relink/pkg/retry"
	"github.com/matzehuels/relink/pkg/server"
	"github.com/matzehuels/relink/pkg/storage"
)

const (
	connectAttempts = 5
	connectDelay    = 500 * time.Millisecond
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. Diagrams are stored and results cached in the backends
named by the [storage] and [cache] sections of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	var st storage.Store
	if err := connect(ctx, c.Logger, "storage", func() (err error) {
		st, err = newStore(ctx, cfg)
		return err
	}); err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	var cc cache.Cache
	if err := connect(ctx, c.Logger, "cache", func() (err error) {
		cc, err = newCache(ctx, cfg, false)
		return err
	}); err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, versionKeyer(), cfg.NewEngine(c.Logger), c.Logger)
	defer runner.Close()

	c.Logger.Info("starting server", "storage", cfg.Storage.Backend, "cache", cfg.Cache.Backend)
	srv := server.New(cfg.Server, runner, st, c.Logger, server.WithConfigHash(cfg.Hash()))
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connect retries backend connections, which fail while a database or Redis
// is still starting. Configuration errors are not retried.
func connect(ctx context.Context, logger *log.Logger, name string, open func() error) error {
	attempt := 0
	return retry.Do(ctx, connectAttempts, connectDelay, func() error {
		attempt++
		err := open()
		if err == nil || relerrors.Is(err, relerrors.ErrCodeInvalidInput) {
			return err
		}
		logger.Warn("backend unavailable", "backend", name, "attempt", attempt, "err", err)
		return retry.Transient(err)
	})
}
