package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/store/sqlite"
)

var (
	servePort int
	serveDB   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API.

Runs are stored in SQLite. Runs older than RUN_RETENTION are deleted every
SWEEP_INTERVAL. On SIGINT/SIGTERM the server stops accepting connections and
waits up to 30s for active requests.`,
	Example: `
  reconciler serve
  reconciler serve --port 3000 --db ":memory:"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, engine, err := setup()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.App.Port = servePort
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.DBPath = serveDB
		}

		store, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		handler := api.NewHandler(store, engine, logger)
		router := api.NewRouter(handler, api.RouterOptions{
			Logger:      logger,
			LogLevel:    cfg.SlogLevel(),
			CORSOrigins: cfg.App.CORSOrigins,
		})

		sweeper := api.NewRetentionSweeper(store, cfg.Retention.RunRetention, logger)
		sweeper.Interval = cfg.Retention.SweepInterval
		sweeper.Start()
		defer sweeper.Stop()

		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.App.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting", slog.Int("port", cfg.App.Port), slog.String("db", cfg.Store.DBPath))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port (overrides APP_PORT)")
	serveCmd.Flags().StringVar(&serveDB, "db", "runs.db", `SQLite database path, ":memory:" for none (overrides DB_PATH)`)
}
