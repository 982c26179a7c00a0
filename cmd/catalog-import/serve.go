package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalogimport/internal/core"
	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/web"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		host    string
		port    int
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP import API",
		Long: `Start the HTTP import API.

Endpoints:
  POST   /api/imports                 upload a file (multipart field "file", optional "dryRun")
  GET    /api/imports                 list recent runs
  GET    /api/imports/{id}            run progress and result
  DELETE /api/imports/{id}            cancel a running import
  GET    /api/imports/{id}/failures   failed records as CSV
  GET    /healthz                     liveness and import slot status`,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			cfg, logger, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := database.Connect(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()
			logger.Info("connected to database", "name", database.DatabaseName(cfg.Database.URL))

			if migrate {
				if err := database.Migrate(pool, logger); err != nil {
					return err
				}
			}

			service := core.NewService(database.NewCatalog(pool), database.NewRunStore(pool), cfg.Import, logger)
			server := web.NewServer(service, cfg, logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start(cfg.Server.Addr())
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			if status := service.LimiterStatus(); status.Active > 0 {
				logger.Info("waiting for imports to complete", "active", status.Active)
				if err := service.WaitForImports(shutdownCtx); err != nil {
					// Cancelled runs stop after the record in progress and
					// still commit what they processed.
					logger.Warn("imports did not complete in time, cancelling",
						"error", err, "cancelled", service.CancelAll())
					drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
					if err := service.WaitForImports(drainCtx); err != nil {
						logger.Error("cancelled imports did not stop", "error", err)
					}
					drainCancel()
				} else {
					logger.Info("all imports completed")
				}
			}

			httpCtx, httpCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer httpCancel()
			if err := server.Shutdown(httpCtx); err != nil {
				logger.Error("shutdown error", "error", err)
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("server stopped", "uptime", time.Since(started).Round(time.Second))
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}
