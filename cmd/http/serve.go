package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/skill-tracker/internal/app"
	"github.com/SAP-F-2025/skill-tracker/internal/handlers"
	"github.com/SAP-F-2025/skill-tracker/internal/utils"
)

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return err
			}
			cfg, logger, err := app.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger, app.Options{WatchChanges: true})
			if err != nil {
				return err
			}

			if cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()
			log := utils.NewSlogLogger(logger)
			handlers.SetupMiddleware(router, log, cfg.Server.AllowedOrigins...)
			handlers.NewHandlerManager(a.Services, a.Engine, a.Storage, a.Policy, a.Validator, log).SetupRoutes(router)

			server := &http.Server{
				Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
				Handler: router,
			}

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("Starting server", "port", cfg.Server.Port, "environment", cfg.Environment)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			var errs []error
			select {
			case <-ctx.Done():
				logger.Info("Shutting down server...")
			case err, ok := <-serveErr:
				if ok {
					logger.Error("Server failed", "error", err)
					errs = append(errs, err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
			}
			if err := a.Close(shutdownCtx); err != nil {
				errs = append(errs, err)
			}

			logger.Info("Server exited")
			return errors.Join(errs...)
		},
	}

	return cmd
}
