package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/config"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/constants"
	fxmodules "github.com/LewisSchmidtke/Formula1-DataEngineering/internal/fx"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/middleware"
	"github.com/LewisSchmidtke/Formula1-DataEngineering/internal/server"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Run: func(cmd *cobra.Command, args []string) {
			fx.New(
				fxmodules.Module,
				fx.Invoke(runServer),
			).Run()
		},
	}
}

func runServer(
	lc fx.Lifecycle,
	dashboard *server.DashboardServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()
	dashboard.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(logger)(middleware.Recover(logger)(c.Handler(mux)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: handler,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
