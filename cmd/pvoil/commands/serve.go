package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/pvoil/internal/scheduler"
	"github.com/mamadbah2/pvoil/internal/server/handlers"
	"github.com/mamadbah2/pvoil/internal/server/router"
)

var serveNoSchedule bool

func init() {
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "Serve the API without the daily sync job.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--no-schedule]",
	Short: "Runs the status API and the scheduled daily sync.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newSyncApp(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.close(context.Background()); err != nil {
				a.logger.Error("failed to release resources", zap.Error(err))
			}
		}()

		if !serveNoSchedule {
			sched, err := scheduler.NewScheduler(a.cfg.Schedule, a.sync, a.logger.Named("scheduler"))
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
			a.logger.Info("next scheduled sync", zap.Time("at", sched.Next()))
		}

		handler := handlers.NewPriceHandler(a.reporting, a.sync, a.runLister(), a.logger.Named("handlers.prices"))
		engine := router.New(handler, a.logger.Named("router"))

		srv := &http.Server{
			Addr:         ":" + a.cfg.Server.Port,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			a.logger.Info("server starting", zap.String("port", a.cfg.Server.Port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case err := <-serveErr:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			a.logger.Info("shutdown signal received")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("graceful shutdown failed", zap.Error(err))
		}
		return nil
	},
}
