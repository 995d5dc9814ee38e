package controllers

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

const shutdownTimeout = 10 * time.Second

// ServeController handles the "serve" subcommand.
type ServeController struct {
	report   commands.Report
	diff     commands.ChangeLogDiff
	gatherer prometheus.Gatherer
}

// NewServeController creates a new ServeController.
func NewServeController(
	report commands.Report,
	diff commands.ChangeLogDiff,
	gatherer prometheus.Gatherer,
) *ServeController {
	return &ServeController{report: report, diff: diff, gatherer: gatherer}
}

// GetBind returns the Cobra command metadata for the serve controller.
func (it *ServeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		Long: `Start a JSON API exposing the reconciliation report, the change-log
diff and version sorting, plus Prometheus metrics.

Routes:
  GET /service-versions
  GET /dbchangelogs/diff/:version
  GET /versions?v=release-1.2.3&v=release-1.10.0
  GET /metrics`,
		Args: cobra.NoArgs,
	}
}

// Execute serves until SIGINT or SIGTERM, then shuts down gracefully.
func (it *ServeController) Execute(cmd *cobra.Command, _ []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}
	listen, _ := cmd.Flags().GetString("listen")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := NewServer(settings, it.report, it.diff, it.gatherer)
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: settings.RequestTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server error: %v", err)
		}
		return
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

// AddFlags adds the serve-specific flags to the given Cobra command.
func (it *ServeController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("listen", "l", ":8080", "Address to listen on")
}
