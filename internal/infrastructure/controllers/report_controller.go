package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// ReportController handles the "report" subcommand.
type ReportController struct {
	command commands.Report
}

// NewReportController creates a new ReportController.
func NewReportController(command commands.Report) *ReportController {
	return &ReportController{command: command}
}

// GetBind returns the Cobra command metadata for the report controller.
func (it *ReportController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "report",
		Short: "Reconcile live builds with merged pull requests",
		Long: `Read the live build of every service in every environment, then walk
the merged pull requests of the branch it was built from to tell which
ones are deployed and which are still pending.

Release environments also get their base versions and the highest
live version.`,
		Args: cobra.NoArgs,
	}
}

// Execute builds and prints one reconciliation report.
func (it *ReportController) Execute(cmd *cobra.Command, _ []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}

	report, err := it.command.Execute(context.Background(), settings)
	if err != nil {
		logger.Errorf("Report finished with errors: %v", err)
	}
	if report == nil {
		return
	}

	if outErr := writeOutput(cmd, report); outErr != nil {
		logger.Errorf("Failed to write report: %v", outErr)
	}
}
