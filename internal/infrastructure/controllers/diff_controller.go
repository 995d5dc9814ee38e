package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// DiffController handles the "diff" subcommand.
type DiffController struct {
	command commands.ChangeLogDiff
}

// NewDiffController creates a new DiffController.
func NewDiffController(command commands.ChangeLogDiff) *DiffController {
	return &DiffController{command: command}
}

// GetBind returns the Cobra command metadata for the diff controller.
func (it *DiffController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "diff <release-version|branch>",
		Short: "Compare database change-logs between devel and a release",
		Long: `Fetch the database change-log of every service that has one from the
unstable branch and from the given release branch, and list the
migrations side by side.

A version such as release-1.2.7 is turned into its 1.2.0 branch.
Migrations that the release branch replaced are marked superseded.`,
		Args: cobra.ExactArgs(1),
	}
}

// Execute runs the diff and prints one entry per service.
func (it *DiffController) Execute(cmd *cobra.Command, args []string) {
	settings, err := loadSettings(cmd)
	if err != nil {
		logger.Error(err)
		return
	}

	diffs, err := it.command.Execute(context.Background(), settings, args[0])
	if err != nil {
		logger.Errorf("Diff failed: %v", err)
		return
	}

	if outErr := writeOutput(cmd, diffs); outErr != nil {
		logger.Errorf("Failed to write diff: %v", outErr)
	}
}
