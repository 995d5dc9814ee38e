package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// VersionsController handles the "versions" subcommand.
type VersionsController struct{}

// NewVersionsController creates a new VersionsController.
func NewVersionsController() *VersionsController {
	return &VersionsController{}
}

// GetBind returns the Cobra command metadata for the versions controller.
func (it *VersionsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "versions <version>...",
		Short: "Sort release versions newest first",
		Args:  cobra.MinimumNArgs(1),
	}
}

// Execute prints the given versions in descending order.
func (it *VersionsController) Execute(cmd *cobra.Command, args []string) {
	sorted, err := entities.SortVersions(args)
	if err != nil {
		logger.Errorf("Failed to sort versions: %v", err)
		return
	}

	if outErr := writeOutput(cmd, sorted); outErr != nil {
		logger.Errorf("Failed to write versions: %v", outErr)
	}
}
