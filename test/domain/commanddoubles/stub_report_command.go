//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// StubReportCommand is a stub implementation of commands.Report.
type StubReportCommand struct {
	ExecuteCallCount int
	Report           *entities.Report
	ExecuteErr       error
	LastSettings     *entities.Settings
	LastCtxErr       error
}

var _ commands.Report = (*StubReportCommand)(nil)

func (s *StubReportCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
) (*entities.Report, error) {
	s.ExecuteCallCount++
	s.LastCtxErr = ctx.Err()
	s.LastSettings = settings
	return s.Report, s.ExecuteErr
}
