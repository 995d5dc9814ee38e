//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/envtracker/internal/domain/commands"
	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// StubChangeLogDiffCommand is a stub implementation of commands.ChangeLogDiff.
type StubChangeLogDiffCommand struct {
	ExecuteCallCount int
	Diffs            map[string]entities.ServiceDiff
	ExecuteErr       error
	LastVersion      string
}

var _ commands.ChangeLogDiff = (*StubChangeLogDiffCommand)(nil)

func (s *StubChangeLogDiffCommand) Execute(
	_ context.Context,
	_ *entities.Settings,
	releaseBranchOrVersion string,
) (map[string]entities.ServiceDiff, error) {
	s.ExecuteCallCount++
	s.LastVersion = releaseBranchOrVersion
	return s.Diffs, s.ExecuteErr
}
