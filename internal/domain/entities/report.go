package entities

import "time"

// ReconciliationRow is the state of one service in one environment.
type ReconciliationRow struct {
	Service      string              `json:"service" yaml:"service"`
	Build        string              `json:"build" yaml:"build"`
	CommitID     string              `json:"commit_id" yaml:"commit_id"`
	CommitTime   string              `json:"commit_time" yaml:"commit_time"`
	BaseVersion  string              `json:"base_version,omitempty" yaml:"base_version,omitempty"`
	Found        bool                `json:"found" yaml:"found"`
	PullRequests []PullRequestRecord `json:"pull_requests" yaml:"pull_requests"`
	Error        string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReconciliationRow starts a row from the live status of a service.
func NewReconciliationRow(service string, status BuildStatus) ReconciliationRow {
	return ReconciliationRow{
		Service:      service,
		Build:        status.AppBuild,
		CommitID:     status.CommitID,
		CommitTime:   status.CommitTime,
		PullRequests: []PullRequestRecord{},
	}
}

// EnvironmentReport groups the rows of one environment in topology order.
type EnvironmentReport struct {
	Name           string              `json:"name" yaml:"name"`
	Kind           EnvironmentKind     `json:"kind" yaml:"kind"`
	HighestVersion string              `json:"highest_version,omitempty" yaml:"highest_version,omitempty"`
	Rows           []ReconciliationRow `json:"rows" yaml:"rows"`
}

// Row returns the row for service, if present.
func (e *EnvironmentReport) Row(service string) (ReconciliationRow, bool) {
	for _, row := range e.Rows {
		if row.Service == service {
			return row, true
		}
	}
	return ReconciliationRow{}, false
}

// Report is the presentation-agnostic reconciliation result.
type Report struct {
	RunID        string              `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time           `json:"generated_at" yaml:"generated_at"`
	Services     []string            `json:"services" yaml:"services"`
	Environments []EnvironmentReport `json:"environments" yaml:"environments"`
}

// Environment returns the report section for name, if present.
func (r *Report) Environment(name string) (*EnvironmentReport, bool) {
	for i := range r.Environments {
		if r.Environments[i].Name == name {
			return &r.Environments[i], true
		}
	}
	return nil, false
}
