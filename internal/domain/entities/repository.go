package entities

// Repository is an opaque handle to a source-control repository.
type Repository struct {
	Provider     string // key into the configured providers
	Organization string // workspace, owner, group or organization URL
	Project      string // Azure DevOps only
	Name         string
	Path         string // local clone, git provider only
}

// FullName returns "organization/name" or the plain name when no organization is set.
func (r Repository) FullName() string {
	if r.Organization == "" {
		return r.Name
	}
	return r.Organization + "/" + r.Name
}
