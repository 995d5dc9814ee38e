package entities

// PullRequestStatus is the deployment state of a merged pull request in one environment.
type PullRequestStatus string

const (
	// Pending means the change is merged but not yet part of the live build.
	Pending PullRequestStatus = "pending"
	// Deployed means the change is contained in the live build.
	Deployed PullRequestStatus = "deployed"
	// Failed marks the synthetic record emitted when the history walk hit a remote failure.
	Failed PullRequestStatus = "failed"
)

// Colour maps the status to the palette the report has always used.
func (s PullRequestStatus) Colour() string {
	switch s {
	case Deployed:
		return "green"
	case Failed:
		return "red"
	default:
		return "lightgray"
	}
}

// MergedPullRequest is a pull request as returned by a source-control provider.
type MergedPullRequest struct {
	Title         string
	MergeCommitID string
	Author        string
	HTMLLink      string
}

// PullRequestPage is one page of merged pull requests, most recent merge first.
type PullRequestPage struct {
	PageLength int
	TotalSize  int
	Items      []MergedPullRequest
}

// Walkable returns how many items of the page the history walk may visit.
func (p PullRequestPage) Walkable() int {
	return max(0, min(p.PageLength, p.TotalSize, len(p.Items)))
}

// Tag is a named reference pointing at a commit.
type Tag struct {
	Name           string
	TargetCommitID string
}

// BuildLink points at the build-system job that produced a tagged build.
type BuildLink struct {
	Tag string `json:"tag" yaml:"tag"`
	URL string `json:"url" yaml:"url"`
}

// PullRequestRecord is a merged pull request annotated for one environment.
type PullRequestRecord struct {
	Title             string            `json:"title" yaml:"title"`
	MergeCommitID     string            `json:"merge_commit_id" yaml:"merge_commit_id"`
	Author            string            `json:"author" yaml:"author"`
	HTMLLink          string            `json:"html_link" yaml:"html_link"`
	AssociatedVersion string            `json:"associated_version" yaml:"associated_version"`
	Status            PullRequestStatus `json:"status" yaml:"status"`
	Colour            string            `json:"colour" yaml:"colour"`
	Issues            []IssueRef        `json:"issues,omitempty" yaml:"issues,omitempty"`
	Builds            []BuildLink       `json:"builds,omitempty" yaml:"builds,omitempty"`
}

// UnknownPullRequestRecord is the marker appended when the walk cannot continue.
func UnknownPullRequestRecord() PullRequestRecord {
	return PullRequestRecord{
		Title:         Unknown,
		MergeCommitID: Unknown,
		Author:        Unknown,
		HTMLLink:      Unknown,
		Status:        Failed,
		Colour:        Failed.Colour(),
	}
}
