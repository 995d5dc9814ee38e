package entities

// Unknown is shown wherever a value could not be fetched.
const Unknown = "unknown"

const shortCommitLength = 12

// BuildStatus is what a running service reports about itself.
type BuildStatus struct {
	AppBuild   string
	CommitID   string
	CommitTime string
	Known      bool
}

// NewBuildStatus normalises the commit id to its short form.
func NewBuildStatus(appBuild, commitID, commitTime string) BuildStatus {
	return BuildStatus{
		AppBuild:   appBuild,
		CommitID:   ShortCommitID(commitID),
		CommitTime: commitTime,
		Known:      true,
	}
}

// UnknownBuildStatus is used when the status endpoint could not be read.
func UnknownBuildStatus() BuildStatus {
	return BuildStatus{AppBuild: Unknown, CommitID: Unknown, CommitTime: Unknown}
}

// ShortCommitID truncates a commit hash to the 12 characters used for matching.
func ShortCommitID(commitID string) string {
	if len(commitID) > shortCommitLength {
		return commitID[:shortCommitLength]
	}
	return commitID
}
