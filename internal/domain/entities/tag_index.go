package entities

// CommitTagIndex maps a short commit id to the comma-joined names of the tags
// pointing at it.
type CommitTagIndex map[string]string

// BuildCommitTagIndex aggregates tags per target commit, keeping provider order
// within each commit.
func BuildCommitTagIndex(tags []Tag) CommitTagIndex {
	index := make(CommitTagIndex, len(tags))
	for _, tag := range tags {
		commitID := ShortCommitID(tag.TargetCommitID)
		if existing, ok := index[commitID]; ok {
			index[commitID] = existing + "," + tag.Name
			continue
		}
		index[commitID] = tag.Name
	}
	return index
}

// Version returns the tag names for commitID, or "" when none point at it.
func (idx CommitTagIndex) Version(commitID string) string {
	return idx[ShortCommitID(commitID)]
}
