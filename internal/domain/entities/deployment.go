package entities

import (
	"fmt"
	"strings"
)

// deploymentWalk holds the state of a backward walk through merged pull requests.
type deploymentWalk struct {
	liveCommitID string
	found        bool
}

// visit classifies one pull request. The walk is most-recent-merge first, so
// once the live commit is reached every older change is deployed too.
func (it *deploymentWalk) visit(mergeCommitID string) PullRequestStatus {
	if mergeCommitID != "" && mergeCommitID == it.liveCommitID {
		it.found = true
	}
	if it.found {
		return Deployed
	}
	return Pending
}

// WalkResult is the outcome of classifying a page of pull requests.
type WalkResult struct {
	Records []PullRequestRecord
	Found   bool
}

// WalkPullRequests annotates the walkable part of page against the live
// commit. Squashed or rebased histories whose merge commits never equal the
// live commit leave every record Pending.
func WalkPullRequests(page PullRequestPage, index CommitTagIndex, liveCommitID string) WalkResult {
	walk := &deploymentWalk{liveCommitID: ShortCommitID(liveCommitID)}

	limit := page.Walkable()
	records := make([]PullRequestRecord, 0, limit)
	for _, pr := range page.Items[:limit] {
		status := walk.visit(ShortCommitID(pr.MergeCommitID))
		records = append(records, PullRequestRecord{
			Title:             pr.Title,
			MergeCommitID:     ShortCommitID(pr.MergeCommitID),
			Author:            pr.Author,
			HTMLLink:          pr.HTMLLink,
			AssociatedVersion: index.Version(pr.MergeCommitID),
			Status:            status,
			Colour:            status.Colour(),
		})
	}

	return WalkResult{Records: records, Found: walk.found}
}

// BuildLinks expands a build-system URL template for every tag in version.
// The template receives the tag with its environment prefix removed, through
// either a "{}" or a "%s" placeholder.
func BuildLinks(template, tagPrefix, version string) []BuildLink {
	if template == "" || version == "" {
		return nil
	}

	var links []BuildLink
	for _, tag := range strings.Split(version, ",") {
		build := strings.TrimPrefix(tag, tagPrefix)
		var url string
		switch {
		case strings.Contains(template, "{}"):
			url = strings.ReplaceAll(template, "{}", build)
		case strings.Contains(template, "%s"):
			url = fmt.Sprintf(template, build)
		default:
			url = template + build
		}
		links = append(links, BuildLink{Tag: tag, URL: url})
	}
	return links
}
