//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

// PullRequestBuilder helps create merged pull requests with a fluent interface.
type PullRequestBuilder struct {
	*testkit.BaseBuilder
	title         string
	mergeCommitID string
	author        string
	htmlLink      string
}

// NewPullRequestBuilder creates a new pull request builder with sensible defaults.
func NewPullRequestBuilder() *PullRequestBuilder {
	return &PullRequestBuilder{
		BaseBuilder:   testkit.NewBaseBuilder(),
		title:         "ABC-1 test change",
		mergeCommitID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		author:        "Test Author",
		htmlLink:      "https://bitbucket.org/acme/repo/pull-requests/1",
	}
}

// WithTitle sets the pull request title.
func (b *PullRequestBuilder) WithTitle(title string) *PullRequestBuilder {
	b.title = title
	return b
}

// WithMergeCommitID sets the merge commit hash.
func (b *PullRequestBuilder) WithMergeCommitID(commitID string) *PullRequestBuilder {
	b.mergeCommitID = commitID
	return b
}

// WithAuthor sets the author display name.
func (b *PullRequestBuilder) WithAuthor(author string) *PullRequestBuilder {
	b.author = author
	return b
}

// WithHTMLLink sets the web link.
func (b *PullRequestBuilder) WithHTMLLink(link string) *PullRequestBuilder {
	b.htmlLink = link
	return b
}

// Build creates the pull request (satisfies testkit.Builder interface).
func (b *PullRequestBuilder) Build() interface{} {
	return b.BuildPullRequest()
}

// BuildPullRequest creates the pull request with a concrete return type.
func (b *PullRequestBuilder) BuildPullRequest() entities.MergedPullRequest {
	return entities.MergedPullRequest{
		Title:         b.title,
		MergeCommitID: b.mergeCommitID,
		Author:        b.author,
		HTMLLink:      b.htmlLink,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PullRequestBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.title = "ABC-1 test change"
	b.mergeCommitID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	b.author = "Test Author"
	b.htmlLink = "https://bitbucket.org/acme/repo/pull-requests/1"
	return b
}

// Clone creates a deep copy of the PullRequestBuilder.
func (b *PullRequestBuilder) Clone() testkit.Builder {
	return &PullRequestBuilder{
		BaseBuilder:   b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		title:         b.title,
		mergeCommitID: b.mergeCommitID,
		author:        b.author,
		htmlLink:      b.htmlLink,
	}
}

// NewPullRequestPage wraps items into a page whose length and total size
// both equal the number of items.
func NewPullRequestPage(items ...entities.MergedPullRequest) entities.PullRequestPage {
	return entities.PullRequestPage{PageLength: len(items), TotalSize: len(items), Items: items}
}
