//go:build unit

package entities_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/test/domain/entitybuilders"
)

func pageOfCommits(commits ...string) entities.PullRequestPage {
	items := make([]entities.MergedPullRequest, 0, len(commits))
	for i, commit := range commits {
		items = append(items, entitybuilders.NewPullRequestBuilder().
			WithTitle(fmt.Sprintf("PR %d", i+1)).
			WithMergeCommitID(commit).
			BuildPullRequest())
	}
	return entitybuilders.NewPullRequestPage(items...)
}

func TestWalkPullRequests(t *testing.T) {
	t.Parallel()

	t.Run("should mark pull requests before the live commit pending and the rest deployed", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("111111111111", "222222222222", "333333333333", "444444444444")

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "333333333333")

		// then
		require.True(t, result.Found)
		require.Len(t, result.Records, 4)
		assert.Equal(t, entities.Pending, result.Records[0].Status)
		assert.Equal(t, entities.Pending, result.Records[1].Status)
		assert.Equal(t, entities.Deployed, result.Records[2].Status)
		assert.Equal(t, entities.Deployed, result.Records[3].Status)
		assert.Equal(t, "lightgray", result.Records[0].Colour)
		assert.Equal(t, "green", result.Records[2].Colour)
	})

	t.Run("should never go back to pending once the live commit is found", func(t *testing.T) {
		t.Parallel()

		// given
		commits := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
		for live := range commits {
			page := pageOfCommits(commits...)

			// when
			result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, commits[live])

			// then
			for i, record := range result.Records {
				if i < live {
					assert.Equal(t, entities.Pending, record.Status, "live=%d position=%d", live, i)
				} else {
					assert.Equal(t, entities.Deployed, record.Status, "live=%d position=%d", live, i)
				}
			}
		}
	})

	t.Run("should leave every record pending when the live commit never appears", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("111111111111", "222222222222")

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "999999999999")

		// then
		assert.False(t, result.Found)
		for _, record := range result.Records {
			assert.Equal(t, entities.Pending, record.Status)
		}
	})

	t.Run("should compare merge commits by their short form", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("abcdef1234567890abcdef")

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "abcdef123456")

		// then
		assert.True(t, result.Found)
		assert.Equal(t, "abcdef123456", result.Records[0].MergeCommitID)
	})

	t.Run("should not match pull requests without a merge commit", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("", "")

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "")

		// then
		assert.False(t, result.Found)
	})

	t.Run("should attach the tags pointing at each merge commit", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("111111111111", "222222222222")
		index := entities.BuildCommitTagIndex([]entities.Tag{
			{Name: "dev-10", TargetCommitID: "222222222222"},
			{Name: "dev-11", TargetCommitID: "222222222222"},
		})

		// when
		result := entities.WalkPullRequests(page, index, "111111111111")

		// then
		assert.Empty(t, result.Records[0].AssociatedVersion)
		assert.Equal(t, "dev-10,dev-11", result.Records[1].AssociatedVersion)
	})

	t.Run("should walk no further than the page length or the total size", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("a1", "a2", "a3", "a4")
		page.PageLength = 3
		page.TotalSize = 2

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "a4")

		// then
		assert.Len(t, result.Records, 2)
		assert.False(t, result.Found)
	})

	t.Run("should walk no further than the items actually returned", func(t *testing.T) {
		t.Parallel()

		// given
		page := pageOfCommits("a1")
		page.PageLength = 50
		page.TotalSize = 120

		// when
		result := entities.WalkPullRequests(page, entities.CommitTagIndex{}, "a1")

		// then
		assert.Len(t, result.Records, 1)
	})
}

func TestBuildLinks(t *testing.T) {
	t.Parallel()

	t.Run("should expand a brace template with the unprefixed tag", func(t *testing.T) {
		t.Parallel()

		// when
		links := entities.BuildLinks("https://ci.example.com/job/cat/{}/", "dev-", "dev-41,dev-42")

		// then
		assert.Equal(t, []entities.BuildLink{
			{Tag: "dev-41", URL: "https://ci.example.com/job/cat/41/"},
			{Tag: "dev-42", URL: "https://ci.example.com/job/cat/42/"},
		}, links)
	})

	t.Run("should expand a printf template", func(t *testing.T) {
		t.Parallel()

		// when
		links := entities.BuildLinks("https://ci.example.com/build/%s", "dev-", "dev-7")

		// then
		assert.Equal(t, []entities.BuildLink{{Tag: "dev-7", URL: "https://ci.example.com/build/7"}}, links)
	})

	t.Run("should return nothing without a template or a version", func(t *testing.T) {
		t.Parallel()

		// then
		assert.Nil(t, entities.BuildLinks("", "dev-", "dev-7"))
		assert.Nil(t, entities.BuildLinks("https://ci.example.com/{}", "dev-", ""))
	})
}
