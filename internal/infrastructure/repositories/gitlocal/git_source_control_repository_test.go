//go:build unit

package gitlocal_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/infrastructure/repositories/gitlocal"
)

type fixture struct {
	dir    string
	first  plumbing.Hash
	second plumbing.Hash
}

func signature(when time.Time) *object.Signature {
	return &object.Signature{Name: "Test Author", Email: "author@example.com", When: when}
}

func commitFile(
	t *testing.T,
	r *git.Repository,
	dir, file, message string,
	when time.Time,
	parents ...plumbing.Hash,
) plumbing.Hash {
	t.Helper()
	wt, err := r.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(message), 0o600))
	_, err = wt.Add(file)
	require.NoError(t, err)
	hash, err := wt.Commit(message, &git.CommitOptions{Author: signature(when), Parents: parents})
	require.NoError(t, err)
	return hash
}

// newFixture builds a devel branch with two merged feature branches, tagged
// dev-1 (lightweight) and dev-2 (annotated).
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	r, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	root := commitFile(t, r, dir, "changelog.xml", `<databaseChangeLog><include file="001.xml"/></databaseChangeLog>`, start)
	side1 := commitFile(t, r, dir, "cat.txt", "CAT-1 work", start.Add(time.Hour), root)
	merge1 := commitFile(t, r, dir, "merge1.txt", "Merge CAT-1 feature\n\nbody", start.Add(2*time.Hour), root, side1)
	side2 := commitFile(t, r, dir, "dog.txt", "CAT-2 work", start.Add(3*time.Hour), merge1)
	merge2 := commitFile(t, r, dir, "merge2.txt", "Merge CAT-2 feature", start.Add(4*time.Hour), merge1, side2)

	require.NoError(t, r.Storer.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName("devel"), merge2),
	))
	_, err = r.CreateTag("dev-1", merge1, nil)
	require.NoError(t, err)
	_, err = r.CreateTag("dev-2", merge2, &git.CreateTagOptions{
		Tagger:  signature(start.Add(5 * time.Hour)),
		Message: "dev-2",
	})
	require.NoError(t, err)
	_, err = r.CreateTag("release-1.0.0", root, nil)
	require.NoError(t, err)

	return fixture{dir: dir, first: merge1, second: merge2}
}

func TestGitSourceControlRepository(t *testing.T) {
	t.Parallel()

	t.Run("should list merge commits of the branch newest first", func(t *testing.T) {
		t.Parallel()

		// given
		fx := newFixture(t)
		provider := gitlocal.NewSourceControlRepository(entities.ProviderSettings{}, time.Second)

		// when
		page, err := provider.SearchMergedPullRequests(
			context.Background(), entities.Repository{Path: fx.dir}, "devel",
		)

		// then
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, 2, page.TotalSize)
		assert.Equal(t, "Merge CAT-2 feature", page.Items[0].Title)
		assert.Equal(t, fx.second.String(), page.Items[0].MergeCommitID)
		assert.Equal(t, "Merge CAT-1 feature", page.Items[1].Title)
		assert.Equal(t, "Test Author", page.Items[1].Author)
	})

	t.Run("should list prefixed tags peeled to their commits newest first", func(t *testing.T) {
		t.Parallel()

		// given
		fx := newFixture(t)
		provider := gitlocal.NewSourceControlRepository(entities.ProviderSettings{}, time.Second)

		// when
		tags, err := provider.ListTags(context.Background(), entities.Repository{Path: fx.dir}, "dev-")

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Tag{
			{Name: "dev-2", TargetCommitID: entities.ShortCommitID(fx.second.String())},
			{Name: "dev-1", TargetCommitID: entities.ShortCommitID(fx.first.String())},
		}, tags)
	})

	t.Run("should read a file from the branch tree", func(t *testing.T) {
		t.Parallel()

		// given
		fx := newFixture(t)
		provider := gitlocal.NewSourceControlRepository(
			entities.ProviderSettings{BaseURL: filepath.Dir(fx.dir)}, time.Second,
		)

		// when
		content, err := provider.FetchFile(
			context.Background(), entities.Repository{Name: filepath.Base(fx.dir)}, "devel", "changelog.xml",
		)

		// then
		require.NoError(t, err)
		entries, err := entities.ParseChangeLog(content)
		require.NoError(t, err)
		assert.Equal(t, []string{"001.xml"}, entries)
	})

	t.Run("should fail for an unknown branch", func(t *testing.T) {
		t.Parallel()

		// given
		fx := newFixture(t)
		provider := gitlocal.NewSourceControlRepository(entities.ProviderSettings{}, time.Second)

		// when
		_, err := provider.SearchMergedPullRequests(
			context.Background(), entities.Repository{Path: fx.dir}, "9.9.0",
		)

		// then
		require.Error(t, err)
	})

	t.Run("should report a missing repository as unavailable", func(t *testing.T) {
		t.Parallel()

		// given
		provider := gitlocal.NewSourceControlRepository(entities.ProviderSettings{}, time.Second)

		// when
		_, err := provider.ListTags(
			context.Background(), entities.Repository{Path: filepath.Join(t.TempDir(), "missing")}, "dev-",
		)

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
	})
}
