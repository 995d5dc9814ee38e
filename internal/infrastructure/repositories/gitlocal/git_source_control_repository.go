// Package gitlocal reads reconciliation data from a local clone. Merge commits
// on the first-parent history of a branch stand in for merged pull requests.
package gitlocal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/domain/repositories"
)

const (
	providerName   = "git"
	maxMergeCommit = 50
	remoteName     = "origin"
)

var errBranchNotFound = errors.New("branch not found")

// GitSourceControlRepository implements repositories.SourceControlRepository on
// top of a local clone opened with go-git.
type GitSourceControlRepository struct {
	root string
}

// NewSourceControlRepository creates a local provider. The settings base URL, when
// set, is the directory relative repository paths are resolved against.
func NewSourceControlRepository(
	settings entities.ProviderSettings,
	_ time.Duration,
) repositories.SourceControlRepository {
	return &GitSourceControlRepository{root: settings.BaseURL}
}

func (p *GitSourceControlRepository) Name() string { return providerName }

func (p *GitSourceControlRepository) SearchMergedPullRequests(
	ctx context.Context,
	repo entities.Repository,
	branch string,
) (entities.PullRequestPage, error) {
	r, err := p.open(repo)
	if err != nil {
		return entities.PullRequestPage{}, err
	}

	head, err := resolveBranch(r, branch)
	if err != nil {
		return entities.PullRequestPage{}, err
	}

	commit, err := r.CommitObject(head)
	if err != nil {
		return entities.PullRequestPage{}, fmt.Errorf("failed to read commit %s: %w", head, err)
	}

	var items []entities.MergedPullRequest
	// first-parent walk: merge commits on the branch itself, newest first
	for commit != nil && len(items) < maxMergeCommit {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entities.PullRequestPage{}, fmt.Errorf("%w: %w", entities.ErrRemoteUnavailable, ctxErr)
		}

		if commit.NumParents() > 1 {
			items = append(items, entities.MergedPullRequest{
				Title:         firstLine(commit.Message),
				MergeCommitID: commit.Hash.String(),
				Author:        commit.Author.Name,
				HTMLLink:      commit.Hash.String(),
			})
		}

		if commit.NumParents() == 0 {
			break
		}
		commit, err = commit.Parent(0)
		if err != nil {
			return entities.PullRequestPage{}, fmt.Errorf("failed to walk history: %w", err)
		}
	}

	return entities.PullRequestPage{
		PageLength: maxMergeCommit,
		TotalSize:  len(items),
		Items:      items,
	}, nil
}

// ListTags returns tags starting with prefix, newest target commit first.
func (p *GitSourceControlRepository) ListTags(
	_ context.Context,
	repo entities.Repository,
	prefix string,
) ([]entities.Tag, error) {
	r, err := p.open(repo)
	if err != nil {
		return nil, err
	}

	refs, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	type datedTag struct {
		tag  entities.Tag
		when time.Time
	}
	var dated []datedTag

	iterErr := refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !strings.HasPrefix(name, prefix) {
			return nil
		}

		target := ref.Hash()
		if annotated, tagErr := r.TagObject(target); tagErr == nil {
			target = annotated.Target
		}

		var when time.Time
		if commit, commitErr := r.CommitObject(target); commitErr == nil {
			when = commit.Committer.When
		}

		dated = append(dated, datedTag{
			tag:  entities.Tag{Name: name, TargetCommitID: entities.ShortCommitID(target.String())},
			when: when,
		})
		return nil
	})
	if iterErr != nil && !errors.Is(iterErr, storer.ErrStop) {
		return nil, fmt.Errorf("failed to read tags: %w", iterErr)
	}

	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].when.After(dated[j].when)
	})

	tags := make([]entities.Tag, 0, len(dated))
	for _, d := range dated {
		tags = append(tags, d.tag)
	}
	return tags, nil
}

func (p *GitSourceControlRepository) FetchFile(
	_ context.Context,
	repo entities.Repository,
	branch, path string,
) ([]byte, error) {
	r, err := p.open(repo)
	if err != nil {
		return nil, err
	}

	head, err := resolveBranch(r, branch)
	if err != nil {
		return nil, err
	}

	commit, err := r.CommitObject(head)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", head, err)
	}

	file, err := commit.File(strings.TrimPrefix(path, "/"))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("file %q not found on %s: %w", path, branch, err)
		}
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	reader, err := file.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (p *GitSourceControlRepository) open(repo entities.Repository) (*git.Repository, error) {
	path := repo.Path
	if path == "" {
		path = repo.Name
	}
	if !filepath.IsAbs(path) && p.root != "" {
		path = filepath.Join(p.root, path)
	}

	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open repository %q: %w", entities.ErrRemoteUnavailable, path, err)
	}
	return r, nil
}

// resolveBranch prefers the local branch and falls back to the origin remote.
func resolveBranch(r *git.Repository, branch string) (plumbing.Hash, error) {
	candidates := []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.NewRemoteReferenceName(remoteName, branch),
	}
	for _, name := range candidates {
		ref, err := r.Reference(name, true)
		if err == nil {
			return ref.Hash(), nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("%w: %q", errBranchNotFound, branch)
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return line
}
