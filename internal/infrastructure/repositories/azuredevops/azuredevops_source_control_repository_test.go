//go:build unit

package azuredevops_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/infrastructure/repositories/azuredevops"
)

var catRepo = entities.Repository{Provider: "ado", Organization: "acme", Project: "pets", Name: "cat"}

func newProvider(serverURL string) entities.ProviderSettings {
	return entities.ProviderSettings{Name: "ado", Type: "azuredevops", Token: "pat", BaseURL: serverURL}
}

func TestAzureDevOpsSearchMergedPullRequests(t *testing.T) {
	t.Parallel()

	t.Run("should list completed pull requests targeting the branch", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/acme/pets/_apis/git/repositories/cat/pullrequests", r.URL.Path)
			assert.Equal(t, "completed", r.URL.Query().Get("searchCriteria.status"))
			assert.Equal(t, "refs/heads/devel", r.URL.Query().Get("searchCriteria.targetRefName"))
			_, _, ok := r.BasicAuth()
			assert.True(t, ok)
			_, _ = w.Write([]byte(`{"count": 1, "value": [{
				"pullRequestId": 7,
				"title": "CAT-7 purr",
				"lastMergeCommit": {"commitId": "777777777777aaaa"},
				"createdBy": {"displayName": "Kim"},
				"repository": {"webUrl": "https://dev.azure.com/acme/pets/_git/cat"}
			}]}`))
		}))
		defer server.Close()
		provider := azuredevops.NewSourceControlRepository(newProvider(server.URL), time.Second)

		// when
		page, err := provider.SearchMergedPullRequests(context.Background(), catRepo, "devel")

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalSize)
		require.Len(t, page.Items, 1)
		assert.Equal(t, entities.MergedPullRequest{
			Title:         "CAT-7 purr",
			MergeCommitID: "777777777777aaaa",
			Author:        "Kim",
			HTMLLink:      "https://dev.azure.com/acme/pets/_git/cat/pullrequest/7",
		}, page.Items[0])
	})

	t.Run("should wrap API failures in ErrRemoteUnavailable", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()
		provider := azuredevops.NewSourceControlRepository(newProvider(server.URL), time.Second)

		// when
		_, err := provider.SearchMergedPullRequests(context.Background(), catRepo, "devel")

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
	})
}

func TestAzureDevOpsListTags(t *testing.T) {
	t.Parallel()

	t.Run("should peel annotated tags and strip the ref prefix", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "tags/dev-", r.URL.Query().Get("filter"))
			assert.Equal(t, "true", r.URL.Query().Get("peelTags"))
			_, _ = w.Write([]byte(`{"value": [
				{"name": "refs/tags/dev-3", "objectId": "ffffffffffff0000", "peeledObjectId": "333333333333aaaa"},
				{"name": "refs/tags/dev-2", "objectId": "222222222222bbbb"}
			]}`))
		}))
		defer server.Close()
		provider := azuredevops.NewSourceControlRepository(newProvider(server.URL), time.Second)

		// when
		tags, err := provider.ListTags(context.Background(), catRepo, "dev-")

		// then
		require.NoError(t, err)
		assert.Equal(t, []entities.Tag{
			{Name: "dev-3", TargetCommitID: "333333333333"},
			{Name: "dev-2", TargetCommitID: "222222222222"},
		}, tags)
	})
}

func TestAzureDevOpsFetchFile(t *testing.T) {
	t.Parallel()

	t.Run("should read the item at the branch version", func(t *testing.T) {
		t.Parallel()

		// given
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/acme/pets/_apis/git/repositories/cat/items", r.URL.Path)
			assert.Equal(t, "db/changelog.xml", r.URL.Query().Get("path"))
			assert.Equal(t, "1.2.0", r.URL.Query().Get("versionDescriptor.version"))
			assert.Equal(t, "branch", r.URL.Query().Get("versionDescriptor.versionType"))
			_, _ = w.Write([]byte(`<databaseChangeLog/>`))
		}))
		defer server.Close()
		provider := azuredevops.NewSourceControlRepository(newProvider(server.URL), time.Second)

		// when
		content, err := provider.FetchFile(context.Background(), catRepo, "1.2.0", "db/changelog.xml")

		// then
		require.NoError(t, err)
		assert.Equal(t, "<databaseChangeLog/>", string(content))
	})
}
