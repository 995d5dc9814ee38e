//go:build unit

package status_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
	"github.com/rios0rios0/envtracker/internal/infrastructure/repositories/status"
)

func serveJSON(t *testing.T, code int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPDeploymentStatusRepositoryGetStatus(t *testing.T) {
	t.Parallel()

	t.Run("should read the build and shorten the commit id", func(t *testing.T) {
		t.Parallel()

		// given
		server := serveJSON(t, http.StatusOK,
			`{"appBuild":"release-1.2.7","gitCommitId":"0123456789abcdef0123","gitCommitTime":"2024-05-01T10:00:00Z"}`)

		// when
		got, err := status.NewHTTPDeploymentStatusRepository().GetStatus(context.Background(), server.URL)

		// then
		require.NoError(t, err)
		assert.Equal(t, entities.BuildStatus{
			AppBuild:   "release-1.2.7",
			CommitID:   "0123456789ab",
			CommitTime: "2024-05-01T10:00:00Z",
			Known:      true,
		}, got)
	})

	t.Run("should return the unknown status when the endpoint fails", func(t *testing.T) {
		t.Parallel()

		// given
		server := serveJSON(t, http.StatusServiceUnavailable, `{}`)

		// when
		got, err := status.NewHTTPDeploymentStatusRepository().GetStatus(context.Background(), server.URL)

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
		assert.Equal(t, entities.UnknownBuildStatus(), got)
		assert.False(t, got.Known)
	})

	t.Run("should reject a document without a commit id", func(t *testing.T) {
		t.Parallel()

		// given
		server := serveJSON(t, http.StatusOK, `{"appBuild":"dev-42"}`)

		// when
		_, err := status.NewHTTPDeploymentStatusRepository().GetStatus(context.Background(), server.URL)

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
	})

	t.Run("should respect the caller deadline", func(t *testing.T) {
		t.Parallel()

		// given
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// when
		_, err := status.NewHTTPDeploymentStatusRepository().GetStatus(ctx, "http://127.0.0.1:1/status")

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
	})
}

func TestHTTPBaseVersionsRepositoryGetBaseVersions(t *testing.T) {
	t.Parallel()

	t.Run("should decode the service to version map", func(t *testing.T) {
		t.Parallel()

		// given
		server := serveJSON(t, http.StatusOK, `{"cat":"release-1.2.0","dog":"release-1.1.4"}`)

		// when
		got, err := status.NewHTTPBaseVersionsRepository().GetBaseVersions(context.Background(), server.URL)

		// then
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"cat": "release-1.2.0", "dog": "release-1.1.4"}, got)
	})

	t.Run("should fail on a malformed document", func(t *testing.T) {
		t.Parallel()

		// given
		server := serveJSON(t, http.StatusOK, `["cat"]`)

		// when
		_, err := status.NewHTTPBaseVersionsRepository().GetBaseVersions(context.Background(), server.URL)

		// then
		require.ErrorIs(t, err, entities.ErrRemoteUnavailable)
	})
}
