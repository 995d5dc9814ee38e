//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/envtracker/internal/domain/entities"
)

func TestSortVersions(t *testing.T) {
	t.Parallel()

	t.Run("should compare components numerically instead of lexicographically", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"release-1.2.3", "release-1.10.0", "release-1.2.10"}

		// when
		sorted, err := entities.SortVersions(versions)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"release-1.10.0", "release-1.2.10", "release-1.2.3"}, sorted)
	})

	t.Run("should ignore the testing marker and the prefix when ordering", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"dev-2.0.1", "release-2.0.3.t", "hotfix-2.1.0"}

		// when
		sorted, err := entities.SortVersions(versions)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"hotfix-2.1.0", "release-2.0.3.t", "dev-2.0.1"}, sorted)
	})

	t.Run("should not modify the input slice", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"release-1.0.0", "release-3.0.0"}

		// when
		_, err := entities.SortVersions(versions)

		// then
		require.NoError(t, err)
		assert.Equal(t, []string{"release-1.0.0", "release-3.0.0"}, versions)
	})

	t.Run("should fail with ErrMalformedVersion naming the bad string", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"release-1.0.0", "release-1.x.0"}

		// when
		sorted, err := entities.SortVersions(versions)

		// then
		require.ErrorIs(t, err, entities.ErrMalformedVersion)
		assert.Contains(t, err.Error(), "release-1.x.0")
		assert.Nil(t, sorted)
	})

	t.Run("should only strip the testing marker as a suffix and reject signed components", func(t *testing.T) {
		t.Parallel()

		for _, version := range []string{"release-1.t.2.3", "release-+1.2.3", "release-1.-2.3", "release-1..3"} {
			// when
			_, err := entities.ParseVersion(version)

			// then
			require.ErrorIs(t, err, entities.ErrMalformedVersion, version)
		}
	})

	t.Run("should reject versions without three components", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"release-1.2"}

		// when
		_, err := entities.SortVersions(versions)

		// then
		require.ErrorIs(t, err, entities.ErrMalformedVersion)
	})
}

func TestHighestVersion(t *testing.T) {
	t.Parallel()

	t.Run("should return the newest version", func(t *testing.T) {
		t.Parallel()

		// given
		versions := []string{"release-1.2.9", "release-1.3.0", "release-1.2.10"}

		// when
		highest, err := entities.HighestVersion(versions)

		// then
		require.NoError(t, err)
		assert.Equal(t, "release-1.3.0", highest)
	})

	t.Run("should return an empty string when there are no versions", func(t *testing.T) {
		t.Parallel()

		// when
		highest, err := entities.HighestVersion(nil)

		// then
		require.NoError(t, err)
		assert.Empty(t, highest)
	})
}

func TestReleaseBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "should map a prefixed version to its minor branch", input: "release-1.2.7", want: "1.2.0"},
		{name: "should drop the testing marker", input: "release-3.4.5.t", want: "3.4.0"},
		{name: "should accept a bare version", input: "2.10.3", want: "2.10.0"},
		{name: "should keep a branch name as it is", input: "hotfix", want: "hotfix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// when
			got := entities.ReleaseBranch(tt.input)

			// then
			assert.Equal(t, tt.want, got)
		})
	}
}
