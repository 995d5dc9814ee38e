package entities

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	testingMarker   = ".t"
	versionParts    = 3
	prefixSeparator = "-"
	digits          = "0123456789"
)

// ParseVersion turns "<prefix>-<major>.<minor>.<patch>[.t]" into a canonical
// "vMAJOR.MINOR.PATCH" string that golang.org/x/mod/semver can compare.
func ParseVersion(version string) (string, error) {
	raw := version
	if idx := strings.Index(raw, prefixSeparator); idx >= 0 {
		raw = raw[idx+1:]
	}
	raw = strings.TrimSuffix(raw, testingMarker)

	parts := strings.SplitN(raw, ".", versionParts)
	if len(parts) != versionParts {
		return "", fmt.Errorf("%w: %q", ErrMalformedVersion, version)
	}

	numbers := make([]string, 0, versionParts)
	for _, part := range parts {
		if part == "" || strings.Trim(part, digits) != "" {
			return "", fmt.Errorf("%w: %q", ErrMalformedVersion, version)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return "", fmt.Errorf("%w: %q", ErrMalformedVersion, version)
		}
		numbers = append(numbers, strconv.Itoa(n))
	}

	canonical := "v" + strings.Join(numbers, ".")
	if !semver.IsValid(canonical) {
		return "", fmt.Errorf("%w: %q", ErrMalformedVersion, version)
	}
	return canonical, nil
}

// SortVersions returns a copy of versions sorted from newest to oldest.
// Components are compared numerically, so "1.10.0" sorts above "1.2.10".
func SortVersions(versions []string) ([]string, error) {
	keys := make(map[string]string, len(versions))
	for _, v := range versions {
		key, err := ParseVersion(v)
		if err != nil {
			return nil, err
		}
		keys[v] = key
	}

	sorted := make([]string, len(versions))
	copy(sorted, versions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return semver.Compare(keys[sorted[i]], keys[sorted[j]]) > 0
	})
	return sorted, nil
}

// HighestVersion returns the newest of versions, or "" when versions is empty.
func HighestVersion(versions []string) (string, error) {
	sorted, err := SortVersions(versions)
	if err != nil {
		return "", err
	}
	if len(sorted) == 0 {
		return "", nil
	}
	return sorted[0], nil
}

// ReleaseBranch turns a release version such as "release-1.2.7" or "1.2.7.t"
// into its "1.2.0" branch. Anything that is not a version is taken to be a
// branch name already.
func ReleaseBranch(versionOrBranch string) string {
	canonical, err := ParseVersion(versionOrBranch)
	if err != nil {
		return versionOrBranch
	}
	return minorBranch(canonical)
}

// minorBranch maps a canonical "vMAJOR.MINOR.PATCH" to "MAJOR.MINOR.0".
func minorBranch(canonical string) string {
	return strings.TrimPrefix(semver.MajorMinor(canonical), "v") + ".0"
}
