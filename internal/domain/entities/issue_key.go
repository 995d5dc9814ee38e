package entities

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var issueKeyPattern = regexp.MustCompile(`[A-Za-z]{2,}-\d+`)

// IssueRef is an issue-tracker key mentioned in a pull request title.
type IssueRef struct {
	Key string `json:"key" yaml:"key"`
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ExtractIssueKeys returns the distinct issue-tracker keys (e.g. "ABC-123")
// mentioned in text, in order of appearance.
func ExtractIssueKeys(text string) []string {
	return lo.Uniq(issueKeyPattern.FindAllString(text, -1))
}

// IssueRefs links every key found in text to baseURL. Without a base URL the
// references carry only the key.
func IssueRefs(text, baseURL string) []IssueRef {
	return lo.Map(ExtractIssueKeys(text), func(key string, _ int) IssueRef {
		ref := IssueRef{Key: key}
		if baseURL != "" {
			ref.URL = strings.TrimSuffix(baseURL, "/") + "/" + key
		}
		return ref
	})
}
