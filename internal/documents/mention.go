package documents

import (
	"regexp"
	"slices"
	"strings"

	"weav/internal/api"
)

var (
	quotedMention = regexp.MustCompile(`@"([^"]*)$`)
	bareMention   = regexp.MustCompile(`@([^\s@]*)$`)
)

// ActiveMention returns the partial document name being typed at the end of
// text, as in `see @"Q3 rep` or `see @report`.
func ActiveMention(text string) (string, bool) {
	if m := quotedMention.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := bareMention.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// MentionToken is the prompt text inserted for a document. Names with
// whitespace are quoted.
func MentionToken(name string) string {
	if strings.ContainsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }) {
		return `@"` + name + `"`
	}
	return "@" + name
}

// MatchDocuments filters docs by a case-insensitive name substring and sorts
// them newest first.
func MatchDocuments(docs []api.DocumentItem, query string) []api.DocumentItem {
	query = strings.ToLower(query)
	out := make([]api.DocumentItem, 0, len(docs))
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.OriginalName), query) {
			out = append(out, doc)
		}
	}
	slices.SortStableFunc(out, func(a, b api.DocumentItem) int {
		return api.ParseTime(b.CreatedAt).Compare(api.ParseTime(a.CreatedAt))
	})
	return out
}
