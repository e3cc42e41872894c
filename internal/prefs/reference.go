package prefs

import (
	"strings"

	"weav/internal/api"
)

// MaxSessionReferences is how many session-level reference URLs are sent
// with an image request.
const MaxSessionReferences = 2

// ReferenceSelection is the reference input of one image request. At most
// one of its fields is set.
type ReferenceSelection struct {
	ImageURLs []string
	URL       string
	ID        *int64
}

// DisplayURLs returns the URLs shown on the pending placeholder.
func (r ReferenceSelection) DisplayURLs() []string {
	if len(r.ImageURLs) > 0 {
		return append([]string(nil), r.ImageURLs...)
	}
	if r.URL != "" {
		return []string{r.URL}
	}
	return nil
}

// ResolveReference picks the reference for a request. Session-level
// reference URLs win outright; otherwise the call's reference beats the one
// stored for the session, and a URL beats an id at each level.
func ResolveReference(session *api.Session, stored, call Reference) ReferenceSelection {
	if session != nil {
		urls := make([]string, 0, MaxSessionReferences)
		for _, u := range session.ReferenceImageURLs {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
			if len(urls) == MaxSessionReferences {
				break
			}
		}
		if len(urls) > 0 {
			return ReferenceSelection{ImageURLs: urls}
		}
	}
	for _, ref := range []Reference{call, stored} {
		if u := strings.TrimSpace(ref.URL); u != "" {
			return ReferenceSelection{URL: u}
		}
		if ref.ID != nil {
			id := *ref.ID
			return ReferenceSelection{ID: &id}
		}
	}
	return ReferenceSelection{}
}
