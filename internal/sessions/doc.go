// Package sessions keeps the session list and the currently selected
// session in sync with the backend.
//
// User-initiated create, rename and delete return their errors. Restoration
// and background refreshes swallow them: a refresh that fails simply leaves
// the previous value in place. RefreshSession tells callers whether the
// session they refreshed is still the one in view, which is how the
// generation engine decides whether to surface an error.
package sessions
