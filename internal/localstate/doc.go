// Package localstate keeps best-effort client state between runs: the last
// selected session and per-session model choices. Values live in a small
// SQLite key/value table. Unreadable values are logged and treated as absent,
// never as fatal errors.
//
// SendLock wraps a file lock in the same directory so two terminals cannot
// drive generations from the same state concurrently.
package localstate
