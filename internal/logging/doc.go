// Package logging assembles structured slog loggers and formatting helpers used
// across weav.
//
// It owns the console/JSON handlers and level and output plumbing, and
// exposes context-aware helpers that tag log lines with session ids, task ids,
// and correlation ids. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
package logging
