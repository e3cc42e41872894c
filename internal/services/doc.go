// Package services defines shared utilities consumed by the weav components.
//
// Key responsibilities:
//   - Context helpers that stamp session ids, task ids, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is regardless of which layer produced them.
package services
