// Package backend is the HTTP client for the WEAV REST API.
//
// Every endpoint lives under /api/v1 and exchanges the types in package api.
// Non-2xx responses become *APIError whose message follows the server
// convention (detail, then error, then status text) and which unwraps to a
// services marker, so callers can branch with errors.Is. The client never
// retries; recovery is left to the user.
package backend
