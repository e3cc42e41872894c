// Package api defines the wire-format types exchanged with the WEAV backend.
//
// Field names and JSON tags follow the backend's snake_case payloads.
// Timestamps stay as strings on the wire (ParseTime converts them for
// display) so a format change on the server never fails a whole decode.
// Optional request fields use omitempty so empty values are left out of the
// body rather than sent as blanks.
package api
