// Package attachments uploads reference images and image attachments.
//
// PolicyFor decides how many attachments the selected image model accepts,
// and ValidateSubmit applies that policy (plus the empty prompt and
// still-uploading checks) before anything is sent. Pipeline inserts
// optimistic preview entries into prefs, uploads them as one batch and flips
// them to ready or error. A failed batch marks every entry from that batch as
// failed; the backend reports a single outcome per batch.
package attachments
