// Package prefs holds per-session client preferences: selected chat and
// image models, image generation settings, composer input mode, the ad hoc
// reference image, queued attachments and the document cache.
//
// A Store is passed explicitly to the components that need it. Reads for a
// session with nothing stored return defaults (the configured models, the
// per-model image settings, text input mode, no reference, no attachments).
// Model selections optionally write through to a ModelStore so they survive
// restarts.
//
// ResolveReference is the single place that decides which reference image a
// request carries.
package prefs
