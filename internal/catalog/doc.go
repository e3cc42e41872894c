// Package catalog lists the chat and image models weav knows about, their
// default generation settings, and the user-facing guide text for each.
package catalog
