// Package toast provides the single-slot transient notice used for
// validation failures, upload results and other short feedback.
//
// Components depend on the Notifier interface; pass Noop when nothing should
// be displayed.
package toast
