// Package generation submits chat and image jobs to the backend and polls
// them until they settle.
//
// Every operation follows the same order: validate locally, submit, refresh
// the session so the user's own turn shows up, poll the job, refresh again.
// Polling runs a fixed number of attempts at a fixed interval. StopGeneration
// releases the sending gate immediately and asks the backend to cancel in the
// background; the poll loop sees the abort flag on its next pass and exits
// without touching the error slot.
//
// Failures of a job whose session is no longer current are still committed
// to the session store but never shown, so navigating away mid-generation
// does not produce stray errors.
package generation
