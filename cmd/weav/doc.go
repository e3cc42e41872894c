// Package main hosts the weav CLI entrypoint and command graph.
//
// Each invocation loads configuration once, opens the local state database,
// and wires the session store, preference store, upload pipeline, document
// service and generation engine against the WEAV backend. Commands then act
// on the current session, which persists between runs through the state
// database.
//
// Keep this package thin: behaviour belongs in the internal packages, and
// commands only translate flags into calls and render the results.
package main
