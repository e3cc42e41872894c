// Package testsupport holds shared fixtures for package tests: a temp-dir
// config, the local state database and FakeBackend, an in-memory WEAV API
// with scripted job lifecycles and failure injection.
package testsupport
