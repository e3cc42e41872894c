// Package config loads, normalizes, and validates weav configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies WEAV_* environment overrides. The
// Config type centralizes every knob the CLI and the generation engine need:
// backend location, polling budget, upload limits, and model defaults.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
