// Package config loads, normalizes, and validates vidscribe configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Always obtain settings through this
// package so downstream code receives sanitized paths, canonical log formats,
// and clear validation errors.
package config
