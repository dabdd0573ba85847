// Package language normalizes language codes reported by the speech model and
// by container metadata to ISO 639-1, and renders display names for CLI output.
package language
