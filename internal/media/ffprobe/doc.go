// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (duration, format name)
//
// Inspect executes ffprobe and returns a parsed Result; helper methods give
// convenient access to audio stream counts and duration parsing.
package ffprobe
