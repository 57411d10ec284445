// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - DurationSeconds: convenience for the montage crossfade math
package ffprobe
