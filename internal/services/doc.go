// Package services defines shared utilities consumed by the conversion
// worker and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job identifiers and media paths so log
//     lines from deep inside a conversion can be correlated.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages uniform across ffmpeg and mpv invocations.
package services
