// Package ffmpeg wraps the ffmpeg command line for video conversion.
package ffmpeg
