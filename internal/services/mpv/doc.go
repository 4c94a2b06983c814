// Package mpv wraps the mpv command line for video playback and for holding
// composed photo frames on screen.
package mpv
