// Package convert implements the conversion worker daemon. It watches the
// media directory for raw videos, tracks them as jobs in the local store, and
// runs ffmpeg conversions under a core budget with retry and backoff.
package convert
