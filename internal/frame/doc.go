// Package frame implements the slideshow scheduler. It builds display plans
// from the media catalog, alternating packed photo groups with converted
// videos, and drives the player and display surface through them.
package frame
