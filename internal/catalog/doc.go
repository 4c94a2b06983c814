// Package catalog lists and classifies the media directory.
//
// Both daemons derive a fresh Snapshot per cycle instead of caching listings;
// a snapshot is built, used, and discarded, so neither process ever acts on a
// stale view of the directory the other one is mutating.
//
// Classification is by extension against fixed allow-lists. Files under the
// converted/ subdirectory are ConvertedVideo; video files in the media root
// are RawVideo and are visible only to the converter. Unreadable entries are
// skipped and counted, never fatal.
package catalog
