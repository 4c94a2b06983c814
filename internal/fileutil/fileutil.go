// Package fileutil implements the write-temp, verify, rename discipline the
// conversion pipeline relies on so the slideshow never observes a partially
// written video under its final name.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PartialSuffix marks in-flight transcode output within converted/.
const PartialSuffix = ".tmp"

// PartialName returns the temporary name a destination is written under
// until it verifies.
func PartialName(dest string) string {
	return dest + PartialSuffix
}

// Finalize atomically renames a verified partial file to its final name.
func Finalize(dest string) error {
	if err := os.Rename(PartialName(dest), dest); err != nil {
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}

// SweepPartials removes leftover partial files in dir and reports how many
// were deleted. Run before job tracking resumes so an interrupted transcode
// never leaves an unverified destination behind.
func SweepPartials(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PartialSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove partial %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// VerifyNonTrivial confirms path exists and holds at least minBytes. A
// missing or trivially small file means the transcode did not produce real
// output, regardless of its exit status.
func VerifyNonTrivial(path string, minBytes int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat output %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("output %s is a directory", path)
	}
	if info.Size() < minBytes {
		return fmt.Errorf("output %s is %d bytes, need at least %d", path, info.Size(), minBytes)
	}
	return nil
}
