package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"framed/internal/fileutil"
	"framed/internal/testsupport"
)

func TestFinalizeRenamesPartial(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "clip_h264.mp4")
	testsupport.WriteFile(t, fileutil.PartialName(dest), 64)

	if err := fileutil.Finalize(dest); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("final file missing: %v", err)
	}
	if _, err := os.Stat(fileutil.PartialName(dest)); !os.IsNotExist(err) {
		t.Fatalf("partial file should be gone, got %v", err)
	}
}

func TestSweepPartials(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a_h264.mp4.tmp"), 8)
	testsupport.WriteFile(t, filepath.Join(dir, "b_h264.mp4.tmp"), 8)
	testsupport.WriteFile(t, filepath.Join(dir, "keep_h264.mp4"), 8)

	removed, err := fileutil.SweepPartials(dir)
	if err != nil {
		t.Fatalf("SweepPartials: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "keep_h264.mp4")); err != nil {
		t.Fatalf("finished output should survive sweep: %v", err)
	}
}

func TestSweepPartialsMissingDir(t *testing.T) {
	removed, err := fileutil.SweepPartials(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("SweepPartials: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed, got %d", removed)
	}
}

func TestVerifyNonTrivial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")
	testsupport.WriteFile(t, path, 10)

	if err := fileutil.VerifyNonTrivial(path, 10); err != nil {
		t.Fatalf("VerifyNonTrivial: %v", err)
	}
	if err := fileutil.VerifyNonTrivial(path, 11); err == nil {
		t.Fatal("expected size failure")
	}
	if err := fileutil.VerifyNonTrivial(filepath.Join(dir, "missing.mp4"), 1); err == nil {
		t.Fatal("expected stat failure")
	}
	if err := fileutil.VerifyNonTrivial(dir, 1); err == nil {
		t.Fatal("expected directory failure")
	}
}
