package preflight

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"framed/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Media directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable directory to pass: %+v", result)
	}

	result = CheckDirectoryAccess("Media directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("expected missing directory to fail")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = CheckDirectoryAccess("Media directory", file)
	if result.Passed {
		t.Fatal("expected plain file to fail")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	result := CheckFreeSpace(dir, 1)
	if !result.Passed {
		t.Fatalf("expected 1 MB to be available: %+v", result)
	}

	result = CheckFreeSpace(filepath.Join(dir, "missing"), 1)
	if result.Passed {
		t.Fatal("expected statfs on missing path to fail")
	}
}

func TestRunAllCoversConfiguredPaths(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected preflight results")
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected all checks to pass, failed: %+v", failed)
	}

	cfg.Paths.MediaDir = filepath.Join(cfg.Paths.MediaDir, "missing")
	results = RunAll(context.Background(), cfg)
	if failed := Failed(results); len(failed) == 0 {
		t.Fatal("expected media directory check to fail")
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil); results != nil {
		t.Fatalf("expected nil results for nil config, got %+v", results)
	}
}

func TestCheckSystemDeps(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "mpv", "ffprobe"))

	statuses := CheckSystemDeps(context.Background(), cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("expected stubbed binary %s to be available", status.Name)
		}
	}
}
