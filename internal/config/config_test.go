package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framed/internal/config"
)

func TestLoadAbsentFileUsesDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.MediaDir != filepath.Join(tempHome, "Pictures") {
		t.Fatalf("unexpected media dir: %q", cfg.Paths.MediaDir)
	}
	if cfg.Conversion.CoreBudget != 2 {
		t.Fatalf("unexpected core budget: %d", cfg.Conversion.CoreBudget)
	}
	if cfg.Slideshow.PhotoDelaySeconds != 5 {
		t.Fatalf("unexpected photo delay: %d", cfg.Slideshow.PhotoDelaySeconds)
	}
	if cfg.Slideshow.RefreshIntervalSeconds != 300 {
		t.Fatalf("unexpected refresh interval: %d", cfg.Slideshow.RefreshIntervalSeconds)
	}
	if cfg.Conversion.KeepOriginals {
		t.Fatal("expected originals deleted by default")
	}
	if got := cfg.ConvertedDir(); got != filepath.Join(cfg.Paths.MediaDir, "converted") {
		t.Fatalf("unexpected converted dir: %q", got)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framed.toml")
	content := strings.Join([]string{
		"[paths]",
		`media_dir = "` + dir + `"`,
		"[conversion]",
		"core_budget = 4",
		"max_parallel = 2",
		"retry_limit = 5",
		"[slideshow]",
		"photo_delay_seconds = 8",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Conversion.CoreBudget != 4 || cfg.Conversion.MaxParallel != 2 || cfg.Conversion.RetryLimit != 5 {
		t.Fatalf("overrides not applied: %+v", cfg.Conversion)
	}
	if cfg.Slideshow.PhotoDelaySeconds != 8 {
		t.Fatalf("slideshow override not applied: %+v", cfg.Slideshow)
	}
	if cfg.Conversion.Codec != "libx264" {
		t.Fatalf("expected codec default to survive partial override, got %q", cfg.Conversion.Codec)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero photo delay", func(c *config.Config) { c.Slideshow.PhotoDelaySeconds = 0 }},
		{"negative retry limit", func(c *config.Config) { c.Conversion.RetryLimit = -1 }},
		{"parallel above budget", func(c *config.Config) { c.Conversion.MaxParallel = 8 }},
		{"crf out of range", func(c *config.Config) { c.Conversion.CRF = 99 }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"borders eat screen", func(c *config.Config) { c.Slideshow.BorderHeight = 600 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnsureDirectoriesRequiresMediaDir(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.MediaDir = filepath.Join(base, "missing")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	if err := cfg.EnsureDirectories(); err == nil {
		t.Fatal("expected error for missing media directory")
	}

	if err := os.MkdirAll(cfg.Paths.MediaDir, 0o755); err != nil {
		t.Fatalf("mkdir media: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if _, err := os.Stat(cfg.ConvertedDir()); err != nil {
		t.Fatalf("converted dir not created: %v", err)
	}
}
