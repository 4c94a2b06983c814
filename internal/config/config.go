package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ConvertedSubdir is the subdirectory of the media directory that holds
// transcoded video output. It is the shared contract between the converter
// and the slideshow and must not change while either daemon is running.
const ConvertedSubdir = "converted"

// Paths contains directory configuration.
type Paths struct {
	MediaDir string `toml:"media_dir"`
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Display contains display surface configuration.
type Display struct {
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Background   string `toml:"background"`
	Fullscreen   bool   `toml:"fullscreen"`
	PlayerBinary string `toml:"player_binary"`
}

// Slideshow contains presentation timing and layout configuration.
type Slideshow struct {
	PhotoDelaySeconds      int `toml:"photo_delay_seconds"`
	RefreshIntervalSeconds int `toml:"refresh_interval_seconds"`
	PhotoGap               int `toml:"photo_gap"`
	BorderHeight           int `toml:"border_height"`
	KeyDebounceMillis      int `toml:"key_debounce_millis"`
}

// Conversion contains transcode worker configuration.
type Conversion struct {
	PollIntervalSeconds  int     `toml:"poll_interval_seconds"`
	CoreBudget           int     `toml:"core_budget"`
	MaxParallel          int     `toml:"max_parallel"`
	RetryLimit           int     `toml:"retry_limit"`
	RetryBackoffSeconds  int     `toml:"retry_backoff_seconds"`
	TimeoutSeconds       int     `toml:"timeout_seconds"`
	KeepOriginals        bool    `toml:"keep_originals"`
	MinFreeSpaceMB       int     `toml:"min_free_space_mb"`
	MaxLoadPerCore       float64 `toml:"max_load_per_core"`
	MinAvailableMemoryMB int     `toml:"min_available_memory_mb"`

	FFmpegBinary string `toml:"ffmpeg_binary"`
	Codec        string `toml:"codec"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	MaxBitrate   string `toml:"max_bitrate"`
	BufferSize   string `toml:"buffer_size"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for framed.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Display    Display    `toml:"display"`
	Slideshow  Slideshow  `toml:"slideshow"`
	Conversion Conversion `toml:"conversion"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/framed/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path; defaults apply otherwise.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("framed.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// ConvertedDir returns the converted-video output directory.
func (c *Config) ConvertedDir() string {
	return filepath.Join(c.Paths.MediaDir, ConvertedSubdir)
}

// EnsureDirectories creates the directories either daemon needs at startup.
// The media directory itself is required to pre-exist; refusing to create it
// avoids silently showing an empty slideshow against a typo'd path.
func (c *Config) EnsureDirectories() error {
	info, err := os.Stat(c.Paths.MediaDir)
	if err != nil {
		return fmt.Errorf("media directory %q: %w", c.Paths.MediaDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media directory %q is not a directory", c.Paths.MediaDir)
	}
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir, c.ConvertedDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
