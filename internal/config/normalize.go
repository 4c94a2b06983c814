package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}

	if strings.TrimSpace(c.Display.PlayerBinary) == "" {
		c.Display.PlayerBinary = defaultPlayerBinary
	}
	if strings.TrimSpace(c.Display.Background) == "" {
		c.Display.Background = defaultBackground
	}

	if strings.TrimSpace(c.Conversion.FFmpegBinary) == "" {
		c.Conversion.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Conversion.Codec) == "" {
		c.Conversion.Codec = defaultCodec
	}
	if strings.TrimSpace(c.Conversion.Preset) == "" {
		c.Conversion.Preset = defaultPreset
	}
	if strings.TrimSpace(c.Conversion.AudioCodec) == "" {
		c.Conversion.AudioCodec = defaultAudioCodec
	}
	if c.Conversion.MaxParallel <= 0 {
		c.Conversion.MaxParallel = defaultMaxParallel
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}
