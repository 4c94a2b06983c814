package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDisplay(); err != nil {
		return err
	}
	if err := c.validateSlideshow(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.MediaDir == "" {
		return errors.New("paths.media_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateDisplay() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display dimensions must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	return nil
}

func (c *Config) validateSlideshow() error {
	if c.Slideshow.PhotoDelaySeconds <= 0 {
		return errors.New("slideshow.photo_delay_seconds must be positive")
	}
	if c.Slideshow.RefreshIntervalSeconds <= 0 {
		return errors.New("slideshow.refresh_interval_seconds must be positive")
	}
	if c.Slideshow.PhotoGap < 0 {
		return errors.New("slideshow.photo_gap must not be negative")
	}
	if c.Slideshow.BorderHeight < 0 {
		return errors.New("slideshow.border_height must not be negative")
	}
	if c.Slideshow.BorderHeight*2 >= c.Display.Height {
		return errors.New("slideshow.border_height leaves no vertical space for photos")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if c.Conversion.PollIntervalSeconds <= 0 {
		return errors.New("conversion.poll_interval_seconds must be positive")
	}
	if c.Conversion.CoreBudget <= 0 {
		return errors.New("conversion.core_budget must be positive")
	}
	if c.Conversion.RetryLimit < 0 {
		return errors.New("conversion.retry_limit must not be negative")
	}
	if c.Conversion.RetryBackoffSeconds < 0 {
		return errors.New("conversion.retry_backoff_seconds must not be negative")
	}
	if c.Conversion.TimeoutSeconds <= 0 {
		return errors.New("conversion.timeout_seconds must be positive")
	}
	if c.Conversion.MaxParallel > c.Conversion.CoreBudget {
		return fmt.Errorf("conversion.max_parallel %d exceeds core_budget %d", c.Conversion.MaxParallel, c.Conversion.CoreBudget)
	}
	if c.Conversion.CRF < 0 || c.Conversion.CRF > 51 {
		return fmt.Errorf("conversion.crf must be within 0..51, got %d", c.Conversion.CRF)
	}
	if c.Conversion.MaxLoadPerCore < 0 {
		return errors.New("conversion.max_load_per_core must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
