package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBurn(); err != nil {
		return err
	}
	if err := c.validateGrab(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateBurn() error {
	switch c.Burn.ProgressFPS {
	case ProgressFPSAssumed, ProgressFPSProbed:
	default:
		return fmt.Errorf("burn.progress_fps must be %q or %q, got %q", ProgressFPSAssumed, ProgressFPSProbed, c.Burn.ProgressFPS)
	}
	if c.Burn.AssumedFPS <= 0 {
		return errors.New("burn.assumed_fps must be positive")
	}
	return nil
}

func (c *Config) validateGrab() error {
	return ensurePositiveMap(map[string]int{
		"grab.frame_interval": c.Grab.FrameInterval,
		"grab.workers":        c.Grab.Workers,
		"grab.width":          c.Grab.Width,
		"grab.height":         c.Grab.Height,
		"grab.jpeg_quality":   c.Grab.JPEGQuality,
	})
}

func (c *Config) validateTools() error {
	if c.Tools.TimeoutSeconds < 0 {
		return errors.New("tools.timeout_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind: %w", err)
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
