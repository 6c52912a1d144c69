package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRenderer()
	c.normalizeDefaults()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.Encoding.FFmpegBinary = strings.TrimSpace(c.Encoding.FFmpegBinary)
	if c.Encoding.FFmpegBinary == "" {
		c.Encoding.FFmpegBinary = defaultFFmpegBinary
	}
	c.Options.EnvPrefix = strings.TrimSpace(c.Options.EnvPrefix)
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNotifyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRenderer() {
	c.Renderer.BaseURL = strings.TrimSpace(c.Renderer.BaseURL)
	if c.Renderer.BaseURL == "" {
		c.Renderer.BaseURL = defaultRendererBaseURL
	}
	if c.Renderer.ReadyPollMillis <= 0 {
		c.Renderer.ReadyPollMillis = defaultReadyPollMillis
	}
}

// normalizeDefaults trims job defaults; blank values fall back to the built-ins
// so the renderer always receives every parameter.
func (c *Config) normalizeDefaults() {
	fill := func(value *string, fallback string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = fallback
		}
	}
	fill(&c.Defaults.Alg, defaultAlg)
	fill(&c.Defaults.Puzzle, defaultPuzzle)
	fill(&c.Defaults.SpeedFast, defaultSpeedFast)
	fill(&c.Defaults.SpeedSlow, defaultSpeedSlow)
	fill(&c.Defaults.Repeats, defaultRepeats)
	fill(&c.Defaults.Background, defaultBackground)
	fill(&c.Defaults.Output, defaultOutput)
	fill(&c.Defaults.TrimStart, defaultTrimStart)
	c.Defaults.BgVideoFallback = strings.TrimSpace(c.Defaults.BgVideoFallback)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
