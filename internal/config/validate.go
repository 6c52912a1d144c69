package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRenderer() error {
	parsed, err := url.Parse(c.Renderer.BaseURL)
	if err != nil {
		return fmt.Errorf("renderer.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" && parsed.Scheme != "file" {
		return fmt.Errorf("renderer.base_url must be an http, https or file URL, got %q", c.Renderer.BaseURL)
	}
	return ensurePositiveMap(map[string]int{
		"renderer.ready_timeout_seconds": c.Renderer.ReadyTimeoutSeconds,
		"renderer.ready_poll_ms":         c.Renderer.ReadyPollMillis,
	})
}

func (c *Config) validateCapture() error {
	if err := ensurePositiveMap(map[string]int{
		"capture.width":  c.Capture.Width,
		"capture.height": c.Capture.Height,
	}); err != nil {
		return err
	}
	if c.Capture.TailPadMS < 0 {
		return errors.New("capture.tail_pad_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if d.MinBlackSeconds <= 0 {
		return errors.New("detection.min_black_seconds must be positive")
	}
	if d.PixelThreshold <= 0 || d.PixelThreshold > 1 {
		return errors.New("detection.pixel_threshold must be between 0 and 1")
	}
	if d.ClampCeiling <= 0 {
		return errors.New("detection.clamp_ceiling must be positive")
	}
	if d.SafetyCeiling < 0 {
		return errors.New("detection.safety_ceiling must be >= 0")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		return errors.New("encoding.crf must be between 0 and 51")
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
