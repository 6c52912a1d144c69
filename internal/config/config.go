package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
}

// Renderer describes the local page that renders the puzzle.
type Renderer struct {
	BaseURL             string `toml:"base_url"`
	ReadyTimeoutSeconds int    `toml:"ready_timeout_seconds"`
	ReadyPollMillis     int    `toml:"ready_poll_ms"`
	Headless            bool   `toml:"headless"`
}

// Capture contains recording geometry and the tail padding default.
type Capture struct {
	Width     int `toml:"width"`
	Height    int `toml:"height"`
	TailPadMS int `toml:"tail_pad_ms"`
}

// Detection tunes the leading-black heuristic.
type Detection struct {
	// MinBlackSeconds is the shortest black run ffmpeg reports.
	MinBlackSeconds float64 `toml:"min_black_seconds"`
	// PixelThreshold is the ratio of pixels that must be black for a frame to count.
	PixelThreshold float64 `toml:"pixel_threshold"`
	// ClampCeiling bounds the detected candidate before the safety check.
	ClampCeiling float64 `toml:"clamp_ceiling"`
	// SafetyCeiling discards detections longer than this as false positives.
	SafetyCeiling float64 `toml:"safety_ceiling"`
}

// Encoding contains transcode settings.
type Encoding struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	CRF          int    `toml:"crf"`
}

// Defaults holds the job values used when an option is absent.
type Defaults struct {
	Alg             string `toml:"alg"`
	Puzzle          string `toml:"puzzle"`
	SpeedFast       string `toml:"speed_fast"`
	SpeedSlow       string `toml:"speed_slow"`
	Repeats         string `toml:"repeats"`
	Background      string `toml:"bg"`
	Output          string `toml:"out"`
	TrimStart       string `toml:"trim_start"`
	BgVideoFallback string `toml:"bg_video_fallback"`
}

// Options controls how raw command tokens are resolved.
type Options struct {
	EnvPrefix string `toml:"env_prefix"`
}

// Notifications configures ntfy delivery of export results.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File optionally mirrors log output to a file.
	File string `toml:"file"`
}

// Config encapsulates all configuration values for twisty.
//
// Configuration sections by subsystem:
//   - Paths: state directory for the history ledger and capture lock
//   - Renderer: page URL and readiness polling
//   - Capture: viewport/recording size and tail padding
//   - Detection: leading-black heuristic constants
//   - Encoding: ffmpeg binary and quality factor
//   - Defaults: job defaults
//   - Options: environment override namespace
//   - Notifications: optional ntfy topic
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Renderer      Renderer      `toml:"renderer"`
	Capture       Capture       `toml:"capture"`
	Detection     Detection     `toml:"detection"`
	Encoding      Encoding      `toml:"encoding"`
	Defaults      Defaults      `toml:"defaults"`
	Options       Options       `toml:"options"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/twisty/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
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
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/twisty/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("twisty.toml")
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

// EnsureDirectories creates the state directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for detection and transcoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Encoding.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// ReadyTimeout returns the page readiness bound.
func (c *Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Renderer.ReadyTimeoutSeconds) * time.Second
}

// ReadyPollInterval returns how often the readiness flag is checked.
func (c *Config) ReadyPollInterval() time.Duration {
	return time.Duration(c.Renderer.ReadyPollMillis) * time.Millisecond
}

// NotifyTimeout returns the per-request bound for ntfy deliveries.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeoutSeconds) * time.Second
}

// HistoryPath returns the location of the export history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LockPath returns the location of the single-capture lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "twisty.lock")
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

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "twisty")
	}
	return "~/.local/state/twisty"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
