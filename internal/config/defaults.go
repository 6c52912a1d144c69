package config

const (
	defaultRendererBaseURL     = "http://127.0.0.1:5173/export.html"
	defaultReadyTimeoutSeconds = 30
	defaultReadyPollMillis     = 100
	defaultCaptureWidth        = 1080
	defaultCaptureHeight       = 1920
	defaultTailPadMS           = 3000
	defaultMinBlackSeconds     = 0.05
	defaultPixelThreshold      = 0.98
	defaultClampCeiling        = 3.0
	defaultSafetyCeiling       = 1.0
	defaultFFmpegBinary        = "ffmpeg"
	defaultCRF                 = 20
	defaultAlg                 = "R U R' U'"
	defaultPuzzle              = "3x3x3"
	defaultSpeedFast           = "2.6"
	defaultSpeedSlow           = "0.65"
	defaultRepeats             = "3"
	defaultBackground          = "#0e0f12"
	defaultOutput              = "out/export.mp4"
	defaultTrimStart           = "auto"
	defaultBgVideoFallback     = "public/fond.mp4"
	defaultEnvPrefix           = "twisty_"
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Renderer: Renderer{
			BaseURL:             defaultRendererBaseURL,
			ReadyTimeoutSeconds: defaultReadyTimeoutSeconds,
			ReadyPollMillis:     defaultReadyPollMillis,
			Headless:            true,
		},
		Capture: Capture{
			Width:     defaultCaptureWidth,
			Height:    defaultCaptureHeight,
			TailPadMS: defaultTailPadMS,
		},
		Detection: Detection{
			MinBlackSeconds: defaultMinBlackSeconds,
			PixelThreshold:  defaultPixelThreshold,
			ClampCeiling:    defaultClampCeiling,
			SafetyCeiling:   defaultSafetyCeiling,
		},
		Encoding: Encoding{
			FFmpegBinary: defaultFFmpegBinary,
			CRF:          defaultCRF,
		},
		Defaults: Defaults{
			Alg:             defaultAlg,
			Puzzle:          defaultPuzzle,
			SpeedFast:       defaultSpeedFast,
			SpeedSlow:       defaultSpeedSlow,
			Repeats:         defaultRepeats,
			Background:      defaultBackground,
			Output:          defaultOutput,
			TrimStart:       defaultTrimStart,
			BgVideoFallback: defaultBgVideoFallback,
		},
		Options: Options{
			EnvPrefix: defaultEnvPrefix,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
