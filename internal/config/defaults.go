package config

const (
	defaultMediaDir = "~/Pictures"
	defaultLogDir   = "~/.local/share/framed/logs"
	defaultStateDir = "~/.local/share/framed/state"

	defaultDisplayWidth  = 1920
	defaultDisplayHeight = 1080
	defaultBackground    = "black"
	defaultPlayerBinary  = "mpv"

	defaultPhotoDelaySeconds      = 5
	defaultRefreshIntervalSeconds = 300
	defaultPhotoGap               = 30
	defaultBorderHeight           = 50
	defaultKeyDebounceMillis      = 500

	defaultPollIntervalSeconds  = 60
	defaultCoreBudget           = 2
	defaultMaxParallel          = 1
	defaultRetryLimit           = 3
	defaultRetryBackoffSeconds  = 30
	defaultTimeoutSeconds       = 3600
	defaultMinFreeSpaceMB       = 500
	defaultMaxLoadPerCore       = 1.5
	defaultMinAvailableMemoryMB = 256

	defaultFFmpegBinary = "ffmpeg"
	defaultCodec        = "libx264"
	defaultPreset       = "faster"
	defaultCRF          = 23
	defaultMaxBitrate   = "2M"
	defaultBufferSize   = "4M"
	defaultAudioCodec   = "aac"
	defaultAudioBitrate = "128k"

	defaultLogFormat = ""
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Display: Display{
			Width:        defaultDisplayWidth,
			Height:       defaultDisplayHeight,
			Background:   defaultBackground,
			Fullscreen:   true,
			PlayerBinary: defaultPlayerBinary,
		},
		Slideshow: Slideshow{
			PhotoDelaySeconds:      defaultPhotoDelaySeconds,
			RefreshIntervalSeconds: defaultRefreshIntervalSeconds,
			PhotoGap:               defaultPhotoGap,
			BorderHeight:           defaultBorderHeight,
			KeyDebounceMillis:      defaultKeyDebounceMillis,
		},
		Conversion: Conversion{
			PollIntervalSeconds:  defaultPollIntervalSeconds,
			CoreBudget:           defaultCoreBudget,
			MaxParallel:          defaultMaxParallel,
			RetryLimit:           defaultRetryLimit,
			RetryBackoffSeconds:  defaultRetryBackoffSeconds,
			TimeoutSeconds:       defaultTimeoutSeconds,
			MinFreeSpaceMB:       defaultMinFreeSpaceMB,
			MaxLoadPerCore:       defaultMaxLoadPerCore,
			MinAvailableMemoryMB: defaultMinAvailableMemoryMB,
			FFmpegBinary:         defaultFFmpegBinary,
			Codec:                defaultCodec,
			Preset:               defaultPreset,
			CRF:                  defaultCRF,
			MaxBitrate:           defaultMaxBitrate,
			BufferSize:           defaultBufferSize,
			AudioCodec:           defaultAudioCodec,
			AudioBitrate:         defaultAudioBitrate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
