package deps

import "framed/internal/config"

// Requirements lists the external binaries for the configured install. The
// conversion daemon needs ffmpeg; the slideshow needs mpv; ffprobe is only
// consulted for diagnostics.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg := "ffmpeg"
	if cfg != nil && cfg.Conversion.FFmpegBinary != "" {
		ffmpeg = cfg.Conversion.FFmpegBinary
	}
	player := "mpv"
	if cfg != nil && cfg.Display.PlayerBinary != "" {
		player = cfg.Display.PlayerBinary
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Video conversion",
		},
		{
			Name:        "mpv",
			Command:     player,
			Description: "Video playback and photo display",
		},
		{
			Name:        "ffprobe",
			Command:     "ffprobe",
			Description: "Media inspection for diagnostics",
			Optional:    true,
		},
	}
}
