package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"framed/internal/config"
	"framed/internal/fileutil"
)

var commandContext = exec.CommandContext

// Transcoder defines video conversion behaviour.
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath, destPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary   string
	settings config.Conversion
}

// NewCLI constructs a CLI client from conversion settings.
func NewCLI(settings config.Conversion, opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", settings: settings}
	if settings.FFmpegBinary != "" {
		cli.binary = settings.FFmpegBinary
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Transcode converts sourcePath into an H.264 MP4. Output is written to the
// partial name for destPath; callers verify and finalize the rename so a
// crashed run never leaves a truncated file at the final path.
func (c *CLI) Transcode(ctx context.Context, sourcePath, destPath string) error {
	if sourcePath == "" {
		return errors.New("source path required")
	}
	if destPath == "" {
		return errors.New("destination path required")
	}

	args := c.buildArgs(sourcePath, fileutil.PartialName(destPath))
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg transcode: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg transcode failed: %w: %s", err, tail(output, 512))
	}
	return nil
}

func (c *CLI) buildArgs(sourcePath, outputPath string) []string {
	s := c.settings
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", sourcePath,
		"-c:v", s.Codec,
		"-preset", s.Preset,
		"-crf", strconv.Itoa(s.CRF),
		"-maxrate", s.MaxBitrate,
		"-bufsize", s.BufferSize,
		"-c:a", s.AudioCodec,
		"-b:a", s.AudioBitrate,
		"-movflags", "+faststart",
	}
	if s.CoreBudget > 0 {
		args = append(args, "-threads", strconv.Itoa(s.CoreBudget))
	}
	args = append(args, "-f", "mp4", outputPath)
	return args
}

func tail(output []byte, limit int) string {
	text := strings.TrimSpace(string(output))
	if len(text) > limit {
		text = text[len(text)-limit:]
	}
	return text
}

var _ Transcoder = (*CLI)(nil)
