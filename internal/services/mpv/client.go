package mpv

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"framed/internal/config"
)

var commandContext = exec.CommandContext

// Player defines blocking video playback behaviour.
type Player interface {
	Play(ctx context.Context, path string) error
}

// Surface holds a composed frame image on screen until replaced or cleared.
type Surface interface {
	Show(ctx context.Context, imagePath string) error
	Clear()
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

type shownImage struct {
	cmd  *exec.Cmd
	done chan struct{}
}

// CLI wraps the mpv command line.
type CLI struct {
	binary  string
	display config.Display

	mu      sync.Mutex
	current *shownImage
}

// NewCLI constructs a CLI client from display settings.
func NewCLI(display config.Display, opts ...Option) *CLI {
	cli := &CLI{binary: "mpv", display: display}
	if display.PlayerBinary != "" {
		cli.binary = display.PlayerBinary
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Play shows a video and blocks until playback finishes. Any held frame
// image is cleared first so the player owns the screen.
func (c *CLI) Play(ctx context.Context, path string) error {
	if path == "" {
		return errors.New("video path required")
	}
	c.Clear()

	args := append(c.baseArgs(), path)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("mpv playback: %w", ctx.Err())
		}
		return fmt.Errorf("mpv playback failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Show displays an image and returns once the viewer process is running.
// The previous image process, if any, is stopped after the replacement
// starts so the screen never drops to the desktop between frames.
func (c *CLI) Show(ctx context.Context, imagePath string) error {
	if imagePath == "" {
		return errors.New("image path required")
	}

	args := append(c.baseArgs(), "--image-display-duration=inf", imagePath)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv image viewer: %w", err)
	}
	next := &shownImage{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(next.done)
	}()

	c.mu.Lock()
	previous := c.current
	c.current = next
	c.mu.Unlock()

	stopImage(previous)
	return nil
}

// Clear stops any held frame image.
func (c *CLI) Clear() {
	c.mu.Lock()
	previous := c.current
	c.current = nil
	c.mu.Unlock()

	stopImage(previous)
}

func stopImage(img *shownImage) {
	if img == nil {
		return
	}
	if img.cmd.Process != nil {
		_ = img.cmd.Process.Kill()
	}
	<-img.done
}

func (c *CLI) baseArgs() []string {
	args := []string{"--really-quiet", "--no-osc", "--no-input-default-bindings"}
	if c.display.Fullscreen {
		args = append(args, "--fs")
	}
	if c.display.Background != "" {
		args = append(args, "--background-color="+c.display.Background)
	}
	return args
}

var (
	_ Player  = (*CLI)(nil)
	_ Surface = (*CLI)(nil)
)
