// Package render composes packed photo groups into single frame images the
// display surface can hold on screen.
package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"

	"framed/internal/layout"
)

// Compositor renders photo groups onto a fixed-size canvas and writes them
// as PNG files under its output directory.
type Compositor struct {
	dir        string
	area       layout.Size
	background color.NRGBA

	mu       sync.Mutex
	sequence int
}

// NewCompositor constructs a compositor writing frames into dir.
func NewCompositor(dir string, area layout.Size, background string) *Compositor {
	return &Compositor{
		dir:        dir,
		area:       area,
		background: parseColor(background),
	}
}

// Compose renders one group and returns the path of the written frame.
// Frames alternate between two paths so the file the surface currently
// displays is never truncated underneath it.
func (c *Compositor) Compose(group layout.Group) (string, error) {
	canvas := imaging.New(c.area.Width, c.area.Height, c.background)

	for _, placement := range group.Placements {
		img, err := imaging.Open(placement.Photo.Item.Path, imaging.AutoOrientation(true))
		if err != nil {
			return "", fmt.Errorf("open photo %s: %w", placement.Photo.Item.Name, err)
		}
		resized := imaging.Resize(img, placement.Rect.Width, placement.Rect.Height, imaging.Lanczos)
		canvas = imaging.Paste(canvas, resized, image.Pt(placement.Rect.X, placement.Rect.Y))
	}

	c.mu.Lock()
	c.sequence++
	path := filepath.Join(c.dir, "frame-"+strconv.Itoa(c.sequence%2)+".png")
	c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create frame directory: %w", err)
	}
	if err := imaging.Save(canvas, path); err != nil {
		return "", fmt.Errorf("write frame: %w", err)
	}
	return path, nil
}

// parseColor understands "#RGB" and "#RRGGBB"; anything else is black.
func parseColor(value string) color.NRGBA {
	black := color.NRGBA{A: 255}
	if len(value) == 0 || value[0] != '#' {
		return black
	}
	hex := value[1:]
	switch len(hex) {
	case 3:
		expanded := make([]byte, 6)
		for i := 0; i < 3; i++ {
			expanded[2*i] = hex[i]
			expanded[2*i+1] = hex[i]
		}
		hex = string(expanded)
	case 6:
	default:
		return black
	}
	parsed, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return black
	}
	return color.NRGBA{
		R: uint8(parsed >> 16),
		G: uint8(parsed >> 8),
		B: uint8(parsed),
		A: 255,
	}
}
