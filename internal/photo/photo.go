// Package photo reads photo metadata needed for layout: EXIF orientation and
// pixel dimensions.
package photo

import (
	"fmt"
	"image"
	"os"

	"github.com/rwcarlsen/goexif/exif"

	// Decoders for the photo extension allow-list.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Rotation is a counter-clockwise correction in degrees.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Normalize reads the embedded EXIF orientation of the photo at path and
// returns the rotation that upright display requires. Missing or malformed
// metadata yields Rotate0; Normalize never fails on a readable file's
// contents, only on I/O.
func Normalize(path string) (Rotation, error) {
	file, err := os.Open(path)
	if err != nil {
		return Rotate0, fmt.Errorf("open photo: %w", err)
	}
	defer file.Close()

	meta, err := exif.Decode(file)
	if err != nil {
		// No EXIF block (PNG, stripped JPEG) means no correction.
		return Rotate0, nil
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return Rotate0, nil
	}
	value, err := tag.Int(0)
	if err != nil {
		return Rotate0, nil
	}
	return orientationRotation(value), nil
}

// orientationRotation maps the EXIF orientation value to a CCW rotation.
// Mirrored orientations (2, 4, 5, 7) map to the rotation of their unmirrored
// counterparts.
func orientationRotation(value int) Rotation {
	switch value {
	case 3, 4:
		return Rotate180
	case 5, 6:
		return Rotate270
	case 7, 8:
		return Rotate90
	default:
		return Rotate0
	}
}

// Dimensions returns the displayed width and height of the photo at path
// after applying rotation: 90 and 270 degree corrections swap the axes.
func Dimensions(path string, rotation Rotation) (width, height int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open photo: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("decode photo header %s: %w", path, err)
	}
	if rotation == Rotate90 || rotation == Rotate270 {
		return cfg.Height, cfg.Width, nil
	}
	return cfg.Width, cfg.Height, nil
}
