// Package layout packs photos into screen-filling rows.
//
// Every photo in a group is scaled to a common height (the display height
// minus two fixed borders) and groups are filled greedily: photos are added
// while they still fit the display width at that height, with a fixed gap
// between neighbors. Leftover horizontal space is redistributed as equal
// gaps, one more gap than photos, so nothing piles up on one edge.
//
// Pack is a pure function of its inputs; identical photo lists and areas
// always produce identical arrangements. The grouping tolerance is zero: a
// photo that would push the row past the display width starts the next group.
package layout

import (
	"framed/internal/catalog"
	"framed/internal/photo"
)

// Size is a display area in pixels.
type Size struct {
	Width  int
	Height int
}

// PhotoInput is one photo offered to the packer, with its display dimensions
// after orientation correction.
type PhotoInput struct {
	Item     catalog.Item
	Rotation photo.Rotation
	Width    int
	Height   int
}

// Rect places a photo within the display area.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Placement assigns one photo its rectangle.
type Placement struct {
	Photo PhotoInput
	Rect  Rect
}

// Group is one screen's worth of photos.
type Group struct {
	Placements []Placement
}

// Options carries the fixed layout constants.
type Options struct {
	Gap          int // pixel gap assumed between photos during greedy fill
	BorderHeight int // fixed top and bottom border
}

// Pack arranges photos into groups for the given area. Photos with
// non-positive dimensions are skipped; an empty or fully skipped input
// yields no groups.
func Pack(photos []PhotoInput, area Size, opts Options) []Group {
	rowHeight := area.Height - 2*opts.BorderHeight
	if rowHeight <= 0 || area.Width <= 0 {
		return nil
	}

	var groups []Group
	var row []scaledPhoto
	rowWidth := 0

	flush := func() {
		if len(row) == 0 {
			return
		}
		groups = append(groups, placeRow(row, area, rowHeight, opts))
		row = nil
		rowWidth = 0
	}

	for _, p := range photos {
		if p.Width <= 0 || p.Height <= 0 {
			continue
		}
		width := p.Width * rowHeight / p.Height
		if width <= 0 {
			width = 1
		}
		if width > area.Width {
			// Oversized panorama: gets a group of its own, scaled to fit
			// the width instead of the height.
			flush()
			groups = append(groups, placeOversized(p, area, rowHeight, opts))
			continue
		}
		if len(row) > 0 && rowWidth+width+len(row)*opts.Gap > area.Width {
			flush()
		}
		row = append(row, scaledPhoto{photo: p, width: width})
		rowWidth += width
	}
	flush()

	return groups
}

type scaledPhoto struct {
	photo PhotoInput
	width int
}

func placeRow(row []scaledPhoto, area Size, rowHeight int, opts Options) Group {
	total := 0
	for _, entry := range row {
		total += entry.width
	}
	// n photos get n+1 equal gaps.
	gap := (area.Width - total) / (len(row) + 1)
	if gap < 0 {
		gap = 0
	}

	group := Group{Placements: make([]Placement, 0, len(row))}
	x := gap
	for _, entry := range row {
		group.Placements = append(group.Placements, Placement{
			Photo: entry.photo,
			Rect: Rect{
				X:      x,
				Y:      opts.BorderHeight,
				Width:  entry.width,
				Height: rowHeight,
			},
		})
		x += entry.width + gap
	}
	return group
}

func placeOversized(p PhotoInput, area Size, rowHeight int, opts Options) Group {
	height := p.Height * area.Width / p.Width
	if height > rowHeight {
		height = rowHeight
	}
	if height <= 0 {
		height = 1
	}
	return Group{Placements: []Placement{{
		Photo: p,
		Rect: Rect{
			X:      0,
			Y:      opts.BorderHeight + (rowHeight-height)/2,
			Width:  area.Width,
			Height: height,
		},
	}}}
}
