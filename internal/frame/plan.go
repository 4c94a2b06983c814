package frame

import (
	"log/slog"
	"strings"

	"framed/internal/catalog"
	"framed/internal/layout"
	"framed/internal/logging"
	"framed/internal/photo"
)

// SlotKind distinguishes the two display slot shapes.
type SlotKind int

const (
	PhotoGroup SlotKind = iota
	SingleVideo
)

func (k SlotKind) String() string {
	switch k {
	case PhotoGroup:
		return "photo-group"
	case SingleVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Slot is one entry of a display plan: either a packed photo group or a
// single converted video.
type Slot struct {
	Kind  SlotKind
	Group layout.Group
	Video catalog.Item
	Key   string
}

// Plan is the ordered slot sequence the scheduler cycles through.
type Plan struct {
	Slots []Slot
}

// Empty reports whether the plan has nothing to show.
func (p Plan) Empty() bool { return len(p.Slots) == 0 }

// IndexOf returns the position of the slot with the given identity key, or
// -1 when the slot no longer exists.
func (p Plan) IndexOf(key string) int {
	for i, slot := range p.Slots {
		if slot.Key == key {
			return i
		}
	}
	return -1
}

// BuildPlan converts a catalog snapshot into a display plan. Photo groups
// and videos alternate; whichever kind runs out first leaves the remainder
// of the other kind in catalog order. Photos that cannot be decoded are
// skipped and logged.
func BuildPlan(snapshot catalog.Snapshot, area layout.Size, opts layout.Options, logger *slog.Logger) Plan {
	if logger == nil {
		logger = logging.NewNop()
	}

	inputs := make([]layout.PhotoInput, 0, len(snapshot.Photos()))
	for _, item := range snapshot.Photos() {
		rotation, err := photo.Normalize(item.Path)
		if err != nil {
			rotation = photo.Rotate0
		}
		width, height, err := photo.Dimensions(item.Path, rotation)
		if err != nil {
			logger.Warn("skipping undecodable photo",
				logging.Error(err),
				logging.String(logging.FieldSource, item.Path),
			)
			continue
		}
		inputs = append(inputs, layout.PhotoInput{
			Item:     item,
			Rotation: rotation,
			Width:    width,
			Height:   height,
		})
	}

	groups := layout.Pack(inputs, area, opts)
	videos := snapshot.ConvertedVideos()

	slots := make([]Slot, 0, len(groups)+len(videos))
	for i := 0; i < len(groups) || i < len(videos); i++ {
		if i < len(groups) {
			slots = append(slots, photoSlot(groups[i]))
		}
		if i < len(videos) {
			slots = append(slots, videoSlot(videos[i]))
		}
	}
	return Plan{Slots: slots}
}

func photoSlot(group layout.Group) Slot {
	paths := make([]string, 0, len(group.Placements))
	for _, placement := range group.Placements {
		paths = append(paths, placement.Photo.Item.Path)
	}
	return Slot{
		Kind:  PhotoGroup,
		Group: group,
		Key:   "photos:" + strings.Join(paths, "|"),
	}
}

func videoSlot(item catalog.Item) Slot {
	return Slot{
		Kind:  SingleVideo,
		Video: item,
		Key:   "video:" + item.Path,
	}
}
