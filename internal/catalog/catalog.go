package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"framed/internal/config"
)

// Kind classifies a media file.
type Kind int

const (
	Photo Kind = iota
	RawVideo
	ConvertedVideo
)

func (k Kind) String() string {
	switch k {
	case Photo:
		return "photo"
	case RawVideo:
		return "raw_video"
	case ConvertedVideo:
		return "converted_video"
	default:
		return "unknown"
	}
}

// ConvertedSuffix is appended to a source stem to form the converted output
// name, e.g. holiday.avi -> holiday_h264.mp4.
const ConvertedSuffix = "_h264.mp4"

var photoExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".bmp": {}, ".gif": {}, ".webp": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".wmv": {}, ".flv": {}, ".webm": {}, ".m4v": {},
}

// Item represents one classified file in the catalog.
type Item struct {
	Path  string
	Name  string
	Kind  Kind
	Mtime time.Time
	Size  int64
}

// Stem returns the file name without its extension.
func (i Item) Stem() string {
	return strings.TrimSuffix(i.Name, filepath.Ext(i.Name))
}

// ConvertedName returns the output file name a RawVideo converts to.
func (i Item) ConvertedName() string {
	return i.Stem() + ConvertedSuffix
}

// Snapshot is one classified listing of the media directory.
type Snapshot struct {
	Items   []Item
	Skipped int
	TakenAt time.Time
}

// Photos returns the photo items in snapshot order.
func (s Snapshot) Photos() []Item { return s.byKind(Photo) }

// RawVideos returns unconverted video items in snapshot order.
func (s Snapshot) RawVideos() []Item { return s.byKind(RawVideo) }

// ConvertedVideos returns converted video items in snapshot order.
func (s Snapshot) ConvertedVideos() []Item { return s.byKind(ConvertedVideo) }

func (s Snapshot) byKind(kind Kind) []Item {
	var out []Item
	for _, item := range s.Items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// HasConverted reports whether raw already has its converted counterpart in
// the snapshot.
func (s Snapshot) HasConverted(raw Item) bool {
	want := raw.ConvertedName()
	for _, item := range s.Items {
		if item.Kind == ConvertedVideo && item.Name == want {
			return true
		}
	}
	return false
}

// Scan lists mediaDir and its converted/ subdirectory and classifies every
// entry. Ordering is deterministic: numeric-aware name order within each
// directory, mtime as tie-break. Entries that cannot be stat'ed are skipped
// and counted. Re-scanning an unchanged directory yields identical output.
func Scan(mediaDir string) (Snapshot, error) {
	snap := Snapshot{TakenAt: time.Now()}

	rootItems, skipped, err := scanDir(mediaDir, classifyRoot)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan media directory: %w", err)
	}
	snap.Items = append(snap.Items, rootItems...)
	snap.Skipped += skipped

	convertedDir := filepath.Join(mediaDir, config.ConvertedSubdir)
	convertedItems, skipped, err := scanDir(convertedDir, classifyConverted)
	if err != nil {
		if !os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("scan converted directory: %w", err)
		}
		// converted/ may not exist until the converter's first run
	} else {
		snap.Items = append(snap.Items, convertedItems...)
		snap.Skipped += skipped
	}

	return snap, nil
}

func scanDir(dir string, classify func(name string) (Kind, bool)) ([]Item, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}

	items := make([]Item, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		kind, ok := classify(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Vanished or unreadable between ReadDir and stat; next scan
			// picks it up if it reappears.
			skipped++
			continue
		}
		items = append(items, Item{
			Path:  filepath.Join(dir, name),
			Name:  name,
			Kind:  kind,
			Mtime: info.ModTime(),
			Size:  info.Size(),
		})
	}

	sortItems(items)
	return items, skipped, nil
}

func classifyRoot(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := photoExtensions[ext]; ok {
		return Photo, true
	}
	if _, ok := videoExtensions[ext]; ok {
		return RawVideo, true
	}
	return 0, false
}

func classifyConverted(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := videoExtensions[ext]; ok {
		return ConvertedVideo, true
	}
	return 0, false
}

// collator orders names numeric-aware (photo2 before photo10) and is
// deterministic for a given input set.
var (
	collator = collate.New(language.Und, collate.Numeric)
	// collate.Collator is not safe for concurrent use; Scan may run from a
	// refresh timer goroutine and the main loop at once.
	collatorMu sync.Mutex
)

func sortItems(items []Item) {
	collatorMu.Lock()
	defer collatorMu.Unlock()
	slices.SortStableFunc(items, func(a, b Item) int {
		if c := collator.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Mtime.Compare(b.Mtime)
	})
}
