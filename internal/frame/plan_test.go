package frame

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"framed/internal/catalog"
	"framed/internal/layout"
	"framed/internal/logging"
)

func writeTestPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func photoItem(path string) catalog.Item {
	return catalog.Item{
		Path:  path,
		Name:  filepath.Base(path),
		Kind:  catalog.Photo,
		Mtime: time.Now(),
	}
}

func videoItem(path string) catalog.Item {
	return catalog.Item{
		Path:  path,
		Name:  filepath.Base(path),
		Kind:  catalog.ConvertedVideo,
		Mtime: time.Now(),
	}
}

func TestBuildPlanAlternatesKinds(t *testing.T) {
	dir := t.TempDir()
	photoA := filepath.Join(dir, "a.png")
	photoB := filepath.Join(dir, "b.png")
	writeTestPNG(t, photoA, 40, 60)
	writeTestPNG(t, photoB, 40, 60)

	snapshot := catalog.Snapshot{Items: []catalog.Item{
		photoItem(photoA),
		photoItem(photoB),
		videoItem(filepath.Join(dir, "converted", "one_h264.mp4")),
		videoItem(filepath.Join(dir, "converted", "two_h264.mp4")),
	}}

	plan := BuildPlan(snapshot, layout.Size{Width: 1920, Height: 1080}, layout.Options{Gap: 30, BorderHeight: 50}, logging.NewNop())
	if len(plan.Slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(plan.Slots))
	}
	wantKinds := []SlotKind{PhotoGroup, SingleVideo, SingleVideo}
	for i, want := range wantKinds {
		if plan.Slots[i].Kind != want {
			t.Fatalf("slot %d: expected %s, got %s", i, want, plan.Slots[i].Kind)
		}
	}
	if len(plan.Slots[0].Group.Placements) != 2 {
		t.Fatalf("expected both photos in one group, got %d", len(plan.Slots[0].Group.Placements))
	}
}

func TestBuildPlanSkipsUndecodablePhotos(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write broken photo: %v", err)
	}

	snapshot := catalog.Snapshot{Items: []catalog.Item{
		photoItem(broken),
		videoItem(filepath.Join(dir, "converted", "one_h264.mp4")),
	}}

	plan := BuildPlan(snapshot, layout.Size{Width: 1920, Height: 1080}, layout.Options{Gap: 30, BorderHeight: 50}, logging.NewNop())
	if len(plan.Slots) != 1 {
		t.Fatalf("expected only the video slot, got %d", len(plan.Slots))
	}
	if plan.Slots[0].Kind != SingleVideo {
		t.Fatalf("expected video slot, got %s", plan.Slots[0].Kind)
	}
}

func TestBuildPlanEmptySnapshot(t *testing.T) {
	plan := BuildPlan(catalog.Snapshot{}, layout.Size{Width: 1920, Height: 1080}, layout.Options{}, logging.NewNop())
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %d slots", len(plan.Slots))
	}
}

func TestPlanIndexOf(t *testing.T) {
	dir := t.TempDir()
	snapshot := catalog.Snapshot{Items: []catalog.Item{
		videoItem(filepath.Join(dir, "converted", "one_h264.mp4")),
		videoItem(filepath.Join(dir, "converted", "two_h264.mp4")),
	}}
	plan := BuildPlan(snapshot, layout.Size{Width: 1920, Height: 1080}, layout.Options{}, logging.NewNop())
	if len(plan.Slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(plan.Slots))
	}
	if idx := plan.IndexOf(plan.Slots[1].Key); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if idx := plan.IndexOf("video:/nowhere"); idx != -1 {
		t.Fatalf("expected -1 for unknown key, got %d", idx)
	}
}
