package jobs_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"framed/internal/catalog"
	"framed/internal/jobs"
	"framed/internal/testsupport"
)

func sourceItem(name string, mtime time.Time) catalog.Item {
	return catalog.Item{
		Path:  filepath.Join("/media", name),
		Name:  name,
		Kind:  catalog.RawVideo,
		Mtime: mtime,
	}
}

func openStore(t *testing.T) *jobs.Store {
	t.Helper()
	store, err := jobs.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTrackInsertsOnce(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	mtime := time.Now().Add(-time.Hour)

	first, err := store.Track(ctx, sourceItem("holiday.avi", mtime), "/media/converted/holiday_h264.mp4")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if first.Status != jobs.StatusPending || first.Attempts != 0 {
		t.Fatalf("unexpected new job: %+v", first)
	}

	second, err := store.Track(ctx, sourceItem("holiday.avi", mtime), "/media/converted/holiday_h264.mp4")
	if err != nil {
		t.Fatalf("Track again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same job row, got %s and %s", first.ID, second.ID)
	}
}

func TestRetryAndTerminalFailure(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Track(ctx, sourceItem("clip.mov", time.Now()), "/media/converted/clip_h264.mp4")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}

	if err := store.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if err := store.MarkRetry(ctx, job.ID, "exit status 1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("MarkRetry: %v", err)
	}

	got, err := store.GetBySource(ctx, job.SourcePath)
	if err != nil {
		t.Fatalf("GetBySource: %v", err)
	}
	if got.Status != jobs.StatusPending || got.Attempts != 1 {
		t.Fatalf("unexpected retried job: %+v", got)
	}
	if got.Ready(time.Now()) {
		t.Fatal("job should honor backoff gate")
	}
	if !got.Ready(time.Now().Add(2 * time.Hour)) {
		t.Fatal("job should be ready after backoff elapses")
	}

	if err := store.MarkFailed(ctx, job.ID, "exit status 1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, err = store.GetBySource(ctx, job.SourcePath)
	if err != nil {
		t.Fatalf("GetBySource: %v", err)
	}
	if got.Status != jobs.StatusFailed || got.Attempts != 2 {
		t.Fatalf("unexpected failed job: %+v", got)
	}
	if got.ErrorMessage != "exit status 1" {
		t.Fatalf("unexpected error message: %q", got.ErrorMessage)
	}
}

func TestFailedJobResetsWhenSourceMtimeChanges(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	mtime := time.Now().Add(-time.Hour)

	job, err := store.Track(ctx, sourceItem("clip.mov", mtime), "/dest")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := store.MarkFailed(ctx, job.ID, "broken"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	// Same mtime: failure is terminal, no retry.
	same, err := store.Track(ctx, sourceItem("clip.mov", mtime), "/dest")
	if err != nil {
		t.Fatalf("Track same mtime: %v", err)
	}
	if same.Status != jobs.StatusFailed {
		t.Fatalf("expected failed job to stay failed, got %s", same.Status)
	}

	// New mtime: treated as a new job.
	touched, err := store.Track(ctx, sourceItem("clip.mov", mtime.Add(time.Minute)), "/dest")
	if err != nil {
		t.Fatalf("Track new mtime: %v", err)
	}
	if touched.Status != jobs.StatusPending || touched.Attempts != 0 {
		t.Fatalf("expected reset job, got %+v", touched)
	}
}

func TestNextReadySkipsBackoffAndOrdersByAge(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	now := time.Now()

	older, err := store.Track(ctx, sourceItem("a.avi", now), "/dest-a")
	if err != nil {
		t.Fatalf("Track a: %v", err)
	}
	if _, err := store.Track(ctx, sourceItem("b.avi", now), "/dest-b"); err != nil {
		t.Fatalf("Track b: %v", err)
	}

	got, err := store.NextReady(ctx, now)
	if err != nil {
		t.Fatalf("NextReady: %v", err)
	}
	if got == nil || got.ID != older.ID {
		t.Fatalf("expected oldest pending job, got %+v", got)
	}

	if err := store.MarkRetry(ctx, older.ID, "busy", now.Add(time.Hour)); err != nil {
		t.Fatalf("MarkRetry: %v", err)
	}
	got, err = store.NextReady(ctx, now)
	if err != nil {
		t.Fatalf("NextReady after retry: %v", err)
	}
	if got == nil || got.SourceName != "b.avi" {
		t.Fatalf("expected backoff job to be skipped, got %+v", got)
	}
}

func TestResetStuckRunningAndForget(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job, err := store.Track(ctx, sourceItem("stuck.mp4", time.Now()), "/dest")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if err := store.MarkRunning(ctx, job.ID); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}

	count, err := store.ResetStuckRunning(ctx)
	if err != nil {
		t.Fatalf("ResetStuckRunning: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reset job, got %d", count)
	}

	if err := store.Forget(ctx, job.ID); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty job list, got %d entries", len(listed))
	}
}

func TestSummarize(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a, _ := store.Track(ctx, sourceItem("a.avi", time.Now()), "/a")
	if _, err := store.Track(ctx, sourceItem("b.avi", time.Now()), "/b"); err != nil {
		t.Fatalf("Track b: %v", err)
	}
	if err := store.MarkSucceeded(ctx, a.ID); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Total != 2 || summary.Pending != 1 || summary.Succeeded != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
