package services

import (
	"context"
	"testing"
)

func TestJobIDRoundTrip(t *testing.T) {
	ctx := WithJobID(context.Background(), "9d0f")
	id, ok := JobIDFromContext(ctx)
	if !ok || id != "9d0f" {
		t.Fatalf("expected job id to round trip, got %q %v", id, ok)
	}
	if _, ok := JobIDFromContext(context.Background()); ok {
		t.Fatal("expected no job id on bare context")
	}
	if got := WithJobID(context.Background(), ""); got != context.Background() {
		t.Fatal("empty job id should not allocate a new context")
	}
}

func TestSourceRoundTrip(t *testing.T) {
	ctx := WithSource(context.Background(), "/media/clip.avi")
	path, ok := SourceFromContext(ctx)
	if !ok || path != "/media/clip.avi" {
		t.Fatalf("expected source to round trip, got %q %v", path, ok)
	}
	if _, ok := SourceFromContext(context.Background()); ok {
		t.Fatal("expected no source on bare context")
	}
}
