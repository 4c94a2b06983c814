package daemon

import (
	"context"
	"os"
	"sync"
	"testing"

	"framed/internal/logging"
	"framed/internal/testsupport"
)

type stubRunner struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (r *stubRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started++
	return nil
}

func (r *stubRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped++
}

func TestDaemonLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	runner := &stubRunner{}
	d, err := New(cfg, "convert", runner, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected daemon to report running")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second Start to fail")
	}
	if _, err := os.Stat(d.LockPath()); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon to report stopped")
	}
	d.Stop()

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.started != 1 || runner.stopped != 1 {
		t.Fatalf("expected one start and one stop, got %d/%d", runner.started, runner.stopped)
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	first, err := New(cfg, "show", &stubRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := New(cfg, "show", &stubRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}

func TestDaemonDifferentRolesCoexist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	convert, err := New(cfg, "convert", &stubRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	show, err := New(cfg, "show", &stubRunner{}, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := convert.Start(context.Background()); err != nil {
		t.Fatalf("start convert: %v", err)
	}
	defer convert.Stop()
	if err := show.Start(context.Background()); err != nil {
		t.Fatalf("start show: %v", err)
	}
	show.Stop()
}

func TestNewValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := New(nil, "convert", &stubRunner{}, nil); err == nil {
		t.Fatal("expected nil config to be rejected")
	}
	if _, err := New(cfg, "", &stubRunner{}, nil); err == nil {
		t.Fatal("expected empty role name to be rejected")
	}
	if _, err := New(cfg, "convert", nil, nil); err == nil {
		t.Fatal("expected nil runner to be rejected")
	}
}
