package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"framed/internal/config"
	"framed/internal/logging"
)

// Runner is a background service the daemon supervises.
type Runner interface {
	Start(ctx context.Context) error
	Stop()
}

// Daemon wraps a runner with a file lock so only one instance of a given
// role works a media directory at a time.
type Daemon struct {
	name   string
	runner Runner
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon for the named role. The lock file lives in the
// state directory so both roles can run side by side without colliding.
func New(cfg *config.Config, name string, runner Runner, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || runner == nil {
		return nil, errors.New("daemon requires config and runner")
	}
	if name == "" {
		return nil, errors.New("daemon requires a role name")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.StateDir, "framed-"+name+".lock")
	return &Daemon{
		name:     name,
		runner:   runner,
		logger:   logger,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and launches the runner.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another framed %s instance is already running", d.name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.runner.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start %s: %w", d.name, err)
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String(logging.FieldComponent, d.name),
		logging.String("lock", d.lockPath),
	)
	return nil
}

// Stop shuts the runner down and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.runner.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped", logging.String(logging.FieldComponent, d.name))
}

// Run starts the daemon, blocks until the context ends, and stops it.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return ctx.Err()
}

// Running reports whether the daemon currently holds its lock.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
