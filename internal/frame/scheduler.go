package frame

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"framed/internal/catalog"
	"framed/internal/config"
	"framed/internal/layout"
	"framed/internal/logging"
	"framed/internal/services/mpv"
)

// Seam for tests.
var scanMedia = catalog.Scan

// Compositor renders a photo group into a frame image and returns its path.
type Compositor interface {
	Compose(group layout.Group) (string, error)
}

type command int

const (
	cmdNext command = iota
	cmdPrevious
)

func stepFor(cmd command) int {
	if cmd == cmdPrevious {
		return -1
	}
	return 1
}

// Scheduler drives the display: photos are composed and held on the surface
// for the configured delay, videos play to completion, and the plan wraps
// around at the end. The plan is rebuilt from disk between slots once the
// refresh interval elapses; the slot being shown keeps its place when it
// survives the rebuild.
type Scheduler struct {
	cfg        *config.Config
	player     mpv.Player
	surface    mpv.Surface
	compositor Compositor
	logger     *slog.Logger

	area layout.Size
	opts layout.Options

	photoDelay      time.Duration
	refreshInterval time.Duration
	debounce        time.Duration

	controls chan command

	mu          sync.Mutex
	lastControl time.Time
	running     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewScheduler constructs a scheduler over the given playback capabilities.
func NewScheduler(cfg *config.Config, player mpv.Player, surface mpv.Surface, compositor Compositor, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:        cfg,
		player:     player,
		surface:    surface,
		compositor: compositor,
		logger:     logger.With(logging.String(logging.FieldComponent, "frame")),
		area: layout.Size{
			Width:  cfg.Display.Width,
			Height: cfg.Display.Height,
		},
		opts: layout.Options{
			Gap:          cfg.Slideshow.PhotoGap,
			BorderHeight: cfg.Slideshow.BorderHeight,
		},
		photoDelay:      time.Duration(cfg.Slideshow.PhotoDelaySeconds) * time.Second,
		refreshInterval: time.Duration(cfg.Slideshow.RefreshIntervalSeconds) * time.Second,
		debounce:        time.Duration(cfg.Slideshow.KeyDebounceMillis) * time.Millisecond,
		controls:        make(chan command, 1),
	}
}

// Next skips forward one slot. Rapid repeats inside the debounce window are
// dropped.
func (s *Scheduler) Next() { s.submit(cmdNext) }

// Previous skips back one slot.
func (s *Scheduler) Previous() { s.submit(cmdPrevious) }

func (s *Scheduler) submit(cmd command) {
	s.mu.Lock()
	now := time.Now()
	if s.debounce > 0 && now.Sub(s.lastControl) < s.debounce {
		s.mu.Unlock()
		return
	}
	s.lastControl = now
	s.mu.Unlock()

	select {
	case s.controls <- cmd:
	default:
	}
}

// Start launches Run in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		_ = s.Run(runCtx)
	}()
	return nil
}

// Stop cancels a running scheduler and waits for it to clear the display.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Run cycles through the display plan until the context is cancelled. The
// surface is cleared on the way out.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.surface.Clear()

	plan, _ := s.rescan()
	lastScan := time.Now()
	index := 0
	wasEmpty := false

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if plan.Empty() {
			if !wasEmpty {
				s.logger.Info("no media to display; waiting",
					logging.String(logging.FieldEventType, "slideshow_empty"),
				)
				s.surface.Clear()
				wasEmpty = true
			}
			if !s.sleep(ctx, s.refreshInterval) {
				return ctx.Err()
			}
			if fresh, ok := s.rescan(); ok {
				plan = fresh
				lastScan = time.Now()
			}
			index = 0
			continue
		}
		wasEmpty = false

		if index >= len(plan.Slots) {
			index = 0
		}
		slot := plan.Slots[index]
		step := s.show(ctx, slot)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if time.Since(lastScan) >= s.refreshInterval {
			if fresh, ok := s.rescan(); ok {
				if pos := fresh.IndexOf(slot.Key); pos >= 0 {
					index = pos
				} else if !fresh.Empty() {
					index = index % len(fresh.Slots)
				} else {
					index = 0
				}
				plan = fresh
			}
			lastScan = time.Now()
		}
		if plan.Empty() {
			continue
		}
		index = ((index+step)%len(plan.Slots) + len(plan.Slots)) % len(plan.Slots)
	}
}

// show displays one slot and returns the step to the next index: +1 for
// normal advance, -1 when the viewer skipped backwards, 0 on shutdown.
func (s *Scheduler) show(ctx context.Context, slot Slot) int {
	switch slot.Kind {
	case PhotoGroup:
		return s.showPhotos(ctx, slot)
	case SingleVideo:
		return s.showVideo(ctx, slot)
	default:
		return 1
	}
}

func (s *Scheduler) showPhotos(ctx context.Context, slot Slot) int {
	path, err := s.compositor.Compose(slot.Group)
	if err != nil {
		s.logger.Error("failed to compose photo group",
			logging.Error(err),
			logging.String(logging.FieldSlot, slot.Key),
		)
		return 1
	}
	if err := s.surface.Show(ctx, path); err != nil {
		s.logger.Error("failed to show photo frame",
			logging.Error(err),
			logging.String(logging.FieldSlot, slot.Key),
		)
		return 1
	}

	timer := time.NewTimer(s.photoDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0
	case <-timer.C:
		return 1
	case cmd := <-s.controls:
		return stepFor(cmd)
	}
}

func (s *Scheduler) showVideo(ctx context.Context, slot Slot) int {
	slotCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	step := 1
	skipped := false
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-slotCtx.Done():
		case cmd := <-s.controls:
			step = stepFor(cmd)
			skipped = true
			cancel()
		}
	}()

	err := s.player.Play(slotCtx, slot.Video.Path)
	cancel()
	<-done

	if err != nil && ctx.Err() == nil && !skipped {
		// A broken video must not wedge the slideshow.
		s.logger.Error("video playback failed; advancing",
			logging.Error(err),
			logging.String(logging.FieldSlot, slot.Key),
		)
	}
	if ctx.Err() != nil {
		return 0
	}
	return step
}

func (s *Scheduler) rescan() (Plan, bool) {
	snapshot, err := scanMedia(s.cfg.Paths.MediaDir)
	if err != nil {
		s.logger.Error("media scan failed; keeping current plan",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_failed"),
		)
		return Plan{}, false
	}
	plan := BuildPlan(snapshot, s.area, s.opts, s.logger)
	s.logger.Debug("display plan rebuilt",
		logging.Int("slots", len(plan.Slots)),
		logging.Int("skipped", snapshot.Skipped),
	)
	return plan, true
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-s.controls:
		return true
	}
}
