package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"framed/internal/catalog"
	"framed/internal/config"
	"framed/internal/fileutil"
	"framed/internal/jobs"
	"framed/internal/logging"
	"framed/internal/services"
	"framed/internal/services/ffmpeg"
)

// minConvertedBytes is the smallest output accepted as a real conversion.
// Anything under this is a header-only file from an aborted run.
const minConvertedBytes = 1024

// Worker watches the media directory and converts raw videos into the
// converted subdirectory.
type Worker struct {
	cfg        *config.Config
	store      *jobs.Store
	transcoder ffmpeg.Transcoder
	logger     *slog.Logger

	pollInterval time.Duration
	wakeup       chan struct{}

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	slots chan struct{}
}

// NewWorker constructs a conversion worker.
func NewWorker(cfg *config.Config, store *jobs.Store, transcoder ffmpeg.Transcoder, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	parallel := cfg.Conversion.MaxParallel
	if parallel < 1 {
		parallel = 1
	}
	return &Worker{
		cfg:          cfg,
		store:        store,
		transcoder:   transcoder,
		logger:       logger.With(logging.String(logging.FieldComponent, "convert")),
		pollInterval: time.Duration(cfg.Conversion.PollIntervalSeconds) * time.Second,
		wakeup:       make(chan struct{}, 1),
		slots:        make(chan struct{}, parallel),
	}
}

// Start recovers interrupted state and begins background processing.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("conversion worker already running")
	}

	if removed, err := fileutil.SweepPartials(w.cfg.ConvertedDir()); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("sweep partial outputs: %w", err)
	} else if removed > 0 {
		w.logger.Info("removed stale partial outputs",
			logging.Int("removed", removed),
			logging.String(logging.FieldEventType, "partials_swept"),
		)
	}
	if reset, err := w.store.ResetStuckRunning(ctx); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("reset interrupted jobs: %w", err)
	} else if reset > 0 {
		w.logger.Info("requeued jobs interrupted by shutdown",
			logging.Int64("jobs", reset),
			logging.String(logging.FieldEventType, "jobs_requeued"),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	watcher := w.startWatcher(runCtx)
	go func() {
		defer w.wg.Done()
		if watcher != nil {
			defer watcher.Close()
		}
		w.run(runCtx)
	}()
	return nil
}

// Stop terminates background processing and waits for in-flight conversions.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

// startWatcher wires filesystem notifications so new media is picked up
// without waiting out a poll interval. Polling remains the backstop; watch
// failures are logged and otherwise ignored.
func (w *Worker) startWatcher(ctx context.Context) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("filesystem watch unavailable; relying on polling",
			logging.Error(err),
			logging.String(logging.FieldEventType, "watch_unavailable"),
		)
		return nil
	}
	if err := watcher.Add(w.cfg.Paths.MediaDir); err != nil {
		w.logger.Warn("cannot watch media directory; relying on polling",
			logging.Error(err),
			logging.String(logging.FieldEventType, "watch_unavailable"),
		)
		watcher.Close()
		return nil
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Write) != 0 {
					w.Wake()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return watcher
}

// Wake nudges the worker to reconcile ahead of the next poll tick.
func (w *Worker) Wake() {
	select {
	case w.wakeup <- struct{}{}:
	default:
	}
}

func (w *Worker) run(ctx context.Context) {
	for {
		w.reconcile(ctx)
		w.dispatch(ctx)

		select {
		case <-ctx.Done():
			return
		case <-w.wakeup:
		case <-time.After(w.pollInterval):
		}
	}
}

// reconcile aligns the job store with the media directory: new raw videos
// are tracked, jobs whose source vanished are dropped.
func (w *Worker) reconcile(ctx context.Context) {
	snapshot, err := catalog.Scan(w.cfg.Paths.MediaDir)
	if err != nil {
		w.logger.Error("media scan failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "scan_failed"),
			logging.String(logging.FieldErrorHint, "check media directory permissions"),
		)
		return
	}

	for _, item := range snapshot.RawVideos() {
		if snapshot.HasConverted(item) {
			continue
		}
		dest := filepath.Join(w.cfg.ConvertedDir(), item.ConvertedName())
		if _, err := w.store.Track(ctx, item, dest); err != nil {
			w.logger.Error("failed to track conversion job",
				logging.Error(err),
				logging.String(logging.FieldSource, item.Path),
				logging.String(logging.FieldEventType, "track_failed"),
			)
		}
	}

	all, err := w.store.List(ctx)
	if err != nil {
		w.logger.Error("failed to list conversion jobs", logging.Error(err))
		return
	}
	for _, job := range all {
		if job.Status == jobs.StatusRunning {
			continue
		}
		if _, err := os.Stat(job.SourcePath); os.IsNotExist(err) {
			if err := w.store.Forget(ctx, job.ID); err != nil {
				w.logger.Error("failed to drop job for vanished source",
					logging.Error(err),
					logging.String(logging.FieldJobID, job.ID),
				)
				continue
			}
			w.logger.Info("dropped job for vanished source",
				logging.String(logging.FieldJobID, job.ID),
				logging.String(logging.FieldSource, job.SourcePath),
				logging.String(logging.FieldEventType, "job_dropped"),
			)
		}
	}
}

// dispatch starts ready jobs while parallel slots and machine headroom
// allow. When the guard declines, nothing starts until a later cycle.
func (w *Worker) dispatch(ctx context.Context) {
	guard := NewGuard(w.cfg.Conversion, w.cfg.ConvertedDir())
	for {
		select {
		case <-ctx.Done():
			return
		case w.slots <- struct{}{}:
		default:
			return
		}

		job, err := w.store.NextReady(ctx, time.Now())
		if err != nil {
			<-w.slots
			w.logger.Error("failed to fetch next job", logging.Error(err))
			return
		}
		if job == nil {
			<-w.slots
			return
		}
		if err := guard.Check(ctx); err != nil {
			<-w.slots
			w.logger.Info("declining to start conversion",
				logging.String("reason", err.Error()),
				logging.String(logging.FieldEventType, "conversion_deferred"),
			)
			return
		}
		if err := w.store.MarkRunning(ctx, job.ID); err != nil {
			<-w.slots
			w.logger.Error("failed to mark job running",
				logging.Error(err),
				logging.String(logging.FieldJobID, job.ID),
			)
			return
		}

		w.wg.Add(1)
		go func(job *jobs.Job) {
			defer w.wg.Done()
			defer func() { <-w.slots }()
			w.process(ctx, job)
		}(job)
	}
}

func (w *Worker) process(ctx context.Context, job *jobs.Job) {
	logger := w.logger.With(
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSource, job.SourceName),
	)
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithSource(ctx, job.SourcePath)

	started := time.Now()
	logger.Info("conversion started", logging.String(logging.FieldEventType, "conversion_started"))

	if err := w.convert(ctx, job); err != nil {
		if ctx.Err() != nil {
			// Shutdown, not failure. ResetStuckRunning requeues on restart.
			return
		}
		w.recordFailure(ctx, job, logger, err)
		return
	}

	if err := w.store.MarkSucceeded(ctx, job.ID); err != nil {
		logger.Error("failed to mark job succeeded", logging.Error(err))
		return
	}
	logger.Info("conversion finished",
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "conversion_finished"),
	)
	w.removeSource(job, logger)
}

// convert runs ffmpeg into the partial path, verifies the result, and
// promotes it to the final destination. The source is untouched until the
// destination is verified in place.
func (w *Worker) convert(ctx context.Context, job *jobs.Job) error {
	if _, err := os.Stat(job.SourcePath); err != nil {
		return services.Wrap(services.ErrValidation, "convert", "stat source", "", err)
	}
	if err := fileutil.VerifyNonTrivial(job.Destination, minConvertedBytes); err == nil {
		// A verified destination already exists. Adopt it.
		return nil
	}

	runCtx := ctx
	if timeout := w.cfg.Conversion.TimeoutSeconds; timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	if err := w.transcoder.Transcode(runCtx, job.SourcePath, job.Destination); err != nil {
		_ = os.Remove(fileutil.PartialName(job.Destination))
		if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return services.Wrap(services.ErrTimeout, "convert", "transcode", job.SourceName, err)
		}
		return services.Wrap(services.ErrExternalTool, "convert", "transcode", job.SourceName, err)
	}
	if err := fileutil.VerifyNonTrivial(fileutil.PartialName(job.Destination), minConvertedBytes); err != nil {
		_ = os.Remove(fileutil.PartialName(job.Destination))
		return services.Wrap(services.ErrExternalTool, "convert", "verify output", job.SourceName, err)
	}
	if err := fileutil.Finalize(job.Destination); err != nil {
		return services.Wrap(services.ErrExternalTool, "convert", "finalize output", job.SourceName, err)
	}
	return nil
}

func (w *Worker) recordFailure(ctx context.Context, job *jobs.Job, logger *slog.Logger, convErr error) {
	attempts := job.Attempts + 1
	limit := w.cfg.Conversion.RetryLimit
	terminal := services.Terminal(convErr) || (limit > 0 && attempts >= limit)

	if terminal {
		if err := w.store.MarkFailed(ctx, job.ID, convErr.Error()); err != nil {
			logger.Error("failed to mark job failed", logging.Error(err))
			return
		}
		logger.Error("conversion failed permanently",
			logging.Error(convErr),
			logging.Int("attempts", attempts),
			logging.String(logging.FieldEventType, "conversion_failed"),
			logging.String(logging.FieldErrorHint, "job stays failed until the source file changes"),
		)
		return
	}

	next := time.Now().Add(time.Duration(w.cfg.Conversion.RetryBackoffSeconds) * time.Second)
	if err := w.store.MarkRetry(ctx, job.ID, convErr.Error(), next); err != nil {
		logger.Error("failed to schedule retry", logging.Error(err))
		return
	}
	logger.Warn("conversion failed; will retry",
		logging.Error(convErr),
		logging.Int("attempts", attempts),
		logging.String(logging.FieldEventType, "conversion_retry"),
	)
}

// removeSource deletes the raw video once its converted replacement is
// verified in place, unless originals are kept.
func (w *Worker) removeSource(job *jobs.Job, logger *slog.Logger) {
	if w.cfg.Conversion.KeepOriginals {
		return
	}
	if err := fileutil.VerifyNonTrivial(job.Destination, minConvertedBytes); err != nil {
		logger.Warn("keeping source; converted output missing or truncated", logging.Error(err))
		return
	}
	if err := os.Remove(job.SourcePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove converted source",
			logging.Error(err),
			logging.String(logging.FieldSource, job.SourcePath),
		)
		return
	}
	logger.Info("removed original after conversion",
		logging.String(logging.FieldSource, job.SourcePath),
		logging.String(logging.FieldEventType, "source_removed"),
	)
}
