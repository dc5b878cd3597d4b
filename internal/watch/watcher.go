// Package watch runs gcodepost as a daemon: G-code files dropped into an
// inbox directory are processed into an outbox, and a small HTTP server
// reports health, metrics and job history.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/gcodepost/internal/logfields"
	"git.home.luguber.info/inful/gcodepost/internal/postprocess"
)

// Subdirectories of the inbox that receive source files once handled.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

// Extension is the file extension picked up from the inbox.
const Extension = ".gcode"

const queueSize = 256

// Options configures a Watcher.
type Options struct {
	Inbox         string
	Outbox        string        // Defaults to <inbox>/output
	Debounce      time.Duration // Quiet time after the last write before a file is processed
	SweepInterval time.Duration // Zero disables the periodic sweep
}

// Watcher processes files arriving in the inbox one at a time.
type Watcher struct {
	opts      Options
	processor *postprocess.Processor
	logger    *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	queued  map[string]bool
	queue   chan string
	started bool

	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a watcher. Directories are created when Run starts.
func New(processor *postprocess.Processor, opts Options, logger *slog.Logger) (*Watcher, error) {
	if processor == nil {
		return nil, errors.New("processor is required")
	}
	if opts.Inbox == "" {
		return nil, errors.New("inbox is required")
	}
	if opts.Outbox == "" {
		opts.Outbox = filepath.Join(opts.Inbox, "output")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		opts:      opts,
		processor: processor,
		logger:    logger.With(slog.String("component", "watch")),
		timers:    make(map[string]*time.Timer),
		queued:    make(map[string]bool),
		queue:     make(chan string, queueSize),
	}, nil
}

// Options returns the effective options.
func (w *Watcher) Options() Options {
	return w.opts
}

// Counts returns how many files were processed and how many failed.
func (w *Watcher) Counts() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// Run watches the inbox until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.started = true
	w.mu.Unlock()

	for _, dir := range []string{
		w.opts.Inbox,
		w.opts.Outbox,
		filepath.Join(w.opts.Inbox, ProcessedDir),
		filepath.Join(w.opts.Inbox, FailedDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	// Watch the directory; files are matched by name.
	if err := fsw.Add(w.opts.Inbox); err != nil {
		return fmt.Errorf("failed to watch inbox %s: %w", w.opts.Inbox, err)
	}

	scheduler, err := w.schedule(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.workLoop(ctx)
	}()

	w.logger.Info("Watching inbox",
		logfields.Path(w.opts.Inbox),
		slog.String("outbox", w.opts.Outbox))

	w.eventLoop(ctx, fsw)
	w.stopTimers()
	wg.Wait()

	w.logger.Info("Watcher stopped")
	return nil
}

// schedule starts the periodic sweep. The first sweep runs immediately and
// picks up files that arrived while the daemon was down.
func (w *Watcher) schedule(ctx context.Context) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	interval := w.opts.SweepInterval
	if interval <= 0 {
		_, err = s.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
			gocron.NewTask(w.Sweep, ctx),
			gocron.WithName("inbox-sweep"),
		)
	} else {
		_, err = s.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(w.Sweep, ctx),
			gocron.WithName("inbox-sweep"),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
	}
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create sweep job: %w", err)
	}

	s.Start()
	return s, nil
}

// eventLoop turns file system events into debounced queue entries.
func (w *Watcher) eventLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.accepts(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.logger.Debug("Inbox change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
				w.debounce(event.Name)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Inbox watcher error", logfields.Error(err))
		}
	}
}

// accepts reports whether path is a G-code file directly inside the inbox.
func (w *Watcher) accepts(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return filepath.Clean(filepath.Dir(path)) == filepath.Clean(w.opts.Inbox)
}

// debounce (re)starts the quiet timer for path.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.enqueue(path)
	})
}

// settling reports whether path has a debounce timer that has not fired yet.
func (w *Watcher) settling(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.timers[path]
	return ok
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// enqueue adds path unless it is already waiting. A full queue drops the
// path; the next sweep finds it again.
func (w *Watcher) enqueue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.queued[path] {
		return
	}
	select {
	case w.queue <- path:
		w.queued[path] = true
	default:
		w.logger.Warn("Inbox queue full, deferring to next sweep", logfields.File(path))
	}
}

// Sweep queues every G-code file currently in the inbox. Files with a
// pending debounce timer are still being written and are left to the timer.
func (w *Watcher) Sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	entries, err := os.ReadDir(w.opts.Inbox)
	if err != nil {
		w.logger.Error("Inbox sweep failed", logfields.Error(err))
		return
	}

	n := 0
	for _, e := range entries {
		path := filepath.Join(w.opts.Inbox, e.Name())
		if e.IsDir() || !w.accepts(path) || w.settling(path) {
			continue
		}
		w.enqueue(path)
		n++
	}
	if n > 0 {
		w.logger.Debug("Inbox sweep queued files", slog.Int("files", n))
	}
}

func (w *Watcher) workLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			w.mu.Lock()
			delete(w.queued, path)
			w.mu.Unlock()

			if err := w.ProcessPath(ctx, path); err != nil && ctx.Err() == nil {
				w.logger.Warn("Inbox file failed", logfields.File(path), logfields.Error(err))
			}
		}
	}
}

// ProcessPath processes one inbox file into the outbox and moves the source
// into the processed or failed subdirectory. A file that disappeared in the
// meantime is ignored.
func (w *Watcher) ProcessPath(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	out := filepath.Join(w.opts.Outbox, filepath.Base(w.processor.OutputPath(path)))
	job, err := w.processor.ProcessFile(ctx, path, out)
	if err != nil {
		if ctx.Err() != nil {
			// Leave the file for the next run.
			return err
		}
		w.failed.Add(1)
		if moveErr := w.move(path, FailedDir); moveErr != nil {
			return errors.Join(err, moveErr)
		}
		return err
	}

	w.processed.Add(1)
	w.logger.Info("Inbox file handled",
		logfields.File(path),
		logfields.JobID(job.ID),
		logfields.JobOutcome(string(job.Outcome)))
	return w.move(path, ProcessedDir)
}

func (w *Watcher) move(path, subdir string) error {
	dest := filepath.Join(w.opts.Inbox, subdir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", path, subdir, err)
	}
	return nil
}
