package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-crossref/internal/logging"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

var (
	// ErrAlreadyWatching is returned by Start when the watcher is running.
	ErrAlreadyWatching = errors.New("watcher: already watching")
	// ErrNotWatching is returned by Stop and Trigger when the watcher is stopped.
	ErrNotWatching = errors.New("watcher: not watching")
	// ErrMissingProcessFunc is returned by Start when no process function was supplied.
	ErrMissingProcessFunc = errors.New("watcher: process function is required")
)

// DefaultIdleInterval is how often the loop wakes up when no triggers arrive.
const DefaultIdleInterval = 30 * time.Second

const triggerBuffer = 64

// ProcessFunc re-validates the document at path and returns its result.
type ProcessFunc func(ctx context.Context, path string) (*interfaces.Result, error)

// Event is delivered to the callback after each re-validation.
type Event struct {
	Path   string
	Result *interfaces.Result
	Err    error
	At     time.Time
}

// Callback receives re-validation events. It runs on the watcher goroutine,
// so it must not block for long.
type Callback func(Event)

// Watcher is a managed background worker that re-validates documents when
// change notifications arrive. It is either stopped or watching; triggers
// are message-based and never block the caller.
type Watcher struct {
	process  ProcessFunc
	callback Callback
	idle     time.Duration
	logger   interfaces.Logger
	clock    func() time.Time

	mu       sync.Mutex
	watching bool
	triggers chan string
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option customises watcher behaviour.
type Option func(*Watcher)

// WithCallback registers the event sink invoked after each re-validation.
func WithCallback(callback Callback) Option {
	return func(w *Watcher) {
		w.callback = callback
	}
}

// WithIdleInterval overrides the periodic wake-up interval.
func WithIdleInterval(interval time.Duration) Option {
	return func(w *Watcher) {
		if interval > 0 {
			w.idle = interval
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithClock injects a clock for deterministic event timestamps in tests.
func WithClock(clock func() time.Time) Option {
	return func(w *Watcher) {
		if clock != nil {
			w.clock = clock
		}
	}
}

// New constructs a stopped watcher around the supplied process function.
func New(process ProcessFunc, opts ...Option) *Watcher {
	w := &Watcher{
		process: process,
		idle:    DefaultIdleInterval,
		logger:  logging.NoOp(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start transitions the watcher to watching and spawns its loop. The loop
// runs until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if w.process == nil {
		return ErrMissingProcessFunc
	}
	if ctx == nil {
		ctx = context.Background()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watching {
		return ErrAlreadyWatching
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.triggers = make(chan string, triggerBuffer)
	w.done = make(chan struct{})
	w.watching = true

	go w.loop(loopCtx, w.triggers, w.done)

	w.logger.Debug("watcher.started")
	return nil
}

// Stop terminates the loop and waits for it to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return ErrNotWatching
	}
	cancel := w.cancel
	done := w.done
	w.watching = false
	w.mu.Unlock()

	cancel()
	<-done
	w.logger.Debug("watcher.stopped")
	return nil
}

// IsWatching reports whether the loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching
}

// Trigger injects a re-validation request for path without waiting for an
// external change notification. It never blocks; when the backlog is full
// the trigger is dropped.
func (w *Watcher) Trigger(path string) error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return ErrNotWatching
	}
	triggers := w.triggers
	w.mu.Unlock()

	select {
	case triggers <- path:
	default:
		logging.WithFields(w.logger, map[string]any{
			"document": path,
		}).Warn("watcher.trigger_dropped")
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, triggers <-chan string, done chan struct{}) {
	// A loop that exits on its own, such as a parent context being
	// cancelled, leaves the watcher stopped. The generation check keeps
	// a stale loop from clobbering a restarted watcher's state.
	defer func() {
		w.mu.Lock()
		if w.done == done {
			w.watching = false
		}
		w.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(w.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-triggers:
			w.handle(ctx, path)
		case <-ticker.C:
			// Idle heartbeat; nothing queued means nothing to re-validate.
			w.logger.Trace("watcher.idle")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	result, err := w.process(ctx, path)

	logger := logging.WithFields(w.logger, map[string]any{
		"document": path,
	})
	if err != nil {
		logger.Warn("watcher.revalidation_failed", "error", err)
	} else {
		logger.Debug("watcher.revalidated")
	}

	if w.callback != nil {
		w.callback(Event{
			Path:   path,
			Result: result,
			Err:    err,
			At:     w.clock(),
		})
	}
}
