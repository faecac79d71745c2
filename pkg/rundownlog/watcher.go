package rundownlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rundownlog/rundownlog-go/internal/dirwatch"
	"github.com/rundownlog/rundownlog-go/internal/parse"
	"github.com/rundownlog/rundownlog-go/internal/pattern"
	"github.com/rundownlog/rundownlog-go/internal/tailer"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// watcherErrBuffer is the buffer size for the error channel.
// A small buffer prevents error loss during brief moments when the consumer
// is busy processing events, while keeping memory usage minimal.
const watcherErrBuffer = 16

// cmdBuffer and msgBuffer decouple the pipeline stages; the tailer can keep
// reading while the parser catches up on a burst.
const (
	cmdBuffer = 4
	msgBuffer = 64
)

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Watcher monitors the game's log directory and turns log output into
// session events.
type Watcher struct {
	cfg    config // internal configuration (immutable after creation)
	logDir string
	cat    *pattern.Catalog
	log    *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc // cancel func to stop the goroutines
	doneCh   chan struct{}      // signals when all goroutines have exited
	watching bool               // true if Watch() has been called
}

// NewWatcher creates a watcher using functional options.
// Validates options, resolves the log directory and compiles extraction
// rules. Does NOT start goroutines (cheap to call).
//
// Example:
//
//	watcher, err := rundownlog.NewWatcher(
//	    rundownlog.WithLogDir("/custom/path"),
//	    rundownlog.WithIncludeKinds(rundownlog.KindGatherable),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	events, errs, err := watcher.Watch(ctx)
func NewWatcher(opts ...Option) (*Watcher, error) {
	cfg := applyOptions(opts)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := dirwatch.FindLogDir(cfg.logDir)
	if err != nil {
		return nil, fmt.Errorf("finding log directory: %w", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, &WatchError{Op: WatchOpPatterns, Path: cfg.patternFile, Err: err}
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Watcher{
		cfg:    *cfg, // copy to ensure immutability
		logDir: logDir,
		cat:    cat,
		log:    log,
	}, nil
}

func loadCatalog(cfg *config) (*pattern.Catalog, error) {
	switch {
	case cfg.patternFile != "":
		return pattern.LoadFile(cfg.patternFile)
	case len(cfg.overrides) > 0:
		return pattern.WithOverrides(cfg.overrides)
	}
	return pattern.Default(), nil
}

// Watch starts watching and returns channels.
// Starts internal goroutines here.
// When ctx is cancelled, channels are closed automatically.
// Both channels close on ctx.Done() or fatal error.
// Watch can only be called once per Watcher instance.
//
// Returns ErrWatcherClosed if the watcher has been closed.
// Returns ErrAlreadyWatching if Watch() has already been called.
func (w *Watcher) Watch(ctx context.Context) (<-chan event.Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	eventCh := make(chan event.Event)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, eventCh, errCh)

	return eventCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until all goroutines have exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true

	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

// run wires directory watcher -> command channel -> tailer -> message
// channel -> parser, and owns the output channels. Channels are the only
// state shared between the three goroutines.
func (w *Watcher) run(ctx context.Context, eventCh chan<- event.Event, errCh chan<- error) {
	defer close(w.doneCh) // Signal that all goroutines have exited

	cmds := make(chan tailer.Cmd, cmdBuffer)
	msgs := make(chan tailer.Msg, msgBuffer)

	var wg sync.WaitGroup
	wg.Add(2)

	dw := dirwatch.NewWatcher(w.logDir, w.cfg.pollInterval, w.log)
	go func() {
		defer wg.Done()
		if err := dw.Run(ctx, cmds, errCh); err != nil && ctx.Err() == nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpWatchDir, Path: w.logDir, Err: err})
		}
	}()

	tl := tailer.New(w.log)
	go func() {
		defer wg.Done()
		defer close(msgs)
		if err := tl.Run(ctx, cmds, msgs, errCh); err != nil && ctx.Err() == nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Err: err})
		}
	}()

	machine := parse.New(w.cat, w.cfg.correlator, w.log)
	w.loop(ctx, machine, msgs, eventCh, errCh)

	wg.Wait()
	close(eventCh)
	close(errCh)
}

// loop drains tailer messages through the parser until the context is
// cancelled or the message channel closes.
func (w *Watcher) loop(ctx context.Context, m *parse.Machine, msgs <-chan tailer.Msg, eventCh chan<- event.Event, errCh chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			evs, errs := m.HandleMessage(msg)
			for _, err := range errs {
				sendError(ctx, errCh, err)
			}
			for _, ev := range evs {
				if w.cfg.filter != nil && !w.cfg.filter.Allows(ev.Kind()) {
					continue
				}
				select {
				case eventCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// sendError sends an error to the error channel.
// With a buffered channel, errors are only dropped if the buffer is full.
// The context case ensures we don't block during shutdown.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
		// Don't block during shutdown
	default:
		// Drop error only if buffer is full (rare with buffer size 16)
	}
}

// WatchEvents creates a watcher using functional options and starts
// watching. This is the preferred way to create and start a watcher.
//
// Note: This function does not return the underlying Watcher, so callers
// cannot call Close() to perform synchronous shutdown. The watcher will
// stop when the context is cancelled. For more control over shutdown, use
// NewWatcher and Watcher.Watch directly.
//
// Example:
//
//	events, errs, err := rundownlog.WatchEvents(ctx,
//	    rundownlog.WithIncludeKinds(rundownlog.KindSeeds, rundownlog.KindGatherable),
//	    rundownlog.WithLogger(logger),
//	)
func WatchEvents(ctx context.Context, opts ...Option) (<-chan event.Event, <-chan error, error) {
	w, err := NewWatcher(opts...)
	if err != nil {
		return nil, nil, err
	}
	return w.Watch(ctx)
}
