package dirwatch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rundownlog/rundownlog-go/internal/tailer"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Watcher issues tailer Open commands whenever the session's network-status
// log appears or changes. Create notifications are the fast path; a
// periodic rescan backs them up, because fs notification delivery is not
// guaranteed on every platform. The parser never depends on this layer
// noticing content changes, only on the tailer's own polling.
type Watcher struct {
	dir      string
	interval time.Duration
	log      *slog.Logger
}

// NewWatcher watches dir with the given rescan interval. A nil logger
// disables logging.
func NewWatcher(dir string, interval time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = discardLogger
	}
	return &Watcher{dir: dir, interval: interval, log: logger}
}

// Run performs one best-effort startup scan (most recently modified match
// wins), then watches for new session files until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, cmds chan<- tailer.Cmd, errs chan<- error) error {
	current := ""

	if path, err := FindLatestLogFile(w.dir); err == nil {
		current = path
		w.log.Debug("found existing log file", "path", path)
		if !w.open(ctx, cmds, path) {
			return nil
		}
	} else if err != ErrNoLogFiles {
		w.send(ctx, errs, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		// Fall back to the rescan ticker alone.
		w.send(ctx, errs, err)
	} else {
		defer fsw.Close()
		if err := fsw.Add(w.dir); err != nil {
			w.send(ctx, errs, err)
		}
	}

	var fsEvents chan fsnotify.Event
	var fsErrors chan error
	if fsw != nil {
		fsEvents = fsw.Events
		fsErrors = fsw.Errors
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsEvents:
			if !ok {
				fsEvents = nil
				continue
			}
			if ev.Op&fsnotify.Create == 0 || !matchesMarker(ev.Name) {
				continue
			}
			if ev.Name == current {
				continue
			}
			w.log.Debug("new session file created", "path", ev.Name)
			current = ev.Name
			if !w.open(ctx, cmds, ev.Name) {
				return nil
			}

		case err, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			w.send(ctx, errs, err)

		case <-ticker.C:
			path, err := FindLatestLogFile(w.dir)
			if err != nil {
				if err != ErrNoLogFiles {
					w.send(ctx, errs, err)
				}
				continue
			}
			if path == current {
				continue
			}
			w.log.Debug("rescan found new log file", "from", current, "to", path)
			current = path
			if !w.open(ctx, cmds, path) {
				return nil
			}
		}
	}
}

func (w *Watcher) open(ctx context.Context, cmds chan<- tailer.Cmd, path string) bool {
	select {
	case cmds <- tailer.Open(path):
		return true
	case <-ctx.Done():
		return false
	}
}

func (w *Watcher) send(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	default:
	}
}
