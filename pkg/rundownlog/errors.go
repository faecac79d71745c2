package rundownlog

import (
	"errors"
	"fmt"

	"github.com/rundownlog/rundownlog-go/internal/dirwatch"
	"github.com/rundownlog/rundownlog-go/internal/parse"
)

// Sentinel errors returned by watcher lifecycle methods.
var (
	// ErrWatcherClosed is returned by Watch after Close has been called.
	ErrWatcherClosed = errors.New("watcher is closed")
	// ErrAlreadyWatching is returned by Watch when it was already called
	// on this instance.
	ErrAlreadyWatching = errors.New("watcher is already watching")
)

// Directory resolution errors, also observable through errors.Is on the
// error channel.
var (
	ErrLogDirNotFound = dirwatch.ErrLogDirNotFound
	ErrNoLogFiles     = dirwatch.ErrNoLogFiles
)

// WatchOp identifies the watcher operation that produced a WatchError.
type WatchOp string

// Watch operations.
const (
	WatchOpFindDir  WatchOp = "find_dir"
	WatchOpWatchDir WatchOp = "watch_dir"
	WatchOpTail     WatchOp = "tail"
	WatchOpPatterns WatchOp = "patterns"
)

// WatchError wraps a failure in one of the watcher's pipeline stages.
// Errors on the error channel are informational; the pipeline keeps
// running unless the channels are closed.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

// Error implements error.
func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *WatchError) Unwrap() error { return e.Err }

// ParseError is a recoverable extraction fault surfaced on the error
// channel: a log pattern matched but a captured field failed conversion.
// The parser has already skipped the match and kept going.
type ParseError = parse.ParseError
