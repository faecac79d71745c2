// Package tailer follows one log file at a time and forwards appended
// content downstream as ordered deltas.
//
// The tailer owns exactly one open file at a time and never writes. It is
// commanded over a channel: Open switches the watched file (emitting NewFile
// before any of the new file's content), ForceUpdate emits an empty delta,
// Stop flushes a final Stop message and ends the loop.
package tailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	nxtail "github.com/nxadm/tail"
)

// CmdKind discriminates tailer commands.
type CmdKind int

// Tailer commands.
const (
	CmdOpen CmdKind = iota
	CmdForceUpdate
	CmdStop
)

// Cmd is one command for the tailer loop.
type Cmd struct {
	Kind CmdKind
	Path string // for CmdOpen
}

// Open returns a command that switches the tailer to the given file.
func Open(path string) Cmd { return Cmd{Kind: CmdOpen, Path: path} }

// ForceUpdate returns a command that emits an empty content delta, giving
// downstream a chance to re-run without new input.
func ForceUpdate() Cmd { return Cmd{Kind: CmdForceUpdate} }

// Stop returns the command that terminates the tailer loop.
func Stop() Cmd { return Cmd{Kind: CmdStop} }

// MsgKind discriminates tailer output messages.
type MsgKind int

// Tailer output message kinds.
const (
	// MsgContent carries bytes appended to the watched file since the
	// previous message.
	MsgContent MsgKind = iota
	// MsgNewFile signals that a new file incarnation follows. Downstream
	// parse state for the previous file is void.
	MsgNewFile
	// MsgStop is the final message before the tailer loop exits.
	MsgStop
)

// Msg is one delta from the tailer. Content arrives in arbitrary chunks
// with no guarantee a chunk ends on a line boundary; only relative order is
// guaranteed.
type Msg struct {
	Kind MsgKind
	Text string
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Tailer follows files in poll mode. Polling (rather than fs notification)
// bounds CPU while staying reliable for a file another process holds open
// and appends to, which fs-event APIs do not guarantee cross-platform.
type Tailer struct {
	log *slog.Logger
}

// New returns a Tailer. A nil logger disables logging.
func New(logger *slog.Logger) *Tailer {
	if logger == nil {
		logger = discardLogger
	}
	return &Tailer{log: logger}
}

// Run executes the tailer loop until Stop is commanded, the command channel
// closes, or ctx is cancelled. File-open failures are reported on errs and
// leave the loop running without an open file; a file that disappears
// mid-tail simply stops yielding content until the next Open.
func (t *Tailer) Run(ctx context.Context, cmds <-chan Cmd, out chan<- Msg, errs chan<- error) error {
	var ft *nxtail.Tail
	closeTail := func() {
		if ft != nil {
			_ = ft.Stop()
			ft.Cleanup()
			ft = nil
		}
	}
	defer closeTail()

	for {
		// A nil channel never yields, so no file open means the select
		// simply waits on commands.
		var lines chan *nxtail.Line
		if ft != nil {
			lines = ft.Lines
		}

		select {
		case <-ctx.Done():
			return nil

		case cmd, ok := <-cmds:
			if !ok {
				t.log.Debug("tailer command channel closed")
				return nil
			}
			switch cmd.Kind {
			case CmdOpen:
				closeTail()
				nt, err := nxtail.TailFile(cmd.Path, nxtail.Config{
					Follow:    true,
					Poll:      true,
					MustExist: true,
					Logger:    nxtail.DiscardingLogger,
				})
				if err != nil {
					if !t.send(ctx, errs, fmt.Errorf("open %s: %w", cmd.Path, err)) {
						return nil
					}
					continue
				}
				ft = nt
				t.log.Debug("tailing file", "path", cmd.Path)
				if !t.emit(ctx, out, Msg{Kind: MsgNewFile}) {
					return nil
				}
			case CmdForceUpdate:
				if !t.emit(ctx, out, Msg{Kind: MsgContent}) {
					return nil
				}
			case CmdStop:
				t.log.Debug("tailer stopping")
				t.emit(ctx, out, Msg{Kind: MsgStop})
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				// The underlying tail ended (file removed or truncated away).
				// Tolerated: stay idle until a new Open arrives.
				t.log.Debug("tail ended, waiting for next open")
				closeTail()
				continue
			}
			if line.Err != nil {
				if !t.send(ctx, errs, fmt.Errorf("read: %w", line.Err)) {
					return nil
				}
				continue
			}
			if !t.emit(ctx, out, Msg{Kind: MsgContent, Text: line.Text + "\n"}) {
				return nil
			}
		}
	}
}

// emit sends a message unless ctx is done. Reports false on cancellation.
func (t *Tailer) emit(ctx context.Context, out chan<- Msg, msg Msg) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// send forwards an error without blocking shutdown; errors are dropped when
// the buffer is full.
func (t *Tailer) send(ctx context.Context, errs chan<- error, err error) bool {
	select {
	case errs <- err:
	case <-ctx.Done():
		return false
	default:
	}
	return true
}
