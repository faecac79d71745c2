// Package correlate pairs distribution-phase item announcements with
// function-marker-phase container pickups.
//
// The game log never links the two phases explicitly: the distribution batch
// announces item-type codes, and a later batch spawns the containers that
// carry them. The only available signal is encounter order. The default
// Queue strategy assumes order is preserved between the phases; that
// assumption is unverified upstream, which is why the strategy sits behind
// an interface: a stronger correlation signal can replace it without
// touching the parser state machine.
package correlate

import "github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"

// Ref is one queued distribution-phase announcement: the classified item
// type and the zone the distribution targeted.
type Ref struct {
	Item      event.ItemIdentifier
	ZoneAlias uint32
}

// Correlator decides which announced item the next seeded-container pickup
// belongs to. Implementations need not be safe for concurrent use; the
// parser drives a Correlator from a single goroutine.
type Correlator interface {
	// Push records a distribution-phase announcement, in encounter order.
	Push(ref Ref)

	// Next returns the announcement the next pickup should be paired with.
	// ok is false when nothing is left; the caller must fall back to an
	// untyped item rather than fail.
	Next() (ref Ref, ok bool)

	// Reset discards all queued state at session end.
	Reset()
}

// Queue is the default first-in-first-out Correlator.
type Queue struct {
	refs []Ref
}

// NewQueue returns an empty FIFO correlator.
func NewQueue() *Queue { return &Queue{} }

// Push implements Correlator.
func (q *Queue) Push(ref Ref) {
	q.refs = append(q.refs, ref)
}

// Next implements Correlator.
func (q *Queue) Next() (Ref, bool) {
	if len(q.refs) == 0 {
		return Ref{}, false
	}
	ref := q.refs[0]
	q.refs = q.refs[1:]
	return ref, true
}

// Reset implements Correlator.
func (q *Queue) Reset() {
	q.refs = nil
}

// Len returns the number of queued announcements.
func (q *Queue) Len() int { return len(q.refs) }
