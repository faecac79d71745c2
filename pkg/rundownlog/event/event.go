// Package event defines the typed events emitted by the log parser and the
// domain data model they carry: zones, gatherable items, rundown codes.
package event

// Kind identifies the type of an event.
type Kind string

// Event kinds emitted by the parser.
const (
	KindSeeds         Kind = "seeds"
	KindExpedition    Kind = "expedition"
	KindZone          Kind = "zone"
	KindGatherable    Kind = "gatherable"
	KindUncategorized Kind = "uncategorized"
	KindReset         Kind = "reset"
	KindRunStart      Kind = "run_start"
	KindRunSplit      Kind = "run_split"
	KindRunEnd        Kind = "run_end"
)

// Event is one parsed occurrence from the game log. Concrete types are
// Seeds, Expedition, ZoneCreated, Gatherable, Uncategorized, Reset and the
// run markers RunStart, RunSplit, RunEnd.
type Event interface {
	Kind() Kind
}

// Seeds carries the three integers that drive level generation for one
// session. Emitted once per session, before anything else.
type Seeds struct {
	Build   uint32 `json:"build"`
	HostID  uint32 `json:"host_id"`
	Session uint32 `json:"session"`
}

// Kind implements Event.
func (Seeds) Kind() Kind { return KindSeeds }

// Expedition identifies the selected level. Index is the user-facing
// expedition number, already corrected for the log's zero-based indexing.
type Expedition struct {
	Rundown Rundown `json:"rundown"`
	Tier    string  `json:"tier"`
	Index   int     `json:"index"`
}

// Kind implements Event.
func (Expedition) Kind() Kind { return KindExpedition }

// ZoneCreated is emitted once per zone, in the order the generator built
// them.
type ZoneCreated struct {
	Zone Zone `json:"zone"`
}

// Kind implements Event.
func (ZoneCreated) Kind() Kind { return KindZone }

// Gatherable is one placed item. Zone is nil when the parser could not
// attribute the item to a zone (the Seeded fallback).
type Gatherable struct {
	Zone *ZoneKey   `json:"zone,omitempty"`
	Item GatherItem `json:"item"`
}

// Kind implements Event.
func (Gatherable) Kind() Kind { return KindGatherable }

// Uncategorized reports distributed items the parser recognized by code but
// cannot place or type any further.
type Uncategorized struct {
	Item  ItemIdentifier `json:"item"`
	Count uint32         `json:"count"`
}

// Kind implements Event.
func (Uncategorized) Kind() Kind { return KindUncategorized }

// Reset signals the end of a session. Consumers must discard all
// accumulated state.
type Reset struct{}

// Kind implements Event.
func (Reset) Kind() Kind { return KindReset }

// RunStart marks the drop into the level. For external timer/splitter
// integrations; the parser attaches no further meaning.
type RunStart struct{}

// Kind implements Event.
func (RunStart) Kind() Kind { return KindRunStart }

// RunSplit is declared for external splitter integrations. The built-in
// parser never emits it.
type RunSplit struct{}

// Kind implements Event.
func (RunSplit) Kind() Kind { return KindRunSplit }

// RunEnd marks a successful expedition. Always followed by Reset.
type RunEnd struct{}

// Kind implements Event.
func (RunEnd) Kind() Kind { return KindRunEnd }
