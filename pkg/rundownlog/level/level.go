// Package level accumulates parser events into the per-session Level
// aggregate: expedition identity, seed triple, zone topology and item
// placements.
package level

import (
	"fmt"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// Seeds is the seed triple driving level generation.
type Seeds struct {
	Build   uint32 `json:"build"`
	HostID  uint32 `json:"host_id"`
	Session uint32 `json:"session"`
}

// UncategorizedEntry tallies distributed items the parser could not place.
type UncategorizedEntry struct {
	Item  event.ItemIdentifier `json:"item"`
	Count uint32               `json:"count"`
}

// Level is the mutable aggregate for one game session. Fold events into it
// with Apply; applying the same ordered event log from a cleared Level is
// deterministic, so consumers may replay safely.
//
// Level is not safe for concurrent use. The intended owner is a single
// consumer goroutine draining the watcher's event channel.
type Level struct {
	Rundown    event.Rundown `json:"rundown"`
	Tier       string        `json:"tier,omitempty"`
	Expedition int           `json:"expedition,omitempty"`
	Selected   bool          `json:"selected"`

	Seeds    Seeds `json:"seeds"`
	HasSeeds bool  `json:"has_seeds"`

	Zones []event.Zone `json:"zones"`

	// Items maps a zone to the gatherables attributed to it.
	Items map[event.ZoneKey][]event.GatherItem `json:"items,omitempty"`

	// Overflow holds gatherables that could not be attributed to any zone.
	Overflow []event.GatherItem `json:"overflow,omitempty"`

	Uncategorized []UncategorizedEntry `json:"uncategorized,omitempty"`
}

// New returns a cleared Level.
func New() *Level {
	return &Level{Items: make(map[event.ZoneKey][]event.GatherItem)}
}

// Reset restores the cleared default state, regardless of what was
// accumulated before.
func (l *Level) Reset() {
	*l = Level{Items: make(map[event.ZoneKey][]event.GatherItem)}
}

// Apply folds a single event into the aggregate.
func (l *Level) Apply(ev event.Event) {
	switch e := ev.(type) {
	case event.Seeds:
		l.Seeds = Seeds{Build: e.Build, HostID: e.HostID, Session: e.Session}
		l.HasSeeds = true
	case event.Expedition:
		l.Rundown = e.Rundown
		l.Tier = e.Tier
		l.Expedition = e.Index
		l.Selected = true
	case event.ZoneCreated:
		l.Zones = append(l.Zones, e.Zone)
	case event.Gatherable:
		l.applyGatherable(e)
	case event.Uncategorized:
		l.Uncategorized = append(l.Uncategorized, UncategorizedEntry{Item: e.Item, Count: e.Count})
	case event.Reset:
		l.Reset()
	case event.RunStart, event.RunSplit, event.RunEnd:
		// Run markers are for timer integrations; the aggregate has no use
		// for them.
	}
}

func (l *Level) applyGatherable(g event.Gatherable) {
	if g.Zone == nil {
		l.Overflow = append(l.Overflow, g.Item)
		return
	}

	zone := l.zoneByKey(*g.Zone)
	if zone == nil {
		// The zone referenced by the placement was never created, or the
		// dimension didn't match; keep the item rather than dropping it.
		l.Overflow = append(l.Overflow, g.Item)
		return
	}

	if hsu, ok := g.Item.(event.HSU); ok && zone.Area == 0 {
		zone.Area = hsu.Area
	}

	if l.Items == nil {
		l.Items = make(map[event.ZoneKey][]event.GatherItem)
	}
	key := zone.Key()
	l.Items[key] = append(l.Items[key], g.Item)
}

// ZoneByAlias finds a zone by its session-unique alias.
func (l *Level) ZoneByAlias(alias uint32) (event.Zone, bool) {
	for _, z := range l.Zones {
		if z.Alias == alias {
			return z, true
		}
	}
	return event.Zone{}, false
}

// zoneByKey resolves a key against the zone list, falling back to
// alias-only lookup when the key carries no dimension.
func (l *Level) zoneByKey(key event.ZoneKey) *event.Zone {
	for i := range l.Zones {
		z := &l.Zones[i]
		if z.Alias != key.Alias {
			continue
		}
		if key.Dimension == "" || z.Dimension == key.Dimension {
			return z
		}
	}
	return nil
}

// Name renders the expedition identity the way players write it ("R8B3").
// The tutorial has no tier or index suffix. Returns the empty string before
// an expedition was selected.
func (l *Level) Name() string {
	if !l.Selected {
		return ""
	}
	if l.Rundown == event.RundownTutorial {
		return l.Rundown.String()
	}
	return fmt.Sprintf("%s%s%d", l.Rundown, l.Tier, l.Expedition)
}
