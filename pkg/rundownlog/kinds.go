package rundownlog

import "github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"

// Aliases so callers configuring a watcher don't need a separate import of
// the event package.
type (
	Event = event.Event
	Kind  = event.Kind
)

// Event kinds, re-exported for filter options.
const (
	KindSeeds         = event.KindSeeds
	KindExpedition    = event.KindExpedition
	KindZone          = event.KindZone
	KindGatherable    = event.KindGatherable
	KindUncategorized = event.KindUncategorized
	KindReset         = event.KindReset
	KindRunStart      = event.KindRunStart
	KindRunSplit      = event.KindRunSplit
	KindRunEnd        = event.KindRunEnd
)
