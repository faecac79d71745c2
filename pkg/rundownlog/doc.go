// Package rundownlog provides monitoring of GTFO log files and turns the
// game's console output into structured session events.
//
// This package allows you to:
//   - Follow the newest NetStatus log file in real-time
//   - Decode level generation into seeds, zones and gatherable items
//   - Track run lifecycle (start, success, abort) across sessions
//   - Build tools like item trackers, run timers and session exporters
//
// # Basic Usage
//
// To monitor the game's logs in real-time:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, errs, err := rundownlog.WatchEvents(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case ev, ok := <-events:
//	        if !ok {
//	            return
//	        }
//	        switch ev := ev.(type) {
//	        case event.Expedition:
//	            fmt.Printf("dropping into %s%s%d\n", ev.Rundown, ev.Tier, ev.Index)
//	        case event.Gatherable:
//	            fmt.Printf("item: %s\n", ev.Item.Label())
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// # Event Model
//
// Events implement the [event.Event] interface and are concrete structs in
// the event package: [event.Seeds], [event.Expedition], [event.ZoneCreated],
// [event.Gatherable], [event.Uncategorized] and the lifecycle markers
// [event.RunStart], [event.RunEnd], [event.Reset]. Fold them into a
// snapshot with the level package:
//
//	lv := level.New()
//	for ev := range events {
//	    lv.Apply(ev)
//	}
//
// # Correlation
//
// The log announces seeded items and their containers in separate, unlinked
// batches; the default strategy pairs them by encounter order. Provide your
// own pairing by implementing [correlate.Correlator] and passing it via
// [WithCorrelator].
//
// # Pattern Overrides
//
// Game updates occasionally reshape log lines. Individual extraction rules
// can be replaced without a new release via [WithPatternFile] (YAML) or
// [WithPatternOverrides]; replacements must keep the default rule's named
// capture groups.
package rundownlog
