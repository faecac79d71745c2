package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes an event in the specified format to the writer.
func OutputEvent(format string, ev event.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, out)
	case "pretty":
		return OutputPretty(ev, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// envelope wraps an event with its kind so jsonl consumers can dispatch
// without guessing from the payload shape.
type envelope struct {
	Kind  event.Kind  `json:"kind"`
	Event event.Event `json:"event,omitempty"`
}

// OutputJSON writes an event as JSON Lines format.
func OutputJSON(ev event.Event, out io.Writer) error {
	data, err := json.Marshal(envelope{Kind: ev.Kind(), Event: ev})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an event in human-readable format.
func OutputPretty(ev event.Event, out io.Writer) error {
	var err error
	switch e := ev.(type) {
	case event.Seeds:
		_, err = fmt.Fprintf(out, "* seeds build=%d host=%d session=%d\n",
			e.Build, e.HostID, e.Session)
	case event.Expedition:
		_, err = fmt.Fprintf(out, "> expedition %s%s%d\n", e.Rundown, e.Tier, e.Index)
	case event.ZoneCreated:
		_, err = fmt.Fprintf(out, "+ %s\n", e.Zone)
	case event.Gatherable:
		if e.Zone != nil {
			_, err = fmt.Fprintf(out, "- %s in ZONE_%d\n", e.Item.Label(), e.Zone.Alias)
		} else {
			_, err = fmt.Fprintf(out, "- %s (zone unknown)\n", e.Item.Label())
		}
	case event.Uncategorized:
		_, err = fmt.Fprintf(out, "- %s x%d (uncategorized)\n", e.Item, e.Count)
	case event.RunStart:
		_, err = fmt.Fprintln(out, "# run started")
	case event.RunEnd:
		_, err = fmt.Fprintln(out, "# run completed")
	case event.Reset:
		_, err = fmt.Fprintln(out, "x session reset")
	default:
		_, err = fmt.Fprintf(out, "? %s\n", ev.Kind())
	}
	return err
}

// parseKinds converts user-supplied kind names into event kinds, rejecting
// names the parser never emits.
func parseKinds(names []string) ([]event.Kind, error) {
	valid := map[event.Kind]bool{
		event.KindSeeds:         true,
		event.KindExpedition:    true,
		event.KindZone:          true,
		event.KindGatherable:    true,
		event.KindUncategorized: true,
		event.KindReset:         true,
		event.KindRunStart:      true,
		event.KindRunSplit:      true,
		event.KindRunEnd:        true,
	}

	kinds := make([]event.Kind, 0, len(names))
	for _, name := range names {
		k := event.Kind(name)
		if !valid[k] {
			return nil, fmt.Errorf("unknown event kind: %s", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
