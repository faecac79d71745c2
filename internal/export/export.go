// Package export writes level snapshots to disk.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/level"
)

// ErrNotRegularFile is returned when a snapshot path exists but is not a
// regular file. This includes symlinks, FIFOs, devices, sockets, and
// directories.
var ErrNotRegularFile = errors.New("not a regular file")

// ZoneItems lists the item labels attributed to one zone.
type ZoneItems struct {
	Zone  string   `json:"zone"`
	Items []string `json:"items"`
}

// Snapshot is the exported document: a flattened, round-trippable
// projection of a level.
type Snapshot struct {
	CapturedAt    time.Time                  `json:"captured_at"`
	Name          string                     `json:"name"`
	Seeds         *level.Seeds               `json:"seeds,omitempty"`
	Zones         []event.Zone               `json:"zones,omitempty"`
	Items         []ZoneItems                `json:"items,omitempty"`
	Overflow      []string                   `json:"overflow,omitempty"`
	Uncategorized []level.UncategorizedEntry `json:"uncategorized,omitempty"`
}

// NewSnapshot projects a level into its export form. Items follow zone
// creation order so repeated exports of the same session are identical.
func NewSnapshot(lv *level.Level, at time.Time) Snapshot {
	snap := Snapshot{
		CapturedAt:    at.UTC(),
		Name:          lv.Name(),
		Zones:         lv.Zones,
		Uncategorized: lv.Uncategorized,
	}
	if lv.HasSeeds {
		seeds := lv.Seeds
		snap.Seeds = &seeds
	}
	for _, z := range lv.Zones {
		items := lv.Items[z.Key()]
		if len(items) == 0 {
			continue
		}
		zi := ZoneItems{Zone: z.String()}
		for _, item := range items {
			zi.Items = append(zi.Items, item.Label())
		}
		snap.Items = append(snap.Items, zi)
	}
	for _, item := range lv.Overflow {
		snap.Overflow = append(snap.Overflow, item.Label())
	}
	return snap
}

// WriteSnapshot serializes the level into dir atomically: the JSON goes to
// a temp file in the same directory first, then rename makes it visible.
// A crash mid-write never leaves a truncated snapshot behind.
//
// Returns the final snapshot path.
func WriteSnapshot(dir string, lv *level.Level, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export dir: %w", err)
	}

	snap := NewSnapshot(lv, at)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	name := snap.Name
	if name == "" {
		name = "session"
	}
	final := filepath.Join(dir, fmt.Sprintf("%s-%s.json", name, snap.CapturedAt.Format("20060102-150405")))

	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("closing snapshot: %w", err)
	}

	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publishing snapshot: %w", err)
	}
	return final, nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot. The path is
// checked with Lstat before opening so symlinks and special files are
// rejected rather than followed.
func ReadSnapshot(path string) (*Snapshot, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ErrNotRegularFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return &snap, nil
}
