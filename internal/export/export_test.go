package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/level"
)

func sampleLevel() *level.Level {
	lv := level.New()
	for _, ev := range []event.Event{
		event.Seeds{Build: 1234, HostID: 5678, Session: 910},
		event.Expedition{Rundown: event.RundownR8, Tier: "B", Index: 3},
		event.ZoneCreated{Zone: event.Zone{Alias: 410, Local: 0, Dimension: "Reality", Layer: "MainLayer"}},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 410, Dimension: "Reality"},
			Item: event.Key{Name: "KEY_WHITE_584", Dimension: "Reality", ZoneAlias: 410, RI: 54},
		},
		event.Gatherable{
			Item: event.SeededItem{Container: "Box_77", Seed: 99},
		},
		event.Uncategorized{Item: event.ItemMWP, Count: 2},
	} {
		lv.Apply(ev)
	}
	return lv
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	path, err := WriteSnapshot(dir, sampleLevel(), at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "R8B3-20260830-120000.json"), path)

	snap, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "R8B3", snap.Name)
	assert.Equal(t, at, snap.CapturedAt)
	require.NotNil(t, snap.Seeds)
	assert.Equal(t, uint32(1234), snap.Seeds.Build)
	require.Len(t, snap.Zones, 1)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "ZONE_410 MainLayer Reality", snap.Items[0].Zone)
	assert.Equal(t, []string{"KEY_WHITE_584"}, snap.Items[0].Items)
	assert.Equal(t, []string{"Box_77 (seed 99)"}, snap.Overflow)
	require.Len(t, snap.Uncategorized, 1)
	assert.Equal(t, event.ItemMWP, snap.Uncategorized[0].Item)
}

func TestWriteSnapshotCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	_, err := WriteSnapshot(dir, sampleLevel(), time.Now())
	require.NoError(t, err)
}

func TestWriteSnapshotLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteSnapshot(dir, sampleLevel(), time.Now())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestWriteSnapshotUnnamedSession(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteSnapshot(dir, level.New(), time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "session-20260830-120000.json", filepath.Base(path))
}

func TestReadSnapshotRejectsSymlink(t *testing.T) {
	dir := t.TempDir()
	target, err := WriteSnapshot(dir, sampleLevel(), time.Now())
	require.NoError(t, err)

	link := filepath.Join(dir, "link.json")
	require.NoError(t, os.Symlink(target, link))

	_, err = ReadSnapshot(link)
	assert.ErrorIs(t, err, ErrNotRegularFile)
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
