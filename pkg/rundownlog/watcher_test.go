package rundownlog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

const (
	testSeedsLine   = "15:23:42.123 - <color=#C84800>Builder.Build, buildSeed: 1234 hostIDSeed: 5678 sessionSeed: 910</color>\n"
	testRundownLine = "15:23:43.000 - <b>DropServerManager</b> NewSession. SelectActiveExpedition : Selected! Local_35_TierB_2 SessionGUID: 42\n"
)

// waitEvent receives the next event, logging watch errors along the way.
func waitEvent(t *testing.T, events <-chan event.Event, errs <-chan error) event.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			require.True(t, ok, "event channel closed")
			return ev
		case err := <-errs:
			t.Logf("watch error: %v", err)
		case <-deadline:
			t.Fatal("timeout waiting for event")
		}
	}
}

func appendTo(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(text)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestWatcher_Pipeline(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "GTFO.666.NetStatus.txt")
	require.NoError(t, os.WriteFile(logFile, nil, 0o644))

	w, err := rundownlog.NewWatcher(
		rundownlog.WithLogDir(dir),
		rundownlog.WithPollInterval(100*time.Millisecond),
	)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	appendTo(t, logFile, testSeedsLine+testRundownLine)

	ev := waitEvent(t, events, errs)
	require.IsType(t, event.Seeds{}, ev)
	assert.Equal(t, event.Seeds{Build: 1234, HostID: 5678, Session: 910}, ev)

	ev = waitEvent(t, events, errs)
	require.IsType(t, event.Expedition{}, ev)
	assert.Equal(t, event.Expedition{Rundown: event.RundownR8, Tier: "B", Index: 3}, ev)
}

func TestWatcher_RotationResetsSession(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "GTFO.666.NetStatus.txt")
	require.NoError(t, os.WriteFile(logFile, nil, 0o644))

	w, err := rundownlog.NewWatcher(
		rundownlog.WithLogDir(dir),
		rundownlog.WithPollInterval(100*time.Millisecond),
	)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	// Open a session so the rotation has something to void.
	appendTo(t, logFile, testSeedsLine)
	ev := waitEvent(t, events, errs)
	require.IsType(t, event.Seeds{}, ev)

	// A newer log file means the game restarted.
	newFile := filepath.Join(dir, "GTFO.999.NetStatus.txt")
	require.NoError(t, os.WriteFile(newFile, nil, 0o644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(newFile, future, future))

	ev = waitEvent(t, events, errs)
	assert.IsType(t, event.Reset{}, ev)
}

func TestWatcher_KindFilter(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "GTFO.666.NetStatus.txt")
	require.NoError(t, os.WriteFile(logFile, nil, 0o644))

	w, err := rundownlog.NewWatcher(
		rundownlog.WithLogDir(dir),
		rundownlog.WithPollInterval(100*time.Millisecond),
		rundownlog.WithIncludeKinds(rundownlog.KindExpedition),
	)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	appendTo(t, logFile, testSeedsLine+testRundownLine)

	// The seeds event is filtered out; the first delivery is the expedition.
	ev := waitEvent(t, events, errs)
	assert.IsType(t, event.Expedition{}, ev)
}

func TestWatcher_WatchTwice(t *testing.T) {
	dir := t.TempDir()
	w, err := rundownlog.NewWatcher(rundownlog.WithLogDir(dir))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, _, err = w.Watch(ctx)
	require.NoError(t, err)

	_, _, err = w.Watch(ctx)
	assert.ErrorIs(t, err, rundownlog.ErrAlreadyWatching)
}

func TestWatcher_WatchAfterClose(t *testing.T) {
	dir := t.TempDir()
	w, err := rundownlog.NewWatcher(rundownlog.WithLogDir(dir))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, _, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, rundownlog.ErrWatcherClosed)
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := rundownlog.NewWatcher(rundownlog.WithLogDir(dir))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, errCh, err := w.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	// Close joins the pipeline goroutines, so both channels must be closed.
	_, ok := <-events
	assert.False(t, ok)
	for range errCh {
	}
}

func TestNewWatcher_MissingLogDir(t *testing.T) {
	_, err := rundownlog.NewWatcher(
		rundownlog.WithLogDir(filepath.Join(t.TempDir(), "does-not-exist")),
	)
	assert.ErrorIs(t, err, rundownlog.ErrLogDirNotFound)
}

func TestNewWatcher_InvalidOptions(t *testing.T) {
	_, err := rundownlog.NewWatcher(rundownlog.WithPollInterval(-time.Second))
	assert.Error(t, err)

	_, err = rundownlog.NewWatcher(
		rundownlog.WithLogDir(t.TempDir()),
		rundownlog.WithPatternFile("patterns.yaml"),
		rundownlog.WithPatternOverrides(map[string]string{"build_done": `x`}),
	)
	assert.Error(t, err)
}

func TestNewWatcher_BadPatternOverride(t *testing.T) {
	_, err := rundownlog.NewWatcher(
		rundownlog.WithLogDir(t.TempDir()),
		rundownlog.WithPatternOverrides(map[string]string{"no_such_id": `x`}),
	)
	require.Error(t, err)
	var werr *rundownlog.WatchError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, rundownlog.WatchOpPatterns, werr.Op)
}
