package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rundownlog/rundownlog-go/internal/tailer"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// Fixture lines mirror the R8 live build's console output.
const (
	lobbyLine   = "15:20:00.000 - GAMESTATEMANAGER CHANGE STATE from Offline to Lobby<color=green>done</color>"
	seedsLine   = "15:23:42.123 - <color=#C84800>Builder.Build, buildSeed: 1234 hostIDSeed: 5678 sessionSeed: 910</color>"
	rundownLine = "15:23:40.000 - <b>DropServerManager</b> NewSession. SelectActiveExpedition : Selected! Local_35_TierB_2 SessionGUID: 42"

	setupStartLine = "15:23:43.000 - Next Batch: SetupFloor"
	setupEndLine   = "15:23:44.000 - Last Batch: SetupFloor"
	distStartLine  = "15:23:45.000 - Next Batch: Distribution"
	distEndLine    = "15:23:46.000 - Last Batch: Distribution"
	funcStartLine  = "15:23:47.000 - Next Batch: FunctionMarkers"
	funcEndLine    = "15:23:48.000 - Last Batch: FunctionMarkers"

	createZone410Line = "<color=#C84800>>>>>>>>>------------->>>>>>>>>>>> LG_Floor.CreateZone, Alias: 410 with BuildFromZoneAlias410 zoneAliasStart: 410 aliasOffset: Zone_0</color>"
	zoneCreated410    = "<b>Zone Created</b> (New Game Object) in Reality MainLayer with seed 123"
	createZone411Line = "<color=#C84800>>>>>>>>>------------->>>>>>>>>>>> LG_Floor.CreateZone, Alias: 411 with BuildFromZoneAlias410 zoneAliasStart: 410 aliasOffset: Zone_1</color>"
	zoneCreated411    = "<b>Zone Created</b> (New Game Object) in Reality MainLayer with seed 124"

	keyCreateLine = "<color=purple>CreateKeyItemDistribution, keyItem: PublicName: KEY_WHITE_584 SpawnedItem: KeyItemPickup_Core(Clone) placementData: DimensionIndex: Reality LocalIndex: Zone_1 ZonePlacementWeights, Start: 0 Middle: 2500 End: 10000</color>"
	keyDistLine   = "<color=#C84800>TryGetExistingGenericFunctionDistributionForSession, foundDist in zone: ZONE411 function: ResourceContainerWeak available: 58 randomValue: 0.8431178 ri: 54 had weight: 10001</color>"

	pickupKeyLine   = "15:24:01.100 - Spawning Personnel Pickup with Key: Locker_586 at position (1.0, 2.0)"
	pickupSeedLine  = "15:24:01.101 - GenericSmallPickupItem_Core.SetupFromLevelgen, seed: 43672 spawned in node"
	pickupSetupLine = "15:24:01.102 - PersonnelPickup_Core.SetupFromCollectedData done"

	pickup2KeyLine   = "15:24:01.200 - Spawning Personnel Pickup with Key: Box_77 at position (3.0, 4.0)"
	pickup2SeedLine  = "15:24:01.201 - GenericSmallPickupItem_Core.SetupFromLevelgen, seed: 99 spawned in node"
	pickup2SetupLine = "15:24:01.202 - PersonnelPickup_Core.SetupFromCollectedData done"

	generatorLine = "15:24:02.000 - LG_PowerGenerator_Graphics.OnSyncStatusChanged status: UnPowered Collection 3 spawned item Generator_2 at marker"
	hsuLine       = "15:24:03.000 - LG_Distribute_HydroStatisUnit, zone: 410, Area: 2_Area B chosen for unit"
	buildDoneLine = "15:24:05.000 - BUILDER : BuildDone"

	inLevelLine = "15:30:00.000 - GAMESTATEMANAGER CHANGE STATE from StopElevatorRide to InLevel<color=green>done</color>"
	successLine = "15:55:00.000 - GAMESTATEMANAGER CHANGE STATE from InLevel to ExpeditionSuccess<color=green>done</color>"
)

// wardenPair builds the two-line warden objective announcement for a zone.
func wardenPair(zone, idx, count, itemID string) string {
	return "<color=#C84800>LG_Distribute_WardenObjective.SelectZoneFromPlacementAndKeepTrackOnCount, creating dist in zone ZONE" + zone +
		" spawnZones[placementDataIndex].Count: 1 spawnZoneIndex: " + idx + " spawnedInZoneCount: " + count + "</color>\n" +
		"<color=#C84800>LG_Distribute_WardenObjective.DistributeGatherRetrieveItems, creating dist to spawn itemID: " + itemID + " for chainIndex: 0</color>"
}

// sessionScript is a full session from lobby to expedition success.
func sessionScript() string {
	return strings.Join([]string{
		lobbyLine,
		seedsLine,
		rundownLine,
		setupStartLine,
		createZone410Line,
		zoneCreated410,
		createZone411Line,
		zoneCreated411,
		setupEndLine,
		distStartLine,
		keyCreateLine,
		"some unrelated line",
		keyDistLine,
		wardenPair("410", "0", "1", "168"), // DataCube, queued for pickup
		wardenPair("411", "1", "1", "131"), // Cell
		wardenPair("410", "0", "1", "133"), // FogTurbine
		wardenPair("411", "0", "2", "200"), // unknown code
		hsuLine,
		distEndLine,
		funcStartLine,
		pickupKeyLine,
		pickupSeedLine,
		pickupSetupLine,
		pickup2KeyLine,
		pickup2SeedLine,
		pickup2SetupLine,
		generatorLine,
		funcEndLine,
		buildDoneLine,
		inLevelLine,
		successLine,
	}, "\n") + "\n"
}

// sessionEvents is the expected event stream for sessionScript.
func sessionEvents() []event.Event {
	return []event.Event{
		event.Seeds{Build: 1234, HostID: 5678, Session: 910},
		event.Expedition{Rundown: event.RundownR8, Tier: "B", Index: 3},
		event.ZoneCreated{Zone: event.Zone{Alias: 410, Local: 0, Dimension: "Reality", Layer: "MainLayer"}},
		event.ZoneCreated{Zone: event.Zone{Alias: 411, Local: 1, Dimension: "Reality", Layer: "MainLayer"}},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 411, Dimension: "Reality"},
			Item: event.Key{Name: "KEY_WHITE_584", Dimension: "Reality", ZoneAlias: 411, RI: 54},
		},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 411},
			Item: event.IndexedItem{Item: event.ItemCell, SpawnZoneIdx: 1},
		},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 410},
			Item: event.NamedItem{Item: event.ItemFogTurbine, Name: "FogTurbine"},
		},
		event.Uncategorized{Item: event.ItemIdentifier(200), Count: 2},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 410},
			Item: event.HSU{AreaID: 2, Area: 'B'},
		},
		event.Gatherable{
			Zone: &event.ZoneKey{Alias: 410},
			Item: event.SeededItem{Item: event.ItemDataCube, Container: "Locker_586", Seed: 43672},
		},
		event.Gatherable{
			Item: event.SeededItem{Container: "Box_77", Seed: 99},
		},
		event.Gatherable{
			Item: event.Generator{Name: "Generator_2", ItemIdx: 2, Idx: 3},
		},
		event.RunStart{},
		event.RunEnd{},
		event.Reset{},
	}
}

func TestFullSession(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(sessionScript())
	require.Empty(t, errs)
	assert.Equal(t, sessionEvents(), evs)
	assert.Equal(t, StateAwaitSeeds, m.State())
}

func TestChunkedDeliveryMatchesSingleDelta(t *testing.T) {
	script := sessionScript()
	want := sessionEvents()

	// Every chunking of the input must produce the same stream; one byte at
	// a time is the worst case.
	m := New(nil, nil, nil)
	var got []event.Event
	for i := 0; i < len(script); i++ {
		evs, errs := m.Feed(script[i : i+1])
		require.Empty(t, errs)
		got = append(got, evs...)
	}
	assert.Equal(t, want, got)
}

func TestExpeditionIndexCorrection(t *testing.T) {
	tests := []struct {
		rundown event.Rundown
		tier    string
		raw     int
		want    int
	}{
		{event.RundownR1, "A", 0, 1},
		{event.RundownR1, "C", 2, 3},
		{event.RundownR8, "B", 2, 3},
		{event.RundownR8, "A", 2, 2},
		{event.RundownR8, "C", 2, 2},
		{event.RundownR8, "D", 2, 2},
		{event.RundownR8, "E", 2, 2},
		{event.RundownR8, "A", 1, 2},
		{event.RundownModded, "A", 2, 3},
	}
	for _, tt := range tests {
		got := correctExpeditionIndex(tt.rundown, tt.tier, tt.raw)
		assert.Equal(t, tt.want, got, "%s %s raw %d", tt.rundown, tt.tier, tt.raw)
	}
}

func TestUnknownRundownCodeIsModded(t *testing.T) {
	m := New(nil, nil, nil)
	script := seedsLine + "\n" +
		"x - SelectActiveExpedition : Selected! Local_999_TierA_0 y\n"
	evs, errs := m.Feed(script)
	require.Empty(t, errs)
	require.Len(t, evs, 2)
	assert.Equal(t, event.Expedition{Rundown: event.RundownModded, Tier: "A", Index: 1}, evs[1])
}

func TestPreSessionNoiseProducesNothing(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(lobbyLine + "\nrandom startup output\n" + inLevelLine + "\n")
	assert.Empty(t, errs)
	assert.Empty(t, evs)
	assert.Equal(t, StateAwaitSeeds, m.State())
}

func TestResetMidGeneration(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(strings.Join([]string{
		seedsLine,
		rundownLine,
		setupStartLine,
		createZone410Line,
		zoneCreated410,
	}, "\n") + "\n")
	require.Empty(t, errs)
	require.Len(t, evs, 2) // seeds and expedition; the zone batch is still open
	assert.Equal(t, StateAwaitZoneGeneration, m.State())

	abort := "16:00:00.000 - GAMESTATEMANAGER CHANGE STATE from InLevel to ExpeditionAbort<done</color>"
	evs, errs = m.Feed(abort + "\n")
	require.Empty(t, errs)
	assert.Equal(t, []event.Event{event.Reset{}}, evs)
	assert.Equal(t, StateAwaitSeeds, m.State())

	// A fresh session parses cleanly after the abort.
	evs, errs = m.Feed(sessionScript())
	require.Empty(t, errs)
	assert.Equal(t, sessionEvents(), evs)
}

func TestBackToBackSessionsInOneDelta(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(sessionScript() + sessionScript())
	require.Empty(t, errs)
	want := append(sessionEvents(), sessionEvents()...)
	assert.Equal(t, want, evs)
}

func TestNewFileMidSessionEmitsReset(t *testing.T) {
	m := New(nil, nil, nil)
	_, errs := m.Feed(seedsLine + "\n")
	require.Empty(t, errs)
	require.Equal(t, StateAwaitSessionSelect, m.State())

	evs, errs := m.HandleMessage(tailer.Msg{Kind: tailer.MsgNewFile})
	assert.Empty(t, errs)
	assert.Equal(t, []event.Event{event.Reset{}}, evs)
	assert.Equal(t, StateAwaitSeeds, m.State())
}

func TestNewFileBeforeAnyContentIsSilent(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.HandleMessage(tailer.Msg{Kind: tailer.MsgNewFile})
	assert.Empty(t, errs)
	assert.Empty(t, evs)
}

func TestItemlessLevelLeavesViaBuildDone(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(strings.Join([]string{
		seedsLine,
		rundownLine,
		setupStartLine,
		createZone410Line,
		zoneCreated410,
		setupEndLine,
		buildDoneLine,
		successLine,
	}, "\n") + "\n")
	require.Empty(t, errs)
	assert.Equal(t, []event.Event{
		event.Seeds{Build: 1234, HostID: 5678, Session: 910},
		event.Expedition{Rundown: event.RundownR8, Tier: "B", Index: 3},
		event.ZoneCreated{Zone: event.Zone{Alias: 410, Local: 0, Dimension: "Reality", Layer: "MainLayer"}},
		event.RunEnd{},
		event.Reset{},
	}, evs)
}

func TestPickupWithoutAnnouncementFallsBack(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(strings.Join([]string{
		seedsLine,
		rundownLine,
		setupStartLine,
		setupEndLine,
		distStartLine,
		distEndLine,
		funcStartLine,
		pickupKeyLine,
		pickupSeedLine,
		pickupSetupLine,
		funcEndLine,
	}, "\n") + "\n")
	require.Empty(t, errs)

	var seeded []event.Gatherable
	for _, ev := range evs {
		if g, ok := ev.(event.Gatherable); ok {
			seeded = append(seeded, g)
		}
	}
	require.Len(t, seeded, 1)
	assert.Nil(t, seeded[0].Zone)
	item, ok := seeded[0].Item.(event.SeededItem)
	require.True(t, ok)
	assert.False(t, item.Resolved())
	assert.Equal(t, "Locker_586", item.Container)
	assert.Equal(t, uint32(43672), item.Seed)
}

func TestMalformedCaptureIsSkipped(t *testing.T) {
	m := New(nil, nil, nil)

	// A build seed beyond uint32 fails extraction; the match is consumed
	// and the next well-formed line still parses.
	bad := "x - Builder.Build, buildSeed: 99999999999 hostIDSeed: 1 sessionSeed: 2\n"
	evs, errs := m.Feed(bad)
	assert.Empty(t, evs)
	require.Len(t, errs, 1)
	var perr *ParseError
	require.ErrorAs(t, errs[0], &perr)
	assert.Equal(t, StateAwaitSeeds, perr.State)

	evs, errs = m.Feed(seedsLine + "\n")
	require.Empty(t, errs)
	require.Len(t, evs, 1)
	assert.Equal(t, event.Seeds{Build: 1234, HostID: 5678, Session: 910}, evs[0])
}

func TestDuplicateZoneAliasDropped(t *testing.T) {
	m := New(nil, nil, nil)
	evs, errs := m.Feed(strings.Join([]string{
		seedsLine,
		rundownLine,
		setupStartLine,
		createZone410Line,
		zoneCreated410,
		createZone410Line,
		zoneCreated410,
		setupEndLine,
	}, "\n") + "\n")
	require.Empty(t, errs)

	var zones []event.ZoneCreated
	for _, ev := range evs {
		if z, ok := ev.(event.ZoneCreated); ok {
			zones = append(zones, z)
		}
	}
	require.Len(t, zones, 1)
	assert.Equal(t, uint32(410), zones[0].Zone.Alias)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "await_seeds", StateAwaitSeeds.String())
	assert.Equal(t, "await_end_of_run", StateAwaitEndOfRun.String())
}
