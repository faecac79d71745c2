// Package pattern holds the extraction rules applied to the game's log text.
// The default catalog is a process-wide, lazily compiled, immutable registry;
// per-build overrides can be loaded from a YAML file.
package pattern

import (
	"fmt"
	"regexp"
	"sync"
)

// Pattern ids, used by override files and error reporting.
const (
	IDBuilderSeeds         = "builder_seeds"
	IDSelectExpedition     = "select_expedition"
	IDSetupFloorStart      = "setup_floor_start"
	IDSetupFloorEnd        = "setup_floor_end"
	IDZoneCreated          = "zone_created"
	IDDistributionStart    = "distribution_start"
	IDDistributionEnd      = "distribution_end"
	IDFunctionMarkersStart = "function_markers_start"
	IDFunctionMarkersEnd   = "function_markers_end"
	IDKeyItemDistribution  = "key_item_distribution"
	IDWardenObjective      = "warden_objective"
	IDGenericPickup        = "generic_pickup"
	IDPowerGenerator       = "power_generator"
	IDHSUDistribution      = "hsu_distribution"
	IDBuildDone            = "build_done"
	IDGameState            = "game_state"
)

// defaultSources are the extraction rules for the R8 live build's log
// output. All patterns are multiline and applied to the unconsumed suffix of
// the parser's buffer, so two-line stanzas use an explicit \n.
var defaultSources = map[string]string{
	// "... - Builder.Build ... buildSeed: 123 hostIDSeed: 456 sessionSeed: 789"
	IDBuilderSeeds: `(?m)^(?P<time>.*?)\s-.*Builder\.Build.*buildSeed:\s(?P<build>\d+)\shostIDSeed:\s(?P<host>\d+)\ssessionSeed:\s(?P<session>\d+).*$`,

	// "... SelectActiveExpedition : ... Local_35_TierB_3 ..."
	IDSelectExpedition: `(?m)^.*SelectActiveExpedition\s:.*Local_(?P<rundown>\d+)_Tier(?P<tier>\w)_(?P<exp>\d+).*$`,

	IDSetupFloorStart: `(?m)^.*Next\sBatch:\sSetupFloor.*$`,
	IDSetupFloorEnd:   `(?m)^.*Last\sBatch:\sSetupFloor.*$`,

	// Two adjacent lines: "LG_Floor.CreateZone, Alias: 410 ... aliasOffset: Zone_0"
	// followed by "Zone Created ... in Reality MainLayer".
	IDZoneCreated: `(?m)^.*?CreateZone.*?Alias:\s(?P<alias>\d+).*aliasOffset:\s\w+_(?P<local>\d+).*\n.*?Zone\sCreated.*?in\s(?P<dim>\w+)\s(?P<layer>\w+).*$`,

	IDDistributionStart: `(?m)^.*Next\sBatch:\sDistribution.*$`,
	IDDistributionEnd:   `(?m)^.*Last\sBatch:\sDistribution.*$`,

	IDFunctionMarkersStart: `(?m)^.*Next\sBatch:\sFunctionMarkers.*$`,
	IDFunctionMarkersEnd:   `(?m)^.*Last\sBatch:\sFunctionMarkers.*$`,

	// Two non-adjacent lines emitted by unrelated subsystems: the key
	// creation with its public name and placement, then the function
	// distribution that resolves the actual zone and random index.
	IDKeyItemDistribution: `(?m)^.*?CreateKeyItemDistribution.*?PublicName:\s(?P<key>[A-Za-z0-9_]+).*?DimensionIndex:\s(?P<dim>\w+)\sLocalIndex:\s\w+_(?P<local>\d+)(?s:.*?)TryGetExisting\w*.*?zone:\sZONE(?P<alias>\d+).*?ri:\s(?P<ri>\d+).*$`,

	// Two adjacent lines: zone selection with spawn bookkeeping, then the
	// item-type announcement for that distribution.
	IDWardenObjective: `(?m)^.*?SelectZoneFromPlacementAndKeepTrackOnCount.*?zone\sZONE(?P<alias>\d+).*?spawnZoneIndex:\s(?P<idx>\d+)\sspawnedInZoneCount:\s(?P<count>\d+).*\n.*?DistributeGatherRetrieveItems.*?itemID:\s(?P<item>\d+).*$`,

	// Three adjacent lines: container key, item seed, pickup setup.
	IDGenericPickup: `(?m)^.*?Spawning\sPersonnel.*?Key:\s(?P<container>\w+).*\n.*?seed:\s(?P<seed>\d+).*\n.*?PersonnelPickup_Core\..*$`,

	IDPowerGenerator: `(?m)^.*LG_PowerGenerator_Graphics\.OnSyncStatusChanged.*?Collection\s(?P<idx>\d+)\s.*?\s(?P<name>\w+_(?P<item>\d+)).*$`,

	IDHSUDistribution: `(?m)^.*HydroStatisUnit.*?zone:\s(?P<alias>\d+),\sArea:\s(?P<id>\d+)_\w+\s(?P<area>\w+).*$`,

	IDBuildDone: `(?m)^.*BUILDER\s:\sBuildDone.*$`,

	// "... GAMESTATEMANAGER ... NewState<...": the word before '<' is the
	// state the game-state manager switched to.
	IDGameState: `(?m)^.*GAMESTATEMANAGER.*\s(?P<state>\w+)<.*$`,
}

// Catalog is an immutable set of compiled extraction rules. Construct one
// with Default or WithOverrides; never mutate the fields.
type Catalog struct {
	BuilderSeeds         *regexp.Regexp
	SelectExpedition     *regexp.Regexp
	SetupFloorStart      *regexp.Regexp
	SetupFloorEnd        *regexp.Regexp
	ZoneCreated          *regexp.Regexp
	DistributionStart    *regexp.Regexp
	DistributionEnd      *regexp.Regexp
	FunctionMarkersStart *regexp.Regexp
	FunctionMarkersEnd   *regexp.Regexp
	KeyItemDistribution  *regexp.Regexp
	WardenObjective      *regexp.Regexp
	GenericPickup        *regexp.Regexp
	PowerGenerator       *regexp.Regexp
	HSUDistribution      *regexp.Regexp
	BuildDone            *regexp.Regexp
	GameState            *regexp.Regexp
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := compile(defaultSources)
	if err != nil {
		// The defaults are compile-tested; reaching this is a programming
		// error.
		panic(err)
	}
	return c
})

// Default returns the shared catalog for the R8 live build. The result is
// read-only and safe to share across goroutines.
func Default() *Catalog {
	return defaultCatalog()
}

// WithOverrides compiles a catalog with some default sources replaced.
// Override regexes must keep every named capture group the default defines
// for that id, so the parser can still extract its fields.
func WithOverrides(overrides map[string]string) (*Catalog, error) {
	sources := make(map[string]string, len(defaultSources))
	for id, src := range defaultSources {
		sources[id] = src
	}

	for id, src := range overrides {
		def, ok := sources[id]
		if !ok {
			return nil, fmt.Errorf("pattern %q: unknown pattern id", id)
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", id, err)
		}
		if missing := missingGroups(def, re); len(missing) > 0 {
			return nil, fmt.Errorf("pattern %q: override drops capture groups %v", id, missing)
		}
		sources[id] = src
	}

	return compile(sources)
}

func compile(sources map[string]string) (*Catalog, error) {
	c := &Catalog{}
	for id, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", id, err)
		}
		if err := c.set(id, re); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) set(id string, re *regexp.Regexp) error {
	switch id {
	case IDBuilderSeeds:
		c.BuilderSeeds = re
	case IDSelectExpedition:
		c.SelectExpedition = re
	case IDSetupFloorStart:
		c.SetupFloorStart = re
	case IDSetupFloorEnd:
		c.SetupFloorEnd = re
	case IDZoneCreated:
		c.ZoneCreated = re
	case IDDistributionStart:
		c.DistributionStart = re
	case IDDistributionEnd:
		c.DistributionEnd = re
	case IDFunctionMarkersStart:
		c.FunctionMarkersStart = re
	case IDFunctionMarkersEnd:
		c.FunctionMarkersEnd = re
	case IDKeyItemDistribution:
		c.KeyItemDistribution = re
	case IDWardenObjective:
		c.WardenObjective = re
	case IDGenericPickup:
		c.GenericPickup = re
	case IDPowerGenerator:
		c.PowerGenerator = re
	case IDHSUDistribution:
		c.HSUDistribution = re
	case IDBuildDone:
		c.BuildDone = re
	case IDGameState:
		c.GameState = re
	default:
		return fmt.Errorf("pattern %q: unknown pattern id", id)
	}
	return nil
}

// missingGroups returns the named groups of the default source that the
// override regex does not define.
func missingGroups(defaultSrc string, override *regexp.Regexp) []string {
	def := regexp.MustCompile(defaultSrc)

	have := make(map[string]struct{})
	for _, name := range override.SubexpNames() {
		if name != "" {
			have[name] = struct{}{}
		}
	}

	var missing []string
	for _, name := range def.SubexpNames() {
		if name == "" {
			continue
		}
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
