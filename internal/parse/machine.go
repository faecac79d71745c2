// Package parse turns the tailer's arbitrarily chunked text deltas into an
// ordered stream of typed session events.
//
// The machine owns an append-only buffer of everything received for the
// current file incarnation and a cursor marking the last consumed offset.
// Each state only scans the unconsumed suffix, and a pattern whose later
// lines have not arrived yet simply fails to match until the next delta, so
// chunk boundaries never lose or duplicate events.
package parse

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/rundownlog/rundownlog-go/internal/pattern"
	"github.com/rundownlog/rundownlog-go/internal/tailer"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/correlate"
	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

// State is the machine's position in the session life-cycle. States advance
// forward only; a session reset returns to StateAwaitSeeds.
type State int

// Life-cycle states.
const (
	StateAwaitSeeds State = iota
	StateAwaitSessionSelect
	StateAwaitZoneGeneration
	StateAwaitItemGeneration
	StateAwaitEndOfRun
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateAwaitSeeds:
		return "await_seeds"
	case StateAwaitSessionSelect:
		return "await_session_select"
	case StateAwaitZoneGeneration:
		return "await_zone_generation"
	case StateAwaitItemGeneration:
		return "await_item_generation"
	case StateAwaitEndOfRun:
		return "await_end_of_run"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseError reports a recoverable extraction fault: a pattern matched but
// a captured field failed conversion. The match is skipped and scanning
// continues.
type ParseError struct {
	State   State
	Pattern string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s in state %s: %v", e.Pattern, e.State, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *ParseError) Unwrap() error { return e.Err }

// Game-state-manager states that mean the player is no longer in a level.
// Any of them voids the current session.
var resetStates = map[string]struct{}{
	"Lobby":           {},
	"NoLobby":         {},
	"ExpeditionAbort": {},
	"ExpeditionFail":  {},
	"AfterLevel":      {},
	"Offline":         {},
}

const gsSuccess = "ExpeditionSuccess"
const gsInLevel = "InLevel"

// Known non-seeded item types announced with a plain name.
var namedItems = map[event.ItemIdentifier]bool{
	event.ItemFogTurbine: true,
	event.ItemNeonate:    true,
	event.ItemCryo:       true,
	event.ItemHiSec:      true,
	event.ItemCargo:      true,
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Machine is the stateful parser. Not safe for concurrent use; it is owned
// by a single goroutine draining the tailer.
type Machine struct {
	cat *pattern.Catalog
	cor correlate.Correlator
	log *slog.Logger

	buf    []byte
	cursor int
	state  State

	// sessionStart is the buffer offset of the current session's seeds
	// match; game-state lines before it belong to an earlier, already
	// discarded context.
	sessionStart int
	// gsCursor marks how far the game-state scan has examined complete
	// lines. Positions before it are settled and never revisited.
	gsCursor int
}

// New returns a machine in StateAwaitSeeds. Nil arguments select the
// default catalog, the FIFO correlator and a discard logger.
func New(cat *pattern.Catalog, cor correlate.Correlator, logger *slog.Logger) *Machine {
	if cat == nil {
		cat = pattern.Default()
	}
	if cor == nil {
		cor = correlate.NewQueue()
	}
	if logger == nil {
		logger = discardLogger
	}
	return &Machine{cat: cat, cor: cor, log: logger}
}

// State returns the current life-cycle state.
func (m *Machine) State() State { return m.state }

// HandleMessage feeds one tailer message through the machine. NewFile voids
// the current session (emitting Reset when one was underway); Stop is a
// no-op at this layer; Content is parsed.
//
// Returned errors are recoverable per-match faults; the machine has already
// skipped past them.
func (m *Machine) HandleMessage(msg tailer.Msg) ([]event.Event, []error) {
	switch msg.Kind {
	case tailer.MsgNewFile:
		midSession := m.state != StateAwaitSeeds || len(m.buf) > 0
		m.clear(len(m.buf))
		if midSession {
			return []event.Event{event.Reset{}}, nil
		}
		return nil, nil
	case tailer.MsgContent:
		return m.Feed(msg.Text)
	}
	return nil, nil
}

// Feed appends a content delta and parses as far as the accumulated buffer
// allows. Events are returned in match order.
//
// Each pass first locates the next session-voiding game-state line, so a
// single delta carrying several sessions (the initial read of an existing
// file, or a replay) is processed incrementally: the state scanners never
// see text beyond the line that would have reset them.
func (m *Machine) Feed(text string) ([]event.Event, []error) {
	m.buf = append(m.buf, text...)

	var evs []event.Event
	var errs []error
	for {
		// A trailing partial line is off limits for every scanner: the $
		// anchor would otherwise match at end of buffer and truncate a
		// capture mid-delivery.
		scanned := m.completeLines()
		barStart, barEnd, barName := m.nextBarrier(scanned)

		limit := scanned
		if barStart >= 0 {
			limit = barStart
		}

		stateEvs, stateErrs := m.advance(limit)
		evs = append(evs, stateEvs...)
		errs = append(errs, stateErrs...)

		regionEnd := scanned
		if barStart >= 0 && barStart < regionEnd {
			regionEnd = barStart
		}
		evs = append(evs, m.emitRunStarts(regionEnd)...)

		if barStart < 0 {
			m.gsCursor = scanned
			return evs, errs
		}

		if m.state != StateAwaitSeeds {
			if barName == gsSuccess {
				m.log.Debug("expedition success, resetting")
				evs = append(evs, event.RunEnd{}, event.Reset{})
			} else {
				m.log.Debug("game state voided session", "state", barName)
				evs = append(evs, event.Reset{})
			}
		}
		m.clear(barEnd)
	}
}

// completeLines returns the buffer offset just past the last newline, the
// extent over which line-anchored game-state scanning is safe.
func (m *Machine) completeLines() int {
	if nl := bytes.LastIndexByte(m.buf, '\n'); nl >= 0 {
		return nl + 1
	}
	return 0
}

// nextBarrier finds the first session-voiding game-state match between the
// game-state cursor and end. It returns the match's start and end offsets
// and the state name, or (-1, -1, "") when none is complete yet.
func (m *Machine) nextBarrier(end int) (int, int, string) {
	re := m.cat.GameState
	region := string(m.buf[m.gsCursor:end])
	from := 0
	for {
		loc := re.FindStringSubmatchIndex(region[from:])
		if loc == nil {
			return -1, -1, ""
		}
		name := group(re, region[from:], loc, "state")
		_, resets := resetStates[name]
		if resets || name == gsSuccess {
			return m.gsCursor + from + loc[0], m.gsCursor + from + loc[1], name
		}
		from += loc[1]
	}
}

// emitRunStarts emits RunStart for each InLevel transition between the
// game-state cursor and end that belongs to the current session.
func (m *Machine) emitRunStarts(end int) []event.Event {
	if end <= m.gsCursor {
		return nil
	}
	re := m.cat.GameState
	region := string(m.buf[m.gsCursor:end])

	var evs []event.Event
	from := 0
	for {
		loc := re.FindStringSubmatchIndex(region[from:])
		if loc == nil {
			return evs
		}
		name := group(re, region[from:], loc, "state")
		pos := m.gsCursor + from + loc[0]
		if name == gsInLevel && m.state != StateAwaitSeeds && pos >= m.sessionStart {
			evs = append(evs, event.RunStart{})
		}
		from += loc[1]
	}
}

// advance runs the current state's scanner over buf[cursor:limit] until it
// stops making progress.
func (m *Machine) advance(limit int) ([]event.Event, []error) {
	var evs []event.Event
	var errs []error
	for {
		var stepEvs []event.Event
		var stepErrs []error
		progressed := false

		switch m.state {
		case StateAwaitSeeds:
			stepEvs, stepErrs, progressed = m.scanSeeds(limit)
		case StateAwaitSessionSelect:
			stepEvs, stepErrs, progressed = m.scanSessionSelect(limit)
		case StateAwaitZoneGeneration:
			stepEvs, stepErrs, progressed = m.scanZoneGeneration(limit)
		case StateAwaitItemGeneration:
			stepEvs, stepErrs, progressed = m.scanItemGeneration(limit)
		case StateAwaitEndOfRun:
			m.trimEndOfRun(limit)
		}

		evs = append(evs, stepEvs...)
		errs = append(errs, stepErrs...)
		if !progressed {
			return evs, errs
		}
	}
}

// window returns the unconsumed buffer up to limit.
func (m *Machine) window(limit int) string { return string(m.buf[m.cursor:limit]) }

// clear voids all parse state, keeping any buffer content past keepFrom as
// the start of the next incarnation.
func (m *Machine) clear(keepFrom int) {
	remainder := m.buf[keepFrom:]
	m.buf = append([]byte(nil), remainder...)
	m.cursor = 0
	m.gsCursor = 0
	m.sessionStart = 0
	m.state = StateAwaitSeeds
	m.cor.Reset()
}

func (m *Machine) scanSeeds(limit int) ([]event.Event, []error, bool) {
	win := m.window(limit)
	re := m.cat.BuilderSeeds
	loc := re.FindStringSubmatchIndex(win)
	if loc == nil {
		return nil, nil, false
	}
	m.sessionStart = m.cursor + loc[0]
	m.cursor += loc[1]

	build, err1 := parseUint32(group(re, win, loc, "build"))
	host, err2 := parseUint32(group(re, win, loc, "host"))
	session, err3 := parseUint32(group(re, win, loc, "session"))
	if err := firstErr(err1, err2, err3); err != nil {
		return nil, []error{m.fault(pattern.IDBuilderSeeds, err)}, true
	}

	m.state = StateAwaitSessionSelect
	return []event.Event{event.Seeds{Build: build, HostID: host, Session: session}}, nil, true
}

func (m *Machine) scanSessionSelect(limit int) ([]event.Event, []error, bool) {
	win := m.window(limit)
	re := m.cat.SelectExpedition
	loc := re.FindStringSubmatchIndex(win)
	if loc == nil {
		return nil, nil, false
	}
	m.cursor += loc[1]

	code, err1 := parseUint16(group(re, win, loc, "rundown"))
	raw, err2 := strconv.Atoi(group(re, win, loc, "exp"))
	if err := firstErr(err1, err2); err != nil {
		return nil, []error{m.fault(pattern.IDSelectExpedition, err)}, true
	}
	tier := group(re, win, loc, "tier")

	rundown := event.RundownFromCode(code)
	idx := correctExpeditionIndex(rundown, tier, raw)

	m.state = StateAwaitZoneGeneration
	return []event.Event{event.Expedition{Rundown: rundown, Tier: tier, Index: idx}}, nil, true
}

// correctExpeditionIndex maps the log's raw expedition index to the
// user-facing number. The log is zero-based, so the index is normally
// incremented, except on R8 tiers A/C/D/E at raw index 2, where the game
// itself skips the offset.
func correctExpeditionIndex(rundown event.Rundown, tier string, raw int) int {
	if rundown == event.RundownR8 && raw == 2 {
		switch tier {
		case "A", "C", "D", "E":
			return raw
		}
	}
	return raw + 1
}

func (m *Machine) scanZoneGeneration(limit int) ([]event.Event, []error, bool) {
	win := m.window(limit)
	start := m.cat.SetupFloorStart.FindStringIndex(win)
	if start == nil {
		return nil, nil, false
	}
	rest := win[start[1]:]
	end := m.cat.SetupFloorEnd.FindStringIndex(rest)
	if end == nil {
		// Batch still streaming in; re-scan on the next delta.
		return nil, nil, false
	}
	segment := rest[:end[0]]

	var evs []event.Event
	var errs []error
	seen := make(map[uint32]struct{})

	re := m.cat.ZoneCreated
	for _, loc := range re.FindAllStringSubmatchIndex(segment, -1) {
		alias, err1 := parseUint32(group(re, segment, loc, "alias"))
		local, err2 := parseUint32(group(re, segment, loc, "local"))
		if err := firstErr(err1, err2); err != nil {
			errs = append(errs, m.fault(pattern.IDZoneCreated, err))
			continue
		}
		if _, dup := seen[alias]; dup {
			m.log.Warn("duplicate zone alias in batch", "alias", alias)
			continue
		}
		seen[alias] = struct{}{}
		evs = append(evs, event.ZoneCreated{Zone: event.Zone{
			Alias:     alias,
			Local:     local,
			Dimension: group(re, segment, loc, "dim"),
			Layer:     group(re, segment, loc, "layer"),
		}})
	}

	m.cursor += start[1] + end[1]
	m.state = StateAwaitItemGeneration
	return evs, errs, true
}

func (m *Machine) scanItemGeneration(limit int) ([]event.Event, []error, bool) {
	win := m.window(limit)

	dStart := m.cat.DistributionStart.FindStringIndex(win)
	if dStart == nil {
		// Levels without distributed items go straight to BuildDone.
		if bd := m.cat.BuildDone.FindStringIndex(win); bd != nil {
			m.cursor += bd[1]
			m.state = StateAwaitEndOfRun
			return nil, nil, true
		}
		return nil, nil, false
	}

	restD := win[dStart[1]:]
	dEnd := m.cat.DistributionEnd.FindStringIndex(restD)
	if dEnd == nil {
		return nil, nil, false
	}
	distSeg := restD[:dEnd[0]]
	afterDist := restD[dEnd[1]:]

	fStart := m.cat.FunctionMarkersStart.FindStringIndex(afterDist)
	if fStart == nil {
		// No function-marker batch appears when the distributions need no
		// containers; BuildDone closes the phase.
		if bd := m.cat.BuildDone.FindStringIndex(afterDist); bd != nil {
			evs, errs := m.processDistribution(distSeg)
			m.cursor += dStart[1] + dEnd[1] + bd[1]
			m.state = StateAwaitEndOfRun
			return evs, errs, true
		}
		return nil, nil, false
	}

	restF := afterDist[fStart[1]:]
	fEnd := m.cat.FunctionMarkersEnd.FindStringIndex(restF)
	if fEnd == nil {
		return nil, nil, false
	}
	funcSeg := restF[:fEnd[0]]

	evs, errs := m.processDistribution(distSeg)
	fmEvs, fmErrs := m.processFunctionMarkers(funcSeg)
	evs = append(evs, fmEvs...)
	errs = append(errs, fmErrs...)

	m.cursor += dStart[1] + dEnd[1] + fStart[1] + fEnd[1]
	m.state = StateAwaitEndOfRun
	return evs, errs, true
}

// processDistribution extracts key placements and item-type announcements
// from a complete Distribution segment. Seeded-container announcements are
// queued for correlation instead of emitted.
func (m *Machine) processDistribution(seg string) ([]event.Event, []error) {
	var evs []event.Event
	var errs []error

	keyRe := m.cat.KeyItemDistribution
	for _, loc := range keyRe.FindAllStringSubmatchIndex(seg, -1) {
		alias, err1 := parseUint32(group(keyRe, seg, loc, "alias"))
		ri, err2 := parseUint32(group(keyRe, seg, loc, "ri"))
		if err := firstErr(err1, err2); err != nil {
			errs = append(errs, m.fault(pattern.IDKeyItemDistribution, err))
			continue
		}
		name := group(keyRe, seg, loc, "key")
		dim := group(keyRe, seg, loc, "dim")
		zone := &event.ZoneKey{Alias: alias, Dimension: dim}

		// Bulkhead keys share the distribution path but carry only a name.
		if strings.HasPrefix(name, "BULKHEAD") {
			evs = append(evs, event.Gatherable{Zone: zone, Item: event.BulkheadKey{Name: name}})
			continue
		}
		evs = append(evs, event.Gatherable{Zone: zone, Item: event.Key{
			Name:      name,
			Dimension: dim,
			ZoneAlias: alias,
			RI:        ri,
		}})
	}

	woRe := m.cat.WardenObjective
	for _, loc := range woRe.FindAllStringSubmatchIndex(seg, -1) {
		alias, err1 := parseUint32(group(woRe, seg, loc, "alias"))
		idx, err2 := parseUint8(group(woRe, seg, loc, "idx"))
		count, err3 := parseUint32(group(woRe, seg, loc, "count"))
		code, err4 := parseUint8(group(woRe, seg, loc, "item"))
		if err := firstErr(err1, err2, err3, err4); err != nil {
			errs = append(errs, m.fault(pattern.IDWardenObjective, err))
			continue
		}

		id := event.Classify(code)
		switch {
		case id.SeededContainer():
			// The log links the announcement to its container only by
			// encounter order; queue it for the function-marker phase.
			m.cor.Push(correlate.Ref{Item: id, ZoneAlias: alias})
		case id == event.ItemCell || id == event.ItemDatasphere:
			evs = append(evs, event.Gatherable{
				Zone: &event.ZoneKey{Alias: alias},
				Item: event.IndexedItem{Item: id, SpawnZoneIdx: idx},
			})
		case namedItems[id]:
			evs = append(evs, event.Gatherable{
				Zone: &event.ZoneKey{Alias: alias},
				Item: event.NamedItem{Item: id, Name: id.String()},
			})
		default:
			evs = append(evs, event.Uncategorized{Item: id, Count: count})
		}
	}

	hsuRe := m.cat.HSUDistribution
	for _, loc := range hsuRe.FindAllStringSubmatchIndex(seg, -1) {
		alias, err1 := parseUint32(group(hsuRe, seg, loc, "alias"))
		areaID, err2 := parseUint32(group(hsuRe, seg, loc, "id"))
		if err := firstErr(err1, err2); err != nil {
			errs = append(errs, m.fault(pattern.IDHSUDistribution, err))
			continue
		}
		area := firstRune(group(hsuRe, seg, loc, "area"))
		evs = append(evs, event.Gatherable{
			Zone: &event.ZoneKey{Alias: alias},
			Item: event.HSU{AreaID: areaID, Area: area},
		})
	}

	return evs, errs
}

// processFunctionMarkers extracts container pickups and generator spawns
// from a complete FunctionMarkers segment. Each pickup is paired with the
// next queued distribution announcement; once the queue is exhausted the
// untyped seeded fallback is emitted.
func (m *Machine) processFunctionMarkers(seg string) ([]event.Event, []error) {
	var evs []event.Event
	var errs []error

	puRe := m.cat.GenericPickup
	for _, loc := range puRe.FindAllStringSubmatchIndex(seg, -1) {
		seed, err := parseUint32(group(puRe, seg, loc, "seed"))
		if err != nil {
			errs = append(errs, m.fault(pattern.IDGenericPickup, err))
			continue
		}
		container := group(puRe, seg, loc, "container")

		if ref, ok := m.cor.Next(); ok {
			evs = append(evs, event.Gatherable{
				Zone: &event.ZoneKey{Alias: ref.ZoneAlias},
				Item: event.SeededItem{Item: ref.Item, Container: container, Seed: seed},
			})
			continue
		}
		evs = append(evs, event.Gatherable{
			Item: event.SeededItem{Container: container, Seed: seed},
		})
	}

	genRe := m.cat.PowerGenerator
	for _, loc := range genRe.FindAllStringSubmatchIndex(seg, -1) {
		idx, err1 := parseUint8(group(genRe, seg, loc, "idx"))
		itemIdx, err2 := parseUint8(group(genRe, seg, loc, "item"))
		if err := firstErr(err1, err2); err != nil {
			errs = append(errs, m.fault(pattern.IDPowerGenerator, err))
			continue
		}
		evs = append(evs, event.Gatherable{Item: event.Generator{
			Name:    group(genRe, seg, loc, "name"),
			ItemIdx: itemIdx,
			Idx:     idx,
		}})
	}

	return evs, errs
}

// trimEndOfRun drops consumed complete lines while waiting for the run to
// end; nothing in this state matches anything but the game-state scan.
func (m *Machine) trimEndOfRun(limit int) {
	win := m.window(limit)
	if nl := strings.LastIndexByte(win, '\n'); nl >= 0 {
		m.cursor += nl + 1
	}
}

func (m *Machine) fault(patternID string, err error) error {
	m.log.Warn("skipping malformed match", "pattern", patternID, "state", m.state.String(), "err", err)
	return &ParseError{State: m.state, Pattern: patternID, Err: err}
}

// group extracts a named capture from a submatch index pair list.
func group(re *regexp.Regexp, text string, loc []int, name string) string {
	i := re.SubexpIndex(name)
	if i < 0 || 2*i+1 >= len(loc) {
		return ""
	}
	s, e := loc[2*i], loc[2*i+1]
	if s < 0 {
		return ""
	}
	return text[s:e]
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	return uint16(v), err
}

func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	return uint8(v), err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
