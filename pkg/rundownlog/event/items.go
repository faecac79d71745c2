package event

import "fmt"

// ItemIdentifier is the game's internal item-type code for distributable
// objective items. The known values (128..176) are a contract against the R8
// live build; unmapped codes survive as their raw value so a newer build
// degrades to Uncategorized output instead of a parse failure.
type ItemIdentifier uint8

// Known item-type codes.
const (
	ItemID          ItemIdentifier = 128
	ItemPD          ItemIdentifier = 129
	ItemCell        ItemIdentifier = 131
	ItemFogTurbine  ItemIdentifier = 133
	ItemNeonate     ItemIdentifier = 137
	ItemCryo        ItemIdentifier = 148
	ItemGLP1        ItemIdentifier = 149
	ItemOSIP        ItemIdentifier = 150
	ItemDatasphere  ItemIdentifier = 151
	ItemPlantSample ItemIdentifier = 153
	ItemHiSec       ItemIdentifier = 154
	ItemMWP         ItemIdentifier = 164
	ItemDataCubeR8  ItemIdentifier = 165
	ItemDataCube    ItemIdentifier = 168
	ItemGLP2        ItemIdentifier = 169
	ItemCargo       ItemIdentifier = 176
)

var itemNames = map[ItemIdentifier]string{
	ItemID:          "ID",
	ItemPD:          "PD",
	ItemCell:        "Cell",
	ItemFogTurbine:  "FogTurbine",
	ItemNeonate:     "Neonate",
	ItemCryo:        "Cryo",
	ItemGLP1:        "GLP_1",
	ItemOSIP:        "OSIP",
	ItemDatasphere:  "Datasphere",
	ItemPlantSample: "PlantSample",
	ItemHiSec:       "HiSec",
	ItemMWP:         "MWP",
	ItemDataCubeR8:  "DataCube",
	ItemDataCube:    "DataCube",
	ItemGLP2:        "GLP_2",
	ItemCargo:       "Cargo",
}

// Classify maps a raw log code to an ItemIdentifier. The two DataCube codes
// the build logs (165 and 168) are normalized to the canonical ItemDataCube.
// Unknown codes are returned as-is; check Known.
func Classify(code uint8) ItemIdentifier {
	id := ItemIdentifier(code)
	if id == ItemDataCubeR8 {
		return ItemDataCube
	}
	return id
}

// Known reports whether the code is mapped in the current build contract.
func (i ItemIdentifier) Known() bool {
	_, ok := itemNames[i]
	return ok
}

// SeededContainer reports whether items of this type spawn inside seeded
// containers, i.e. whether a distribution-phase announcement of this code
// must be queued for correlation with a later function-marker pickup.
func (i ItemIdentifier) SeededContainer() bool {
	switch i {
	case ItemID, ItemPD, ItemGLP1, ItemOSIP, ItemPlantSample, ItemDataCube, ItemGLP2:
		return true
	}
	return false
}

// String returns the item name, or "unknown(code)" for unmapped codes.
func (i ItemIdentifier) String() string {
	if name, ok := itemNames[i]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(i))
}

// MarshalText implements encoding.TextMarshaler.
func (i ItemIdentifier) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// GatherItem is a placed collectible the parser recognized. It is a closed
// union: Key, BulkheadKey, HSU, Generator, SeededItem, IndexedItem and
// NamedItem are the only implementations.
//
// Keys, bulkhead keys and HSUs have no item-type code and are matched by
// dedicated patterns. Seeded containers carry their semantic type only when
// the distribution-phase correlation succeeded; see SeededItem.
type GatherItem interface {
	// Label returns a short human-readable description of the item.
	Label() string

	gatherItem()
}

// Key is a colored door key. Dimension and ZoneAlias locate the placement;
// RI is the generator's random index for the placement, logged alongside it.
type Key struct {
	Name      string `json:"name"`
	Dimension string `json:"dimension"`
	ZoneAlias uint32 `json:"zone_alias"`
	RI        uint32 `json:"ri"`
}

func (k Key) Label() string { return k.Name }
func (Key) gatherItem()     {}

// BulkheadKey is a bulkhead door key. Only the public name is logged.
type BulkheadKey struct {
	Name string `json:"name"`
}

func (k BulkheadKey) Label() string { return k.Name }
func (BulkheadKey) gatherItem()     {}

// HSU is a hydro-stasis unit placement inside a zone sub-area.
type HSU struct {
	AreaID uint32 `json:"area_id"`
	Area   rune   `json:"area"`
}

func (h HSU) Label() string { return fmt.Sprintf("HSU area %c", h.Area) }
func (HSU) gatherItem()     {}

// Generator is a power generator placement from the function-marker phase.
type Generator struct {
	Name    string `json:"name"`
	ItemIdx uint8  `json:"item_idx"`
	Idx     uint8  `json:"idx"`
}

func (g Generator) Label() string { return g.Name }
func (Generator) gatherItem()     {}

// SeededItem is an item inside a seeded container. Item carries the semantic
// type when the positional correlation against the distribution phase
// succeeded; Item == 0 is the untyped fallback for pickups matched after the
// correlation queue was exhausted.
type SeededItem struct {
	Item      ItemIdentifier `json:"item,omitempty"`
	Container string         `json:"container"`
	Seed      uint32         `json:"seed"`
}

// Resolved reports whether the semantic item type is known.
func (s SeededItem) Resolved() bool { return s.Item != 0 }

func (s SeededItem) Label() string {
	if !s.Resolved() {
		return fmt.Sprintf("%s (seed %d)", s.Container, s.Seed)
	}
	return fmt.Sprintf("%s in %s", s.Item, s.Container)
}
func (SeededItem) gatherItem() {}

// IndexedItem is an item the log locates only by spawn-zone index
// (Cell, Datasphere).
type IndexedItem struct {
	Item         ItemIdentifier `json:"item"`
	SpawnZoneIdx uint8          `json:"spawn_zone_idx"`
}

func (i IndexedItem) Label() string { return i.Item.String() }
func (IndexedItem) gatherItem()     {}

// NamedItem is an item the log identifies only by name
// (FogTurbine, Neonate, Cryo, HiSec, Cargo).
type NamedItem struct {
	Item ItemIdentifier `json:"item"`
	Name string         `json:"name"`
}

func (n NamedItem) Label() string { return n.Name }
func (NamedItem) gatherItem()     {}
