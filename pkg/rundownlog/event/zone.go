package event

import "fmt"

// Zone is one procedurally generated sub-area of a level.
//
// Alias is assigned by the game's generator and is unique within a session.
// Area is the optional sub-area letter; it is unknown at creation time and
// back-filled later from item distribution messages (zero until then).
type Zone struct {
	Alias     uint32 `json:"alias"`
	Local     uint32 `json:"local"`
	Dimension string `json:"dimension"`
	Layer     string `json:"layer"`
	Area      rune   `json:"area,omitempty"`
}

// Key returns the lookup key for the zone.
func (z Zone) Key() ZoneKey {
	return ZoneKey{Alias: z.Alias, Dimension: z.Dimension}
}

// String renders the zone the way the in-game map labels it.
func (z Zone) String() string {
	return fmt.Sprintf("ZONE_%d %s %s", z.Alias, z.Layer, z.Dimension)
}

// ZoneKey identifies a zone for lookup. Alias alone is session-unique, but
// the dimension is carried for builds where aliases collide across
// dimensions.
type ZoneKey struct {
	Alias     uint32 `json:"alias"`
	Dimension string `json:"dimension"`
}

// MarshalText renders "410/Reality", so a ZoneKey can serve as a JSON map
// key.
func (k ZoneKey) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d/%s", k.Alias, k.Dimension)), nil
}
