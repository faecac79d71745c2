package event

import "fmt"

// Rundown is the mission-tier grouping a session belongs to. The numeric
// codes are a contract against the R8 live build of the game; anything the
// build doesn't know is a modded rundown.
type Rundown uint16

// Rundown codes as logged by the R8 live build.
const (
	RundownModded   Rundown = 0
	RundownR7       Rundown = 31
	RundownR1       Rundown = 32
	RundownR2       Rundown = 33
	RundownR3       Rundown = 34
	RundownR8       Rundown = 35
	RundownR4       Rundown = 37
	RundownR5       Rundown = 38
	RundownTutorial Rundown = 39
	RundownR6       Rundown = 41
)

var rundownNames = map[Rundown]string{
	RundownModded:   "Modded",
	RundownR1:       "R1",
	RundownR2:       "R2",
	RundownR3:       "R3",
	RundownR4:       "R4",
	RundownR5:       "R5",
	RundownR6:       "R6",
	RundownR7:       "R7",
	RundownR8:       "R8",
	RundownTutorial: "Tutorial",
}

// RundownFromCode maps a raw log code to a Rundown. Unrecognized codes map
// to RundownModded, never to an error.
func RundownFromCode(code uint16) Rundown {
	r := Rundown(code)
	if _, ok := rundownNames[r]; ok && r != RundownModded {
		return r
	}
	return RundownModded
}

// String returns the user-facing rundown name.
func (r Rundown) String() string {
	if name, ok := rundownNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Rundown(%d)", uint16(r))
}

// MarshalText implements encoding.TextMarshaler so rundowns serialize by
// name in JSON output.
func (r Rundown) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
