package engine

// State is the alert condition the engine is currently in. At most one
// of HighAlert and LowAlert is active at any instant; the engine never
// moves between them without passing through Normal.
type State int

const (
	// StateNormal means no alert condition holds.
	StateNormal State = iota
	// StateHighAlert means the battery is above the upper threshold
	// while on external power.
	StateHighAlert
	// StateLowAlert means the battery is at or below the lower
	// threshold while on battery power.
	StateLowAlert
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateHighAlert:
		return "HighAlert"
	case StateLowAlert:
		return "LowAlert"
	default:
		return "Unknown"
	}
}
