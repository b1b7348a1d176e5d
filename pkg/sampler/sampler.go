package sampler

// Sample is one battery reading.
type Sample struct {
	// Percentage is the current charge in [0, 100].
	Percentage int `json:"percentage"`
	// ACConnected reports whether the machine is on external power.
	ACConnected bool `json:"acConnected"`
}

// Sampler reads the current battery state. Implementations must return
// an error instead of panicking; callers treat any error as "skip this
// reading".
type Sampler interface {
	Sample() (Sample, error)
}
