package sampler

import (
	"math"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

// System reads battery state from the OS.
type System struct{}

var _ Sampler = &System{}

func NewSystem() *System {
	return &System{}
}

func (s *System) Sample() (Sample, error) {
	batteries, err := battery.GetAll()
	if err != nil {
		return Sample{}, pkgerrors.Wrap(err, "failed to read batteries")
	}

	if len(batteries) == 0 {
		// Desktops without a battery are a valid steady state, not an
		// error. Report full and plugged in so no alert ever fires.
		return Sample{Percentage: 100, ACConnected: true}, nil
	}

	bat := batteries[0] // Laptops have one battery. No need to support more.
	if bat.Full <= 0 {
		return Sample{}, pkgerrors.Errorf("battery reports invalid full capacity %f", bat.Full)
	}

	pct := int(math.Round(bat.Current / bat.Full * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return Sample{
		Percentage:  pct,
		ACConnected: bat.State != battery.Discharging,
	}, nil
}
