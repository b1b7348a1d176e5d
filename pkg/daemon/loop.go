package daemon

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TickRecorder records the last N tick times so the loop can tell a
// normal cadence from one interrupted by system sleep.
type TickRecorder struct {
	MaxRecordCount int
	LastTickTimes  []time.Time
	mu             *sync.Mutex
}

// NewTickRecorder returns a new TickRecorder.
func NewTickRecorder(maxRecordCount int) *TickRecorder {
	return &TickRecorder{
		MaxRecordCount: maxRecordCount,
		LastTickTimes:  make([]time.Time, 0),
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *TickRecorder) AddRecordNow() {
	r.AddRecord(time.Now())
}

// AddRecord adds a new record.
func (r *TickRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round to strip the monotonic clock reading. Otherwise time.Since
	// is inaccurate across system sleep.
	t = t.Round(0)

	if len(r.LastTickTimes) >= r.MaxRecordCount {
		r.LastTickTimes = r.LastTickTimes[1:]
	}
	r.LastTickTimes = append(r.LastTickTimes, t)
}

// ClearRecords clears all records.
func (r *TickRecorder) ClearRecords() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.LastTickTimes = make([]time.Time, 0)
}

// GetLastRecord returns the last record, or the zero time if there is
// none.
func (r *TickRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastTickTimes) == 0 {
		return time.Time{}
	}

	return r.LastTickTimes[len(r.LastTickTimes)-1]
}

// GapSince reports whether more than tolerance has passed since the
// last recorded tick. A gap usually means the machine was asleep, so
// the first sample afterwards may describe a very different battery.
func (r *TickRecorder) GapSince(tolerance time.Duration) (time.Duration, bool) {
	last := r.GetLastRecord()
	if last.IsZero() {
		return 0, false
	}

	elapsed := time.Since(last)
	if elapsed > tolerance {
		return elapsed, true
	}
	return 0, false
}

var tickRecorder = NewTickRecorder(60)

// tickLoop drives the engine once per poll interval until stop closes.
// The interval is re-read each round so config reloads take effect
// without a restart.
func tickLoop(stop chan struct{}) {
	for {
		interval := conf.PollInterval()

		if gap, ok := tickRecorder.GapSince(2*interval + time.Second); ok {
			logrus.WithFields(logrus.Fields{
				"gap":      gap.String(),
				"interval": interval.String(),
			}).Info("resuming ticks after gap, system probably slept")
		}

		tickRecorder.AddRecordNow()
		eng.Tick()

		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}
