package daemon

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// QuietHours mutes the engine's voice output during a recurring window:
// at every fire of the cron schedule, voice is muted for the configured
// duration, then restored. Toasts are unaffected.
type QuietHours struct {
	// Mute toggles voice suppression; wired to engine.SetMuted.
	Mute func(bool)

	parser cron.Parser

	schedule cron.Schedule
	duration time.Duration
	nextRun  time.Time

	mu      sync.Mutex
	running bool

	stopCh chan struct{}
}

func NewQuietHours(mute func(bool)) *QuietHours {
	if mute == nil {
		panic("mute function cannot be nil")
	}

	return &QuietHours{
		Mute:   mute,
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		stopCh: make(chan struct{}),
	}
}

// Schedule sets the window start expression and its duration. Must be
// called before Start.
func (q *QuietHours) Schedule(cronExpr string, d time.Duration) error {
	sh, err := q.parser.Parse(cronExpr)
	if err != nil {
		return err
	}
	if d <= 0 {
		return errors.Errorf("quiet hours duration must be positive, got %s", d)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return errors.New("cannot reschedule while running")
	}
	q.schedule = sh
	q.duration = d
	q.nextRun = sh.Next(time.Now())
	return nil
}

func (q *QuietHours) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running || q.schedule == nil {
		return
	}
	q.running = true
	go q.run()
}

func (q *QuietHours) Stop() {
	select {
	case <-q.stopCh: // already closed
	default:
		close(q.stopCh)
	}
}

func (q *QuietHours) Status() (nextRun time.Time, running bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	nextRun = q.nextRun
	running = q.running
	return
}

func (q *QuietHours) run() {
	defer func() {
		q.mu.Lock()
		q.running = false
		q.mu.Unlock()
		logrus.Debug("quiet hours schedule stopped")
	}()

	logrus.Debug("quiet hours schedule started")

	for {
		q.mu.Lock()
		nextRun := q.nextRun
		duration := q.duration
		q.mu.Unlock()

		wait := time.Until(nextRun)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			logrus.WithFields(logrus.Fields{
				"until": time.Now().Add(duration).Format(time.DateTime),
			}).Info("quiet hours begin, muting voice alerts")
			q.Mute(true)

			unmute := time.NewTimer(duration)
			select {
			case <-unmute.C:
				logrus.Info("quiet hours end, unmuting voice alerts")
				q.Mute(false)
			case <-q.stopCh:
				unmute.Stop()
				// Leave the engine unmuted on shutdown so a restart
				// does not come up silent outside the window.
				q.Mute(false)
				return
			}

			q.advanceNextRun()
		case <-q.stopCh:
			timer.Stop()
			return
		}
	}
}

func (q *QuietHours) advanceNextRun() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.schedule == nil {
		return
	}
	// Advance from now, not from the stored run: the mute window may
	// have covered one or more scheduled fires.
	q.nextRun = q.schedule.Next(time.Now())
}
