package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/alert"
)

// repeater runs the voice-repeat schedule: speak once immediately,
// then again every interval until canceled. Start supersedes any
// previous schedule, so at most one schedule instance exists at a
// time, and at most one utterance is in flight per repeater.
type repeater struct {
	notifier alert.Notifier
	interval func() time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	// speakCancel interrupts the utterance currently in flight. A new
	// speak request supersedes the old one instead of queueing behind
	// it; only the most recent percentage is worth hearing.
	speakCancel context.CancelFunc
	// speakMu is the single-slot lock around the actual Speak call, so
	// an immediate speak and a scheduled repeat never garble each other.
	speakMu sync.Mutex

	muted atomic.Bool
}

func newRepeater(notifier alert.Notifier, interval func() time.Duration) *repeater {
	return &repeater{
		notifier: notifier,
		interval: interval,
	}
}

// Start begins a new schedule for text, replacing any previous one.
// The first utterance fires immediately.
func (r *repeater) Start(text string) {
	r.mu.Lock()
	if r.stopCh != nil {
		close(r.stopCh)
	}
	stopCh := make(chan struct{})
	r.stopCh = stopCh
	r.mu.Unlock()

	go r.run(text, stopCh)
}

// Cancel stops the schedule and interrupts any utterance in progress.
// No fire is scheduled after Cancel returns.
func (r *repeater) Cancel() {
	r.mu.Lock()
	if r.stopCh != nil {
		close(r.stopCh)
		r.stopCh = nil
	}
	if r.speakCancel != nil {
		r.speakCancel()
		r.speakCancel = nil
	}
	r.mu.Unlock()

	r.notifier.CancelSpeech()
}

// SetMuted suppresses utterances while keeping the schedule running,
// so unmuting resumes the cadence without restarting it.
func (r *repeater) SetMuted(muted bool) {
	r.muted.Store(muted)
}

func (r *repeater) run(text string, stopCh chan struct{}) {
	r.speak(text, stopCh)

	timer := time.NewTimer(r.interval())
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			select {
			case <-stopCh:
				return
			default:
			}
			r.speak(text, stopCh)
			timer.Reset(r.interval())
		case <-stopCh:
			return
		}
	}
}

func (r *repeater) speak(text string, stopCh chan struct{}) {
	if r.muted.Load() {
		logrus.Debug("muted, skipping utterance")
		return
	}

	r.mu.Lock()
	if r.stopCh != stopCh {
		// Superseded or canceled while we were firing.
		r.mu.Unlock()
		return
	}
	if r.speakCancel != nil {
		r.speakCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.speakCancel = cancel
	r.mu.Unlock()

	go func() {
		defer cancel()

		r.speakMu.Lock()
		defer r.speakMu.Unlock()

		if ctx.Err() != nil {
			// Superseded while waiting for the previous utterance.
			return
		}
		if err := r.notifier.Speak(ctx, text); err != nil && ctx.Err() == nil {
			logrus.Debugf("speak failed: %v", err)
		}
	}()
}
