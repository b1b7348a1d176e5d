package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battwarn/battwarn/pkg/alert"
	"github.com/battwarn/battwarn/pkg/sampler"
)

// Config provides the knobs the engine reads. Values are re-read every
// tick, so a config reload takes effect on the next poll.
type Config interface {
	UpperThreshold() int
	LowerThreshold() int
	VoiceRepeatInterval() time.Duration
}

// TransitionFunc is called on every state transition, with the sample
// that caused it.
type TransitionFunc func(from, to State, s sampler.Sample)

// Engine decides, from periodic battery samples, when to raise, update
// and clear the high/low battery alerts. Ticks, dismissals and mute
// changes all serialize on one mutex; the repeat schedule and speech
// run outside it.
type Engine struct {
	conf     Config
	sampler  sampler.Sampler
	notifier alert.Notifier

	mu    sync.Mutex
	state State
	// lastPercentage is the percentage of the last accepted sample, so
	// status reads stay fresh after an alert clears.
	lastPercentage int
	muted          bool

	rep *repeater

	onTransition TransitionFunc
}

func New(conf Config, smp sampler.Sampler, notifier alert.Notifier) *Engine {
	e := &Engine{
		conf:     conf,
		sampler:  smp,
		notifier: notifier,
		state:    StateNormal,
	}
	e.rep = newRepeater(notifier, conf.VoiceRepeatInterval)
	notifier.OnDismiss(e.handleDismiss)
	return e
}

// OnTransition registers the transition callback. Register before the
// first tick; the callback runs while the engine lock is held, so it
// must not call back into the engine.
func (e *Engine) OnTransition(fn TransitionFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTransition = fn
}

// Status returns the current state and the percentage of the last
// valid sample.
func (e *Engine) Status() (State, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.lastPercentage
}

// Muted reports whether voice output is currently suppressed.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetMuted suppresses (or restores) voice output. Toasts are not
// affected. Muting interrupts any utterance in progress.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.muted == muted {
		return
	}
	e.muted = muted
	e.rep.SetMuted(muted)
	if muted {
		e.notifier.CancelSpeech()
	}
	logrus.WithField("muted", muted).Info("voice mute changed")
}

// Tick pulls one sample and advances the state machine. A failed read
// skips the tick entirely: a transient sampler error must never raise
// or clear an alert.
func (e *Engine) Tick() {
	s, err := e.sampler.Sample()
	if err != nil {
		logrus.Debugf("skipping tick, sample failed: %v", err)
		return
	}
	if s.Percentage < 0 || s.Percentage > 100 {
		logrus.Debugf("skipping tick, invalid percentage %d", s.Percentage)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.evaluate(s)
	// evaluate compares against the previous tick's percentage, so this
	// must happen after the dispatch.
	e.lastPercentage = s.Percentage
}

// Close cancels the repeat schedule and any in-flight speech. The
// engine must not be ticked after Close.
func (e *Engine) Close() {
	e.rep.Cancel()
	e.notifier.CancelSpeech()
}

// evaluate runs one dispatch under the engine lock. Clearing an alert
// falls through to the trigger checks with the same sample, so a swing
// from one extreme to the other passes through Normal within the tick.
func (e *Engine) evaluate(s sampler.Sample) {
	upper := e.conf.UpperThreshold()
	lower := e.conf.LowerThreshold()

	switch e.state {
	case StateHighAlert:
		// Hysteresis: clearing requires moving strictly past the
		// one-unit dead band below the threshold, so a reading sitting
		// exactly on the threshold cannot flap the alert.
		if !s.ACConnected || s.Percentage < upper-1 {
			e.clear(alert.TagHigh, s)
		} else if s.Percentage != e.lastPercentage {
			e.update(alert.TagHigh, highText(s.Percentage), s)
		}
		return
	case StateLowAlert:
		if s.ACConnected || s.Percentage > lower+1 {
			e.clear(alert.TagLow, s)
		} else if s.Percentage != e.lastPercentage {
			e.update(alert.TagLow, lowText(s.Percentage), s)
		}
		return
	}

	// Normal. Triggering is a plain threshold comparison, so a sample
	// that jumps over the exact threshold value still triggers.
	if s.Percentage >= upper && s.ACConnected {
		e.enter(StateHighAlert, alert.TagHigh, highText(s.Percentage), s)
	} else if s.Percentage <= lower && !s.ACConnected {
		e.enter(StateLowAlert, alert.TagLow, lowText(s.Percentage), s)
	}
}

func (e *Engine) enter(to State, tag alert.Tag, text string, s sampler.Sample) {
	from := e.state
	e.state = to
	e.lastPercentage = s.Percentage

	e.logTransition(from, to, s)
	e.notifier.Show(tag, text)
	e.rep.Start(text)
}

func (e *Engine) update(tag alert.Tag, text string, s sampler.Sample) {
	e.lastPercentage = s.Percentage

	logrus.WithFields(logrus.Fields{
		"state":      e.state.String(),
		"percentage": s.Percentage,
	}).Debug("alert content updated")

	e.notifier.Show(tag, text)
	// Restarting the schedule speaks the new text immediately and
	// pushes the next repeat a full interval out.
	e.rep.Start(text)
}

func (e *Engine) clear(tag alert.Tag, s sampler.Sample) {
	from := e.state
	e.state = StateNormal

	e.notifier.Remove(tag)
	e.rep.Cancel()
	e.notifier.CancelSpeech()
	e.logTransition(from, StateNormal, s)

	// The same sample may immediately satisfy the opposite trigger.
	e.evaluate(s)
}

func (e *Engine) handleDismiss(tag alert.Tag) {
	e.mu.Lock()
	defer e.mu.Unlock()

	match := (tag == alert.TagHigh && e.state == StateHighAlert) ||
		(tag == alert.TagLow && e.state == StateLowAlert)
	if !match {
		logrus.WithField("tag", tag).Debug("dismissal does not match active alert, ignoring")
		return
	}

	logrus.WithFields(logrus.Fields{
		"tag":   tag,
		"state": e.state.String(),
	}).Info("alert dismissed by user")

	// Dismissal silences the nagging but does not clear the state: the
	// physical condition is authoritative, not the acknowledgment. If
	// the percentage changes while the condition persists, the alert
	// content and voice come back through the update path.
	e.rep.Cancel()
	e.notifier.CancelSpeech()
	e.notifier.Remove(tag)
}

func (e *Engine) logTransition(from, to State, s sampler.Sample) {
	logrus.WithFields(logrus.Fields{
		"from":        from.String(),
		"to":          to.String(),
		"percentage":  s.Percentage,
		"acConnected": s.ACConnected,
	}).Info("alert state transition")

	if e.onTransition != nil {
		e.onTransition(from, to, s)
	}
}

func highText(percentage int) string {
	return fmt.Sprintf("Battery at %d percent. Please power off immediately.", percentage)
}

func lowText(percentage int) string {
	return fmt.Sprintf("Battery at %d percent. Please connect power immediately.", percentage)
}
