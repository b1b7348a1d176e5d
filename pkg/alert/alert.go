package alert

import "context"

// Tag identifies one logical alert. Show, Remove and dismissal all
// correlate through it, so at most one alert per tag is ever visible.
type Tag string

const (
	// TagHigh is the alert shown when the battery is above the upper
	// threshold while on external power.
	TagHigh Tag = "high_battery"
	// TagLow is the alert shown when the battery is at or below the
	// lower threshold while on battery power.
	TagLow Tag = "low_battery"
)

// DismissFunc is invoked when the user acknowledges the alert shown
// for a tag.
type DismissFunc func(tag Tag)

// Notifier delivers alerts to the user. All methods are best-effort:
// implementations swallow and log failures instead of propagating them,
// so a broken notification daemon can never take the tick loop down.
type Notifier interface {
	// Show displays (or replaces) the alert for tag.
	Show(tag Tag, text string)
	// Remove takes down the alert for tag if it is visible.
	Remove(tag Tag)
	// Speak reads text aloud, blocking until done or ctx is canceled.
	// Callers serialize Speak themselves; implementations only promise
	// that canceling ctx interrupts the utterance abruptly.
	Speak(ctx context.Context, text string) error
	// CancelSpeech interrupts any utterance currently in progress.
	CancelSpeech()
	// OnDismiss registers the callback invoked by Dismiss. Only one
	// callback is kept; registration happens once at construction.
	OnDismiss(fn DismissFunc)
	// Dismiss reports a user acknowledgment for tag.
	Dismiss(tag Tag)
}
