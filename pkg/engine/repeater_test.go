package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/battwarn/battwarn/pkg/alert"
)

type speakRecorder struct {
	mu      sync.Mutex
	ch      chan string
	cancels int
}

func newSpeakRecorder() *speakRecorder {
	return &speakRecorder{ch: make(chan string, 64)}
}

func (n *speakRecorder) Show(alert.Tag, string)      {}
func (n *speakRecorder) Remove(alert.Tag)            {}
func (n *speakRecorder) OnDismiss(alert.DismissFunc) {}
func (n *speakRecorder) Dismiss(alert.Tag)           {}

func (n *speakRecorder) Speak(_ context.Context, text string) error {
	n.ch <- text
	return nil
}

func (n *speakRecorder) CancelSpeech() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancels++
}

func (n *speakRecorder) next(t *testing.T, timeout time.Duration) (string, bool) {
	t.Helper()
	select {
	case text := <-n.ch:
		return text, true
	case <-time.After(timeout):
		return "", false
	}
}

func TestRepeaterFiresImmediatelyThenOnCadence(t *testing.T) {
	n := newSpeakRecorder()
	r := newRepeater(n, func() time.Duration { return 50 * time.Millisecond })
	defer r.Cancel()

	r.Start("hello")

	if text, ok := n.next(t, time.Second); !ok || text != "hello" {
		t.Fatalf("expected immediate utterance, got %q ok=%t", text, ok)
	}
	if _, ok := n.next(t, time.Second); !ok {
		t.Fatalf("expected a scheduled repeat")
	}
	if _, ok := n.next(t, time.Second); !ok {
		t.Fatalf("expected another scheduled repeat")
	}
}

func TestRepeaterCancelStopsFiring(t *testing.T) {
	n := newSpeakRecorder()
	r := newRepeater(n, func() time.Duration { return 30 * time.Millisecond })

	r.Start("hello")
	if _, ok := n.next(t, time.Second); !ok {
		t.Fatalf("expected immediate utterance")
	}

	r.Cancel()

	// Drain anything that raced the cancel, then confirm silence.
	for {
		if _, ok := n.next(t, 100*time.Millisecond); !ok {
			break
		}
	}
	if _, ok := n.next(t, 150*time.Millisecond); ok {
		t.Fatalf("no utterance expected after cancel")
	}

	n.mu.Lock()
	cancels := n.cancels
	n.mu.Unlock()
	if cancels == 0 {
		t.Fatalf("expected Cancel to interrupt in-flight speech")
	}
}

func TestRepeaterStartSupersedesPreviousSchedule(t *testing.T) {
	n := newSpeakRecorder()
	r := newRepeater(n, func() time.Duration { return 40 * time.Millisecond })
	defer r.Cancel()

	r.Start("old")
	if text, ok := n.next(t, time.Second); !ok || text != "old" {
		t.Fatalf("expected old text first, got %q", text)
	}

	r.Start("new")

	// After the restart only the new text may fire.
	sawNew := false
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		text, ok := n.next(t, 200*time.Millisecond)
		if !ok {
			break
		}
		if text == "old" {
			t.Fatalf("old schedule fired after being superseded")
		}
		sawNew = sawNew || text == "new"
	}
	if !sawNew {
		t.Fatalf("expected the new schedule to fire")
	}
}

func TestRepeaterMuted(t *testing.T) {
	n := newSpeakRecorder()
	r := newRepeater(n, func() time.Duration { return 30 * time.Millisecond })
	defer r.Cancel()

	r.SetMuted(true)
	r.Start("hello")

	if _, ok := n.next(t, 150*time.Millisecond); ok {
		t.Fatalf("no utterance expected while muted")
	}

	// Unmuting resumes the cadence without a restart.
	r.SetMuted(false)
	if _, ok := n.next(t, time.Second); !ok {
		t.Fatalf("expected utterances to resume after unmute")
	}
}
