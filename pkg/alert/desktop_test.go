package alert

import (
	"testing"
)

func TestDismissDispatchesToRegisteredCallback(t *testing.T) {
	d := NewDesktop()

	var got []Tag
	d.OnDismiss(func(tag Tag) {
		got = append(got, tag)
	})

	d.Dismiss(TagHigh)
	d.Dismiss(TagLow)

	if len(got) != 2 || got[0] != TagHigh || got[1] != TagLow {
		t.Fatalf("unexpected dispatched tags %v", got)
	}
}

func TestDismissWithoutCallbackDoesNotPanic(t *testing.T) {
	d := NewDesktop()
	d.Dismiss(TagHigh)
}

func TestCancelSpeechWithoutSpeechDoesNotPanic(t *testing.T) {
	d := NewDesktop()
	d.CancelSpeech()
}
