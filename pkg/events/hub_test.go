package events

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	h.Publish(AlertState, AlertStateEvent{
		From:       "Normal",
		To:         "HighAlert",
		Percentage: 81,
		Ts:         time.Now().Unix(),
	})

	select {
	case ev := <-ch:
		if ev.Name != AlertState {
			t.Fatalf("unexpected event name %q", ev.Name)
		}
		payload, err := DecodeAs[AlertStateEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs returned error: %v", err)
		}
		if payload.To != "HighAlert" || payload.Percentage != 81 {
			t.Fatalf("unexpected payload %+v", payload)
		}
	case <-time.After(time.Second):
		t.Fatalf("did not receive event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	h.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}

	// Double unsubscribe must not panic.
	h.Unsubscribe(ch)
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewEventHub()
	ch := h.Subscribe()
	defer h.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		// Nobody reads ch; the buffer fills and further events drop.
		for i := 0; i < 100; i++ {
			h.Publish(AlertState, AlertStateEvent{Percentage: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
}

func TestDecodeAsEmptyData(t *testing.T) {
	payload, err := DecodeAs[AlertStateEvent](Event{Name: AlertState})
	if err != nil {
		t.Fatalf("DecodeAs returned error: %v", err)
	}
	if payload != (AlertStateEvent{}) {
		t.Fatalf("expected zero payload, got %+v", payload)
	}
}

func TestNilHubPublish(t *testing.T) {
	var h *EventHub
	// Publishing on a nil hub is a no-op, not a panic.
	h.Publish(AlertState, AlertStateEvent{})
}
