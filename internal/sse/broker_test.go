package sse

import (
	"strings"
	"testing"
	"time"
)

func TestSubscribePublish(t *testing.T) {
	b := NewBroker(time.Hour)
	t.Cleanup(b.Close)

	ch := b.Subscribe()
	b.PublishIndexEvent("note.updated", "garden")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: note.updated") {
			t.Errorf("payload = %q", s)
		}
		if !strings.Contains(s, `"title":"garden"`) {
			t.Errorf("payload = %q", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestGraphEventThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	t.Cleanup(b.Close)

	ch := b.Subscribe()
	b.PublishIndexEvent("note.updated", "a")
	b.PublishIndexEvent("note.updated", "b")

	var graphEvents int
	deadline := time.After(2 * time.Second)
	for received := 0; received < 3; received++ {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: graph.updated") {
				graphEvents++
			}
		case <-deadline:
			t.Fatal("timed out waiting for events")
		}
	}
	// Two note events inside one throttle window produce one graph event.
	if graphEvents != 1 {
		t.Errorf("graph events = %d, want 1", graphEvents)
	}
}

func TestClientCount(t *testing.T) {
	b := NewBroker(time.Hour)
	t.Cleanup(b.Close)

	if n := b.ClientCount(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestClose_Idempotent(t *testing.T) {
	b := NewBroker(time.Hour)
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel not closed")
	}
	if ch := b.Subscribe(); ch == nil {
		t.Error("Subscribe after close returned nil")
	}
}
