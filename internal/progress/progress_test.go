package progress

import (
	"testing"
	"time"
)

func TestStepfBroadcasts(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	n.Stepf("job1", "Downloading videos (%d/%d)", 1, 3)

	select {
	case ev := <-ch:
		if ev.JobID != "job1" {
			t.Errorf("JobID = %q, want job1", ev.JobID)
		}
		if ev.Message != "Downloading videos (1/3)" {
			t.Errorf("Message = %q", ev.Message)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Overflow the buffer; Stepf must not stall.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			n.Stepf("job1", "notice %d", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stepf blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := NewNotifier()
	ch := n.Subscribe()
	n.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Double unsubscribe is harmless.
	n.Unsubscribe(ch)
}
