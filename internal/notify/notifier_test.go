package notify

import (
	"testing"
	"time"

	"talentflow/internal/common"
)

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	change := Change{CandidateID: common.NewUUID(), Kind: "stage"}
	hub.Publish(change)

	for _, ch := range []<-chan Change{first, second} {
		select {
		case got := <-ch:
			if got != change {
				t.Fatalf("expected %+v, got %+v", change, got)
			}
		case <-time.After(time.Second):
			t.Fatal("expected a delivered change")
		}
	}
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// One more than the buffer; the overflow is dropped, not blocked.
	for i := 0; i < 17; i++ {
		hub.Publish(Change{Kind: "stage"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			if received != 16 {
				t.Fatalf("expected 16 buffered changes, got %d", received)
			}
			return
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	if hub.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.SubscriberCount())
	}

	cancel()
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed")
	}

	// Cancelling twice is safe.
	cancel()
	hub.Publish(Change{Kind: "stage"})
}
