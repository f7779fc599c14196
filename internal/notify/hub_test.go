package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

func snap(sessionID string) *models.Snapshot {
	return &models.Snapshot{
		SessionID: sessionID,
		Timestamp: time.Now(),
	}
}

func TestHubPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("s1")
	defer sub.Unsubscribe()

	h.Publish(context.Background(), snap("s1"))

	select {
	case got := <-sub.C():
		assert.Equal(t, "s1", got.SessionID)
	case <-time.After(time.Second):
		t.Fatal("snapshot never delivered")
	}
}

func TestHubTopicIsolation(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("s1")
	defer sub.Unsubscribe()

	h.Publish(context.Background(), snap("other"))

	select {
	case got := <-sub.C():
		t.Fatalf("unexpected snapshot for session %s", got.SessionID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("s1")
	defer sub.Unsubscribe()

	// Publish well past the buffer without draining; every call must
	// return immediately.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			h.Publish(context.Background(), snap("s1"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	// The buffer holds exactly its capacity; the rest were dropped.
	delivered := 0
	for {
		select {
		case <-sub.C():
			delivered++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, delivered)
}

func TestHubCloseShutsSubscriberChannels(t *testing.T) {
	h := NewHub()
	a := h.Subscribe("s1")
	b := h.Subscribe("s1")

	h.Close("s1")

	for _, sub := range []*Subscriber{a, b} {
		select {
		case _, ok := <-sub.C():
			assert.False(t, ok, "channel should be closed")
		case <-time.After(time.Second):
			t.Fatal("channel not closed")
		}
	}

	// Unsubscribe after Close is safe.
	a.Unsubscribe()
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe("s1")
	sub.Unsubscribe()

	// Must not panic on a closed channel.
	h.Publish(context.Background(), snap("s1"))

	_, ok := <-sub.C()
	require.False(t, ok)
}

func TestMultiFansOut(t *testing.T) {
	h1 := NewHub()
	h2 := NewHub()
	s1 := h1.Subscribe("s1")
	s2 := h2.Subscribe("s1")

	Multi{h1, h2}.Publish(context.Background(), snap("s1"))

	for _, sub := range []*Subscriber{s1, s2} {
		select {
		case <-sub.C():
		case <-time.After(time.Second):
			t.Fatal("snapshot not fanned out")
		}
	}
}
