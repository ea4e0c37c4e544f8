package grpc

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-rescue-network/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func raised(id string) models.CrisisEvent {
	return models.CrisisEvent{
		Kind:   models.CrisisRaised,
		Crisis: models.Crisis{ID: id, Type: models.CrisisTypeTraffic, Severity: models.CrisisSeverityMedium},
		At:     time.Now(),
	}
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}

	// Unsubscribing twice is harmless.
	b.Unsubscribe(id)
}

func TestBroadcaster_Publish(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	b.Publish(raised("crisis-1"))

	select {
	case got := <-ch:
		if got.Crisis.ID != "crisis-1" {
			t.Errorf("expected crisis-1, got %s", got.Crisis.ID)
		}
		if got.Kind != models.CrisisRaised {
			t.Errorf("expected kind raised, got %s", got.Kind)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestBroadcaster_ConcurrentSubscribePublish(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch := b.Subscribe()
			done := make(chan struct{})
			go func() {
				defer close(done)
				for range ch {
				}
			}()
			time.Sleep(5 * time.Millisecond)
			b.Unsubscribe(id)
			<-done
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Publish(raised(fmt.Sprintf("crisis-%d", n)))
		}(i)
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()

	var channels []<-chan models.CrisisEvent
	for i := 0; i < 5; i++ {
		_, ch := b.Subscribe()
		channels = append(channels, ch)
	}

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", b.SubscriberCount())
	}

	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("channel %d should be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}

	// Late subscribers get a closed channel instead of hanging forever.
	_, late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("expected subscription after Close to be closed")
	}
	b.Publish(raised("after-close"))
}

func TestBroadcaster_SlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	for i := 0; i < subscriberBuffer+1; i++ {
		b.Publish(raised(fmt.Sprintf("flood-%d", i)))
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		default:
		}
		break
	}

	if count != subscriberBuffer {
		t.Errorf("expected %d buffered events, got %d", subscriberBuffer, count)
	}
	if b.Dropped() != 1 {
		t.Errorf("expected 1 dropped event, got %d", b.Dropped())
	}
}
