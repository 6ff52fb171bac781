package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestBus_PublishDeliversToTopicHandlers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var got []string
	bus.Subscribe("monitor.tick", func(_ context.Context, e Event) {
		got = append(got, e.Topic)
	})
	bus.Subscribe("monitor.alert.triggered", func(_ context.Context, e Event) {
		t.Error("handler for unrelated topic invoked")
	})

	bus.Publish(context.Background(), Event{Topic: "monitor.tick", Source: "monitor", Timestamp: time.Now()})

	if len(got) != 1 || got[0] != "monitor.tick" {
		t.Errorf("delivered topics = %v, want [monitor.tick]", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())

	calls := 0
	unsub := bus.Subscribe("monitor.tick", func(_ context.Context, _ Event) {
		calls++
	})

	bus.Publish(context.Background(), Event{Topic: "monitor.tick"})
	unsub()
	bus.Publish(context.Background(), Event{Topic: "monitor.tick"})

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestBus_PublishAsync(t *testing.T) {
	bus := NewBus(zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		bus.Subscribe("monitor.completed", func(_ context.Context, _ Event) {
			wg.Done()
		})
	}

	bus.PublishAsync(context.Background(), Event{Topic: "monitor.completed"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handlers not invoked within 1s")
	}
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zap.NewNop())

	called := false
	bus.Subscribe("monitor.tick", func(_ context.Context, _ Event) {
		panic("boom")
	})
	bus.Subscribe("monitor.tick", func(_ context.Context, _ Event) {
		called = true
	})

	bus.Publish(context.Background(), Event{Topic: "monitor.tick"})

	if !called {
		t.Error("second handler not invoked after first panicked")
	}
}
