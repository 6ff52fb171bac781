package ws

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/probelab/thermwatch/internal/monitor"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestClient(remote string) *Client {
	return &Client{
		conn:   nil, // Not needed for hub tests
		remote: remote,
		send:   make(chan Message, 256),
		logger: testLogger(),
	}
}

func tickMessage(step int) Message {
	return Message{
		Type:      MessageTick,
		Timestamp: time.Now(),
		Data:      TickData{Tick: &monitor.TickEvent{Step: step}},
	}
}

// TestNewHub verifies that NewHub creates a hub with no clients.
func TestNewHub(t *testing.T) {
	hub := NewHub(testLogger())

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.clients == nil {
		t.Error("hub.clients map is nil")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

// TestRegister verifies that Register adds a client and increments ClientCount.
func TestRegister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")

	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.mu.RLock()
	_, exists := hub.clients[client]
	hub.mu.RUnlock()

	if !exists {
		t.Error("client not found in hub.clients map")
	}
}

// TestUnregister verifies that Unregister removes a client and closes its send channel.
func TestUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")

	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	hub.mu.RLock()
	_, exists := hub.clients[client]
	hub.mu.RUnlock()

	if exists {
		t.Error("client still exists in hub.clients map after unregister")
	}

	// Verify channel is closed by attempting to receive.
	_, ok := <-client.send
	if ok {
		t.Error("client.send channel is not closed")
	}
}

// TestUnregisterNotRegistered verifies that Unregister on a client not in the hub does nothing.
func TestUnregisterNotRegistered(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")

	// Unregister without registering first should not panic.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Unregister() panicked: %v", r)
		}
	}()

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	// Channel should not be closed if client was never registered.
	select {
	case _, ok := <-client.send:
		if !ok {
			t.Error("channel closed for unregistered client")
		}
	default:
		// Channel is empty and not closed, as expected.
	}
}

// TestBroadcast verifies that Broadcast delivers a message to all registered clients.
func TestBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	client1 := newTestClient("10.0.0.1:40001")
	client2 := newTestClient("10.0.0.2:40002")
	client3 := newTestClient("10.0.0.3:40003")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	hub.Broadcast(tickMessage(7))

	// Verify all clients received the message.
	clients := []*Client{client1, client2, client3}
	for i, client := range clients {
		select {
		case received := <-client.send:
			if received.Type != MessageTick {
				t.Errorf("client %d received Type = %v, want %v", i+1, received.Type, MessageTick)
			}
			if data, ok := received.Data.(TickData); !ok || data.Tick.Step != 7 {
				t.Errorf("client %d received unexpected payload %+v", i+1, received.Data)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive message", i+1)
		}
	}
}

// TestBroadcastEmptyHub verifies that Broadcast to empty hub does nothing.
func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(testLogger())

	// Should not panic.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Broadcast() to empty hub panicked: %v", r)
		}
	}()

	hub.Broadcast(Message{
		Type:      MessageCompleted,
		Timestamp: time.Now(),
		Data:      CompletedData{Ticks: 150, Anomalies: 23},
	})
}

// TestBroadcastDropsMessagesWhenBufferFull verifies that Broadcast drops messages when client send buffer is full.
func TestBroadcastDropsMessagesWhenBufferFull(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")

	hub.Register(client)

	// Fill the client's send buffer (capacity is 256).
	for i := 0; i < 256; i++ {
		client.send <- tickMessage(i)
	}

	// Verify buffer is full.
	if len(client.send) != 256 {
		t.Fatalf("client.send buffer length = %d, want 256", len(client.send))
	}

	// Broadcast one more message -- should be dropped since buffer is full.
	hub.Broadcast(tickMessage(999))

	// The buffer should still be at capacity, and the new message should not be there.
	if len(client.send) != 256 {
		t.Errorf("client.send buffer length = %d, want 256 (message should have been dropped)", len(client.send))
	}

	// Drain one message and verify it's not the dropped message.
	received := <-client.send
	if data, ok := received.Data.(TickData); ok && data.Tick.Step == 999 {
		t.Error("dropped message was unexpectedly received")
	}
}

// TestConcurrentRegisterUnregisterBroadcast verifies that concurrent operations are safe.
func TestConcurrentRegisterUnregisterBroadcast(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	numClients := 50
	numBroadcasts := 100

	// Concurrently register and unregister clients.
	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			client := newTestClient(fmt.Sprintf("10.0.0.%d:40000", id))
			hub.Register(client)

			// Drain messages to prevent buffer from filling.
			go func() {
				for range client.send {
					// Discard messages.
				}
			}()

			time.Sleep(10 * time.Millisecond)
			hub.Unregister(client)
		}(i)
	}

	// Concurrently broadcast messages.
	for i := 0; i < numBroadcasts; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			hub.Broadcast(tickMessage(id))
		}(i)
	}

	wg.Wait()

	// After all goroutines complete, hub should be stable.
	finalCount := hub.ClientCount()
	if finalCount < 0 {
		t.Errorf("ClientCount() = %d, should not be negative", finalCount)
	}
}

// TestConcurrentClientCount verifies that ClientCount is safe to call concurrently.
func TestConcurrentClientCount(t *testing.T) {
	hub := NewHub(testLogger())

	var wg sync.WaitGroup
	var countSum int64

	// Register some clients.
	for i := 0; i < 10; i++ {
		hub.Register(newTestClient(fmt.Sprintf("10.0.0.%d:40000", i)))
	}

	// Concurrently call ClientCount.
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count := hub.ClientCount()
			atomic.AddInt64(&countSum, int64(count))
		}()
	}

	wg.Wait()

	// All calls should have returned the same count (10).
	expectedSum := int64(10 * 100)
	if countSum != expectedSum {
		t.Errorf("sum of all ClientCount() calls = %d, want %d", countSum, expectedSum)
	}
}

// TestBroadcastMessageTypes verifies that each message type can be broadcast.
func TestBroadcastMessageTypes(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")
	hub.Register(client)

	tests := []struct {
		name string
		msg  Message
	}{
		{
			name: "tick",
			msg:  tickMessage(1),
		},
		{
			name: "alert triggered",
			msg: Message{
				Type:      MessageAlertTriggered,
				Timestamp: time.Now(),
				Data:      AlertData{Alert: &monitor.Alert{ID: "alert-1", Severity: monitor.SeverityWarning}},
			},
		},
		{
			name: "alert resolved",
			msg: Message{
				Type:      MessageAlertResolved,
				Timestamp: time.Now(),
				Data:      AlertData{Alert: &monitor.Alert{ID: "alert-1"}},
			},
		},
		{
			name: "completed",
			msg: Message{
				Type:      MessageCompleted,
				Timestamp: time.Now(),
				Data:      CompletedData{Ticks: 150, Anomalies: 23},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.Broadcast(tt.msg)

			select {
			case received := <-client.send:
				if received.Type != tt.msg.Type {
					t.Errorf("received Type = %v, want %v", received.Type, tt.msg.Type)
				}
			case <-time.After(100 * time.Millisecond):
				t.Error("client did not receive message")
			}
		})
	}
}

// TestClientChannelCapacity verifies that client send channel has correct buffer size.
func TestClientChannelCapacity(t *testing.T) {
	client := newTestClient("10.0.0.1:40001")

	if cap(client.send) != 256 {
		t.Errorf("client.send channel capacity = %d, want 256", cap(client.send))
	}
}

// TestUnregisterTwice verifies that unregistering the same client twice is safe.
func TestUnregisterTwice(t *testing.T) {
	hub := NewHub(testLogger())
	client := newTestClient("10.0.0.1:40001")

	hub.Register(client)
	hub.Unregister(client)

	// Second unregister should not panic or cause issues.
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("second Unregister() panicked: %v", r)
		}
	}()

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}
