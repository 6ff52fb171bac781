package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/probelab/thermwatch/internal/event"
	"github.com/probelab/thermwatch/internal/monitor"
)

// Handler provides the WebSocket endpoint for real-time monitor updates.
type Handler struct {
	hub     *Hub
	session *monitor.Session
	bus     *event.Bus
	logger  *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to monitor events.
// The session is used to replay the latest tick to late-joining clients.
func NewHandler(session *monitor.Session, bus *event.Bus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:     NewHub(logger),
		session: session,
		bus:     bus,
		logger:  logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/monitor", h.handleMonitorStream)
}

// Hub returns the underlying hub, mainly for connection-count reporting.
func (h *Handler) Hub() *Hub {
	return h.hub
}

// handleMonitorStream upgrades the connection to WebSocket and streams tick,
// alert, and completion events.
func (h *Handler) handleMonitorStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The dashboard is served from the same origin; local tooling may
		// connect from elsewhere.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan Message, 256),
		logger: h.logger,
	}

	h.hub.Register(client)

	// Bring the client up to date before live ticks arrive.
	if h.session != nil {
		if last := h.session.LastTick(); last != nil {
			client.send <- Message{
				Type:      MessageTick,
				Timestamp: last.Reading.Timestamp,
				Data:      TickData{Tick: last, Styles: styleIndex()},
			}
		}
	}

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	// Client disconnected -- stop write pump and unregister.
	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards monitor bus events to all connected clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(monitor.TopicTick, func(_ context.Context, ev event.Event) {
		tick, ok := ev.Payload.(*monitor.TickEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageTick,
			Timestamp: ev.Timestamp,
			Data:      TickData{Tick: tick, Styles: styleIndex()},
		})
	})

	h.bus.Subscribe(monitor.TopicAlertTriggered, func(_ context.Context, ev event.Event) {
		alert, ok := ev.Payload.(*monitor.Alert)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAlertTriggered,
			Timestamp: ev.Timestamp,
			Data:      AlertData{Alert: alert},
		})
	})

	h.bus.Subscribe(monitor.TopicAlertResolved, func(_ context.Context, ev event.Event) {
		alert, ok := ev.Payload.(*monitor.Alert)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAlertResolved,
			Timestamp: ev.Timestamp,
			Data:      AlertData{Alert: alert},
		})
	})

	h.bus.Subscribe(monitor.TopicCompleted, func(_ context.Context, ev event.Event) {
		completed, ok := ev.Payload.(monitor.CompletedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageCompleted,
			Timestamp: ev.Timestamp,
			Data:      CompletedData{Ticks: completed.Ticks, Anomalies: completed.Anomalies},
		})
	})

	h.logger.Info("subscribed to monitor events for WebSocket broadcasting")
}
