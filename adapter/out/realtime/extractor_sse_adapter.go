// Package realtime provides the SSE push adapter feeding the extension.
package realtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"extractor_server/core/domain"
	"extractor_server/core/port/out"
)

// SSEAdapter implements out.RealtimePort and out.NotifierPort using
// Server-Sent Events. Every connected client receives every event; the
// extension's sidebar mirrors one shared review workflow.
type SSEAdapter struct {
	clients map[chan *domain.RealtimeEvent]struct{}
	mu      sync.RWMutex
	log     zerolog.Logger

	// Metrics
	messagesSent    int64
	messagesDropped int64
	seqCounter      int64
}

// NewSSEAdapter creates a new SSE adapter.
func NewSSEAdapter(log zerolog.Logger) *SSEAdapter {
	return &SSEAdapter{
		clients: make(map[chan *domain.RealtimeEvent]struct{}),
		log:     log.With().Str("component", "sse_adapter").Logger(),
	}
}

// Subscribe creates a new subscription channel.
func (a *SSEAdapter) Subscribe() <-chan *domain.RealtimeEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan *domain.RealtimeEvent, 256) // Buffer for backpressure
	a.clients[ch] = struct{}{}

	a.log.Debug().
		Int("total_connections", len(a.clients)).
		Msg("client subscribed")

	return ch
}

// Unsubscribe removes a subscription channel.
func (a *SSEAdapter) Unsubscribe(ch <-chan *domain.RealtimeEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for c := range a.clients {
		if c == ch {
			delete(a.clients, c)
			close(c)
			break
		}
	}

	a.log.Debug().Msg("client unsubscribed")
}

// Push delivers an event to every connected client. A full client buffer
// drops the event for that client rather than blocking the workflow.
func (a *SSEAdapter) Push(ctx context.Context, event *domain.RealtimeEvent) error {
	event.Seq = atomic.AddInt64(&a.seqCounter, 1)

	a.mu.RLock()
	chList := make([]chan *domain.RealtimeEvent, 0, len(a.clients))
	for ch := range a.clients {
		chList = append(chList, ch)
	}
	a.mu.RUnlock()

	for _, ch := range chList {
		select {
		case ch <- event:
			atomic.AddInt64(&a.messagesSent, 1)
		default:
			atomic.AddInt64(&a.messagesDropped, 1)
			a.log.Warn().
				Str("event_type", string(event.Type)).
				Int64("seq", event.Seq).
				Msg("dropped event due to full buffer")
		}
	}

	return nil
}

// ShowNotification pushes a fire-and-forget toast.
func (a *SSEAdapter) ShowNotification(ctx context.Context, level domain.NotificationLevel, message string) {
	event := &domain.RealtimeEvent{
		Type:      domain.EventNotification,
		Data:      &domain.Notification{Level: level, Message: message},
		Timestamp: time.Now(),
	}
	if err := a.Push(ctx, event); err != nil {
		a.log.Warn().Err(err).Msg("failed to push notification")
	}
}

// ConnectedCount returns the number of connected clients.
func (a *SSEAdapter) ConnectedCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// GetMetrics returns adapter metrics.
func (a *SSEAdapter) GetMetrics() SSEMetrics {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return SSEMetrics{
		Connections:     len(a.clients),
		MessagesSent:    atomic.LoadInt64(&a.messagesSent),
		MessagesDropped: atomic.LoadInt64(&a.messagesDropped),
	}
}

// SSEMetrics holds SSE adapter metrics.
type SSEMetrics struct {
	Connections     int   `json:"connections"`
	MessagesSent    int64 `json:"messages_sent"`
	MessagesDropped int64 `json:"messages_dropped"`
}

// =============================================================================
// SSE Hub - HTTP handler glue
// =============================================================================

// SSEHub manages SSE connections for HTTP handlers.
type SSEHub struct {
	adapter *SSEAdapter
	log     zerolog.Logger

	heartbeatInterval time.Duration
}

// NewSSEHub creates a new SSE hub.
func NewSSEHub(adapter *SSEAdapter, log zerolog.Logger) *SSEHub {
	return &SSEHub{
		adapter:           adapter,
		log:               log.With().Str("component", "sse_hub").Logger(),
		heartbeatInterval: 30 * time.Second,
	}
}

// CreateClient creates a new SSE client.
func (h *SSEHub) CreateClient() *SSEClient {
	return &SSEClient{
		Events: h.adapter.Subscribe(),
		Done:   make(chan struct{}),
		hub:    h,
	}
}

// RemoveClient removes an SSE client.
func (h *SSEHub) RemoveClient(client *SSEClient) {
	h.adapter.Unsubscribe(client.Events)
}

// SSEClient represents an SSE client connection.
type SSEClient struct {
	Events <-chan *domain.RealtimeEvent
	Done   chan struct{}
	hub    *SSEHub
}

// Close closes the client connection.
func (c *SSEClient) Close() {
	close(c.Done)
	c.hub.RemoveClient(c)
}

// HeartbeatInterval returns the heartbeat interval.
func (c *SSEClient) HeartbeatInterval() time.Duration {
	return c.hub.heartbeatInterval
}

// SerializeEvent converts a RealtimeEvent to SSE format.
func SerializeEvent(event *domain.RealtimeEvent) ([]byte, error) {
	payload := map[string]interface{}{
		"type":      event.Type,
		"seq":       event.Seq,
		"data":      event.Data,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	}
	return json.Marshal(payload)
}

// =============================================================================
// Interface Compliance
// =============================================================================

var (
	_ out.RealtimePort = (*SSEAdapter)(nil)
	_ out.NotifierPort = (*SSEAdapter)(nil)
)
