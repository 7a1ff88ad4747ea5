package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pulsefeed/backend/pkg/logger"
	"github.com/pulsefeed/backend/pkg/metrics"
)

const defaultSendTimeout = 5 * time.Second

// Channel is the transport for one live client connection. Send must return
// once the payload is written or the context expires; implementations are
// expected to be safe for concurrent use by the hub's fan-out.
type Channel interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// Hub tracks the live connection topology and fans notification payloads out
// to every open connection of a receiver.
//
// The mutex guards only structural changes to the topology. Sends happen
// outside the lock, concurrently, so one slow client cannot stall either the
// hub or its sibling connections.
type Hub struct {
	mu          sync.Mutex
	connections map[string]map[Channel]struct{}

	sendTimeout time.Duration
	log         *zap.Logger
}

// Option customises hub construction.
type Option func(*Hub)

// WithSendTimeout bounds how long a single channel send may take before the
// channel is treated as dead.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.sendTimeout = d
		}
	}
}

// NewHub constructs a connection hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		connections: make(map[string]map[Channel]struct{}),
		sendTimeout: defaultSendTimeout,
		log:         logger.WithModule("realtime"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connect registers a channel under the supplied user.
func (h *Hub) Connect(userID string, ch Channel) {
	if userID == "" || ch == nil {
		return
	}

	h.mu.Lock()
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[Channel]struct{})
	}
	h.connections[userID][ch] = struct{}{}
	total := len(h.connections[userID])
	h.mu.Unlock()

	metrics.ActiveConnections.Inc()
	h.log.Debug("channel connected",
		zap.String("user_id", userID),
		zap.Int("user_connections", total),
	)
}

// Disconnect removes a channel; the user entry is dropped entirely when its
// last channel goes away so the topology never accumulates empty sets.
func (h *Hub) Disconnect(userID string, ch Channel) {
	h.mu.Lock()
	channels, ok := h.connections[userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := channels[ch]; !present {
		h.mu.Unlock()
		return
	}
	delete(channels, ch)
	if len(channels) == 0 {
		delete(h.connections, userID)
	}
	h.mu.Unlock()

	metrics.ActiveConnections.Dec()
	h.log.Debug("channel disconnected", zap.String("user_id", userID))
}

// SendPersonal fans the payload out to every channel registered for the user.
// Failed channels are evicted as a side effect; a failure on one channel
// never prevents delivery to its siblings. Returns the number of successful
// deliveries.
func (h *Hub) SendPersonal(ctx context.Context, userID string, payload []byte) int {
	h.mu.Lock()
	targets := h.snapshotLocked(userID)
	h.mu.Unlock()

	if len(targets) == 0 {
		return 0
	}

	delivered, failed := h.fanOut(ctx, targets, payload)
	h.evict(userID, failed)
	return delivered
}

// Broadcast fans the payload out to every connected user except those in the
// exclude set. The same per-channel isolation rule applies.
func (h *Hub) Broadcast(ctx context.Context, payload []byte, exclude map[string]struct{}) int {
	h.mu.Lock()
	targetsByUser := make(map[string][]Channel, len(h.connections))
	for userID := range h.connections {
		if _, skip := exclude[userID]; skip {
			continue
		}
		targetsByUser[userID] = h.snapshotLocked(userID)
	}
	h.mu.Unlock()

	delivered := 0
	for userID, targets := range targetsByUser {
		n, failed := h.fanOut(ctx, targets, payload)
		delivered += n
		h.evict(userID, failed)
	}
	return delivered
}

// ConnectedUsers returns the number of distinct users with at least one open channel.
func (h *Hub) ConnectedUsers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// TotalConnections returns the number of open channels across all users.
func (h *Hub) TotalConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, channels := range h.connections {
		total += len(channels)
	}
	return total
}

// IsConnected reports whether the user has at least one open channel.
func (h *Hub) IsConnected(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections[userID]) > 0
}

func (h *Hub) snapshotLocked(userID string) []Channel {
	channels := h.connections[userID]
	if len(channels) == 0 {
		return nil
	}
	targets := make([]Channel, 0, len(channels))
	for ch := range channels {
		targets = append(targets, ch)
	}
	return targets
}

// fanOut delivers the payload to each target concurrently with a bounded
// per-channel timeout. Failures are collected, not short-circuited.
func (h *Hub) fanOut(ctx context.Context, targets []Channel, payload []byte) (int, []Channel) {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		failed    []Channel
		delivered int
		errs      error
	)

	for _, target := range targets {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
			defer cancel()

			err := ch.Send(sendCtx, payload)

			mu.Lock()
			if err != nil {
				failed = append(failed, ch)
				errs = multierr.Append(errs, err)
			} else {
				delivered++
			}
			mu.Unlock()
		}(target)
	}
	wg.Wait()

	metrics.RealtimeDeliveries.WithLabelValues("ok").Add(float64(delivered))
	if len(failed) > 0 {
		metrics.RealtimeDeliveries.WithLabelValues("failed").Add(float64(len(failed)))
		h.log.Warn("evicting dead channels after failed delivery",
			zap.Int("failed", len(failed)),
			zap.Error(errs),
		)
	}
	return delivered, failed
}

func (h *Hub) evict(userID string, failed []Channel) {
	for _, ch := range failed {
		h.Disconnect(userID, ch)
		_ = ch.Close()
	}
}
