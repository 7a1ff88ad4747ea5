package realtime

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64 KiB; clients only send control frames
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Allow same-origin requests and explicit localhost development.
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		originHost := hostWithoutPort(origin)
		requestHost := hostWithoutPort(r.Host)
		return originHost == requestHost || isLoopback(originHost)
	},
}

// wsChannel wraps a websocket connection behind the Channel interface.
// gorilla permits a single concurrent writer, so sends and pings serialize
// on the mutex.
type wsChannel struct {
	mu     sync.Mutex
	socket *websocket.Conn
	once   sync.Once
}

func (c *wsChannel) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.socket.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.socket.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsChannel) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.socket.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsChannel) Close() error {
	var err error
	c.once.Do(func() {
		err = c.socket.Close()
	})
	return err
}

// Serve upgrades the HTTP connection to a WebSocket and registers it with the
// hub until the client disconnects. The call blocks for the lifetime of the
// connection.
func (h *Hub) Serve(userID string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	ch := &wsChannel{socket: conn}
	h.Connect(userID, ch)
	defer func() {
		h.Disconnect(userID, ch)
		_ = ch.Close()
	}()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := ch.ping(); err != nil {
					_ = ch.Close()
					return
				}
			}
		}
	}()
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients do not speak back on this socket beyond pong frames; the
		// read loop exists to detect disconnects and service the pong handler.
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.log.Debug("websocket closed unexpectedly", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}
