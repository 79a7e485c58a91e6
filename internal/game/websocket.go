package game

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/spywords-backend/internal"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// SocketOptions configures the /ws endpoint.
type SocketOptions struct {
	// CheckOrigin decides whether a browser origin may connect. Nil allows all.
	CheckOrigin func(origin string) bool
	EventRate   float64
	EventBurst  int
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

// HandleWebSocket upgrades the request and serves the connection until it
// closes. Every connection gets a fresh id; leaving happens on disconnect.
func (h *Hub) HandleWebSocket(d *Dispatcher, opts SocketOptions) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if opts.CheckOrigin == nil || origin == "" {
				return true
			}
			return opts.CheckOrigin(origin)
		},
	}
	limit := rate.Inf
	if opts.EventRate > 0 {
		limit = rate.Limit(opts.EventRate)
	}
	burst := max(opts.EventBurst, 1)

	return func(w http.ResponseWriter, r *http.Request) {
		h.active.Add(1)
		defer h.active.Done()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] upgrade failed")
			return
		}

		c := newClient(uuid.NewString(), conn, rate.NewLimiter(limit, burst))
		h.register(c)
		c.enqueue(mustFrame(internal.EventConnected, internal.ConnectedData{Id: c.id}))

		log.Info().Str("player", c.id).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] connection opened")

		go c.writePump()
		h.readPump(c, d, r)
	}
}

// readPump feeds inbound frames to the dispatcher in arrival order. Once the
// socket fails the client is unregistered and its rooms are left.
func (h *Hub) readPump(c *client, d *Dispatcher, r *http.Request) {
	defer func() {
		rooms := h.unregister(c)
		d.Disconnect(c.id, rooms)
		log.Info().Str("player", c.id).Msg("[HandleWebSocket] connection closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := r.Context()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("player", c.id).Msg("[readPump] unexpected close")
			}
			return
		}

		if !c.limiter.Allow() {
			log.Debug().Str("player", c.id).Msg("[readPump] rate limited, dropping frame")
			continue
		}

		var msg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("player", c.id).Msg("[readPump] failed to parse frame")
			continue
		}
		d.Dispatch(ctx, c.id, msg)
	}
}

// writePump owns every write to the socket, which keeps frames to one
// connection in the order they were queued.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug().Err(err).Str("player", c.id).Msg("[writePump] write failed")
				c.close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func mustFrame(event string, data any) []byte {
	frame, err := encodeFrame(event, data)
	if err != nil {
		panic(err)
	}
	return frame
}
