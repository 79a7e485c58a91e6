package game

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/scythe504/spywords-backend/internal"
)

const sendBufferSize = 64

// client is one live websocket connection. send is never closed; done is
// closed exactly once when the connection goes away.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter

	// guarded by Hub.mu
	rooms map[string]struct{}
}

func newClient(id string, conn *websocket.Conn, limiter *rate.Limiter) *client {
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		limiter: limiter,
		rooms:   make(map[string]struct{}),
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// enqueue never blocks. A client whose buffer is full is disconnected
// rather than allowed to stall a room.
func (c *client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		log.Warn().Str("player", c.id).Msg("[Hub] send buffer full, closing slow connection")
		c.close()
		return false
	}
}

// =============================================================================
// HUB
// =============================================================================

// Hub tracks connections and the rooms they listen to. It implements
// Transport; every emit only queues frames, so it is safe to call while a
// room lock is held.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	channels map[string]map[string]*client

	// one per connection handler still running its disconnect path
	active sync.WaitGroup
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*client),
		channels: make(map[string]map[string]*client),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	total := len(h.clients)
	h.mu.Unlock()

	log.Debug().Str("player", c.id).Msgf("[Hub] connection registered (connections=%d)", total)
}

// unregister forgets the client and returns the rooms it had joined.
func (h *Hub) unregister(c *client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms := make([]string, 0, len(c.rooms))
	for roomId := range c.rooms {
		rooms = append(rooms, roomId)
		h.removeMember(roomId, c.id)
	}
	clear(c.rooms)
	delete(h.clients, c.id)
	c.close()
	return rooms
}

func (h *Hub) JoinChannel(connId, roomId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connId]
	if !ok {
		return
	}
	members, ok := h.channels[roomId]
	if !ok {
		members = make(map[string]*client)
		h.channels[roomId] = members
	}
	members[connId] = c
	c.rooms[roomId] = struct{}{}
}

func (h *Hub) LeaveChannel(connId, roomId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[connId]; ok {
		delete(c.rooms, roomId)
	}
	h.removeMember(roomId, connId)
}

// caller holds h.mu
func (h *Hub) removeMember(roomId, connId string) {
	members, ok := h.channels[roomId]
	if !ok {
		return
	}
	delete(members, connId)
	if len(members) == 0 {
		delete(h.channels, roomId)
	}
}

func (h *Hub) EmitToRoom(roomId, event string, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("room", roomId).Str("event", event).Msg("[EmitToRoom] failed to encode frame")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	members := h.channels[roomId]
	for _, c := range members {
		if c.enqueue(frame) {
			sent++
		}
	}
	log.Debug().Str("room", roomId).Str("event", event).Msgf("[EmitToRoom] queued for %d/%d connections", sent, len(members))
}

func (h *Hub) EmitToCaller(connId, event string, data any) {
	frame, err := encodeFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("player", connId).Str("event", event).Msg("[EmitToCaller] failed to encode frame")
		return
	}

	h.mu.RLock()
	c, ok := h.clients[connId]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.enqueue(frame)
}

// Members lists the connection ids listening to roomId.
func (h *Hub) Members(roomId string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.channels[roomId]))
	for id := range h.channels[roomId] {
		ids = append(ids, id)
	}
	return ids
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client without waiting for them to leave.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.close()
	}
}

// Shutdown closes every client and waits until each one has left its rooms,
// or until ctx expires.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.CloseAll()

	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func encodeFrame(event string, data any) ([]byte, error) {
	return json.Marshal(internal.Message[any]{Type: event, Data: data})
}
