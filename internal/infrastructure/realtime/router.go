package realtime

import (
	"sync"
)

// Router tracks live websocket connections and their room membership, and
// fans payloads out to a room. A connection belongs to at most one room at
// a time. Delivery is fire and forget: a payload handed to a slow or dead
// connection is dropped with that connection, never retried.
type Router struct {
	mu       sync.RWMutex
	conns    map[string]*Connection            // connectionID -> connection
	rooms    map[string]map[string]*Connection // roomID -> connectionID -> connection
	connRoom map[string]string                 // connectionID -> roomID
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		conns:    make(map[string]*Connection),
		rooms:    make(map[string]map[string]*Connection),
		connRoom: make(map[string]string),
	}
}

// Attach registers a connection and starts its write loop.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.conns[conn.ID] = conn
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection, including its room membership if any.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join places the connection in the room, leaving any previous room
// first. Returns false when the connection was never attached.
func (r *Router) Join(roomID string, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[connID]
	if !ok {
		return false
	}
	if prev, ok := r.connRoom[connID]; ok {
		r.leaveLocked(prev, connID)
	}
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[roomID] = room
	}
	room[connID] = conn
	r.connRoom[connID] = roomID
	return true
}

// Leave removes the connection from the room.
func (r *Router) Leave(roomID string, connID string) {
	r.mu.Lock()
	r.leaveLocked(roomID, connID)
	r.mu.Unlock()
}

// Broadcast writes payload to every member of the room. excludeConnID,
// when non-empty, skips that connection (the usual "peers only" relay).
// Returns the number of connections the payload was queued for.
func (r *Router) Broadcast(roomID string, payload []byte, excludeConnID string) int {
	r.mu.RLock()
	room := r.rooms[roomID]
	if len(room) == 0 {
		r.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range room {
		if excludeConnID != "" && conn.ID == excludeConnID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	r.mu.RUnlock()
	return delivered
}

// Notify delivers payload to a single connection.
func (r *Router) Notify(connID string, payload []byte) bool {
	r.mu.RLock()
	conn := r.conns[connID]
	r.mu.RUnlock()
	if conn == nil {
		return false
	}
	return conn.Send(payload) == nil
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	conns := make([]*Connection, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[string]*Connection)
	r.rooms = make(map[string]map[string]*Connection)
	r.connRoom = make(map[string]string)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(connID string) {
	if _, ok := r.conns[connID]; !ok {
		return
	}
	delete(r.conns, connID)
	if roomID, ok := r.connRoom[connID]; ok {
		r.leaveLocked(roomID, connID)
	}
}

func (r *Router) leaveLocked(roomID string, connID string) {
	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	if current, ok := r.connRoom[connID]; ok && current == roomID {
		delete(r.connRoom, connID)
	}
}
