package registry

import (
	"errors"
	"sync"
	"time"

	board "go-sketchy/internal/pkg/board/application/domain"
)

// ErrRoomNotFound is returned when joining a room that was never created.
var ErrRoomNotFound = errors.New("registry: room not found")

// ErrRoomFull is returned when a room is at capacity. It is surfaced only
// to the triggering connection, never broadcast.
var ErrRoomFull = errors.New("registry: room full")

// DefaultCapacity applies to rooms created without an explicit limit.
const DefaultCapacity = 16

// Room is a collaboration namespace with bounded membership.
type Room struct {
	ID        string
	Capacity  int
	CreatedAt time.Time

	// memberIDs preserves insertion order; the set view lives in members.
	memberIDs []string
	members   map[string]struct{}
}

// Registry maps connection identity to user records and rooms, and
// enforces per-room capacity. It is safe for concurrent use. Construct
// with New and inject it; there is no package-level instance.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*board.User // connectionID -> user
	rooms map[string]*Room       // roomID -> room
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		users: make(map[string]*board.User),
		rooms: make(map[string]*Room),
	}
}

// CreateRoom registers a room id. Creating an existing room is a no-op
// and returns false. capacity <= 0 falls back to DefaultCapacity.
func (r *Registry) CreateRoom(roomID string, capacity int) bool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; ok {
		return false
	}
	r.rooms[roomID] = &Room{
		ID:        roomID,
		Capacity:  capacity,
		CreatedAt: time.Now().UTC(),
		members:   make(map[string]struct{}),
	}
	return true
}

// RoomIDs lists the known rooms.
func (r *Registry) RoomIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}

// Join allocates a user record for the connection and registers it in the
// room. Fails with ErrRoomNotFound or ErrRoomFull; a failed join mutates
// nothing. The returned User is a copy.
func (r *Registry) Join(connectionID string, roomID string) (board.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return board.User{}, ErrRoomNotFound
	}
	if len(room.members) >= room.Capacity {
		return board.User{}, ErrRoomFull
	}

	user := &board.User{
		ConnectionID: connectionID,
		DisplayName:  board.GuestName(),
		Color:        board.RandomColor(),
		RoomID:       roomID,
		JoinedAt:     time.Now().UTC(),
		IsGuest:      true,
	}
	r.users[connectionID] = user
	room.members[connectionID] = struct{}{}
	room.memberIDs = append(room.memberIDs, connectionID)
	return *user, nil
}

// Leave removes the connection from the identity map and its room's
// membership. Removing an unknown connection is a no-op; the second
// return reports whether anything was removed. The returned copy lets the
// caller announce the departure without a second lookup.
func (r *Registry) Leave(connectionID string) (board.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[connectionID]
	if !ok {
		return board.User{}, false
	}
	delete(r.users, connectionID)
	if room, ok := r.rooms[user.RoomID]; ok {
		delete(room.members, connectionID)
		for i, id := range room.memberIDs {
			if id == connectionID {
				room.memberIDs = append(room.memberIDs[:i], room.memberIDs[i+1:]...)
				break
			}
		}
	}
	return *user, true
}

// UpdateCursor stores the connection's cursor position and returns the
// updated record so the caller can build a broadcast payload.
func (r *Registry) UpdateCursor(connectionID string, p board.Point) (board.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[connectionID]
	if !ok {
		return board.User{}, false
	}
	user.Cursor = p
	return *user, true
}

// Rename overwrites the guest display name and clears the guest flag.
func (r *Registry) Rename(connectionID string, name string) (board.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[connectionID]
	if !ok {
		return board.User{}, false
	}
	user.DisplayName = name
	user.IsGuest = false
	return *user, true
}

// User returns a copy of the connection's record.
func (r *Registry) User(connectionID string) (board.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[connectionID]
	if !ok {
		return board.User{}, false
	}
	return *user, true
}

// ListMembers returns the room's users in membership insertion order.
// The result is never nil, so it always serializes as a JSON array.
func (r *Registry) ListMembers(roomID string) []board.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return []board.User{}
	}
	out := make([]board.User, 0, len(room.memberIDs))
	for _, id := range room.memberIDs {
		if user, ok := r.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out
}

// MemberCount reports current room occupancy.
func (r *Registry) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return 0
	}
	return len(room.members)
}
