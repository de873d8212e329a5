// Package store holds the authoritative per-room drawing history: the
// action log, undo/redo stacks, in-progress strokes and a monotonic
// version counter. Each room is bound to one serializing actor, so all
// mutations of a room are totally ordered without locks on the state.
package store

import (
	"sync"

	board "go-sketchy/internal/pkg/board/application/domain"
)

// StrokeSeed carries the client-supplied parameters of a new stroke.
// StrokeID may be empty; the store then generates the canonical id.
type StrokeSeed struct {
	StrokeID  string
	Tool      string
	BrushType string
	Color     string
	Width     float64
	Start     board.Point
	LayerID   string
}

// Store owns all room states. Construct with New and inject it; there is
// no package-level instance. Rooms are created on first reference and
// live for the process lifetime.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*roomActor
}

// New constructs an empty Store.
func New() *Store {
	return &Store{rooms: make(map[string]*roomActor)}
}

// Close stops every room actor. The store must not be used afterwards.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.rooms {
		a.stop()
	}
	s.rooms = make(map[string]*roomActor)
}

func (s *Store) room(roomID string) *roomActor {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.rooms[roomID]
	if !ok {
		a = newRoomActor()
		s.rooms[roomID] = a
	}
	return a
}

// StartStroke begins an in-progress stroke for the author, committing it
// to the log immediately. Any prior unterminated stroke by the same
// author stops accumulating points (last start wins). Returns a copy of
// the created stroke, carrying the canonical id for relay.
func (s *Store) StartStroke(roomID string, authorID string, seed StrokeSeed) *board.Stroke {
	var out *board.Stroke
	s.room(roomID).do(func(st *roomState) {
		out = board.CloneAction(st.startStroke(authorID, seed)).(*board.Stroke)
	})
	return out
}

// AppendPoint extends the author's in-progress stroke in place. When the
// author has no in-progress stroke the point is dropped silently and
// nothing mutates: that is a normal race outcome, not an error.
func (s *Store) AppendPoint(roomID string, authorID string, p board.Point) (string, bool) {
	var (
		strokeID string
		ok       bool
	)
	s.room(roomID).do(func(st *roomState) {
		strokeID, ok = st.appendPoint(authorID, p)
	})
	return strokeID, ok
}

// EndStroke terminates the author's in-progress stroke. The stroke's
// content is already committed incrementally, so the log is untouched.
func (s *Store) EndStroke(roomID string, authorID string) (string, bool) {
	var (
		strokeID string
		ok       bool
	)
	s.room(roomID).do(func(st *roomState) {
		strokeID, ok = st.endStroke(authorID)
	})
	return strokeID, ok
}

// AppendAction commits a fully formed discrete action (shape, text,
// image, fill). Returns a copy of the committed record.
func (s *Store) AppendAction(roomID string, a board.Action) board.Action {
	var out board.Action
	s.room(roomID).do(func(st *roomState) {
		st.appendAction(a)
		out = board.CloneAction(a)
	})
	return out
}

// Clear appends a synthetic Clear entry authored by the system. The log
// is never erased; a clear is itself undoable history.
func (s *Store) Clear(roomID string) board.Action {
	entry := &board.Clear{Base: board.NewBase("", board.SystemAuthorID, "")}
	var out board.Action
	s.room(roomID).do(func(st *roomState) {
		st.appendAction(entry)
		out = board.CloneAction(entry)
	})
	return out
}

// Undo pops the most recent action regardless of author (the canvas has
// one linear history) and parks it on the redo stack. Returns false on an
// empty log, with no version bump.
func (s *Store) Undo(roomID string) (board.Action, bool) {
	var (
		out board.Action
		ok  bool
	)
	s.room(roomID).do(func(st *roomState) {
		var a board.Action
		if a, ok = st.undo(); ok {
			out = board.CloneAction(a)
		}
	})
	return out, ok
}

// Redo restores the most recently undone action to the tail of the log.
// Returns the full action: peers may have already discarded its content.
func (s *Store) Redo(roomID string) (board.Action, bool) {
	var (
		out board.Action
		ok  bool
	)
	s.room(roomID).do(func(st *roomState) {
		var a board.Action
		if a, ok = st.redo(); ok {
			out = board.CloneAction(a)
		}
	})
	return out, ok
}

// PruneInProgress drops the author's in-progress entry without ending it,
// leaving the committed points in the log. Called when the owning
// connection disconnects mid-stroke.
func (s *Store) PruneInProgress(roomID string, authorID string) bool {
	var ok bool
	s.room(roomID).do(func(st *roomState) {
		ok = st.prune(authorID)
	})
	return ok
}

// Snapshot returns a consistent deep copy of the room's state. No
// concurrent mutation interleaves with the copy.
func (s *Store) Snapshot(roomID string) board.RoomSnapshot {
	var snap board.RoomSnapshot
	s.room(roomID).do(func(st *roomState) {
		snap = st.snapshot()
	})
	return snap
}

// Replace installs a loaded snapshot wholesale, resetting in-progress
// strokes, and bumps the version so observers see a state transition.
func (s *Store) Replace(roomID string, snap board.RoomSnapshot) {
	s.room(roomID).do(func(st *roomState) {
		st.replace(snap)
	})
}

// Version reports the room's current version counter.
func (s *Store) Version(roomID string) uint64 {
	var v uint64
	s.room(roomID).do(func(st *roomState) {
		v = st.version
	})
	return v
}
