package store

import (
	board "go-sketchy/internal/pkg/board/application/domain"
)

// roomState is the authoritative drawing state of one room. It is owned
// by exactly one actor goroutine and never touched from outside it.
type roomState struct {
	actions    []board.Action
	redoStack  []board.Action
	inProgress map[string]*board.Stroke // authorID -> unterminated stroke
	version    uint64
}

func newRoomState() *roomState {
	return &roomState{inProgress: make(map[string]*board.Stroke)}
}

func (st *roomState) startStroke(authorID string, seed StrokeSeed) *board.Stroke {
	stroke := &board.Stroke{
		Base:      board.NewBase(seed.StrokeID, authorID, seed.LayerID),
		Tool:      seed.Tool,
		BrushType: seed.BrushType,
		Color:     seed.Color,
		Width:     seed.Width,
		Points:    []board.Point{seed.Start},
	}
	// Last start wins: a prior unterminated stroke was already committed
	// to the log when it started, so only its continuation is abandoned.
	st.inProgress[authorID] = stroke
	st.actions = append(st.actions, stroke)
	st.redoStack = nil
	st.version++
	return stroke
}

func (st *roomState) appendPoint(authorID string, p board.Point) (string, bool) {
	stroke, ok := st.inProgress[authorID]
	if !ok {
		// Normal race outcome (duplicate delivery, point after end);
		// dropped without touching state.
		return "", false
	}
	stroke.Points = append(stroke.Points, p)
	st.version++
	return stroke.ID, true
}

func (st *roomState) endStroke(authorID string) (string, bool) {
	stroke, ok := st.inProgress[authorID]
	delete(st.inProgress, authorID)
	st.version++
	if !ok {
		return "", false
	}
	return stroke.ID, true
}

func (st *roomState) appendAction(a board.Action) {
	st.actions = append(st.actions, a)
	st.redoStack = nil
	st.version++
}

func (st *roomState) undo() (board.Action, bool) {
	n := len(st.actions)
	if n == 0 {
		return nil, false
	}
	a := st.actions[n-1]
	st.actions = st.actions[:n-1]
	st.redoStack = append(st.redoStack, a)
	st.version++
	return a, true
}

func (st *roomState) redo() (board.Action, bool) {
	n := len(st.redoStack)
	if n == 0 {
		return nil, false
	}
	a := st.redoStack[n-1]
	st.redoStack = st.redoStack[:n-1]
	st.actions = append(st.actions, a)
	st.version++
	return a, true
}

func (st *roomState) prune(authorID string) bool {
	if _, ok := st.inProgress[authorID]; !ok {
		return false
	}
	delete(st.inProgress, authorID)
	return true
}

func (st *roomState) snapshot() board.RoomSnapshot {
	snap := board.RoomSnapshot{
		Version:   st.version,
		Actions:   make([]board.Action, 0, len(st.actions)),
		RedoStack: make([]board.Action, 0, len(st.redoStack)),
	}
	for _, a := range st.actions {
		snap.Actions = append(snap.Actions, board.CloneAction(a))
	}
	for _, a := range st.redoStack {
		snap.RedoStack = append(snap.RedoStack, board.CloneAction(a))
	}
	if len(st.inProgress) > 0 {
		snap.InProgress = make(map[string]*board.Stroke, len(st.inProgress))
		for author, stroke := range st.inProgress {
			snap.InProgress[author] = board.CloneAction(stroke).(*board.Stroke)
		}
	}
	return snap
}

func (st *roomState) replace(snap board.RoomSnapshot) {
	st.actions = make([]board.Action, 0, len(snap.Actions))
	for _, a := range snap.Actions {
		st.actions = append(st.actions, board.CloneAction(a))
	}
	st.redoStack = make([]board.Action, 0, len(snap.RedoStack))
	for _, a := range snap.RedoStack {
		st.redoStack = append(st.redoStack, board.CloneAction(a))
	}
	// In-progress strokes are never carried across a wholesale load.
	st.inProgress = make(map[string]*board.Stroke)
	st.version++
}

// roomActor serializes all access to one roomState through a job channel,
// so same-room operations are totally ordered while rooms never block
// each other.
type roomActor struct {
	jobs chan func(*roomState)
}

func newRoomActor() *roomActor {
	a := &roomActor{jobs: make(chan func(*roomState), 64)}
	go a.run()
	return a
}

func (a *roomActor) run() {
	st := newRoomState()
	for fn := range a.jobs {
		fn(st)
	}
}

// do posts fn to the room's queue and waits for it to complete.
func (a *roomActor) do(fn func(*roomState)) {
	done := make(chan struct{})
	a.jobs <- func(st *roomState) {
		defer close(done)
		fn(st)
	}
	<-done
}

func (a *roomActor) stop() {
	close(a.jobs)
}
