package usecase

import (
	"context"
	"fmt"

	board "go-sketchy/internal/pkg/board/application/domain"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"
)

// SnapshotSource yields a consistent point-in-time copy of a room's state.
// Satisfied by the drawing state store.
type SnapshotSource interface {
	Snapshot(roomID string) board.RoomSnapshot
}

// SaveCanvasInput names the room to capture and the label to save under.
type SaveCanvasInput struct {
	RoomID string
	Name   string
}

// SaveCanvasUseCase captures a room snapshot and persists it.
// One class per use case (own file).
type SaveCanvasUseCase struct {
	Repo  repository.CanvasRepository
	State SnapshotSource
}

func NewSaveCanvasUseCase(repo repository.CanvasRepository, state SnapshotSource) *SaveCanvasUseCase {
	return &SaveCanvasUseCase{Repo: repo, State: state}
}

// Execute snapshots the room and writes the canvas record. In-progress
// strokes are stripped before persisting; their committed points stay in
// the action log.
func (uc *SaveCanvasUseCase) Execute(ctx context.Context, in SaveCanvasInput) (*board.SavedCanvas, error) {
	if in.RoomID == "" {
		return nil, fmt.Errorf("roomId is required")
	}
	if in.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	snap := uc.State.Snapshot(in.RoomID)
	snap.InProgress = nil

	canvas := board.SavedCanvas{
		Name:   in.Name,
		RoomID: in.RoomID,
		State:  snap,
	}
	id, err := uc.Repo.SaveCanvas(ctx, canvas)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	canvas.ID = id
	return &canvas, nil
}
