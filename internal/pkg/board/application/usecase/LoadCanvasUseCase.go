package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cache "go-sketchy/internal/infrastructure/cache/port"
	board "go-sketchy/internal/pkg/board/application/domain"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"
)

const canvasCacheTTL = 10 * time.Minute

// StateReplacer installs a snapshot into a room wholesale.
// Satisfied by the drawing state store.
type StateReplacer interface {
	Replace(roomID string, snap board.RoomSnapshot)
}

// ErrCanvasNotFound re-exports the repository sentinel for callers that
// only import the use case layer.
var ErrCanvasNotFound = repository.ErrCanvasNotFound

// LoadCanvasInput selects a saved canvas and, optionally, a target room
// other than the one it was saved from.
type LoadCanvasInput struct {
	CanvasID string
	RoomID   string
}

// LoadCanvasUseCase fetches a saved canvas (read-through cache) and
// replaces the target room's state with it.
type LoadCanvasUseCase struct {
	Repo  repository.CanvasRepository
	Cache cache.Cache // optional; nil disables caching
	State StateReplacer
}

func NewLoadCanvasUseCase(repo repository.CanvasRepository, c cache.Cache, state StateReplacer) *LoadCanvasUseCase {
	return &LoadCanvasUseCase{Repo: repo, Cache: c, State: state}
}

// Execute loads the canvas and installs it. The store resets in-progress
// strokes as part of the replacement.
func (uc *LoadCanvasUseCase) Execute(ctx context.Context, in LoadCanvasInput) (*board.SavedCanvas, error) {
	if in.CanvasID == "" {
		return nil, fmt.Errorf("canvasId is required")
	}

	canvas, err := uc.fetch(ctx, in.CanvasID)
	if err != nil {
		return nil, err
	}

	roomID := in.RoomID
	if roomID == "" {
		roomID = canvas.RoomID
	}
	uc.State.Replace(roomID, canvas.State)
	canvas.RoomID = roomID
	return canvas, nil
}

func (uc *LoadCanvasUseCase) fetch(ctx context.Context, id string) (*board.SavedCanvas, error) {
	key := "canvas:" + id
	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var canvas board.SavedCanvas
			if err := json.Unmarshal([]byte(raw), &canvas); err == nil {
				return &canvas, nil
			}
			// A corrupt cache entry falls through to the repository.
			_, _ = uc.Cache.Del(ctx, key)
		}
	}

	canvas, err := uc.Repo.GetCanvas(ctx, id)
	if errors.Is(err, repository.ErrCanvasNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(canvas); err == nil {
			_ = uc.Cache.Set(ctx, key, string(raw), canvasCacheTTL)
		}
	}
	return &canvas, nil
}
