package repository

import (
	"context"
	"errors"

	board "go-sketchy/internal/pkg/board/application/domain"
)

// ErrCanvasNotFound signals a lookup for an id that was never saved.
var ErrCanvasNotFound = errors.New("canvas not found")

// CanvasRepository defines persistence operations for saved canvases.
// Implementations own serialization of the room state payload.
type CanvasRepository interface {
	SaveCanvas(ctx context.Context, c board.SavedCanvas) (string, error)
	GetCanvas(ctx context.Context, id string) (board.SavedCanvas, error)
	ListCanvases(ctx context.Context, limit int, offset int) ([]board.CanvasInfo, error)
	DeleteCanvas(ctx context.Context, id string) error
}
