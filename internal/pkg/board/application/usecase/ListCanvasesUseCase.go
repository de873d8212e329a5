package usecase

import (
	"context"
	"fmt"

	board "go-sketchy/internal/pkg/board/application/domain"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"
)

// ListCanvasesInput carries pagination bounds.
type ListCanvasesInput struct {
	Limit  int
	Offset int
}

// ListCanvasesUseCase pages through saved canvas metadata.
type ListCanvasesUseCase struct {
	Repo repository.CanvasRepository
}

func NewListCanvasesUseCase(repo repository.CanvasRepository) *ListCanvasesUseCase {
	return &ListCanvasesUseCase{Repo: repo}
}

func (uc *ListCanvasesUseCase) Execute(ctx context.Context, in ListCanvasesInput) ([]board.CanvasInfo, error) {
	infos, err := uc.Repo.ListCanvases(ctx, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return infos, nil
}
