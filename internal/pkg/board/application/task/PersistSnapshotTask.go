package task

import (
	"context"
	"encoding/json"
	"time"

	qport "go-sketchy/internal/infrastructure/queue/port"
	"go-sketchy/internal/pkg/board/application/usecase"
	repoAdapter "go-sketchy/internal/pkg/board/persistence/repository/adapter"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PersistSnapshotTaskType is the queue task name for capturing and saving
// a room snapshot in the background.
const PersistSnapshotTaskType = "board:persist_snapshot"

// PersistSnapshotTaskPayload is the JSON payload transported via the queue.
type PersistSnapshotTaskPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

// RegisterPersistSnapshotTask binds the task handler to the provided
// server. The snapshot is taken at execution time, not enqueue time.
func RegisterPersistSnapshotTask(srv qport.Server, pool *pgxpool.Pool, state usecase.SnapshotSource) {
	srv.Register(PersistSnapshotTaskType, func(ctx context.Context, t qport.Task) error {
		var p PersistSnapshotTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgCanvasRepository(pool)
		uc := usecase.NewSaveCanvasUseCase(repo, state)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := uc.Execute(ctx, usecase.SaveCanvasInput{RoomID: p.RoomID, Name: p.Name})
		return err
	})
}
