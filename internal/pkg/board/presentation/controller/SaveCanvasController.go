package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	queueport "go-sketchy/internal/infrastructure/queue/port"
	"go-sketchy/internal/pkg/board/application/store"
	"go-sketchy/internal/pkg/board/application/task"
	"go-sketchy/internal/pkg/board/application/usecase"
	"go-sketchy/internal/pkg/board/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SaveCanvasController handles the save-canvas endpoint only (one
// controller per endpoint). With a queue client present the snapshot is
// persisted in the background; otherwise it is saved inline.
type SaveCanvasController struct {
	Q  queueport.Client
	UC *usecase.SaveCanvasUseCase
}

func NewSaveCanvasController(pool *pgxpool.Pool, client queueport.Client, st *store.Store) *SaveCanvasController {
	repo := adapter.NewPgCanvasRepository(pool)
	return &SaveCanvasController{
		Q:  client,
		UC: usecase.NewSaveCanvasUseCase(repo, st),
	}
}

type saveCanvasRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

func (h *SaveCanvasController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveCanvasRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if h.Q != nil {
			payload := task.PersistSnapshotTaskPayload{RoomID: req.RoomID, Name: req.Name}
			b, err := json.Marshal(payload)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode task payload"})
				return
			}
			opts := queueport.EnqueueOption{Queue: "board", MaxRetry: 10}
			id, err := h.Q.Enqueue(ctx, queueport.Task{Type: task.PersistSnapshotTaskType, Payload: b}, opts)
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to enqueue snapshot"})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{
				"status":  "queued",
				"task_id": id,
				"room_id": req.RoomID,
				"name":    req.Name,
			})
			return
		}

		canvas, err := h.UC.Execute(ctx, usecase.SaveCanvasInput{RoomID: req.RoomID, Name: req.Name})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":         canvas.ID,
			"name":       canvas.Name,
			"room_id":    canvas.RoomID,
			"created_at": canvas.CreatedAt,
		})
	}
}
