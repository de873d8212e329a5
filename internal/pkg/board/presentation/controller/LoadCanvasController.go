package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cacheport "go-sketchy/internal/infrastructure/cache/port"
	"go-sketchy/internal/pkg/board/application/registry"
	"go-sketchy/internal/pkg/board/application/store"
	"go-sketchy/internal/pkg/board/application/usecase"
	"go-sketchy/internal/pkg/board/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadCanvasController replaces a room's live state with a saved canvas
// and pushes the fresh snapshot to every connection in the room.
type LoadCanvasController struct {
	UC     *usecase.LoadCanvasUseCase
	reg    *registry.Registry
	caster Broadcaster
}

func NewLoadCanvasController(pool *pgxpool.Pool, c cacheport.Cache, st *store.Store, reg *registry.Registry, caster Broadcaster) *LoadCanvasController {
	repo := adapter.NewPgCanvasRepository(pool)
	return &LoadCanvasController{
		UC:     usecase.NewLoadCanvasUseCase(repo, c, st),
		reg:    reg,
		caster: caster,
	}
}

type loadCanvasRequest struct {
	RoomID string `json:"room_id"`
}

func (h *LoadCanvasController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		canvasID := c.Param("canvasId")
		if canvasID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "canvasId is required"})
			return
		}

		var req loadCanvasRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		canvas, err := h.UC.Execute(ctx, usecase.LoadCanvasInput{CanvasID: canvasID, RoomID: req.RoomID})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrCanvasNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "canvas not found"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		// Everyone in the room restarts from the loaded state.
		snap := snapshotFrame{
			Type:    frameSnapshot,
			Members: h.reg.ListMembers(canvas.RoomID),
			State:   canvas.State,
		}
		if payload, mErr := json.Marshal(snap); mErr == nil {
			h.caster.Broadcast(canvas.RoomID, payload, "")
		}

		c.JSON(http.StatusOK, gin.H{
			"id":      canvas.ID,
			"name":    canvas.Name,
			"room_id": canvas.RoomID,
		})
	}
}
