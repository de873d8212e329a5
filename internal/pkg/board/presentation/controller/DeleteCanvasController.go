package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go-sketchy/internal/pkg/board/persistence/repository/adapter"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeleteCanvasController removes a saved canvas. Live room state is
// untouched; only the persisted record goes away.
type DeleteCanvasController struct {
	Repo repository.CanvasRepository
}

func NewDeleteCanvasController(pool *pgxpool.Pool) *DeleteCanvasController {
	return &DeleteCanvasController{Repo: adapter.NewPgCanvasRepository(pool)}
}

func (h *DeleteCanvasController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		canvasID := c.Param("canvasId")
		if canvasID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "canvasId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.Repo.DeleteCanvas(ctx, canvasID)
		if errors.Is(err, repository.ErrCanvasNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "canvas not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": canvasID, "status": "deleted"})
	}
}
