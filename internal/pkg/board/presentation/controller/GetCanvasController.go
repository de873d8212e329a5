package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go-sketchy/internal/pkg/board/application/usecase"
	"go-sketchy/internal/pkg/board/persistence/repository/adapter"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetCanvasController fetches one saved canvas including its state
// payload (one controller per endpoint).
type GetCanvasController struct {
	Repo repository.CanvasRepository
}

func NewGetCanvasController(pool *pgxpool.Pool) *GetCanvasController {
	return &GetCanvasController{Repo: adapter.NewPgCanvasRepository(pool)}
}

func (h *GetCanvasController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		canvasID := c.Param("canvasId")
		if canvasID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "canvasId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		canvas, err := h.Repo.GetCanvas(ctx, canvasID)
		if errors.Is(err, repository.ErrCanvasNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "canvas not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			return
		}

		c.JSON(http.StatusOK, canvas)
	}
}

// ListCanvasesController pages saved canvas metadata.
type ListCanvasesController struct {
	UC *usecase.ListCanvasesUseCase
}

func NewListCanvasesController(pool *pgxpool.Pool) *ListCanvasesController {
	repo := adapter.NewPgCanvasRepository(pool)
	return &ListCanvasesController{UC: usecase.NewListCanvasesUseCase(repo)}
}

func (h *ListCanvasesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		infos, err := h.UC.Execute(ctx, usecase.ListCanvasesInput{Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"canvases": infos,
			"limit":    limit,
			"offset":   offset,
			"count":    len(infos),
		})
	}
}
