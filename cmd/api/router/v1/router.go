package v1

import (
	httpHandler "go-sketchy/internal/pkg/board/presentation/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, deps httpHandler.Deps) {
	v1 := r.Group("/api/v1")
	// Pass the shared components down to the HTTP layer
	httpHandler.RegisterRoutes(v1, deps)
}
