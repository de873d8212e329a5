package http

import (
	cacheport "go-sketchy/internal/infrastructure/cache/port"
	qport "go-sketchy/internal/infrastructure/queue/port"
	"go-sketchy/internal/infrastructure/realtime"
	"go-sketchy/internal/pkg/board/application/registry"
	"go-sketchy/internal/pkg/board/application/store"
	"go-sketchy/internal/pkg/board/presentation/controller"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps bundles the shared components the board endpoints need. Everything
// is constructed once at startup and injected; no package holds state.
type Deps struct {
	Pool        *pgxpool.Pool
	Cache       cacheport.Cache
	Queue       qport.Client
	Registry    *registry.Registry
	Store       *store.Store
	Router      *realtime.Router
	DefaultRoom string
}

// RegisterRoutes registers board-related HTTP endpoints under the given
// router group. It constructs per-endpoint controllers and binds them
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	saveCtl := controller.NewSaveCanvasController(deps.Pool, deps.Queue, deps.Store)
	getCtl := controller.NewGetCanvasController(deps.Pool)
	listCtl := controller.NewListCanvasesController(deps.Pool)
	loadCtl := controller.NewLoadCanvasController(deps.Pool, deps.Cache, deps.Store, deps.Registry, deps.Router)
	deleteCtl := controller.NewDeleteCanvasController(deps.Pool)
	createRoomCtl := controller.NewCreateRoomController(deps.Registry)
	listRoomsCtl := controller.NewListRoomsController(deps.Registry)
	membersCtl := controller.NewListRoomMembersController(deps.Registry)
	socketCtl := controller.NewBoardSocketController(deps.Registry, deps.Store, deps.Router, deps.DefaultRoom)

	// POST /api/v1/canvases -> persist the current state of a room
	g.POST("/canvases", saveCtl.Handle())

	// GET /api/v1/canvases -> list saved canvases
	g.GET("/canvases", listCtl.Handle())

	// GET /api/v1/canvases/:canvasId -> fetch one canvas with state
	g.GET("/canvases/:canvasId", getCtl.Handle())

	// POST /api/v1/canvases/:canvasId/load -> replace a room's state
	g.POST("/canvases/:canvasId/load", loadCtl.Handle())

	// DELETE /api/v1/canvases/:canvasId -> drop a saved canvas
	g.DELETE("/canvases/:canvasId", deleteCtl.Handle())

	// POST /api/v1/rooms -> create a room with capacity
	g.POST("/rooms", createRoomCtl.Handle())

	// GET /api/v1/rooms -> known rooms with occupancy
	g.GET("/rooms", listRoomsCtl.Handle())

	// GET /api/v1/rooms/:roomId/members -> current membership
	g.GET("/rooms/:roomId/members", membersCtl.Handle())

	// GET /api/v1/board/ws -> websocket endpoint for realtime drawing
	g.GET("/board/ws", socketCtl.Handle())
}
