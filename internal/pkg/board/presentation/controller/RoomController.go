package controller

import (
	"net/http"

	"go-sketchy/internal/pkg/board/application/registry"

	"github.com/gin-gonic/gin"
)

// CreateRoomController registers a room with an explicit capacity (one
// controller per endpoint).
type CreateRoomController struct {
	reg *registry.Registry
}

func NewCreateRoomController(reg *registry.Registry) *CreateRoomController {
	return &CreateRoomController{reg: reg}
}

type createRoomRequest struct {
	ID       string `json:"id" binding:"required"`
	Capacity int    `json:"capacity"`
}

func (h *CreateRoomController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if !h.reg.CreateRoom(req.ID, req.Capacity) {
			c.JSON(http.StatusConflict, gin.H{"error": "room already exists"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": req.ID})
	}
}

// ListRoomsController returns the known room ids with their occupancy.
type ListRoomsController struct {
	reg *registry.Registry
}

func NewListRoomsController(reg *registry.Registry) *ListRoomsController {
	return &ListRoomsController{reg: reg}
}

func (h *ListRoomsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := h.reg.RoomIDs()
		rooms := make([]gin.H, 0, len(ids))
		for _, id := range ids {
			rooms = append(rooms, gin.H{
				"id":      id,
				"members": h.reg.MemberCount(id),
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"rooms": rooms,
			"count": len(rooms),
		})
	}
}

// ListRoomMembersController returns a room's members in join order.
type ListRoomMembersController struct {
	reg *registry.Registry
}

func NewListRoomMembersController(reg *registry.Registry) *ListRoomMembersController {
	return &ListRoomMembersController{reg: reg}
}

func (h *ListRoomMembersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Param("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
			return
		}
		members := h.reg.ListMembers(roomID)
		c.JSON(http.StatusOK, gin.H{
			"room_id": roomID,
			"members": members,
			"count":   len(members),
		})
	}
}
