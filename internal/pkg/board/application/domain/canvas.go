package board

import "time"

// SavedCanvas is a persisted room snapshot. Loading one replaces the
// room's state wholesale; in-progress strokes are never persisted.
type SavedCanvas struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	RoomID    string       `json:"roomId"`
	State     RoomSnapshot `json:"roomState"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// CanvasInfo is a listing row: SavedCanvas without the state payload.
type CanvasInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	RoomID    string    `json:"roomId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
