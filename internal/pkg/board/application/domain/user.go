package board

import (
	"fmt"
	"math/rand"
	"time"
)

// User is a connected participant. Records are owned exclusively by the
// registry; everyone else works with copies.
type User struct {
	ConnectionID string    `json:"connectionId"`
	DisplayName  string    `json:"displayName"`
	Color        string    `json:"color"`
	Cursor       Point     `json:"cursor"`
	RoomID       string    `json:"roomId"`
	JoinedAt     time.Time `json:"joinedAt"`
	IsGuest      bool      `json:"isGuest"`
}

// Palette is the fixed set of presentation colors assigned at join time.
// Assignment is uniformly random and not collision-free within a room.
var Palette = [12]string{
	"#e6194b", "#3cb44b", "#ffe119", "#4363d8",
	"#f58231", "#911eb4", "#42d4f4", "#f032e6",
	"#bfef45", "#fabed4", "#469990", "#9a6324",
}

// RandomColor draws one palette entry.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}

// GuestName generates a throwaway display name for a connection that has
// not renamed itself yet.
func GuestName() string {
	return fmt.Sprintf("Guest-%04d", rand.Intn(10000))
}
