package controller

import (
	"encoding/json"

	board "go-sketchy/internal/pkg/board/application/domain"
)

// Inbound frame types.
const (
	frameRename      = "rename"
	frameStrokeStart = "stroke-start"
	frameStrokePoint = "stroke-point"
	frameStrokeEnd   = "stroke-end"
	frameAddShape    = "add-shape"
	frameAddText     = "add-text"
	frameAddImage    = "add-image"
	frameFillArea    = "fill-area"
	frameCursorMove  = "cursor-move"
	frameClearRoom   = "clear-room"
	frameUndo        = "undo-request"
	frameRedo        = "redo-request"
)

// Outbound frame types.
const (
	frameSnapshot     = "snapshot"
	frameMemberJoined = "member-joined"
	frameMemberLeft   = "member-left"
	frameRenameUpdate = "rename-update"
	frameActionAdded  = "action-added"
	frameCursor       = "cursor"
	frameRoomCleared  = "room-cleared"
	frameUndone       = "action-undone"
	frameRedone       = "action-redone"
	frameRoomFull     = "room-full"
	frameError        = "error"
)

// inboundFrame is the union of all client intents. Optional fields are
// pointers so the boundary can tell "absent" from zero; a frame missing a
// required field is rejected here and never reaches the store.
type inboundFrame struct {
	Type string `json:"type"`

	Name *string `json:"name,omitempty"`

	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	Color     *string  `json:"color,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Tool      *string  `json:"tool,omitempty"`
	BrushType *string  `json:"brushType,omitempty"`
	StrokeID  *string  `json:"strokeId,omitempty"`
	LayerID   *string  `json:"layerId,omitempty"`

	ShapeType *string  `json:"shapeType,omitempty"`
	X2        *float64 `json:"x2,omitempty"`
	Y2        *float64 `json:"y2,omitempty"`
	Filled    *bool    `json:"filled,omitempty"`

	Text     *string  `json:"text,omitempty"`
	FontSize *float64 `json:"fontSize,omitempty"`

	URL *string  `json:"url,omitempty"`
	W   *float64 `json:"w,omitempty"`
	H   *float64 `json:"h,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type roomFullFrame struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// snapshotFrame transfers full room state. Self is set on the join
// handshake and omitted when a canvas load refreshes the whole room.
type snapshotFrame struct {
	Type    string             `json:"type"`
	Self    *board.User        `json:"self,omitempty"`
	Members []board.User       `json:"members"`
	State   board.RoomSnapshot `json:"state"`
}

type memberJoinedFrame struct {
	Type string     `json:"type"`
	User board.User `json:"user"`
}

type memberLeftFrame struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId"`
}

type renameUpdateFrame struct {
	Type string     `json:"type"`
	User board.User `json:"user"`
}

// actionFrame relays one canonical action (stroke-start, action-added,
// room-cleared, action-redone).
type actionFrame struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action"`
}

type strokePointFrame struct {
	Type     string      `json:"type"`
	StrokeID string      `json:"strokeId"`
	Point    board.Point `json:"point"`
}

type strokeEndFrame struct {
	Type         string `json:"type"`
	StrokeID     string `json:"strokeId"`
	ConnectionID string `json:"connectionId"`
}

type cursorFrame struct {
	Type         string      `json:"type"`
	ConnectionID string      `json:"connectionId"`
	Point        board.Point `json:"point"`
	Color        string      `json:"color"`
	Name         string      `json:"name"`
}

type actionUndoneFrame struct {
	Type     string `json:"type"`
	ActionID string `json:"actionId"`
}

func marshalActionFrame(frameType string, a board.Action) ([]byte, error) {
	raw, err := board.MarshalAction(a)
	if err != nil {
		return nil, err
	}
	return json.Marshal(actionFrame{Type: frameType, Action: raw})
}
