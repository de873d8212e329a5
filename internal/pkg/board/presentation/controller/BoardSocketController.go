package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-sketchy/internal/infrastructure/realtime"
	board "go-sketchy/internal/pkg/board/application/domain"
	"go-sketchy/internal/pkg/board/application/registry"
	"go-sketchy/internal/pkg/board/application/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Broadcaster is the fan-out capability the protocol relies on: room
// membership plus delivery. Delivery is fire and forget; satisfied by
// realtime.Router and swappable for an acknowledged transport without
// touching the store.
type Broadcaster interface {
	Join(roomID string, connID string) bool
	Broadcast(roomID string, payload []byte, excludeConnID string) int
	Notify(connID string, payload []byte) bool
}

// BoardSocketController handles the websocket endpoint for realtime
// drawing traffic. The store is authoritative: every inbound intent is
// applied first, and only the store's canonical return value is relayed.
type BoardSocketController struct {
	reg         *registry.Registry
	store       *store.Store
	router      *realtime.Router
	caster      Broadcaster
	defaultRoom string
}

func NewBoardSocketController(reg *registry.Registry, st *store.Store, router *realtime.Router, defaultRoom string) *BoardSocketController {
	return &BoardSocketController{
		reg:         reg,
		store:       st,
		router:      router,
		caster:      router,
		defaultRoom: defaultRoom,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket, runs the join handshake
// and processes frames until the client disconnects.
func (ctl *BoardSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := c.Query("room")
		if roomID == "" {
			roomID = ctl.defaultRoom
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.leave(conn.ID)
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		if !ctl.join(conn.ID, roomID) {
			return
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleFrame(conn.ID, data)
		}
	}
}

// join runs the connect handshake: registry admission, snapshot transfer,
// join announcement. Returns false when the connection was rejected; the
// rejection is sent only to the failed connection.
func (ctl *BoardSocketController) join(connID string, roomID string) bool {
	user, err := ctl.reg.Join(connID, roomID)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrRoomFull):
			if payload, mErr := json.Marshal(roomFullFrame{Type: frameRoomFull, RoomID: roomID}); mErr == nil {
				_ = ctl.caster.Notify(connID, payload)
			}
		case errors.Is(err, registry.ErrRoomNotFound):
			ctl.replyError(connID, "room_not_found", "room does not exist")
		default:
			ctl.replyError(connID, "internal_error", err.Error())
		}
		return false
	}

	// Registry admission settled; place the connection in the fan-out
	// room so peer broadcasts actually reach it.
	ctl.caster.Join(roomID, connID)

	snap := snapshotFrame{
		Type:    frameSnapshot,
		Self:    &user,
		Members: ctl.reg.ListMembers(roomID),
		State:   ctl.store.Snapshot(roomID),
	}
	if payload, err := json.Marshal(snap); err == nil {
		_ = ctl.caster.Notify(connID, payload)
	}

	if payload, err := json.Marshal(memberJoinedFrame{Type: frameMemberJoined, User: user}); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
	return true
}

// leave releases the identity, prunes any orphaned in-progress stroke and
// announces the departure. Safe to call for a connection that never joined.
func (ctl *BoardSocketController) leave(connID string) {
	user, ok := ctl.reg.Leave(connID)
	if !ok {
		return
	}
	ctl.store.PruneInProgress(user.RoomID, connID)
	if payload, err := json.Marshal(memberLeftFrame{Type: frameMemberLeft, ConnectionID: connID}); err == nil {
		ctl.caster.Broadcast(user.RoomID, payload, connID)
	}
}

// handleFrame validates and dispatches one inbound intent. Malformed
// payloads are rejected here with a generic error notice; the store
// assumes well-typed input.
func (ctl *BoardSocketController) handleFrame(connID string, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		ctl.replyError(connID, "bad_request", "invalid payload")
		return
	}

	user, ok := ctl.reg.User(connID)
	if !ok {
		// Intent from a connection that never completed the join; discard.
		return
	}

	switch frame.Type {
	case frameRename:
		ctl.handleRename(connID, user.RoomID, frame)
	case frameStrokeStart:
		ctl.handleStrokeStart(connID, user.RoomID, frame)
	case frameStrokePoint:
		ctl.handleStrokePoint(connID, user.RoomID, frame)
	case frameStrokeEnd:
		ctl.handleStrokeEnd(connID, user.RoomID)
	case frameAddShape:
		ctl.handleAddShape(connID, user.RoomID, frame)
	case frameAddText:
		ctl.handleAddText(connID, user.RoomID, frame)
	case frameAddImage:
		ctl.handleAddImage(connID, user.RoomID, frame)
	case frameFillArea:
		ctl.handleFillArea(connID, user.RoomID, frame)
	case frameCursorMove:
		ctl.handleCursorMove(connID, user.RoomID, frame)
	case frameClearRoom:
		ctl.handleClearRoom(user.RoomID)
	case frameUndo:
		ctl.handleUndo(user.RoomID)
	case frameRedo:
		ctl.handleRedo(connID, user.RoomID)
	default:
		ctl.replyError(connID, "unsupported_type", "unknown frame type")
	}
}

func (ctl *BoardSocketController) handleRename(connID string, roomID string, frame inboundFrame) {
	if frame.Name == nil || *frame.Name == "" {
		ctl.replyError(connID, "bad_request", "name is required")
		return
	}
	user, ok := ctl.reg.Rename(connID, *frame.Name)
	if !ok {
		return
	}
	if payload, err := json.Marshal(renameUpdateFrame{Type: frameRenameUpdate, User: user}); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) handleStrokeStart(connID string, roomID string, frame inboundFrame) {
	if frame.X == nil || frame.Y == nil || frame.Color == nil || frame.Width == nil || frame.Tool == nil {
		ctl.replyError(connID, "bad_request", "stroke-start requires x, y, color, width and tool")
		return
	}
	seed := store.StrokeSeed{
		Tool:  *frame.Tool,
		Color: *frame.Color,
		Width: *frame.Width,
		Start: board.Point{X: *frame.X, Y: *frame.Y},
	}
	if frame.StrokeID != nil {
		seed.StrokeID = *frame.StrokeID
	}
	if frame.BrushType != nil {
		seed.BrushType = *frame.BrushType
	}
	if frame.LayerID != nil {
		seed.LayerID = *frame.LayerID
	}

	stroke := ctl.store.StartStroke(roomID, connID, seed)
	if payload, err := marshalActionFrame(frameStrokeStart, stroke); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) handleStrokePoint(connID string, roomID string, frame inboundFrame) {
	if frame.X == nil || frame.Y == nil {
		ctl.replyError(connID, "bad_request", "stroke-point requires x and y")
		return
	}
	p := board.Point{X: *frame.X, Y: *frame.Y}
	strokeID, ok := ctl.store.AppendPoint(roomID, connID, p)
	if !ok {
		// No in-progress stroke for this author: normal race, drop silently.
		return
	}
	if payload, err := json.Marshal(strokePointFrame{Type: frameStrokePoint, StrokeID: strokeID, Point: p}); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) handleStrokeEnd(connID string, roomID string) {
	strokeID, ok := ctl.store.EndStroke(roomID, connID)
	if !ok {
		return
	}
	if payload, err := json.Marshal(strokeEndFrame{Type: frameStrokeEnd, StrokeID: strokeID, ConnectionID: connID}); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) handleAddShape(connID string, roomID string, frame inboundFrame) {
	if frame.ShapeType == nil || frame.X == nil || frame.Y == nil || frame.X2 == nil || frame.Y2 == nil || frame.Color == nil || frame.Width == nil {
		ctl.replyError(connID, "bad_request", "add-shape requires shapeType, x, y, x2, y2, color and width")
		return
	}
	shape := &board.Shape{
		Base:      board.NewBase("", connID, optString(frame.LayerID)),
		ShapeType: *frame.ShapeType,
		From:      board.Point{X: *frame.X, Y: *frame.Y},
		To:        board.Point{X: *frame.X2, Y: *frame.Y2},
		Color:     *frame.Color,
		Width:     *frame.Width,
	}
	if frame.Filled != nil {
		shape.Filled = *frame.Filled
	}
	ctl.appendAndRelay(connID, roomID, shape)
}

func (ctl *BoardSocketController) handleAddText(connID string, roomID string, frame inboundFrame) {
	if frame.Text == nil || *frame.Text == "" || frame.X == nil || frame.Y == nil || frame.Color == nil {
		ctl.replyError(connID, "bad_request", "add-text requires text, x, y and color")
		return
	}
	text := &board.Text{
		Base:     board.NewBase("", connID, optString(frame.LayerID)),
		Body:     *frame.Text,
		At:       board.Point{X: *frame.X, Y: *frame.Y},
		Color:    *frame.Color,
		FontSize: 16,
	}
	if frame.FontSize != nil && *frame.FontSize > 0 {
		text.FontSize = *frame.FontSize
	}
	ctl.appendAndRelay(connID, roomID, text)
}

func (ctl *BoardSocketController) handleAddImage(connID string, roomID string, frame inboundFrame) {
	if frame.URL == nil || *frame.URL == "" || frame.X == nil || frame.Y == nil || frame.W == nil || frame.H == nil {
		ctl.replyError(connID, "bad_request", "add-image requires url, x, y, w and h")
		return
	}
	img := &board.Image{
		Base:   board.NewBase("", connID, optString(frame.LayerID)),
		URL:    *frame.URL,
		At:     board.Point{X: *frame.X, Y: *frame.Y},
		Width:  *frame.W,
		Height: *frame.H,
	}
	ctl.appendAndRelay(connID, roomID, img)
}

func (ctl *BoardSocketController) handleFillArea(connID string, roomID string, frame inboundFrame) {
	if frame.X == nil || frame.Y == nil || frame.Color == nil {
		ctl.replyError(connID, "bad_request", "fill-area requires x, y and color")
		return
	}
	fill := &board.Fill{
		Base:  board.NewBase("", connID, optString(frame.LayerID)),
		At:    board.Point{X: *frame.X, Y: *frame.Y},
		Color: *frame.Color,
	}
	ctl.appendAndRelay(connID, roomID, fill)
}

func (ctl *BoardSocketController) appendAndRelay(connID string, roomID string, a board.Action) {
	committed := ctl.store.AppendAction(roomID, a)
	if payload, err := marshalActionFrame(frameActionAdded, committed); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) handleCursorMove(connID string, roomID string, frame inboundFrame) {
	if frame.X == nil || frame.Y == nil {
		ctl.replyError(connID, "bad_request", "cursor-move requires x and y")
		return
	}
	user, ok := ctl.reg.UpdateCursor(connID, board.Point{X: *frame.X, Y: *frame.Y})
	if !ok {
		return
	}
	out := cursorFrame{
		Type:         frameCursor,
		ConnectionID: connID,
		Point:        user.Cursor,
		Color:        user.Color,
		Name:         user.DisplayName,
	}
	if payload, err := json.Marshal(out); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

// handleClearRoom relays to the whole room including the sender: the
// clear entry carries a server-generated id every client must record to
// keep undo-of-clear consistent.
func (ctl *BoardSocketController) handleClearRoom(roomID string) {
	entry := ctl.store.Clear(roomID)
	if payload, err := marshalActionFrame(frameRoomCleared, entry); err == nil {
		ctl.caster.Broadcast(roomID, payload, "")
	}
}

// handleUndo relays to the whole room including the sender; the sender
// cannot know which action was tail-of-log when its request was applied.
func (ctl *BoardSocketController) handleUndo(roomID string) {
	a, ok := ctl.store.Undo(roomID)
	if !ok {
		return
	}
	out := actionUndoneFrame{Type: frameUndone, ActionID: a.Ref().ID}
	if payload, err := json.Marshal(out); err == nil {
		ctl.caster.Broadcast(roomID, payload, "")
	}
}

// handleRedo relays the full action to peers; they may have already
// discarded its content after the undo.
func (ctl *BoardSocketController) handleRedo(connID string, roomID string) {
	a, ok := ctl.store.Redo(roomID)
	if !ok {
		return
	}
	if payload, err := marshalActionFrame(frameRedone, a); err == nil {
		ctl.caster.Broadcast(roomID, payload, connID)
	}
}

func (ctl *BoardSocketController) replyError(connID string, code string, message string) {
	frame := errorFrame{Type: frameError, Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = ctl.caster.Notify(connID, payload)
	}
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
