package controller

import (
	"encoding/json"
	"strings"
	"testing"

	board "go-sketchy/internal/pkg/board/application/domain"
	"go-sketchy/internal/pkg/board/application/registry"
	"go-sketchy/internal/pkg/board/application/store"
)

type sentPayload struct {
	roomID  string
	exclude string
	connID  string
	frame   map[string]any
}

// recordingCaster captures fan-out instead of writing to sockets.
type recordingCaster struct {
	joins      []sentPayload
	broadcasts []sentPayload
	notifies   []sentPayload
}

func (r *recordingCaster) Join(roomID string, connID string) bool {
	r.joins = append(r.joins, sentPayload{roomID: roomID, connID: connID})
	return true
}

func (r *recordingCaster) Broadcast(roomID string, payload []byte, excludeConnID string) int {
	var frame map[string]any
	_ = json.Unmarshal(payload, &frame)
	r.broadcasts = append(r.broadcasts, sentPayload{roomID: roomID, exclude: excludeConnID, frame: frame})
	return 1
}

func (r *recordingCaster) Notify(connID string, payload []byte) bool {
	var frame map[string]any
	_ = json.Unmarshal(payload, &frame)
	r.notifies = append(r.notifies, sentPayload{connID: connID, frame: frame})
	return true
}

func newTestController(t *testing.T, capacity int) (*BoardSocketController, *recordingCaster, *store.Store) {
	t.Helper()
	reg := registry.New()
	reg.CreateRoom("room", capacity)
	st := store.New()
	t.Cleanup(st.Close)
	caster := &recordingCaster{}
	ctl := &BoardSocketController{
		reg:         reg,
		store:       st,
		caster:      caster,
		defaultRoom: "room",
	}
	return ctl, caster, st
}

func frameType(p sentPayload) string {
	s, _ := p.frame["type"].(string)
	return s
}

func TestJoinSendsSnapshotAndAnnounces(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)

	if !ctl.join("conn-a", "room") {
		t.Fatalf("join rejected")
	}

	if len(caster.joins) != 1 || caster.joins[0].roomID != "room" || caster.joins[0].connID != "conn-a" {
		t.Fatalf("connection not placed in the fan-out room: %+v", caster.joins)
	}

	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameSnapshot {
		t.Fatalf("expected a snapshot notify, got %+v", caster.notifies)
	}
	self, _ := caster.notifies[0].frame["self"].(map[string]any)
	if self == nil || self["connectionId"] != "conn-a" {
		t.Fatalf("snapshot self = %+v", self)
	}

	if len(caster.broadcasts) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(caster.broadcasts))
	}
	joined := caster.broadcasts[0]
	if frameType(joined) != frameMemberJoined || joined.exclude != "conn-a" {
		t.Fatalf("member-joined relay = %+v", joined)
	}
}

func TestJoinRoomFullNotifiesOnlyFailedConnection(t *testing.T) {
	ctl, caster, _ := newTestController(t, 1)

	if !ctl.join("conn-a", "room") {
		t.Fatalf("first join rejected")
	}
	caster.broadcasts = nil
	caster.notifies = nil
	caster.joins = nil

	if ctl.join("conn-b", "room") {
		t.Fatalf("join beyond capacity accepted")
	}
	if len(caster.joins) != 0 {
		t.Fatalf("rejected connection placed in the fan-out room: %+v", caster.joins)
	}
	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameRoomFull || caster.notifies[0].connID != "conn-b" {
		t.Fatalf("room-full notify = %+v", caster.notifies)
	}
	if len(caster.broadcasts) != 0 {
		t.Fatalf("a failed join must not be announced: %+v", caster.broadcasts)
	}
}

func TestJoinUnknownRoomRepliesError(t *testing.T) {
	ctl, caster, _ := newTestController(t, 2)

	if ctl.join("conn-a", "nope") {
		t.Fatalf("join to unknown room accepted")
	}
	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameError {
		t.Fatalf("expected an error notify, got %+v", caster.notifies)
	}
}

func TestStrokeFlowRelaysCanonicalShapes(t *testing.T) {
	ctl, caster, st := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-start","x":1,"y":2,"color":"#000","width":2,"tool":"pen"}`))
	if len(caster.broadcasts) != 1 {
		t.Fatalf("stroke-start broadcasts = %+v", caster.broadcasts)
	}
	start := caster.broadcasts[0]
	if frameType(start) != frameStrokeStart || start.exclude != "conn-a" {
		t.Fatalf("stroke-start relay = %+v", start)
	}
	action, _ := start.frame["action"].(map[string]any)
	strokeID, _ := action["id"].(string)
	if strokeID == "" {
		t.Fatalf("relayed stroke has no canonical id: %+v", action)
	}

	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-point","x":3,"y":4}`))
	point := caster.broadcasts[1]
	if frameType(point) != frameStrokePoint || point.frame["strokeId"] != strokeID {
		t.Fatalf("stroke-point relay = %+v", point)
	}

	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-end"}`))
	end := caster.broadcasts[2]
	if frameType(end) != frameStrokeEnd || end.frame["strokeId"] != strokeID {
		t.Fatalf("stroke-end relay = %+v", end)
	}

	if v := st.Version("room"); v != 3 {
		t.Fatalf("store version = %d, want 3", v)
	}
}

func TestOrphanedPointIsDroppedSilently(t *testing.T) {
	ctl, caster, st := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil
	caster.notifies = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-point","x":3,"y":4}`))
	if len(caster.broadcasts) != 0 || len(caster.notifies) != 0 {
		t.Fatalf("orphaned point must be dropped silently")
	}
	if v := st.Version("room"); v != 0 {
		t.Fatalf("orphaned point mutated state, version = %d", v)
	}
}

func TestMalformedFrameNeverReachesStore(t *testing.T) {
	ctl, caster, st := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.notifies = nil

	// stroke-start missing color and tool
	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-start","x":1,"y":2}`))
	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameError {
		t.Fatalf("expected an error notify, got %+v", caster.notifies)
	}
	if v := st.Version("room"); v != 0 {
		t.Fatalf("malformed frame reached the store, version = %d", v)
	}

	caster.notifies = nil
	ctl.handleFrame("conn-a", []byte(`not json`))
	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameError {
		t.Fatalf("invalid payload should reply an error, got %+v", caster.notifies)
	}

	caster.notifies = nil
	ctl.handleFrame("conn-a", []byte(`{"type":"teleport"}`))
	if len(caster.notifies) != 1 || frameType(caster.notifies[0]) != frameError {
		t.Fatalf("unknown type should reply an error, got %+v", caster.notifies)
	}
}

func TestIntentBeforeJoinIsDiscarded(t *testing.T) {
	ctl, caster, st := newTestController(t, 4)

	ctl.handleFrame("stranger", []byte(`{"type":"clear-room"}`))
	if len(caster.broadcasts) != 0 || len(caster.notifies) != 0 {
		t.Fatalf("intent from an unjoined connection must be discarded")
	}
	if v := st.Version("room"); v != 0 {
		t.Fatalf("unjoined intent mutated state")
	}
}

func TestDiscreteAddRelaysFullAction(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"add-shape","shapeType":"rect","x":0,"y":0,"x2":5,"y2":5,"color":"#111","width":1,"filled":true}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"add-text","text":"hi","x":1,"y":1,"color":"#222"}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"add-image","url":"https://example.com/x.png","x":0,"y":0,"w":10,"h":10}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"fill-area","x":4,"y":4,"color":"#333"}`))

	if len(caster.broadcasts) != 4 {
		t.Fatalf("expected 4 relays, got %d", len(caster.broadcasts))
	}
	wantKinds := []string{board.KindShape, board.KindText, board.KindImage, board.KindFill}
	for i, b := range caster.broadcasts {
		if frameType(b) != frameActionAdded || b.exclude != "conn-a" {
			t.Fatalf("relay %d = %+v", i, b)
		}
		action, _ := b.frame["action"].(map[string]any)
		if action["kind"] != wantKinds[i] {
			t.Fatalf("relay %d kind = %v, want %s", i, action["kind"], wantKinds[i])
		}
		if action["authorId"] != "conn-a" {
			t.Fatalf("relay %d author = %v", i, action["authorId"])
		}
	}
}

func TestClearAndUndoIncludeSenderRedoExcludes(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"clear-room"}`))
	clear := caster.broadcasts[0]
	if frameType(clear) != frameRoomCleared || clear.exclude != "" {
		t.Fatalf("room-cleared must include the sender: %+v", clear)
	}

	ctl.handleFrame("conn-a", []byte(`{"type":"undo-request"}`))
	undo := caster.broadcasts[1]
	if frameType(undo) != frameUndone || undo.exclude != "" {
		t.Fatalf("action-undone must include the sender: %+v", undo)
	}
	if id, _ := undo.frame["actionId"].(string); id == "" {
		t.Fatalf("action-undone carries no id: %+v", undo)
	}

	ctl.handleFrame("conn-a", []byte(`{"type":"redo-request"}`))
	redo := caster.broadcasts[2]
	if frameType(redo) != frameRedone || redo.exclude != "conn-a" {
		t.Fatalf("action-redone goes to peers only: %+v", redo)
	}
	action, _ := redo.frame["action"].(map[string]any)
	if action["kind"] != board.KindClear {
		t.Fatalf("redo must carry the full action: %+v", action)
	}
}

func TestUndoOnEmptyRoomRelaysNothing(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"undo-request"}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"redo-request"}`))
	if len(caster.broadcasts) != 0 {
		t.Fatalf("empty undo/redo must not relay: %+v", caster.broadcasts)
	}
}

func TestCursorMoveRelaysPresentation(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"cursor-move","x":12,"y":34}`))
	cur := caster.broadcasts[0]
	if frameType(cur) != frameCursor || cur.exclude != "conn-a" {
		t.Fatalf("cursor relay = %+v", cur)
	}
	color, _ := cur.frame["color"].(string)
	name, _ := cur.frame["name"].(string)
	if cur.frame["connectionId"] != "conn-a" || color == "" || name == "" {
		t.Fatalf("cursor payload incomplete: %+v", cur.frame)
	}
}

func TestRenameRelaysUpdatedUser(t *testing.T) {
	ctl, caster, _ := newTestController(t, 4)
	ctl.join("conn-a", "room")
	caster.broadcasts = nil

	ctl.handleFrame("conn-a", []byte(`{"type":"rename","name":"Ada"}`))
	ren := caster.broadcasts[0]
	if frameType(ren) != frameRenameUpdate || ren.exclude != "conn-a" {
		t.Fatalf("rename relay = %+v", ren)
	}
	user, _ := ren.frame["user"].(map[string]any)
	if user["displayName"] != "Ada" || user["isGuest"] != false {
		t.Fatalf("rename payload = %+v", user)
	}
}

func TestSnapshotMembersAlwaysAnArray(t *testing.T) {
	reg := registry.New()
	frame := snapshotFrame{Type: frameSnapshot, Members: reg.ListMembers("ghost")}
	raw, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"members":[]`) {
		t.Fatalf("empty member list must serialize as an array: %s", raw)
	}
}

func TestLeavePrunesInProgressAndAnnounces(t *testing.T) {
	ctl, caster, st := newTestController(t, 4)
	ctl.join("conn-a", "room")
	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-start","x":0,"y":0,"color":"#000","width":1,"tool":"pen"}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-point","x":1,"y":1}`))
	ctl.handleFrame("conn-a", []byte(`{"type":"stroke-point","x":2,"y":2}`))
	caster.broadcasts = nil

	ctl.leave("conn-a")

	if len(caster.broadcasts) != 1 || frameType(caster.broadcasts[0]) != frameMemberLeft {
		t.Fatalf("member-left relay = %+v", caster.broadcasts)
	}

	snap := st.Snapshot("room")
	if len(snap.InProgress) != 0 {
		t.Fatalf("in-progress not pruned at disconnect: %+v", snap.InProgress)
	}
	if len(snap.Actions) != 1 {
		t.Fatalf("committed stroke lost: %+v", snap.Actions)
	}
	if stroke := snap.Actions[0].(*board.Stroke); len(stroke.Points) != 3 {
		t.Fatalf("stroke points altered: %d", len(stroke.Points))
	}

	// A second leave for the same connection does nothing.
	caster.broadcasts = nil
	ctl.leave("conn-a")
	if len(caster.broadcasts) != 0 {
		t.Fatalf("duplicate leave announced: %+v", caster.broadcasts)
	}
}
