package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	cacheport "go-sketchy/internal/infrastructure/cache/port"
	board "go-sketchy/internal/pkg/board/application/domain"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"
)

type memCanvasRepo struct {
	canvases map[string]board.SavedCanvas
	saves    int
	gets     int
}

func newMemCanvasRepo() *memCanvasRepo {
	return &memCanvasRepo{canvases: make(map[string]board.SavedCanvas)}
}

func (r *memCanvasRepo) SaveCanvas(_ context.Context, c board.SavedCanvas) (string, error) {
	r.saves++
	id := "canvas-" + strconv.Itoa(r.saves)
	c.ID = id
	c.UpdatedAt = time.Now().UTC()
	r.canvases[id] = c
	return id, nil
}

func (r *memCanvasRepo) GetCanvas(_ context.Context, id string) (board.SavedCanvas, error) {
	r.gets++
	c, ok := r.canvases[id]
	if !ok {
		return board.SavedCanvas{}, repository.ErrCanvasNotFound
	}
	return c, nil
}

func (r *memCanvasRepo) ListCanvases(_ context.Context, limit int, offset int) ([]board.CanvasInfo, error) {
	var infos []board.CanvasInfo
	for id, c := range r.canvases {
		infos = append(infos, board.CanvasInfo{ID: id, Name: c.Name, RoomID: c.RoomID})
	}
	return infos, nil
}

func (r *memCanvasRepo) DeleteCanvas(_ context.Context, id string) error {
	if _, ok := r.canvases[id]; !ok {
		return repository.ErrCanvasNotFound
	}
	delete(r.canvases, id)
	return nil
}

type fixedSnapshotSource struct {
	snap board.RoomSnapshot
}

func (f fixedSnapshotSource) Snapshot(string) board.RoomSnapshot { return f.snap }

type recordingReplacer struct {
	roomID string
	snap   board.RoomSnapshot
	calls  int
}

func (r *recordingReplacer) Replace(roomID string, snap board.RoomSnapshot) {
	r.roomID = roomID
	r.snap = snap
	r.calls++
}

type memCache struct {
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: make(map[string]string)} }

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c.values[key]
	if !ok {
		return "", cacheport.ErrMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close() error               { return nil }

func TestSaveCanvasStripsInProgress(t *testing.T) {
	repo := newMemCanvasRepo()
	stroke := &board.Stroke{Base: board.NewBase("", "a", ""), Tool: "pen", Color: "#000", Width: 1}
	src := fixedSnapshotSource{snap: board.RoomSnapshot{
		Version:    3,
		Actions:    []board.Action{stroke},
		InProgress: map[string]*board.Stroke{"a": stroke},
	}}

	uc := NewSaveCanvasUseCase(repo, src)
	canvas, err := uc.Execute(context.Background(), SaveCanvasInput{RoomID: "room", Name: "sketch"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if canvas.ID == "" {
		t.Fatalf("canvas id not assigned")
	}

	saved := repo.canvases[canvas.ID]
	if saved.State.InProgress != nil {
		t.Fatalf("in-progress strokes must never be persisted: %+v", saved.State.InProgress)
	}
	if len(saved.State.Actions) != 1 {
		t.Fatalf("committed actions lost: %+v", saved.State.Actions)
	}
}

func TestSaveCanvasValidatesInput(t *testing.T) {
	uc := NewSaveCanvasUseCase(newMemCanvasRepo(), fixedSnapshotSource{})
	if _, err := uc.Execute(context.Background(), SaveCanvasInput{Name: "x"}); err == nil {
		t.Fatalf("missing roomId accepted")
	}
	if _, err := uc.Execute(context.Background(), SaveCanvasInput{RoomID: "r"}); err == nil {
		t.Fatalf("missing name accepted")
	}
}

func TestLoadCanvasReplacesRoomState(t *testing.T) {
	repo := newMemCanvasRepo()
	src := fixedSnapshotSource{snap: board.RoomSnapshot{
		Actions: []board.Action{&board.Clear{Base: board.NewBase("", board.SystemAuthorID, "")}},
	}}
	saveUC := NewSaveCanvasUseCase(repo, src)
	saved, err := saveUC.Execute(context.Background(), SaveCanvasInput{RoomID: "origin", Name: "sketch"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	replacer := &recordingReplacer{}
	loadUC := NewLoadCanvasUseCase(repo, nil, replacer)

	canvas, err := loadUC.Execute(context.Background(), LoadCanvasInput{CanvasID: saved.ID})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if replacer.calls != 1 || replacer.roomID != "origin" {
		t.Fatalf("replace call = %+v", replacer)
	}
	if canvas.RoomID != "origin" {
		t.Fatalf("canvas room = %q", canvas.RoomID)
	}

	// Loading into an explicit room overrides the saved one.
	if _, err := loadUC.Execute(context.Background(), LoadCanvasInput{CanvasID: saved.ID, RoomID: "elsewhere"}); err != nil {
		t.Fatalf("load with room override: %v", err)
	}
	if replacer.roomID != "elsewhere" {
		t.Fatalf("room override ignored: %q", replacer.roomID)
	}
}

func TestLoadCanvasReadsThroughCache(t *testing.T) {
	repo := newMemCanvasRepo()
	src := fixedSnapshotSource{snap: board.RoomSnapshot{Version: 1}}
	saved, err := NewSaveCanvasUseCase(repo, src).Execute(context.Background(), SaveCanvasInput{RoomID: "r", Name: "n"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	cache := newMemCache()
	uc := NewLoadCanvasUseCase(repo, cache, &recordingReplacer{})

	if _, err := uc.Execute(context.Background(), LoadCanvasInput{CanvasID: saved.ID}); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if repo.gets != 1 {
		t.Fatalf("first load should hit the repository once, got %d", repo.gets)
	}
	if _, err := uc.Execute(context.Background(), LoadCanvasInput{CanvasID: saved.ID}); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if repo.gets != 1 {
		t.Fatalf("second load should be served from cache, repo gets = %d", repo.gets)
	}
}

func TestLoadCanvasUnknownID(t *testing.T) {
	uc := NewLoadCanvasUseCase(newMemCanvasRepo(), nil, &recordingReplacer{})
	_, err := uc.Execute(context.Background(), LoadCanvasInput{CanvasID: "missing"})
	if !errors.Is(err, ErrCanvasNotFound) {
		t.Fatalf("err = %v, want ErrCanvasNotFound", err)
	}
}
