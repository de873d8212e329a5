package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	board "go-sketchy/internal/pkg/board/application/domain"
	repository "go-sketchy/internal/pkg/board/persistence/repository/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgCanvasRepository struct {
	pool *pgxpool.Pool
}

func NewPgCanvasRepository(pool *pgxpool.Pool) *PgCanvasRepository {
	return &PgCanvasRepository{pool: pool}
}

var _ repository.CanvasRepository = (*PgCanvasRepository)(nil)

func (r *PgCanvasRepository) SaveCanvas(ctx context.Context, c board.SavedCanvas) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgCanvasRepository: nil pool")
	}
	state, err := json.Marshal(c.State)
	if err != nil {
		return "", fmt.Errorf("canvas: marshal state: %w", err)
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO board.canvas (name, room_id, state, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		RETURNING id::text
	`, c.Name, c.RoomID, state, c.CreatedAt, now).Scan(&id)
	return id, err
}

func (r *PgCanvasRepository) GetCanvas(ctx context.Context, id string) (board.SavedCanvas, error) {
	if r == nil || r.pool == nil {
		return board.SavedCanvas{}, errors.New("PgCanvasRepository: nil pool")
	}
	var (
		c     board.SavedCanvas
		state []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, room_id, state, created_at, updated_at
		FROM board.canvas
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.Name, &c.RoomID, &state, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return board.SavedCanvas{}, repository.ErrCanvasNotFound
	}
	if err != nil {
		return board.SavedCanvas{}, err
	}
	if err := json.Unmarshal(state, &c.State); err != nil {
		return board.SavedCanvas{}, fmt.Errorf("canvas: unmarshal state: %w", err)
	}
	return c, nil
}

func (r *PgCanvasRepository) ListCanvases(ctx context.Context, limit int, offset int) ([]board.CanvasInfo, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgCanvasRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, room_id, created_at, updated_at
		FROM board.canvas
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []board.CanvasInfo
	for rows.Next() {
		var info board.CanvasInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.RoomID, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return infos, nil
}

func (r *PgCanvasRepository) DeleteCanvas(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgCanvasRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM board.canvas WHERE id = $1::uuid`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrCanvasNotFound
	}
	return nil
}
