package draft

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Get возвращает черновик; если строки нет — Item в StateIdle.
func (r *Repo) Get(ctx context.Context, partID string) (*Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT state, payload FROM raw_material_drafts WHERE part_id = $1`, partID)
	var state string
	var raw []byte
	if err := row.Scan(&state, &raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Item{PartID: partID, State: StateIdle}, nil
		}
		return nil, err
	}
	return &Item{PartID: partID, State: State(state), Payload: raw}, nil
}

func (r *Repo) Set(ctx context.Context, partID string, state State, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO raw_material_drafts (part_id, state, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (part_id) DO UPDATE SET
		  state=$2, payload=$3, updated_at=now()
	`, partID, string(state), raw)
	return err
}

func (r *Repo) Reset(ctx context.Context, partID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM raw_material_drafts WHERE part_id = $1`, partID)
	return err
}
