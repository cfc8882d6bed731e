package profiles

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scan(row pgx.Row) (*Profile, error) {
	var p Profile
	var raw []byte
	if err := row.Scan(&p.ID, &p.Name, &raw, &p.VolumeFormula, &p.DefaultUnit); err != nil {
		return nil, err
	}
	// битый fields_json отдаём пустым набором полей
	if err := json.Unmarshal(raw, &p.Fields); err != nil || p.Fields == nil {
		p.Fields = map[string]string{}
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Profile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, fields_json, volume_formula, default_unit
		FROM material_profiles
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, fields_json, volume_formula, default_unit
		FROM material_profiles WHERE id = $1
	`, id)
	p, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}
