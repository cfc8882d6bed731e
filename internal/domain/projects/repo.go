package projects

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, name, description string) (*Project, error) {
	id := NewID()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO projects (project_id, slug, name, description)
		VALUES ($1,$2,$3,$4)
		RETURNING project_id, slug, name, description, created_at
	`, id, Slug(name, id), name, description)

	var p Project
	if err := row.Scan(&p.ProjectID, &p.Slug, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, `
		SELECT project_id, slug, name, description, created_at
		FROM projects WHERE project_id = $1
	`, id).Scan(&p.ProjectID, &p.Slug, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT project_id, slug, name, description, created_at
		FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ProjectID, &p.Slug, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
