package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `id, name, density, density_unit, block_price, sheet_price, created_at`

func scan(row pgx.Row) (*Material, error) {
	var m Material
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Density,
		&m.DensityUnit,
		&m.BlockPrice,
		&m.SheetPrice,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) Create(ctx context.Context, m Material) (*Material, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO materials (name, density, density_unit, block_price, sheet_price)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+columns, m.Name, m.Density, m.DensityUnit, m.BlockPrice, m.SheetPrice)
	return scan(row)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Material, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM materials WHERE id = $1`, id)
	m, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *Repo) List(ctx context.Context) ([]Material, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM materials ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

const updateSQL = `
	UPDATE materials SET
		name         = COALESCE($2, name),
		density      = COALESCE($3, density),
		density_unit = COALESCE($4, density_unit),
		block_price  = COALESCE($5, block_price),
		sheet_price  = COALESCE($6, sheet_price)
	WHERE id = $1`

// Update применяет частичное обновление; (nil, nil) если материала нет.
func (r *Repo) Update(ctx context.Context, id int64, p Patch) (*Material, error) {
	row := r.pool.QueryRow(ctx, updateSQL+`
		RETURNING `+columns, id, p.Name, p.Density, p.DensityUnit, p.BlockPrice, p.SheetPrice)
	m, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// ApplyPatches применяет правки одной транзакцией: при ошибке не меняется
// ни одна строка. Отсутствующие id возвращаются в missing.
func (r *Repo) ApplyPatches(ctx context.Context, patches []IDPatch) (updated int, missing []int64, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ip := range patches {
		p := ip.Patch
		tag, err := tx.Exec(ctx, updateSQL, ip.ID, p.Name, p.Density, p.DensityUnit, p.BlockPrice, p.SheetPrice)
		if err != nil {
			return 0, nil, fmt.Errorf("update material %d: %w", ip.ID, err)
		}
		if tag.RowsAffected() == 0 {
			missing = append(missing, ip.ID)
			continue
		}
		updated++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, nil, err
	}
	return updated, missing, nil
}

// Delete возвращает false, если материала не было.
func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SearchByName ищет материалы по части названия, без учёта регистра.
func (r *Repo) SearchByName(ctx context.Context, q string) ([]Material, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	like := "%" + strings.ToLower(q) + "%"

	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM materials
		WHERE LOWER(name) LIKE $1
		ORDER BY name
	`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Material
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
