package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/partcost/internal/domain/materials"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

/* Units */

const unitColumns = `id, category, unit_type, unit_name, symbols`

func scanUnit(row pgx.Row) (*Unit, error) {
	var u Unit
	var raw []byte
	if err := row.Scan(&u.ID, &u.Category, &u.UnitType, &u.Default, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &u.Symbols); err != nil {
		u.Symbols = nil
	}
	return &u, nil
}

func (r *Repo) ListUnits(ctx context.Context) ([]Unit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+unitColumns+`
		FROM units
		ORDER BY category, unit_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// GetUnit — (nil, nil), если такого unit_type нет.
func (r *Repo) GetUnit(ctx context.Context, unitType string) (*Unit, error) {
	u, err := scanUnit(r.pool.QueryRow(ctx, `SELECT `+unitColumns+` FROM units WHERE unit_type = $1`, unitType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// Symbols — символы единиц по типу величины, как их показывает UI.
func (r *Repo) Symbols(ctx context.Context) (map[string][]string, error) {
	us, err := r.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	return SymbolsByType(us), nil
}

// UpsertUnit добавляет или обновляет единицу по unit_type.
func (r *Repo) UpsertUnit(ctx context.Context, u Unit) (int64, error) {
	raw, err := json.Marshal(u.Symbols)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO units (category, unit_type, unit_name, symbols)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (unit_type) DO UPDATE SET
		  unit_name = EXCLUDED.unit_name, symbols = EXCLUDED.symbols
		RETURNING id
	`, u.Category, u.UnitType, u.Default, raw).Scan(&id)
	return id, err
}

// UpdateUnit меняет единицу по умолчанию и символы; false, если типа нет.
func (r *Repo) UpdateUnit(ctx context.Context, u Unit) (bool, error) {
	raw, err := json.Marshal(u.Symbols)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE units SET unit_name = $2, symbols = $3 WHERE unit_type = $1
	`, u.UnitType, u.Default, raw)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) DeleteUnit(ctx context.Context, unitType string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE unit_type = $1`, unitType)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetDefaults меняет единицы по умолчанию в категории одной транзакцией,
// правила — ApplyDefaults.
func (r *Repo) SetDefaults(ctx context.Context, category string, updates map[string]string) ([]Unit, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT `+unitColumns+` FROM units WHERE category = $1 FOR UPDATE
	`, category)
	if err != nil {
		return nil, err
	}
	var current []Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		current = append(current, *u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	changed, err := ApplyDefaults(current, category, updates)
	if err != nil {
		return nil, err
	}
	for _, u := range changed {
		if _, err := tx.Exec(ctx, `UPDATE units SET unit_name = $2 WHERE id = $1`, u.ID, u.Default); err != nil {
			return nil, fmt.Errorf("update unit %s: %w", u.UnitType, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return changed, nil
}

/* Part classifications */

func (r *Repo) ListClassifications(ctx context.Context) ([]Classification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, pricing_type FROM part_classification ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Classification
	for rows.Next() {
		var c Classification
		if err := rows.Scan(&c.ID, &c.Name, &c.PricingType); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetClassification(ctx context.Context, id int64) (*Classification, error) {
	var c Classification
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, pricing_type FROM part_classification WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.PricingType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertClassification добавляет класс или меняет тип цены существующего.
func (r *Repo) UpsertClassification(ctx context.Context, name string, pt materials.PricingType) (*Classification, error) {
	var c Classification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO part_classification (name, pricing_type)
		VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET pricing_type = EXCLUDED.pricing_type
		RETURNING id, name, pricing_type
	`, name, pt).Scan(&c.ID, &c.Name, &c.PricingType)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteClassification — false, если класса с таким именем нет.
// У деталей этого класса classification_id становится NULL.
func (r *Repo) DeleteClassification(ctx context.Context, name string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM part_classification WHERE name = $1`, name)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

/* Advanced settings */

// Settings возвращает настройки; если строки нет — нулевые значения.
func (r *Repo) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		SELECT default_currency, default_costing_method, price_per_kg
		FROM advanced_settings WHERE id = 1
	`).Scan(&s.DefaultCurrency, &s.DefaultCostingMethod, &s.PricePerKg)
	if errors.Is(err, pgx.ErrNoRows) {
		return Settings{}, nil
	}
	return s, err
}

func (r *Repo) SaveSettings(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO advanced_settings (id, default_currency, default_costing_method, price_per_kg)
		VALUES (1,$1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET
		  default_currency = $1, default_costing_method = $2, price_per_kg = $3
	`, s.DefaultCurrency, s.DefaultCostingMethod, s.PricePerKg)
	return err
}
