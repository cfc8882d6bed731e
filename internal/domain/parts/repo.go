package parts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/partcost/internal/domain/projects"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const columns = `
	part_id, slug, project_id, name, file_name, classification_id,
	bounding_box_width, bounding_box_depth, bounding_box_height, bounding_box_unit,
	volume, volume_unit, surface_area, surface_area_unit,
	raw_material_details, modified_by, updated_at`

func scan(row pgx.Row) (*Part, error) {
	var p Part
	var raw []byte
	if err := row.Scan(
		&p.PartID, &p.Slug, &p.ProjectID, &p.Name, &p.FileName, &p.ClassificationID,
		&p.BoundingBox.Width, &p.BoundingBox.Depth, &p.BoundingBox.Height, &p.BoundingBox.Unit,
		&p.Volume, &p.VolumeUnit, &p.SurfaceArea, &p.SurfaceAreaUnit,
		&raw, &p.ModifiedBy, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		var d RawMaterialDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("part %s: raw_material_details: %w", p.PartID, err)
		}
		p.RawMaterial = &d
	}
	return &p, nil
}

// Create регистрирует деталь в проекте вместе с геометрией из CAD-анализа.
func (r *Repo) Create(ctx context.Context, n New) (*Part, error) {
	id := projects.NewID()
	bbox := n.BoundingBox
	if bbox.Unit == "" {
		bbox.Unit = "mm"
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO parts (
			part_id, slug, project_id, name, file_name, classification_id,
			bounding_box_width, bounding_box_depth, bounding_box_height, bounding_box_unit,
			volume, volume_unit, surface_area, surface_area_unit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,COALESCE(NULLIF($12,''),'mm³'),$13,COALESCE(NULLIF($14,''),'mm²'))
		RETURNING `+columns,
		id, projects.Slug(n.Name, id), n.ProjectID, n.Name, n.FileName, n.ClassificationID,
		bbox.Width, bbox.Depth, bbox.Height, bbox.Unit,
		n.Volume, n.VolumeUnit, n.SurfaceArea, n.SurfaceAreaUnit)
	return scan(row)
}

func (r *Repo) GetByID(ctx context.Context, partID string) (*Part, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+columns+` FROM parts WHERE part_id = $1`, partID)
	p, err := scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *Repo) ListByProject(ctx context.Context, projectID string) ([]Part, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM parts WHERE project_id = $1 ORDER BY name
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Part
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// UpdateRawMaterial перезаписывает raw_material_details целиком (последний PUT побеждает).
// Возвращает false, если детали нет.
func (r *Repo) UpdateRawMaterial(ctx context.Context, partID string, d RawMaterialDetails, modifiedBy string) (bool, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE parts SET raw_material_details = $2, modified_by = $3, updated_at = now()
		WHERE part_id = $1
	`, partID, raw, modifiedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
