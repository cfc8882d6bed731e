package parts

import (
	"time"

	"github.com/Spok95/partcost/internal/costing"
)

// RawMaterialDetails — сохранённые параметры заготовки и последний
// рассчитанный объём/вес/стоимость.
type RawMaterialDetails struct {
	MaterialID     *int64             `json:"material_id"`
	ProfileID      *int64             `json:"profile_id"`
	Margin         costing.Margin     `json:"bounding_box_margin"`
	Dimensions     costing.Dimensions `json:"dimensions"`
	DimensionsUnit string             `json:"dimensions_unit"`
	Volume         float64            `json:"volume"`
	VolumeUnit     string             `json:"volume_unit"`
	Weight         float64            `json:"weight"`
	Cost           float64            `json:"cost"`
}

type Part struct {
	PartID           string              `json:"part_id"`
	Slug             string              `json:"slug"`
	ProjectID        string              `json:"project_id"`
	Name             string              `json:"name"`
	FileName         string              `json:"file_name"`
	ClassificationID *int64              `json:"classification_id"`
	BoundingBox      costing.BoundingBox `json:"bounding_box"`
	Volume           float64             `json:"volume"`
	VolumeUnit       string              `json:"volume_unit"`
	SurfaceArea      float64             `json:"surface_area"`
	SurfaceAreaUnit  string              `json:"surface_area_unit"`
	RawMaterial      *RawMaterialDetails `json:"raw_material_details"`
	ModifiedBy       string              `json:"modified_by"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// New — данные для регистрации детали.
type New struct {
	ProjectID        string              `json:"-"`
	Name             string              `json:"name"`
	FileName         string              `json:"file_name"`
	ClassificationID *int64              `json:"classification_id"`
	BoundingBox      costing.BoundingBox `json:"bounding_box"`
	Volume           float64             `json:"volume"`
	VolumeUnit       string              `json:"volume_unit"`
	SurfaceArea      float64             `json:"surface_area"`
	SurfaceAreaUnit  string              `json:"surface_area_unit"`
}
