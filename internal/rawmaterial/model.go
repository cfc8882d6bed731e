package rawmaterial

import (
	"math"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/draft"
)

// Inputs — редактируемые пользователем параметры заготовки.
type Inputs struct {
	MaterialID     *int64             `json:"material_id"`
	ProfileID      *int64             `json:"profile_id"`
	Margin         costing.Margin     `json:"bounding_box_margin"`
	Dimensions     costing.Dimensions `json:"dimensions"`
	DimensionsUnit string             `json:"dimensions_unit"`
	VolumeUnit     string             `json:"volume_unit"`
}

func (in Inputs) clone() Inputs {
	out := in
	out.MaterialID = cloneID(in.MaterialID)
	out.ProfileID = cloneID(in.ProfileID)
	out.Dimensions = in.Dimensions.Clone()
	return out
}

// Change — правка формы; nil-поля не меняются. Dimensions поверх текущих
// значений: ключи из правки перезаписываются, остальные остаются.
type Change struct {
	MaterialID     *int64             `json:"material_id"`
	ProfileID      *int64             `json:"profile_id"`
	Margin         *costing.Margin    `json:"bounding_box_margin"`
	Dimensions     costing.Dimensions `json:"dimensions"`
	DimensionsUnit *string            `json:"dimensions_unit"`
	VolumeUnit     *string            `json:"volume_unit"`
}

// Derived — производные величины, только для чтения до сохранения.
type Derived struct {
	costing.Estimate
	CostDisplay string  `json:"cost_display"`
	PricePerKg  float64 `json:"price_per_kg"`
	Currency    string  `json:"currency"`
}

type View struct {
	PartID     string      `json:"part_id"`
	State      draft.State `json:"state"`
	Inputs     Inputs      `json:"inputs"`
	Derived    Derived     `json:"derived"`
	HasChanges bool        `json:"has_changes"`
}

// Defaults — значения, когда у детали ещё нет сохранённой заготовки
// и не заданы общие настройки.
type Defaults struct {
	PricePerKg     float64
	DimensionsUnit string
	VolumeUnit     string
	Currency       string
}

func (d Defaults) withFallbacks() Defaults {
	if d.DimensionsUnit == "" {
		d.DimensionsUnit = "mm"
	}
	if d.VolumeUnit == "" {
		d.VolumeUnit = "mm³"
	}
	return d
}

func savedInputs(p *parts.Part, def Defaults) Inputs {
	in := Inputs{
		Dimensions:     costing.Dimensions{},
		DimensionsUnit: def.DimensionsUnit,
		VolumeUnit:     def.VolumeUnit,
	}
	rm := p.RawMaterial
	if rm == nil {
		return in
	}
	in.MaterialID = cloneID(rm.MaterialID)
	in.ProfileID = cloneID(rm.ProfileID)
	in.Margin = rm.Margin
	if rm.Dimensions != nil {
		in.Dimensions = rm.Dimensions.Clone()
	}
	if rm.DimensionsUnit != "" {
		in.DimensionsUnit = rm.DimensionsUnit
	}
	if rm.VolumeUnit != "" {
		in.VolumeUnit = rm.VolumeUnit
	}
	return in
}

func sameInputs(a, b Inputs) bool {
	return sameID(a.MaterialID, b.MaterialID) &&
		sameID(a.ProfileID, b.ProfileID) &&
		a.Margin == b.Margin &&
		sameDimensions(a.Dimensions, b.Dimensions) &&
		a.DimensionsUnit == b.DimensionsUnit &&
		a.VolumeUnit == b.VolumeUnit
}

func sameDimensions(a, b costing.Dimensions) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if math.IsNaN(av) && math.IsNaN(bv) {
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
