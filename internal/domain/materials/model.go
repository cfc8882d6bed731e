package materials

import "time"

// PricingType — какая цена материала применяется к детали.
type PricingType string

const (
	PricingBlock PricingType = "block_price"
	PricingSheet PricingType = "sheet_price"
)

type Material struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Density     float64   `json:"density"`
	DensityUnit string    `json:"density_unit"`
	BlockPrice  float64   `json:"block_price"` // за kg, в валюте по умолчанию
	SheetPrice  float64   `json:"sheet_price"`
	CreatedAt   time.Time `json:"created_at"`
}

// PricePerKg — цена за kg по типу ценообразования, 0 если не задана.
func (m Material) PricePerKg(t PricingType) float64 {
	switch t {
	case PricingSheet:
		return m.SheetPrice
	case PricingBlock:
		return m.BlockPrice
	}
	return 0
}

// Patch — частичное обновление: nil означает «не менять».
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Density     *float64 `json:"density,omitempty"`
	DensityUnit *string  `json:"density_unit,omitempty"`
	BlockPrice  *float64 `json:"block_price,omitempty"`
	SheetPrice  *float64 `json:"sheet_price,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Density == nil && p.DensityUnit == nil && p.BlockPrice == nil && p.SheetPrice == nil
}

// IDPatch — правка конкретного материала в пакетном обновлении.
type IDPatch struct {
	ID    int64
	Patch Patch
}
