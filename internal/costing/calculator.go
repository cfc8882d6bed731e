package costing

import (
	"github.com/Spok95/partcost/internal/metrics"
	"github.com/Spok95/partcost/internal/units"
)

// Единицы, в которых считаются вес и стоимость.
const (
	BaseLength  = "mm"
	BaseVolume  = "mm3"
	BaseDensity = "g/cm3"
	BaseWeight  = "kg"
)

// DimensionSet — размеры заготовки вместе с их общей единицей.
type DimensionSet struct {
	Unit   string     `json:"unit"`
	Values Dimensions `json:"values"`
}

// Input — всё, от чего зависят объём, вес и стоимость заготовки.
type Input struct {
	Dimensions DimensionSet
	Density    units.Quantity
	PricePerKg float64
	VolumeUnit string // единица отображения объёма, по умолчанию mm³
}

type Estimate struct {
	Volume     units.Quantity `json:"volume"`      // в единице отображения
	BaseVolume units.Quantity `json:"base_volume"` // всегда mm3, из него считается вес
	Weight     units.Quantity `json:"weight"`
	Cost       float64        `json:"cost"`
}

// Calculator переводит входные величины в mm / mm³ / g/cm³ / kg прежде
// чем применить формулы Volume, Weight и Cost.
type Calculator struct {
	conv *units.Converter
}

func NewCalculator(conv *units.Converter) *Calculator {
	if conv == nil {
		conv = units.Default
	}
	return &Calculator{conv: conv}
}

// VolumeOf — объём набора размеров в mm3.
func (c *Calculator) VolumeOf(d DimensionSet) units.Quantity {
	mm := ConvertDimensions(c.conv, d.Values, unitOr(d.Unit, BaseLength), BaseLength)
	return units.Q(Volume(mm), BaseVolume)
}

// WeightOf — вес в kg по объёму и плотности в любых совместимых единицах.
func (c *Calculator) WeightOf(volume, density units.Quantity) units.Quantity {
	v := c.conv.Convert(volume.Value, unitOr(volume.Unit, BaseVolume), BaseVolume)
	density.Unit = unitOr(density.Unit, BaseDensity)
	if !density.Valid() || density.Value == 0 {
		return units.Q(0, BaseWeight)
	}
	d := c.conv.Convert(density.Value, density.Unit, BaseDensity)
	return units.Q(Weight(v, d), BaseWeight)
}

// CostOf — стоимость по весу и цене за kg.
func (c *Calculator) CostOf(weight units.Quantity, pricePerKg float64) float64 {
	w := c.conv.Convert(weight.Value, unitOr(weight.Unit, BaseWeight), BaseWeight)
	return Cost(w, pricePerKg)
}

// Estimate пересчитывает объём, вес и стоимость. Вес считается от объёма в mm3,
// а не от значения в единице отображения.
func (c *Calculator) Estimate(in Input) Estimate {
	base := c.VolumeOf(in.Dimensions)
	weight := c.WeightOf(base, in.Density)
	cost := c.CostOf(weight, in.PricePerKg)

	volUnit := unitOr(in.VolumeUnit, "mm³")
	display := c.conv.ConvertQuantity(base, volUnit)

	metrics.Estimates.Inc()
	return Estimate{
		Volume:     display,
		BaseVolume: base,
		Weight:     weight,
		Cost:       cost,
	}
}

func unitOr(u, def string) string {
	if u == "" {
		return def
	}
	return u
}
