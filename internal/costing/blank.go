package costing

import "github.com/Spok95/partcost/internal/units"

// BoundingBox — габариты детали из CAD-анализа.
type BoundingBox struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit,omitempty"`
}

// Margin — припуск на заготовку по осям.
type Margin struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromBoundingBox строит размеры прямоугольной заготовки: габарит плюс припуск.
func FromBoundingBox(bbox BoundingBox, m Margin) Dimensions {
	return Dimensions{
		"length": bbox.Width + m.X,
		"width":  bbox.Depth + m.Y,
		"height": bbox.Height + m.Z,
	}
}

// ConvertDimensions переводит каждый размер из from в to. Исходный набор не меняется.
func ConvertDimensions(conv *units.Converter, dims Dimensions, from, to string) Dimensions {
	if conv == nil {
		conv = units.Default
	}
	out := make(Dimensions, len(dims))
	for k, v := range dims {
		out[k] = conv.Convert(v, from, to)
	}
	return out
}

// RestoreProfileDimensions оставляет ровно поля профиля: уже введённые значения
// сохраняются, новые поля получают 0.
func RestoreProfileDimensions(fields []string, prev Dimensions) Dimensions {
	out := make(Dimensions, len(fields))
	for _, f := range fields {
		if v, ok := prev[f]; ok {
			out[f] = v
		} else {
			out[f] = 0
		}
	}
	return out
}
