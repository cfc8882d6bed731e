package units

import (
	"encoding/json"
	"math"
	"strconv"
)

// Quantity — значение с единицей измерения. Конвертация всегда
// возвращает новое значение, исходное не меняется.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func Q(value float64, unit string) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// Valid — значение конечное и единица задана.
func (q Quantity) Valid() bool {
	return q.Unit != "" && !math.IsNaN(q.Value) && !math.IsInf(q.Value, 0)
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit
}

// MarshalJSON пишет NaN и ±Inf как null: encoding/json их не поддерживает.
func (q Quantity) MarshalJSON() ([]byte, error) {
	var v *float64
	if !math.IsNaN(q.Value) && !math.IsInf(q.Value, 0) {
		v = &q.Value
	}
	return json.Marshal(struct {
		Value *float64 `json:"value"`
		Unit  string   `json:"unit"`
	}{v, q.Unit})
}
