package costing

import (
	"encoding/json"
	"math"
)

// MarshalJSON пишет незаданные (NaN, ±Inf) размеры как null.
func (d Dimensions) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	out := make(map[string]*float64, len(d))
	for k, v := range d {
		if Finite(v) {
			out[k] = &v
		} else {
			out[k] = nil
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON читает null как незаданный размер (NaN).
func (d *Dimensions) UnmarshalJSON(b []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}
	out := make(Dimensions, len(raw))
	for k, v := range raw {
		if v == nil {
			out[k] = math.NaN()
		} else {
			out[k] = *v
		}
	}
	*d = out
	return nil
}
