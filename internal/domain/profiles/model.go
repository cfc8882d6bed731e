package profiles

import "sort"

// Profile — сечение заготовки: набор именованных размеров и их единицы.
type Profile struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Fields        map[string]string `json:"fields_json"` // length -> mm
	VolumeFormula *string           `json:"volume_formula,omitempty"`
	DefaultUnit   string            `json:"default_unit"`
}

// FieldNames — имена размеров профиля по алфавиту.
func (p Profile) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
