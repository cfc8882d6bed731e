package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Spok95/partcost/internal/domain/materials"
)

const (
	CategoryBasic  = "basic_units"
	CategoryCustom = "custom_units"
)

var (
	ErrUnitNotFound   = errors.New("unit not found")
	ErrNotCustomUnit  = errors.New("unit is not a custom unit")
	ErrInvalidDefault = errors.New("default unit is not among the unit symbols")
	ErrInvalidUnit    = errors.New("invalid unit")
)

// Unit — строка справочника единиц: тип величины, единица по умолчанию и варианты.
type Unit struct {
	ID       int64    `json:"id"`
	Category string   `json:"category"`  // basic_units | custom_units
	UnitType string   `json:"unit_type"` // length, area, volume, density, currency...
	Default  string   `json:"unit_name"`
	Symbols  []string `json:"symbol"`
}

// Classification — класс детали и применяемый к нему тип цены материала.
type Classification struct {
	ID          int64                 `json:"id"`
	Name        string                `json:"name"`
	PricingType materials.PricingType `json:"pricing_type"`
}

// Settings — общие настройки расчёта стоимости.
type Settings struct {
	DefaultCurrency      string  `json:"default_currency"`
	DefaultCostingMethod string  `json:"default_costing_method"`
	PricePerKg           float64 `json:"price_per_kg"`
}

// SymbolsByType сворачивает справочник в unit_type -> символы.
func SymbolsByType(us []Unit) map[string][]string {
	out := make(map[string][]string, len(us))
	for _, u := range us {
		out[u.UnitType] = append(out[u.UnitType], u.Symbols...)
	}
	return out
}

// Normalize приводит описание единицы к виду для записи: символы без
// пробелов и повторов, единица по умолчанию всегда среди символов.
func (u Unit) Normalize() (Unit, error) {
	u.UnitType = strings.TrimSpace(u.UnitType)
	u.Default = strings.TrimSpace(u.Default)
	if u.UnitType == "" {
		return u, fmt.Errorf("%w: unit_type is required", ErrInvalidUnit)
	}
	if u.Default == "" {
		return u, fmt.Errorf("%w: unit_name is required", ErrInvalidUnit)
	}
	syms := make([]string, 0, len(u.Symbols)+1)
	for _, s := range u.Symbols {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(syms, s) {
			syms = append(syms, s)
		}
	}
	if !slices.Contains(syms, u.Default) {
		syms = append([]string{u.Default}, syms...)
	}
	u.Symbols = syms
	return u, nil
}

// ApplyDefaults меняет единицы по умолчанию у единиц категории category.
// Тип вне категории даёт ErrUnitNotFound, символ вне списка — ErrInvalidDefault;
// при ошибке не меняется ничего. Возвращает только изменённые единицы.
func ApplyDefaults(us []Unit, category string, updates map[string]string) ([]Unit, error) {
	byType := make(map[string]Unit, len(us))
	for _, u := range us {
		if u.Category == category {
			byType[u.UnitType] = u
		}
	}
	types := make([]string, 0, len(updates))
	for t := range updates {
		types = append(types, t)
	}
	slices.Sort(types)

	out := make([]Unit, 0, len(types))
	for _, t := range types {
		u, ok := byType[t]
		if !ok {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnitNotFound, category, t)
		}
		def := strings.TrimSpace(updates[t])
		if !slices.Contains(u.Symbols, def) {
			return nil, fmt.Errorf("%w: %s %q", ErrInvalidDefault, t, def)
		}
		u.Default = def
		out = append(out, u)
	}
	return out, nil
}
