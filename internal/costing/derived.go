package costing

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// WeightDivisor переводит mm³ · g/cm³ в kg.
const WeightDivisor = 1_000_000

// Dimensions — именованные линейные размеры заготовки в одной единице.
type Dimensions map[string]float64

// Names возвращает имена размеров в детерминированном порядке.
func (d Dimensions) Names() []string {
	names := make([]string, 0, len(d))
	for k := range d {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone возвращает независимую копию.
func (d Dimensions) Clone() Dimensions {
	out := make(Dimensions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Volume — произведение всех размеров. Незаданное (NaN, ±Inf) значение
// пропускается как множитель 1, явный 0 обнуляет объём. Пустой набор даёт 1.
func Volume(dims Dimensions) float64 {
	vol := 1.0
	for _, name := range dims.Names() {
		v := dims[name]
		if !Finite(v) {
			continue
		}
		vol *= v
	}
	return vol
}

// Weight = volume(mm³) * density(g/cm³) / 1e6, результат в kg.
// Нет плотности (0 или невалидное значение) или переполнение — вес 0.
func Weight(volume, density float64) float64 {
	if density == 0 || !Finite(density) || !Finite(volume) {
		return 0
	}
	return finiteOrZero(volume * density / WeightDivisor)
}

// Cost = weight * unitPrice, без конвертации валют. Переполнение даёт 0.
func Cost(weight, unitPrice float64) float64 {
	if weight == 0 || !Finite(weight) || !Finite(unitPrice) {
		return 0
	}
	return finiteOrZero(weight * unitPrice)
}

// FormatMoney округляет сумму до двух знаков; невалидная сумма — "0.00".
func FormatMoney(v float64) string {
	if !Finite(v) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// RoundMoney — то же округление, числом.
func RoundMoney(v float64) float64 {
	if !Finite(v) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func finiteOrZero(v float64) float64 {
	if !Finite(v) {
		return 0
	}
	return v
}

// Finite — значение задано: не NaN и не ±Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
