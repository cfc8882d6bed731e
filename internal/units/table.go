package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension — показатели степени базовых величин (длина, масса, время).
type Dimension struct {
	Length int
	Mass   int
	Time   int
}

var (
	Dimensionless = Dimension{}
	Length        = Dimension{Length: 1}
	Area          = Dimension{Length: 2}
	Volume        = Dimension{Length: 3}
	Mass          = Dimension{Mass: 1}
	Time          = Dimension{Time: 1}
	Density       = Dimension{Mass: 1, Length: -3}
)

func (d Dimension) pow(n int) Dimension {
	return Dimension{Length: d.Length * n, Mass: d.Mass * n, Time: d.Time * n}
}

func (d Dimension) sub(o Dimension) Dimension {
	return Dimension{Length: d.Length - o.Length, Mass: d.Mass - o.Mass, Time: d.Time - o.Time}
}

func (d Dimension) String() string {
	switch d {
	case Dimensionless:
		return "dimensionless"
	case Length:
		return "length"
	case Area:
		return "area"
	case Volume:
		return "volume"
	case Mass:
		return "mass"
	case Time:
		return "time"
	case Density:
		return "density"
	}
	return fmt.Sprintf("L%d·M%d·T%d", d.Length, d.Mass, d.Time)
}

type unitDef struct {
	dim    Dimension
	factor float64 // множитель к базовой единице СИ (m, kg, s)
}

// Базовые единицы. Площадь и объём получаются суффиксом степени (mm2, ft3),
// плотность — дробью масса/объём (g/cm3, lb/in3).
var baseUnits = map[string]unitDef{
	"um": {Length, 1e-6},
	"mm": {Length, 1e-3},
	"cm": {Length, 1e-2},
	"dm": {Length, 1e-1},
	"m":  {Length, 1},
	"km": {Length, 1e3},
	"in": {Length, 0.0254},
	"ft": {Length, 0.3048},
	"yd": {Length, 0.9144},
	"mi": {Length, 1609.344},

	"ml": {Volume, 1e-6},
	"cl": {Volume, 1e-5},
	"l":  {Volume, 1e-3},
	"L":  {Volume, 1e-3},

	"mg": {Mass, 1e-6},
	"g":  {Mass, 1e-3},
	"kg": {Mass, 1},
	"t":  {Mass, 1e3},
	"oz": {Mass, 0.028349523125},
	"lb": {Mass, 0.45359237},

	"ms":  {Time, 1e-3},
	"s":   {Time, 1},
	"min": {Time, 60},
	"h":   {Time, 3600},
	"hr":  {Time, 3600},
	"d":   {Time, 86400},
}

var superscriptDigits = strings.NewReplacer("¹", "1", "²", "2", "³", "3")

// Table — таблица размерностей, через которую Converter переводит значения.
// Register не потокобезопасен: регистрировать единицы нужно до первого Convert.
type Table struct {
	units map[string]unitDef
}

func NewTable() *Table {
	t := &Table{units: make(map[string]unitDef, len(baseUnits))}
	for k, v := range baseUnits {
		t.units[k] = v
	}
	return t
}

// Register добавляет единицу: factor — сколько базовых единиц СИ в одной symbol.
func (t *Table) Register(symbol string, dim Dimension, factor float64) {
	t.units[symbol] = unitDef{dim: dim, factor: factor}
}

// Dimension возвращает размерность символа единицы.
func (t *Table) Dimension(symbol string) (Dimension, error) {
	u, err := t.resolve(symbol)
	if err != nil {
		return Dimension{}, err
	}
	return u.dim, nil
}

func (t *Table) Convert(value float64, from, to string) (float64, error) {
	src, err := t.resolve(from)
	if err != nil {
		return value, &ConversionError{Kind: ErrUnknownUnit, Value: value, From: from, To: to, Msg: err.Error()}
	}
	dst, err := t.resolve(to)
	if err != nil {
		return value, &ConversionError{Kind: ErrUnknownUnit, Value: value, From: from, To: to, Msg: err.Error()}
	}
	if src.dim != dst.dim {
		return value, &ConversionError{
			Kind: ErrIncompatibleUnits, Value: value, From: from, To: to,
			Msg: fmt.Sprintf("%s is %s, %s is %s", from, src.dim, to, dst.dim),
		}
	}
	return value * (src.factor / dst.factor), nil
}

func (t *Table) resolve(symbol string) (unitDef, error) {
	s := superscriptDigits.Replace(strings.TrimSpace(symbol))
	if s == "" {
		return unitDef{}, fmt.Errorf("empty unit symbol")
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := t.resolveSimple(strings.TrimSpace(num))
		if err != nil {
			return unitDef{}, err
		}
		d, err := t.resolveSimple(strings.TrimSpace(den))
		if err != nil {
			return unitDef{}, err
		}
		return unitDef{dim: n.dim.sub(d.dim), factor: n.factor / d.factor}, nil
	}
	return t.resolveSimple(s)
}

func (t *Table) resolveSimple(s string) (unitDef, error) {
	if u, ok := t.units[s]; ok {
		return u, nil
	}
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) || i == 0 {
		return unitDef{}, fmt.Errorf("%q not in unit table", s)
	}
	exp, err := strconv.Atoi(s[i:])
	if err != nil || exp < 1 || exp > 3 {
		return unitDef{}, fmt.Errorf("%q: unsupported exponent", s)
	}
	base, ok := t.units[s[:i]]
	if !ok {
		return unitDef{}, fmt.Errorf("%q not in unit table", s[:i])
	}
	factor := 1.0
	for range exp {
		factor *= base.factor
	}
	return unitDef{dim: base.dim.pow(exp), factor: factor}, nil
}
