package units

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/Spok95/partcost/internal/metrics"
)

// Oracle переводит значение между нормализованными ASCII-единицами одной размерности.
type Oracle interface {
	Convert(value float64, from, to string) (float64, error)
}

// Converter — конвертер единиц «по возможности»: при любой ошибке
// возвращает исходное значение и пишет предупреждение в лог.
type Converter struct {
	oracle Oracle
	log    *slog.Logger
}

type Option func(*Converter)

// WithOracle подменяет таблицу конвертации (по умолчанию NewTable()).
func WithOracle(o Oracle) Option {
	return func(c *Converter) {
		if o != nil {
			c.oracle = o
		}
	}
}

// WithLogger задаёт логгер для диагностики (по умолчанию slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.log = l
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{oracle: NewTable()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default используется пакетной функцией Convert.
var Default = NewConverter()

// Convert переводит value из fromUnit в toUnit через Default.
func Convert(value float64, fromUnit, toUnit string) float64 {
	return Default.Convert(value, fromUnit, toUnit)
}

// Convert переводит value из fromUnit в toUnit. Одинаковые после нормализации
// единицы и NaN возвращаются как есть. Ошибка конвертации не пробрасывается:
// в лог уходит предупреждение, возвращается исходное value.
func (c *Converter) Convert(value float64, fromUnit, toUnit string) float64 {
	from, to := Normalize(fromUnit), Normalize(toUnit)
	if from == to || math.IsNaN(value) {
		return value
	}
	out, err := c.convert(value, from, to)
	if err != nil {
		c.fail(value, fromUnit, toUnit, from, to, err)
		return value
	}
	return out
}

// TryConvert — строгий вариант Convert: ошибка возвращается вызывающему,
// без записи в лог и метрики.
func (c *Converter) TryConvert(value float64, fromUnit, toUnit string) (float64, error) {
	from, to := Normalize(fromUnit), Normalize(toUnit)
	if from == to || math.IsNaN(value) {
		return value, nil
	}
	return c.convert(value, from, to)
}

// ConvertQuantity переводит q в единицу to. При ошибке q возвращается
// без изменений вместе со своей исходной единицей.
func (c *Converter) ConvertQuantity(q Quantity, to string) Quantity {
	from, dst := Normalize(q.Unit), Normalize(to)
	if from == dst || math.IsNaN(q.Value) {
		return Quantity{Value: q.Value, Unit: to}
	}
	out, err := c.convert(q.Value, from, dst)
	if err != nil {
		c.fail(q.Value, q.Unit, to, from, dst, err)
		return q
	}
	return Quantity{Value: out, Unit: to}
}

func (c *Converter) convert(value float64, from, to string) (out float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = value
			err = &ConversionError{Kind: ErrOraclePanic, Value: value, From: from, To: to, Msg: fmt.Sprint(r)}
		}
	}()
	out, err = c.oracle.Convert(value, from, to)
	if err != nil {
		return value, err
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return value, &ConversionError{Kind: ErrNonFinite, Value: value, From: from, To: to}
	}
	return out, nil
}

func (c *Converter) fail(value float64, fromUnit, toUnit, from, to string, err error) {
	metrics.UnitConversionFailures.WithLabelValues(reason(err)).Inc()
	c.logger().Warn("unit conversion failed",
		"value", value,
		"from", fromUnit,
		"to", toUnit,
		"normalized_from", from,
		"normalized_to", to,
		"err", err,
	)
}

func (c *Converter) logger() *slog.Logger {
	if c.log != nil {
		return c.log
	}
	return slog.Default()
}
