package units

import (
	"errors"
	"fmt"

	"github.com/Spok95/partcost/internal/metrics"
)

var (
	ErrUnknownUnit       = errors.New("unknown unit")
	ErrIncompatibleUnits = errors.New("incompatible units")
	ErrNonFinite         = errors.New("non-finite conversion result")
	ErrOraclePanic       = errors.New("conversion panicked")
)

// ConversionError описывает неудачную конвертацию value из From в To.
type ConversionError struct {
	Kind  error
	Value float64
	From  string
	To    string
	Msg   string
}

func (e *ConversionError) Error() string {
	if e == nil {
		return ""
	}
	s := fmt.Sprintf("%s: %v %s -> %s", e.Kind.Error(), e.Value, e.From, e.To)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ConversionError) Unwrap() error { return e.Kind }

// reason — метка метрики для ошибки конвертации; набор значений конечен.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownUnit):
		return metrics.ReasonUnknownUnit
	case errors.Is(err, ErrIncompatibleUnits):
		return metrics.ReasonIncompatible
	case errors.Is(err, ErrNonFinite):
		return metrics.ReasonNonFinite
	case errors.Is(err, ErrOraclePanic):
		return metrics.ReasonPanic
	default:
		return metrics.ReasonOther
	}
}
