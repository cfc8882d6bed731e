package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Причина неудачной конвертации единиц. Имена единиц в метки не попадают:
// они приходят от пользователя, их видно только в логе.
const (
	ReasonUnknownUnit  = "unknown_unit"
	ReasonIncompatible = "incompatible"
	ReasonNonFinite    = "non_finite"
	ReasonPanic        = "panic"
	ReasonOther        = "other"
)

var (
	UnitConversionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partcost_unit_conversion_failures_total",
		Help: "Failed unit conversions by reason.",
	}, []string{"reason"})

	Estimates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partcost_estimates_total",
		Help: "Raw-material volume/weight/cost estimates computed.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partcost_http_requests_total",
		Help: "API requests by route pattern and status code.",
	}, []string{"route", "code"})
)
