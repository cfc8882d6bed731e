package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/units"
)

func (h *Handler) normalize(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	writeJSON(w, http.StatusOK, map[string]string{
		"symbol":     symbol,
		"normalized": units.Normalize(symbol),
	})
}

type convertResponse struct {
	Value  float64 `json:"value"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Result float64 `json:"result"`
}

// convert — best-effort: при несовместимых единицах возвращается исходное значение.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("value"))
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || !costing.Finite(value) {
		writeError(w, http.StatusBadRequest, "invalid value parameter")
		return
	}
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing from or to parameter")
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{
		Value:  value,
		From:   from,
		To:     to,
		Result: h.conv.Convert(value, from, to),
	})
}

type estimateRequest struct {
	Dimensions     costing.Dimensions `json:"dimensions"`
	DimensionsUnit string             `json:"dimensions_unit"`
	Density        float64            `json:"density"`
	DensityUnit    string             `json:"density_unit"`
	PricePerKg     float64            `json:"price_per_kg"`
	VolumeUnit     string             `json:"volume_unit"`
}

type estimateResponse struct {
	costing.Estimate
	CostDisplay string `json:"cost_display"`
}

func (h *Handler) estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	est := h.calc.Estimate(costing.Input{
		Dimensions: costing.DimensionSet{Unit: req.DimensionsUnit, Values: req.Dimensions},
		Density:    units.Q(req.Density, req.DensityUnit),
		PricePerKg: req.PricePerKg,
		VolumeUnit: req.VolumeUnit,
	})
	writeJSON(w, http.StatusOK, estimateResponse{
		Estimate:    est,
		CostDisplay: costing.FormatMoney(est.Cost),
	})
}
