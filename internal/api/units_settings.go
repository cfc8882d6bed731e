package api

import (
	"errors"
	"net/http"

	"github.com/Spok95/partcost/internal/domain/catalog"
)

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	us, err := h.deps.Catalog.ListUnits(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if us == nil {
		us = []catalog.Unit{}
	}
	writeJSON(w, http.StatusOK, us)
}

// setUnitDefaults — тело {unit_type: unit_name}; все изменения или ни одного.
func (h *Handler) setUnitDefaults(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category != catalog.CategoryBasic && category != catalog.CategoryCustom {
		writeError(w, http.StatusNotFound, "unknown unit category")
		return
	}
	var updates map[string]string
	if err := decode(r, &updates); err != nil || len(updates) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	changed, err := h.deps.Catalog.SetDefaults(r.Context(), category, updates)
	switch {
	case errors.Is(err, catalog.ErrUnitNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, catalog.ErrInvalidDefault):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	h.log.Info("unit defaults updated", "category", category, "units", len(changed))
	writeJSON(w, http.StatusOK, changed)
}

type customUnitRequest struct {
	Category string   `json:"category"`
	UnitName string   `json:"unit_name"`
	Symbols  []string `json:"symbol"`
}

// customUnit читает тело и проверяет, что существующая запись с этим
// unit_type — пользовательская. Ответ с ошибкой уже записан, если ok == false.
func (h *Handler) customUnit(w http.ResponseWriter, r *http.Request, needBody bool) (req customUnitRequest, existing *catalog.Unit, ok bool) {
	if needBody {
		if err := decode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return req, nil, false
		}
		if req.Category != "" && req.Category != catalog.CategoryCustom {
			writeError(w, http.StatusBadRequest, "category must be "+catalog.CategoryCustom)
			return req, nil, false
		}
	}
	existing, err := h.deps.Catalog.GetUnit(r.Context(), r.PathValue("unit_type"))
	if err != nil {
		h.fail(w, r, err)
		return req, nil, false
	}
	if existing != nil && existing.Category != catalog.CategoryCustom {
		writeError(w, http.StatusBadRequest, catalog.ErrNotCustomUnit.Error())
		return req, nil, false
	}
	return req, existing, true
}

func (req customUnitRequest) unit(unitType string) (catalog.Unit, error) {
	return catalog.Unit{
		Category: catalog.CategoryCustom,
		UnitType: unitType,
		Default:  req.UnitName,
		Symbols:  req.Symbols,
	}.Normalize()
}

func (h *Handler) upsertCustomUnit(w http.ResponseWriter, r *http.Request) {
	req, _, ok := h.customUnit(w, r, true)
	if !ok {
		return
	}
	u, err := req.unit(r.PathValue("unit_type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.deps.Catalog.UpsertUnit(r.Context(), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u.ID = id
	h.log.Info("custom unit saved", "unit_type", u.UnitType, "unit_name", u.Default)
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) updateCustomUnit(w http.ResponseWriter, r *http.Request) {
	req, existing, ok := h.customUnit(w, r, true)
	if !ok {
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, catalog.ErrUnitNotFound.Error())
		return
	}
	u, err := req.unit(existing.UnitType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u.ID = existing.ID
	updated, err := h.deps.Catalog.UpdateUnit(r.Context(), u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, catalog.ErrUnitNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) deleteCustomUnit(w http.ResponseWriter, r *http.Request) {
	_, existing, ok := h.customUnit(w, r, false)
	if !ok {
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, catalog.ErrUnitNotFound.Error())
		return
	}
	deleted, err := h.deps.Catalog.DeleteUnit(r.Context(), existing.UnitType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, catalog.ErrUnitNotFound.Error())
		return
	}
	h.log.Info("custom unit deleted", "unit_type", existing.UnitType)
	w.WriteHeader(http.StatusNoContent)
}
