package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/catalog"
	"github.com/Spok95/partcost/internal/domain/materials"
	"github.com/Spok95/partcost/internal/sheets"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUpload — предел размера загружаемого xlsx.
const maxUpload = 10 << 20

func (h *Handler) unitSymbols(w http.ResponseWriter, r *http.Request) {
	syms, err := h.deps.Catalog.Symbols(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, syms)
}

func (h *Handler) listMaterials(w http.ResponseWriter, r *http.Request) {
	var (
		ms  []materials.Material
		err error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		ms, err = h.deps.Materials.SearchByName(r.Context(), q)
	} else {
		ms, err = h.deps.Materials.List(r.Context())
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ms == nil {
		ms = []materials.Material{}
	}
	writeJSON(w, http.StatusOK, ms)
}

func validMaterial(m materials.Material) string {
	switch {
	case strings.TrimSpace(m.Name) == "":
		return "name is required"
	case !nonNegative(m.Density), !nonNegative(m.BlockPrice), !nonNegative(m.SheetPrice):
		return "density and prices must be non-negative numbers"
	}
	return ""
}

func nonNegative(v float64) bool { return costing.Finite(v) && v >= 0 }

func (h *Handler) createMaterial(w http.ResponseWriter, r *http.Request) {
	var m materials.Material
	if err := decode(r, &m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validMaterial(m); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if m.DensityUnit == "" {
		m.DensityUnit = costing.BaseDensity
	}
	created, err := h.deps.Materials.Create(r.Context(), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("material created", "material_id", created.ID, "name", created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}
	var p materials.Patch
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.Empty() {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	for _, v := range []*float64{p.Density, p.BlockPrice, p.SheetPrice} {
		if v != nil && !nonNegative(*v) {
			writeError(w, http.StatusBadRequest, "density and prices must be non-negative numbers")
			return
		}
	}
	m, err := h.deps.Materials.Update(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) deleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}
	deleted, err := h.deps.Materials.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type importResult struct {
	Updated int     `json:"updated"`
	Missing []int64 `json:"missing"`
}

// importMaterials принимает xlsx в поле формы "file" либо телом запроса.
func (h *Handler) importMaterials(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file")
			return
		}
		defer func() { _ = file.Close() }()
		src = file
	}
	data, err := io.ReadAll(src)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	updates, err := sheets.ParseMaterialSheet(bytes.NewReader(data))
	if err != nil {
		var rowErr *sheets.RowError
		if errors.As(err, &rowErr) {
			writeError(w, http.StatusBadRequest, rowErr.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read xlsx file")
		return
	}

	patches := make([]materials.IDPatch, 0, len(updates))
	for _, u := range updates {
		patches = append(patches, materials.IDPatch{ID: u.ID, Patch: u.Patch})
	}
	updated, missing, err := h.deps.Materials.ApplyPatches(r.Context(), patches)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res := importResult{Updated: updated, Missing: missing}
	if res.Missing == nil {
		res.Missing = []int64{}
	}
	h.log.Info("materials imported", "rows", len(updates), "updated", res.Updated, "missing", len(res.Missing))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) exportMaterials(w http.ResponseWriter, r *http.Request) {
	ms, err := h.deps.Materials.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	buf := &bytes.Buffer{}
	if err := sheets.ExportMaterials(buf, ms); err != nil {
		h.fail(w, r, err)
		return
	}
	writeXLSX(w, "materials.xlsx", buf.Bytes())
}

func (h *Handler) listProfiles(w http.ResponseWriter, r *http.Request) {
	ps, err := h.deps.Profiles.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) listClassifications(w http.ResponseWriter, r *http.Request) {
	cs, err := h.deps.Catalog.ListClassifications(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

type classificationRequest struct {
	Name        string                `json:"name"`
	PricingType materials.PricingType `json:"pricing_type"`
}

// upsertClassification добавляет класс детали или меняет его тип цены.
func (h *Handler) upsertClassification(w http.ResponseWriter, r *http.Request) {
	var req classificationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	switch req.PricingType {
	case materials.PricingBlock, materials.PricingSheet:
	default:
		writeError(w, http.StatusBadRequest, "unknown pricing type")
		return
	}
	c, err := h.deps.Catalog.UpsertClassification(r.Context(), name, req.PricingType)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("classification saved", "name", c.Name, "pricing_type", c.PricingType)
	writeJSON(w, http.StatusOK, c)
}

// deleteClassification — имя передаётся в ?name=.
func (h *Handler) deleteClassification(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	deleted, err := h.deps.Catalog.DeleteClassification(r.Context(), name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "classification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.deps.Catalog.Settings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var s catalog.Settings
	if err := decode(r, &s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !nonNegative(s.PricePerKg) {
		writeError(w, http.StatusBadRequest, "price_per_kg must be a non-negative number")
		return
	}
	switch materials.PricingType(s.DefaultCostingMethod) {
	case "", materials.PricingBlock, materials.PricingSheet:
	default:
		writeError(w, http.StatusBadRequest, "unknown costing method")
		return
	}
	if err := h.deps.Catalog.SaveSettings(r.Context(), s); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func writeXLSX(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
