package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/domain/projects"
	"github.com/Spok95/partcost/internal/sheets"
)

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := h.deps.Projects.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ps == nil {
		ps = []projects.Project{}
	}
	writeJSON(w, http.StatusOK, ps)
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p, err := h.deps.Projects.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("project created", "project_id", p.ProjectID, "slug", p.Slug)
	writeJSON(w, http.StatusCreated, p)
}

// project возвращает проект из пути или пишет 404.
func (h *Handler) project(w http.ResponseWriter, r *http.Request) (*projects.Project, bool) {
	p, err := h.deps.Projects.GetByID(r.Context(), r.PathValue("project_id"))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

func (h *Handler) listParts(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	ps, err := h.deps.Parts.ListByProject(r.Context(), p.ProjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if ps == nil {
		ps = []parts.Part{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *Handler) createPart(w http.ResponseWriter, r *http.Request) {
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	var n parts.New
	if err := decode(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(n.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	bb := n.BoundingBox
	for _, v := range []float64{bb.Width, bb.Depth, bb.Height, n.Volume, n.SurfaceArea} {
		if !nonNegative(v) {
			writeError(w, http.StatusBadRequest, "geometry must be non-negative numbers")
			return
		}
	}
	n.ProjectID = p.ProjectID
	part, err := h.deps.Parts.Create(r.Context(), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, part)
}

// exportEstimates выгружает сохранённые заготовки всех деталей проекта.
func (h *Handler) exportEstimates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.project(w, r)
	if !ok {
		return
	}
	ps, err := h.deps.Parts.ListByProject(ctx, p.ProjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ms, err := h.deps.Materials.List(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	names := make(map[int64]string, len(ms))
	for _, m := range ms {
		names[m.ID] = m.Name
	}
	settings, err := h.deps.Catalog.Settings(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	currency := settings.DefaultCurrency
	if currency == "" {
		currency = h.deps.Currency
	}

	rows := make([]sheets.EstimateRow, 0, len(ps))
	total := 0.0
	for _, part := range ps {
		var material string
		if rm := part.RawMaterial; rm != nil && rm.MaterialID != nil {
			material = names[*rm.MaterialID]
		}
		row := sheets.RowFromPart(part, material, currency)
		if costing.Finite(row.Cost) {
			total += row.Cost
		}
		rows = append(rows, row)
	}

	buf := &bytes.Buffer{}
	if err := sheets.ExportEstimates(buf, rows); err != nil {
		h.fail(w, r, err)
		return
	}
	h.log.Info("estimates exported", "project_id", p.ProjectID, "parts", len(rows), "total_cost", total)
	writeXLSX(w, p.Slug+"_estimate.xlsx", buf.Bytes())
}
