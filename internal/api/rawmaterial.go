package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/rawmaterial"
)

func (h *Handler) loadRawMaterial(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Editor.Load(r.Context(), r.PathValue("part_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) editRawMaterial(w http.ResponseWriter, r *http.Request) {
	var ch rawmaterial.Change
	if err := decode(r, &ch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.deps.Editor.Edit(r.Context(), r.PathValue("part_id"), ch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type saveRequest struct {
	ModifiedBy string `json:"modified_by"`
}

// saveRawMaterial — тело необязательно.
func (h *Handler) saveRawMaterial(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.deps.Editor.Save(r.Context(), r.PathValue("part_id"), req.ModifiedBy)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) applyBoundingBox(w http.ResponseWriter, r *http.Request) {
	var m costing.Margin
	if err := decode(r, &m); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, err := h.deps.Editor.ApplyBoundingBox(r.Context(), r.PathValue("part_id"), m)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) resetRawMaterial(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.Editor.Reset(r.Context(), r.PathValue("part_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
