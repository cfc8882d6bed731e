package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/catalog"
	"github.com/Spok95/partcost/internal/domain/materials"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/domain/profiles"
	"github.com/Spok95/partcost/internal/domain/projects"
	"github.com/Spok95/partcost/internal/metrics"
	"github.com/Spok95/partcost/internal/rawmaterial"
	"github.com/Spok95/partcost/internal/units"
)

type MaterialStore interface {
	Create(ctx context.Context, m materials.Material) (*materials.Material, error)
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
	List(ctx context.Context) ([]materials.Material, error)
	Update(ctx context.Context, id int64, p materials.Patch) (*materials.Material, error)
	Delete(ctx context.Context, id int64) (bool, error)
	SearchByName(ctx context.Context, q string) ([]materials.Material, error)
	ApplyPatches(ctx context.Context, patches []materials.IDPatch) (int, []int64, error)
}

type ProfileStore interface {
	List(ctx context.Context) ([]profiles.Profile, error)
}

type CatalogStore interface {
	ListUnits(ctx context.Context) ([]catalog.Unit, error)
	Symbols(ctx context.Context) (map[string][]string, error)
	GetUnit(ctx context.Context, unitType string) (*catalog.Unit, error)
	UpsertUnit(ctx context.Context, u catalog.Unit) (int64, error)
	UpdateUnit(ctx context.Context, u catalog.Unit) (bool, error)
	DeleteUnit(ctx context.Context, unitType string) (bool, error)
	SetDefaults(ctx context.Context, category string, updates map[string]string) ([]catalog.Unit, error)

	ListClassifications(ctx context.Context) ([]catalog.Classification, error)
	UpsertClassification(ctx context.Context, name string, pt materials.PricingType) (*catalog.Classification, error)
	DeleteClassification(ctx context.Context, name string) (bool, error)

	Settings(ctx context.Context) (catalog.Settings, error)
	SaveSettings(ctx context.Context, s catalog.Settings) error
}

type ProjectStore interface {
	Create(ctx context.Context, name, description string) (*projects.Project, error)
	GetByID(ctx context.Context, id string) (*projects.Project, error)
	List(ctx context.Context) ([]projects.Project, error)
}

type PartStore interface {
	Create(ctx context.Context, n parts.New) (*parts.Part, error)
	ListByProject(ctx context.Context, projectID string) ([]parts.Part, error)
}

// Editor — редактирование заготовки, см. rawmaterial.Service.
type Editor interface {
	Load(ctx context.Context, partID string) (*rawmaterial.View, error)
	Edit(ctx context.Context, partID string, ch rawmaterial.Change) (*rawmaterial.View, error)
	ApplyBoundingBox(ctx context.Context, partID string, m costing.Margin) (*rawmaterial.View, error)
	Reset(ctx context.Context, partID string) (*rawmaterial.View, error)
	Save(ctx context.Context, partID, modifiedBy string) (*rawmaterial.View, error)
}

type Deps struct {
	Materials MaterialStore
	Profiles  ProfileStore
	Catalog   CatalogStore
	Projects  ProjectStore
	Parts     PartStore
	Editor    Editor
	Converter *units.Converter
	Currency  string // если в настройках валюта не задана
}

type Handler struct {
	log  *slog.Logger
	deps Deps
	conv *units.Converter
	calc *costing.Calculator
	mux  *http.ServeMux
}

func New(log *slog.Logger, deps Deps) *Handler {
	conv := deps.Converter
	if conv == nil {
		conv = units.Default
	}
	h := &Handler{
		log:  log,
		deps: deps,
		conv: conv,
		calc: costing.NewCalculator(conv),
		mux:  http.NewServeMux(),
	}

	h.handle("GET /units/normalize", h.normalize)
	h.handle("GET /units/convert", h.convert)
	h.handle("POST /estimate", h.estimate)

	h.handle("GET /settings/units", h.listUnits)
	h.handle("GET /settings/units/symbols", h.unitSymbols)
	h.handle("PUT /settings/units/{category}", h.setUnitDefaults)
	h.handle("POST /settings/units/custom_units/{unit_type}", h.upsertCustomUnit)
	h.handle("PUT /settings/units/custom_units/{unit_type}", h.updateCustomUnit)
	h.handle("DELETE /settings/units/custom_units/{unit_type}", h.deleteCustomUnit)
	h.handle("GET /settings/materials", h.listMaterials)
	h.handle("POST /settings/materials", h.createMaterial)
	h.handle("PUT /settings/materials/{id}", h.updateMaterial)
	h.handle("DELETE /settings/materials/{id}", h.deleteMaterial)
	h.handle("POST /settings/materials/import", h.importMaterials)
	h.handle("GET /settings/materials/export.xlsx", h.exportMaterials)
	h.handle("GET /settings/profiles", h.listProfiles)
	h.handle("GET /settings/part_classification", h.listClassifications)
	h.handle("POST /settings/part_classification", h.upsertClassification)
	h.handle("DELETE /settings/part_classification", h.deleteClassification)
	h.handle("GET /settings/advanced", h.getSettings)
	h.handle("PUT /settings/advanced", h.saveSettings)

	h.handle("GET /projects", h.listProjects)
	h.handle("POST /projects", h.createProject)
	h.handle("GET /projects/{project_id}/parts", h.listParts)
	h.handle("POST /projects/{project_id}/parts", h.createPart)
	h.handle("GET /projects/{project_id}/estimate.xlsx", h.exportEstimates)

	h.handle("GET /parts/{part_id}/raw-material", h.loadRawMaterial)
	h.handle("PATCH /parts/{part_id}/raw-material", h.editRawMaterial)
	h.handle("PUT /parts/{part_id}/raw-material", h.saveRawMaterial)
	h.handle("POST /parts/{part_id}/raw-material/bounding-box", h.applyBoundingBox)
	h.handle("POST /parts/{part_id}/raw-material/reset", h.resetRawMaterial)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handle регистрирует маршрут и считает ответы по шаблону маршрута.
func (h *Handler) handle(pattern string, fn http.HandlerFunc) {
	h.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		fn(rec, r)
		metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(rec.code)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// fail переводит ошибку сервиса в ответ; неожиданные ошибки логируются.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, rawmaterial.ErrPartNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, rawmaterial.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
