package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/catalog"
	"github.com/Spok95/partcost/internal/domain/materials"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/domain/profiles"
	"github.com/Spok95/partcost/internal/domain/projects"
	"github.com/Spok95/partcost/internal/metrics"
	"github.com/Spok95/partcost/internal/rawmaterial"
	"github.com/Spok95/partcost/internal/sheets"
	"github.com/Spok95/partcost/internal/units"
)

type memMaterials struct {
	nextID   int64
	byID     map[int64]*materials.Material
	err      error
	batchErr error
	batches  int
}

func (m *memMaterials) Create(_ context.Context, mat materials.Material) (*materials.Material, error) {
	m.nextID++
	mat.ID = m.nextID
	m.byID[mat.ID] = &mat
	return &mat, nil
}

func (m *memMaterials) GetByID(_ context.Context, id int64) (*materials.Material, error) {
	return m.byID[id], nil
}

func (m *memMaterials) List(context.Context) ([]materials.Material, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []materials.Material
	for id := int64(1); id <= m.nextID; id++ {
		if mat, ok := m.byID[id]; ok {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *memMaterials) Update(_ context.Context, id int64, p materials.Patch) (*materials.Material, error) {
	mat, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	if p.Name != nil {
		mat.Name = *p.Name
	}
	if p.Density != nil {
		mat.Density = *p.Density
	}
	if p.DensityUnit != nil {
		mat.DensityUnit = *p.DensityUnit
	}
	if p.BlockPrice != nil {
		mat.BlockPrice = *p.BlockPrice
	}
	if p.SheetPrice != nil {
		mat.SheetPrice = *p.SheetPrice
	}
	return mat, nil
}

// ApplyPatches — всё или ничего, как транзакция в Repo.
func (m *memMaterials) ApplyPatches(ctx context.Context, ps []materials.IDPatch) (int, []int64, error) {
	m.batches++
	if m.batchErr != nil {
		return 0, nil, m.batchErr
	}
	var (
		updated int
		missing []int64
	)
	for _, p := range ps {
		mat, _ := m.Update(ctx, p.ID, p.Patch)
		if mat == nil {
			missing = append(missing, p.ID)
			continue
		}
		updated++
	}
	return updated, missing, nil
}

func (m *memMaterials) Delete(_ context.Context, id int64) (bool, error) {
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

func (m *memMaterials) SearchByName(ctx context.Context, q string) ([]materials.Material, error) {
	all, _ := m.List(ctx)
	var out []materials.Material
	for _, mat := range all {
		if strings.Contains(strings.ToLower(mat.Name), strings.ToLower(q)) {
			out = append(out, mat)
		}
	}
	return out, nil
}

type memProfiles []profiles.Profile

func (m memProfiles) List(context.Context) ([]profiles.Profile, error) { return m, nil }

type memCatalog struct {
	units    []catalog.Unit
	classes  []catalog.Classification
	settings catalog.Settings
	err      error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		units: []catalog.Unit{
			{ID: 1, Category: catalog.CategoryBasic, UnitType: "volume", Default: "mm³", Symbols: []string{"mm³", "cm³"}},
		},
		classes: []catalog.Classification{{ID: 1, Name: "Machined Part", PricingType: materials.PricingBlock}},
	}
}

func (m *memCatalog) ListUnits(context.Context) ([]catalog.Unit, error) { return m.units, nil }

func (m *memCatalog) Symbols(context.Context) (map[string][]string, error) {
	return catalog.SymbolsByType(m.units), nil
}

func (m *memCatalog) find(unitType string) int {
	for i, u := range m.units {
		if u.UnitType == unitType {
			return i
		}
	}
	return -1
}

func (m *memCatalog) GetUnit(_ context.Context, unitType string) (*catalog.Unit, error) {
	if i := m.find(unitType); i >= 0 {
		u := m.units[i]
		return &u, nil
	}
	return nil, nil
}

func (m *memCatalog) UpsertUnit(_ context.Context, u catalog.Unit) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if i := m.find(u.UnitType); i >= 0 {
		m.units[i].Default, m.units[i].Symbols = u.Default, u.Symbols
		return m.units[i].ID, nil
	}
	u.ID = int64(len(m.units) + 1)
	m.units = append(m.units, u)
	return u.ID, nil
}

func (m *memCatalog) UpdateUnit(_ context.Context, u catalog.Unit) (bool, error) {
	i := m.find(u.UnitType)
	if i < 0 {
		return false, nil
	}
	m.units[i].Default, m.units[i].Symbols = u.Default, u.Symbols
	return true, nil
}

func (m *memCatalog) DeleteUnit(_ context.Context, unitType string) (bool, error) {
	i := m.find(unitType)
	if i < 0 {
		return false, nil
	}
	m.units = append(m.units[:i], m.units[i+1:]...)
	return true, nil
}

func (m *memCatalog) SetDefaults(_ context.Context, category string, updates map[string]string) ([]catalog.Unit, error) {
	changed, err := catalog.ApplyDefaults(m.units, category, updates)
	if err != nil {
		return nil, err
	}
	for _, u := range changed {
		m.units[m.find(u.UnitType)].Default = u.Default
	}
	return changed, nil
}

func (m *memCatalog) ListClassifications(context.Context) ([]catalog.Classification, error) {
	return m.classes, nil
}

func (m *memCatalog) UpsertClassification(_ context.Context, name string, pt materials.PricingType) (*catalog.Classification, error) {
	for i := range m.classes {
		if m.classes[i].Name == name {
			m.classes[i].PricingType = pt
			c := m.classes[i]
			return &c, nil
		}
	}
	c := catalog.Classification{ID: int64(len(m.classes) + 1), Name: name, PricingType: pt}
	m.classes = append(m.classes, c)
	return &c, nil
}

func (m *memCatalog) DeleteClassification(_ context.Context, name string) (bool, error) {
	for i := range m.classes {
		if m.classes[i].Name == name {
			m.classes = append(m.classes[:i], m.classes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memCatalog) Settings(context.Context) (catalog.Settings, error) { return m.settings, nil }

func (m *memCatalog) SaveSettings(_ context.Context, s catalog.Settings) error {
	m.settings = s
	return nil
}

type memProjects map[string]*projects.Project

func (m memProjects) Create(_ context.Context, name, desc string) (*projects.Project, error) {
	id := projects.NewID()
	p := &projects.Project{ProjectID: id, Slug: projects.Slug(name, id), Name: name, Description: desc}
	m[id] = p
	return p, nil
}

func (m memProjects) GetByID(_ context.Context, id string) (*projects.Project, error) { return m[id], nil }

func (m memProjects) List(context.Context) ([]projects.Project, error) {
	var out []projects.Project
	for _, p := range m {
		out = append(out, *p)
	}
	return out, nil
}

type memParts struct {
	byProject map[string][]parts.Part
}

func (m *memParts) Create(_ context.Context, n parts.New) (*parts.Part, error) {
	p := parts.Part{PartID: projects.NewID(), ProjectID: n.ProjectID, Name: n.Name, BoundingBox: n.BoundingBox}
	m.byProject[n.ProjectID] = append(m.byProject[n.ProjectID], p)
	return &p, nil
}

func (m *memParts) ListByProject(_ context.Context, id string) ([]parts.Part, error) {
	return m.byProject[id], nil
}

type fakeEditor struct {
	calls  []string
	change rawmaterial.Change
	margin costing.Margin
	by     string
	err    error
}

func (f *fakeEditor) view(op, partID string) (*rawmaterial.View, error) {
	f.calls = append(f.calls, op)
	if f.err != nil {
		return nil, f.err
	}
	return &rawmaterial.View{PartID: partID, Inputs: rawmaterial.Inputs{Dimensions: costing.Dimensions{"length": 1}}}, nil
}

func (f *fakeEditor) Load(_ context.Context, id string) (*rawmaterial.View, error) {
	return f.view("load", id)
}

func (f *fakeEditor) Edit(_ context.Context, id string, ch rawmaterial.Change) (*rawmaterial.View, error) {
	f.change = ch
	return f.view("edit", id)
}

func (f *fakeEditor) ApplyBoundingBox(_ context.Context, id string, m costing.Margin) (*rawmaterial.View, error) {
	f.margin = m
	return f.view("bbox", id)
}

func (f *fakeEditor) Reset(_ context.Context, id string) (*rawmaterial.View, error) {
	return f.view("reset", id)
}

func (f *fakeEditor) Save(_ context.Context, id, by string) (*rawmaterial.View, error) {
	f.by = by
	return f.view("save", id)
}

type env struct {
	h        *Handler
	mats     *memMaterials
	catalog  *memCatalog
	projects memProjects
	parts    *memParts
	editor   *fakeEditor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		mats:     &memMaterials{byID: map[int64]*materials.Material{}},
		catalog:  newMemCatalog(),
		projects: memProjects{},
		parts:    &memParts{byProject: map[string][]parts.Part{}},
		editor:   &fakeEditor{},
	}
	e.h = New(log, Deps{
		Materials: e.mats,
		Profiles:  memProfiles{{ID: 1, Name: "Round Bar", Fields: map[string]string{"diameter": "mm"}}},
		Catalog:   e.catalog,
		Projects:  e.projects,
		Parts:     e.parts,
		Editor:    e.editor,
		Converter: units.NewConverter(units.WithLogger(log)),
		Currency:  "USD",
	})
	return e
}

func (e *env) do(t *testing.T, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestUnits(t *testing.T) {
	e := newEnv(t)

	t.Run("normalize", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/units/normalize?symbol=cm%C2%B3", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]string
		decodeBody(t, rec, &got)
		assert.Equal(t, "cm3", got["normalized"])
	})

	t.Run("convert", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/units/convert?value=25,4&from=mm&to=in", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got convertResponse
		decodeBody(t, rec, &got)
		assert.InEpsilon(t, 1.0, got.Result, 1e-12)
	})

	t.Run("convert incompatible degrades", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/units/convert?value=5&from=mm&to=kg", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var got convertResponse
		decodeBody(t, rec, &got)
		assert.Equal(t, 5.0, got.Result)
	})

	t.Run("convert bad value", func(t *testing.T) {
		for _, q := range []string{"value=abc&from=mm&to=in", "value=NaN&from=mm&to=in", "value=1&from=mm"} {
			rec := e.do(t, http.MethodGet, "/units/convert?"+q, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})
}

func TestEstimate(t *testing.T) {
	e := newEnv(t)
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST /estimate", "200"))

	rec := e.do(t, http.MethodPost, "/estimate", `{
		"dimensions": {"length": 50, "width": 30, "height": 10, "chamfer": null},
		"dimensions_unit": "mm",
		"density": 7.85,
		"density_unit": "g/cm³",
		"price_per_kg": 200,
		"volume_unit": "cm³"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Volume      units.Quantity `json:"volume"`
		BaseVolume  units.Quantity `json:"base_volume"`
		Weight      units.Quantity `json:"weight"`
		Cost        float64        `json:"cost"`
		CostDisplay string         `json:"cost_display"`
	}
	decodeBody(t, rec, &got)
	assert.InDelta(t, 15, got.Volume.Value, 1e-9)
	assert.Equal(t, "cm³", got.Volume.Unit)
	assert.InDelta(t, 15000, got.BaseVolume.Value, 1e-9)
	assert.InDelta(t, 0.11775, got.Weight.Value, 1e-12)
	assert.InDelta(t, 23.55, got.Cost, 1e-10)
	assert.Equal(t, "23.55", got.CostDisplay)

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST /estimate", "200"))
	assert.Equal(t, before+1, after)

	rec = e.do(t, http.MethodPost, "/estimate", `{"dimensions": [1,2]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEstimate_Overflow(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/estimate", `{
		"dimensions": {"a": 1e200, "b": 1e100},
		"density": 1,
		"density_unit": "g/cm3",
		"price_per_kg": 1e300
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Cost        float64 `json:"cost"`
		CostDisplay string  `json:"cost_display"`
	}
	decodeBody(t, rec, &got)
	assert.Equal(t, 0.0, got.Cost)
	assert.Equal(t, "0.00", got.CostDisplay)
}

func TestMaterials(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/settings/materials", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/settings/materials", `{"name":"Steel","density":7.85,"block_price":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created materials.Material
	decodeBody(t, rec, &created)
	assert.Equal(t, "g/cm3", created.DensityUnit)

	rec = e.do(t, http.MethodPost, "/settings/materials", `{"name":"","density":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodPost, "/settings/materials", `{"name":"Bad","density":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPut, "/settings/materials/1", `{"sheet_price": 4.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4.5, e.mats.byID[1].SheetPrice)
	assert.Equal(t, 2.0, e.mats.byID[1].BlockPrice)

	rec = e.do(t, http.MethodPut, "/settings/materials/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodPut, "/settings/materials/99", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodPut, "/settings/materials/abc", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/settings/materials?q=ste", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []materials.Material
	decodeBody(t, rec, &found)
	assert.Len(t, found, 1)

	rec = e.do(t, http.MethodDelete, "/settings/materials/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodDelete, "/settings/materials/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaterials_StoreError(t *testing.T) {
	e := newEnv(t)
	e.mats.err = errors.New("connection refused")

	rec := e.do(t, http.MethodGet, "/settings/materials", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestMaterialsImport(t *testing.T) {
	e := newEnv(t)
	_, _ = e.mats.Create(context.Background(), materials.Material{Name: "Steel", Density: 7.85})

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := sheets.MaterialHeader
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"1", "", "", "", "2,5", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"7", "Ghost"}))
	xlsx := &bytes.Buffer{}
	require.NoError(t, f.Write(xlsx))
	_ = f.Close()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "materials.xlsx")
	require.NoError(t, err)
	_, _ = fw.Write(xlsx.Bytes())
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/settings/materials/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res importResult
	decodeBody(t, rec, &res)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, []int64{7}, res.Missing)
	assert.Equal(t, 2.5, e.mats.byID[1].BlockPrice)
	assert.Equal(t, 7.85, e.mats.byID[1].Density)
	assert.Equal(t, 1, e.mats.batches, "all rows go to the store as one batch")

	rec = e.do(t, http.MethodPost, "/settings/materials/import", "not a spreadsheet")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaterialsImport_StoreErrorChangesNothing(t *testing.T) {
	e := newEnv(t)
	_, _ = e.mats.Create(context.Background(), materials.Material{Name: "Steel", Density: 7.85, BlockPrice: 1})
	_, _ = e.mats.Create(context.Background(), materials.Material{Name: "Brass", Density: 8.5, BlockPrice: 1})
	e.mats.batchErr = errors.New("deadlock detected")

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := sheets.MaterialHeader
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"1", "", "", "", "5", ""}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"2", "", "", "", "6", ""}))
	xlsx := &bytes.Buffer{}
	require.NoError(t, f.Write(xlsx))
	_ = f.Close()

	req := httptest.NewRequest(http.MethodPost, "/settings/materials/import", bytes.NewReader(xlsx.Bytes()))
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, e.mats.batches)
	assert.Equal(t, 1.0, e.mats.byID[1].BlockPrice)
	assert.Equal(t, 1.0, e.mats.byID[2].BlockPrice)
}

func TestSettings(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/settings/units/symbols", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"volume":["mm³","cm³"]}`, rec.Body.String())

	rec = e.do(t, http.MethodGet, "/settings/profiles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Round Bar")

	rec = e.do(t, http.MethodGet, "/settings/part_classification", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pricing_type":"block_price"`)

	rec = e.do(t, http.MethodPut, "/settings/advanced", `{"default_currency":"EUR","default_costing_method":"sheet_price","price_per_kg":80}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80.0, e.catalog.settings.PricePerKg)

	rec = e.do(t, http.MethodPut, "/settings/advanced", `{"default_costing_method":"by_weight"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnitSettings(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/settings/units/custom_units/torque",
		`{"category":"custom_units","unit_name":"N·m","symbol":["N·m","lbf·ft"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u catalog.Unit
	decodeBody(t, rec, &u)
	assert.Equal(t, catalog.CategoryCustom, u.Category)
	assert.Equal(t, []string{"N·m", "lbf·ft"}, u.Symbols)

	rec = e.do(t, http.MethodGet, "/settings/units/symbols", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"volume":["mm³","cm³"],"torque":["N·m","lbf·ft"]}`, rec.Body.String())

	// повторный POST обновляет ту же запись
	rec = e.do(t, http.MethodPost, "/settings/units/custom_units/torque", `{"unit_name":"lbf·ft","symbol":["lbf·ft"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, e.catalog.units, 2)
	assert.Equal(t, "lbf·ft", e.catalog.units[1].Default)

	rec = e.do(t, http.MethodPut, "/settings/units/custom_units/torque", `{"unit_name":"kN·m"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"kN·m"}, e.catalog.units[1].Symbols, "unit_name is always among the symbols")

	for _, c := range []struct {
		name, method, target, body string
		code                       int
	}{
		{"basic unit via POST", http.MethodPost, "/settings/units/custom_units/volume", `{"unit_name":"l"}`, http.StatusBadRequest},
		{"wrong category", http.MethodPost, "/settings/units/custom_units/force", `{"category":"basic_units","unit_name":"N"}`, http.StatusBadRequest},
		{"no unit name", http.MethodPost, "/settings/units/custom_units/force", `{"symbol":["N"]}`, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/settings/units/custom_units/force", `{"unit_name":"N"}`, http.StatusNotFound},
		{"update basic", http.MethodPut, "/settings/units/custom_units/volume", `{"unit_name":"l"}`, http.StatusBadRequest},
		{"delete missing", http.MethodDelete, "/settings/units/custom_units/force", "", http.StatusNotFound},
		{"delete basic", http.MethodDelete, "/settings/units/custom_units/volume", "", http.StatusBadRequest},
	} {
		t.Run(c.name, func(t *testing.T) {
			rec := e.do(t, c.method, c.target, c.body)
			assert.Equal(t, c.code, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, "mm³", e.catalog.units[0].Default, "basic unit untouched")

	rec = e.do(t, http.MethodDelete, "/settings/units/custom_units/torque", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, e.catalog.units, 1)
}

func TestUnitSettings_StoreError(t *testing.T) {
	e := newEnv(t)
	e.catalog.err = errors.New("connection reset")

	rec := e.do(t, http.MethodPost, "/settings/units/custom_units/torque", `{"unit_name":"N·m"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestUnitDefaults(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPut, "/settings/units/basic_units", `{"volume":"cm³"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cm³", e.catalog.units[0].Default)

	rec = e.do(t, http.MethodPut, "/settings/units/basic_units", `{"volume":"l"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "default must be one of the symbols")
	rec = e.do(t, http.MethodPut, "/settings/units/basic_units", `{"length":"mm"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodPut, "/settings/units/custom_units", `{"volume":"mm³"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "type belongs to another category")
	rec = e.do(t, http.MethodPut, "/settings/units/imperial", `{"volume":"mm³"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodPut, "/settings/units/basic_units", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, "cm³", e.catalog.units[0].Default, "rejected updates change nothing")

	rec = e.do(t, http.MethodGet, "/settings/units", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unit_name":"cm³"`)
}

func TestClassificationSettings(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/settings/part_classification", `{"name":"Sheet Metal","pricing_type":"sheet_price"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, e.catalog.classes, 2)

	rec = e.do(t, http.MethodPost, "/settings/part_classification", `{"name":"Machined Part","pricing_type":"sheet_price"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, materials.PricingSheet, e.catalog.classes[0].PricingType)
	assert.Len(t, e.catalog.classes, 2)

	rec = e.do(t, http.MethodPost, "/settings/part_classification", `{"name":"Casting","pricing_type":"by_weight"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = e.do(t, http.MethodPost, "/settings/part_classification", `{"name":" ","pricing_type":"block_price"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodDelete, "/settings/part_classification?name=Sheet+Metal", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = e.do(t, http.MethodDelete, "/settings/part_classification?name=Sheet+Metal", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = e.do(t, http.MethodDelete, "/settings/part_classification", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, e.catalog.classes, 1)
}

func TestRawMaterialRoutes(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/parts/p1/raw-material", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var v rawmaterial.View
	decodeBody(t, rec, &v)
	assert.Equal(t, "p1", v.PartID)

	rec = e.do(t, http.MethodPatch, "/parts/p1/raw-material", `{"dimensions_unit":"cm","dimensions":{"length":5}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, e.editor.change.DimensionsUnit)
	assert.Equal(t, "cm", *e.editor.change.DimensionsUnit)
	assert.Equal(t, costing.Dimensions{"length": 5}, e.editor.change.Dimensions)

	rec = e.do(t, http.MethodPatch, "/parts/p1/raw-material", `{"colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/parts/p1/raw-material/bounding-box", `{"x":10,"y":10,"z":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, costing.Margin{X: 10, Y: 10, Z: 5}, e.editor.margin)

	rec = e.do(t, http.MethodPost, "/parts/p1/raw-material/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/parts/p1/raw-material", `{"modified_by":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", e.editor.by)

	rec = e.do(t, http.MethodPut, "/parts/p1/raw-material", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"load", "edit", "bbox", "reset", "save", "save"}, e.editor.calls)
}

func TestRawMaterial_NotFound(t *testing.T) {
	e := newEnv(t)
	e.editor.err = rawmaterial.ErrPartNotFound

	rec := e.do(t, http.MethodGet, "/parts/nope/raw-material", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"part not found"}`, rec.Body.String())
}

func TestRawMaterial_InvalidInput(t *testing.T) {
	e := newEnv(t)
	e.editor.err = fmt.Errorf("%w: dimensions_unit is empty", rawmaterial.ErrInvalidInput)

	rec := e.do(t, http.MethodPatch, "/parts/p1/raw-material", `{"dimensions_unit":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid input: dimensions_unit is empty"}`, rec.Body.String())
}

func TestProjectsAndEstimateExport(t *testing.T) {
	e := newEnv(t)
	steel, _ := e.mats.Create(context.Background(), materials.Material{Name: "Steel", Density: 7.85})

	rec := e.do(t, http.MethodPost, "/projects", `{"name":"Gear Box"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p projects.Project
	decodeBody(t, rec, &p)
	assert.True(t, strings.HasPrefix(p.Slug, "gear-box-"))

	rec = e.do(t, http.MethodPost, "/projects/"+p.ProjectID+"/parts", `{"name":"bracket","bounding_box":{"width":40,"depth":20,"height":5}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = e.do(t, http.MethodPost, "/projects/"+p.ProjectID+"/parts", `{"name":"bad","bounding_box":{"width":-1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.parts.byProject[p.ProjectID][0].RawMaterial = &parts.RawMaterialDetails{
		MaterialID:     &steel.ID,
		Dimensions:     costing.Dimensions{"length": 50, "width": 30, "height": 10},
		DimensionsUnit: "mm",
		Volume:         15000,
		VolumeUnit:     "mm³",
		Weight:         0.11775,
		Cost:           11.775,
	}

	rec = e.do(t, http.MethodGet, "/projects/"+p.ProjectID+"/parts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/projects/"+p.ProjectID+"/estimate.xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), p.Slug+"_estimate.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Steel", rows[1][2])
	assert.Equal(t, "11.78", rows[1][8])
	assert.Equal(t, "USD", rows[1][9])

	rec = e.do(t, http.MethodGet, "/projects/missing/estimate.xlsx", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
