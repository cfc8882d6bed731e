package rawmaterial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/catalog"
	"github.com/Spok95/partcost/internal/domain/materials"
	"github.com/Spok95/partcost/internal/domain/parts"
	"github.com/Spok95/partcost/internal/domain/profiles"
	"github.com/Spok95/partcost/internal/draft"
	"github.com/Spok95/partcost/internal/units"
)

var (
	ErrPartNotFound = errors.New("part not found")
	ErrInvalidInput = errors.New("invalid input")
)

type PartStore interface {
	GetByID(ctx context.Context, partID string) (*parts.Part, error)
	UpdateRawMaterial(ctx context.Context, partID string, d parts.RawMaterialDetails, modifiedBy string) (bool, error)
}

type MaterialStore interface {
	GetByID(ctx context.Context, id int64) (*materials.Material, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id int64) (*profiles.Profile, error)
}

type CatalogStore interface {
	GetClassification(ctx context.Context, id int64) (*catalog.Classification, error)
	Settings(ctx context.Context) (catalog.Settings, error)
}

type DraftStore interface {
	Get(ctx context.Context, partID string) (*draft.Item, error)
	Set(ctx context.Context, partID string, state draft.State, payload any) error
	Reset(ctx context.Context, partID string) error
}

// Service — редактирование заготовки детали: правки копятся в черновике,
// производные объём/вес/стоимость пересчитываются на каждое изменение.
type Service struct {
	log       *slog.Logger
	parts     PartStore
	materials MaterialStore
	profiles  ProfileStore
	catalog   CatalogStore
	drafts    DraftStore
	conv      *units.Converter
	calc      *costing.Calculator
	defaults  Defaults
}

func New(log *slog.Logger,
	partStore PartStore, materialStore MaterialStore,
	profileStore ProfileStore, catalogStore CatalogStore,
	draftStore DraftStore, conv *units.Converter, defaults Defaults) *Service {

	if conv == nil {
		conv = units.Default
	}
	return &Service{
		log: log, parts: partStore, materials: materialStore,
		profiles: profileStore, catalog: catalogStore, drafts: draftStore,
		conv: conv, calc: costing.NewCalculator(conv),
		defaults: defaults.withFallbacks(),
	}
}

// Load — текущее состояние формы: черновик, если он есть, иначе сохранённое.
func (s *Service) Load(ctx context.Context, partID string) (*View, error) {
	part, saved, in, state, err := s.current(ctx, partID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, part, saved, in, state)
}

// Edit применяет правку и сохраняет результат в черновик. Порядок: материал,
// профиль, единица размеров (все размеры конвертируются), сами размеры
// (в новой единице), единица объёма, припуск.
func (s *Service) Edit(ctx context.Context, partID string, ch Change) (*View, error) {
	if err := s.validate(ch); err != nil {
		return nil, err
	}
	part, saved, in, _, err := s.current(ctx, partID)
	if err != nil {
		return nil, err
	}

	if ch.MaterialID != nil {
		in.MaterialID = cloneID(ch.MaterialID)
	}
	if ch.ProfileID != nil {
		prof, err := s.profiles.GetByID(ctx, *ch.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("load profile %d: %w", *ch.ProfileID, err)
		}
		in.ProfileID = cloneID(ch.ProfileID)
		if prof != nil {
			in.Dimensions = costing.RestoreProfileDimensions(prof.FieldNames(), in.Dimensions)
		}
	}
	if ch.DimensionsUnit != nil && *ch.DimensionsUnit != in.DimensionsUnit {
		in.Dimensions = costing.ConvertDimensions(s.conv, in.Dimensions, in.DimensionsUnit, *ch.DimensionsUnit)
		in.DimensionsUnit = *ch.DimensionsUnit
	}
	for k, v := range ch.Dimensions {
		in.Dimensions[k] = v
	}
	if ch.VolumeUnit != nil {
		in.VolumeUnit = *ch.VolumeUnit
	}
	if ch.Margin != nil {
		in.Margin = *ch.Margin
	}

	return s.store(ctx, part, saved, in)
}

// validate отклоняет единицы, которые конвертер не переводит в mm / mm3:
// с такой единицей все размеры молча остались бы в старой.
func (s *Service) validate(ch Change) error {
	if ch.DimensionsUnit != nil {
		if err := s.checkUnit("dimensions_unit", *ch.DimensionsUnit, costing.BaseLength); err != nil {
			return err
		}
	}
	if ch.VolumeUnit != nil {
		if err := s.checkUnit("volume_unit", *ch.VolumeUnit, costing.BaseVolume); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkUnit(field, unit, base string) error {
	if strings.TrimSpace(unit) == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalidInput, field)
	}
	if _, err := s.conv.TryConvert(1, unit, base); err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidInput, field, unit, err)
	}
	return nil
}

// ApplyBoundingBox заменяет размеры габаритом детали плюс припуск,
// переведёнными в текущую единицу размеров.
func (s *Service) ApplyBoundingBox(ctx context.Context, partID string, m costing.Margin) (*View, error) {
	part, saved, in, _, err := s.current(ctx, partID)
	if err != nil {
		return nil, err
	}
	bboxUnit := part.BoundingBox.Unit
	if bboxUnit == "" {
		bboxUnit = costing.BaseLength
	}
	dims := costing.FromBoundingBox(part.BoundingBox, m)
	in.Dimensions = costing.ConvertDimensions(s.conv, dims, bboxUnit, in.DimensionsUnit)
	in.Margin = m

	return s.store(ctx, part, saved, in)
}

// Reset отбрасывает черновик.
func (s *Service) Reset(ctx context.Context, partID string) (*View, error) {
	if _, err := s.getPart(ctx, partID); err != nil {
		return nil, err
	}
	if err := s.drafts.Reset(ctx, partID); err != nil {
		return nil, fmt.Errorf("reset draft: %w", err)
	}
	return s.Load(ctx, partID)
}

// Save записывает входные параметры и последний расчёт в деталь как есть.
func (s *Service) Save(ctx context.Context, partID, modifiedBy string) (*View, error) {
	part, saved, in, state, err := s.current(ctx, partID)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, part, saved, in, state)
	if err != nil {
		return nil, err
	}

	details := parts.RawMaterialDetails{
		MaterialID:     cloneID(in.MaterialID),
		ProfileID:      cloneID(in.ProfileID),
		Margin:         in.Margin,
		Dimensions:     in.Dimensions.Clone(),
		DimensionsUnit: in.DimensionsUnit,
		Volume:         v.Derived.Volume.Value,
		VolumeUnit:     v.Derived.Volume.Unit,
		Weight:         v.Derived.Weight.Value,
		Cost:           v.Derived.Cost,
	}
	ok, err := s.parts.UpdateRawMaterial(ctx, partID, details, modifiedBy)
	if err != nil {
		return nil, fmt.Errorf("save raw material: %w", err)
	}
	if !ok {
		return nil, ErrPartNotFound
	}
	if err := s.drafts.Reset(ctx, partID); err != nil {
		s.log.Warn("draft reset after save failed", "part_id", partID, "err", err)
	}
	s.log.Info("raw material saved",
		"part_id", partID,
		"volume", details.Volume,
		"volume_unit", details.VolumeUnit,
		"weight", details.Weight,
		"cost", details.Cost,
	)

	v.State = draft.StateIdle
	v.HasChanges = false
	return v, nil
}

func (s *Service) store(ctx context.Context, part *parts.Part, saved, in Inputs) (*View, error) {
	if err := s.drafts.Set(ctx, part.PartID, draft.StateEditing, in); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}
	return s.view(ctx, part, saved, in, draft.StateEditing)
}

func (s *Service) getPart(ctx context.Context, partID string) (*parts.Part, error) {
	part, err := s.parts.GetByID(ctx, partID)
	if err != nil {
		return nil, fmt.Errorf("load part: %w", err)
	}
	if part == nil {
		return nil, ErrPartNotFound
	}
	return part, nil
}

func (s *Service) current(ctx context.Context, partID string) (*parts.Part, Inputs, Inputs, draft.State, error) {
	part, err := s.getPart(ctx, partID)
	if err != nil {
		return nil, Inputs{}, Inputs{}, "", err
	}
	saved := savedInputs(part, s.defaults)

	it, err := s.drafts.Get(ctx, partID)
	if err != nil {
		return nil, Inputs{}, Inputs{}, "", fmt.Errorf("load draft: %w", err)
	}
	in := saved.clone()
	state := draft.StateIdle
	if it != nil && it.State == draft.StateEditing {
		if err := it.Decode(&in); err != nil {
			// битый черновик не должен ломать форму
			s.log.Warn("draft payload ignored", "part_id", partID, "err", err)
			in = saved.clone()
		} else {
			state = draft.StateEditing
		}
	}
	if in.Dimensions == nil {
		in.Dimensions = costing.Dimensions{}
	}
	return part, saved, in, state, nil
}

func (s *Service) view(ctx context.Context, part *parts.Part, saved, in Inputs, state draft.State) (*View, error) {
	var mat *materials.Material
	if in.MaterialID != nil {
		m, err := s.materials.GetByID(ctx, *in.MaterialID)
		if err != nil {
			return nil, fmt.Errorf("load material %d: %w", *in.MaterialID, err)
		}
		mat = m
	}

	price, currency, err := s.pricing(ctx, part, mat)
	if err != nil {
		return nil, err
	}

	var density units.Quantity
	if mat != nil {
		density = units.Q(mat.Density, mat.DensityUnit)
	}

	est := s.calc.Estimate(costing.Input{
		Dimensions: costing.DimensionSet{Unit: in.DimensionsUnit, Values: in.Dimensions},
		Density:    density,
		PricePerKg: price,
		VolumeUnit: in.VolumeUnit,
	})

	return &View{
		PartID: part.PartID,
		State:  state,
		Inputs: in,
		Derived: Derived{
			Estimate:    est,
			CostDisplay: costing.FormatMoney(est.Cost),
			PricePerKg:  price,
			Currency:    currency,
		},
		HasChanges: !sameInputs(saved, in),
	}, nil
}

// pricing выбирает цену за kg: цена материала по классу детали, затем по
// методу расчёта из настроек, затем общая цена из настроек, затем из конфига.
func (s *Service) pricing(ctx context.Context, part *parts.Part, mat *materials.Material) (float64, string, error) {
	settings, err := s.catalog.Settings(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("load settings: %w", err)
	}
	currency := settings.DefaultCurrency
	if currency == "" {
		currency = s.defaults.Currency
	}

	if mat != nil && part.ClassificationID != nil {
		cls, err := s.catalog.GetClassification(ctx, *part.ClassificationID)
		if err != nil {
			return 0, "", fmt.Errorf("load classification %d: %w", *part.ClassificationID, err)
		}
		if cls != nil {
			if p := mat.PricePerKg(cls.PricingType); p > 0 {
				return p, currency, nil
			}
		}
	}
	if mat != nil {
		if p := mat.PricePerKg(materials.PricingType(settings.DefaultCostingMethod)); p > 0 {
			return p, currency, nil
		}
	}
	if settings.PricePerKg > 0 {
		return settings.PricePerKg, currency, nil
	}
	return s.defaults.PricePerKg, currency, nil
}
