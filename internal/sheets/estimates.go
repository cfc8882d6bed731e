package sheets

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/parts"
)

// EstimateHeader — колонки выгрузки смет по деталям проекта.
var EstimateHeader = []interface{}{
	"part_id",
	"part_name",
	"material",
	"dimensions",
	"dimensions_unit",
	"volume",
	"volume_unit",
	"weight_kg",
	"cost",
	"currency",
}

type EstimateRow struct {
	PartID         string
	PartName       string
	Material       string
	Dimensions     costing.Dimensions
	DimensionsUnit string
	Volume         float64
	VolumeUnit     string
	WeightKg       float64
	Cost           float64
	Currency       string
}

// RowFromPart собирает строку из сохранённой заготовки детали;
// деталь без заготовки даёт строку с пустыми величинами.
func RowFromPart(p parts.Part, materialName, currency string) EstimateRow {
	row := EstimateRow{PartID: p.PartID, PartName: p.Name, Currency: currency}
	rm := p.RawMaterial
	if rm == nil {
		return row
	}
	row.Material = materialName
	row.Dimensions = rm.Dimensions
	row.DimensionsUnit = rm.DimensionsUnit
	row.Volume = rm.Volume
	row.VolumeUnit = rm.VolumeUnit
	row.WeightKg = rm.Weight
	row.Cost = rm.Cost
	return row
}

// FormatDimensions — "height=10; length=50", незаданные размеры пропускаются.
func FormatDimensions(d costing.Dimensions) string {
	var parts []string
	for _, name := range d.Names() {
		v := d[name]
		if !costing.Finite(v) {
			continue
		}
		parts = append(parts, name+"="+strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, "; ")
}

// ExportEstimates пишет xlsx со строками смет; стоимость округляется до копеек.
func ExportEstimates(w io.Writer, rows []EstimateRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := EstimateHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for i, r := range rows {
		excelRow := []interface{}{
			r.PartID,
			r.PartName,
			r.Material,
			FormatDimensions(r.Dimensions),
			r.DimensionsUnit,
			finiteOrZero(r.Volume),
			r.VolumeUnit,
			finiteOrZero(r.WeightKg),
			costing.RoundMoney(r.Cost),
			r.Currency,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func finiteOrZero(v float64) float64 {
	if !costing.Finite(v) {
		return 0
	}
	return v
}
