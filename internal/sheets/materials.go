package sheets

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/partcost/internal/costing"
	"github.com/Spok95/partcost/internal/domain/materials"
)

// MaterialHeader — колонки файла с материалами.
var MaterialHeader = []interface{}{
	"material_id",
	"name",
	"density",
	"density_unit",
	"block_price",
	"sheet_price",
}

// RowError — ошибка в конкретной строке файла (нумерация как в Excel).
type RowError struct {
	Row    int
	Column string
	Value  string
	Msg    string
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Msg)
	}
	return fmt.Sprintf("row %d: invalid %s (%q): %s", e.Row, e.Column, e.Value, e.Msg)
}

// MaterialUpdate — изменения одного материала из файла.
type MaterialUpdate struct {
	Row   int
	ID    int64
	Patch materials.Patch
}

// ExportMaterials пишет справочник материалов в формате, который читает ParseMaterialSheet.
func ExportMaterials(w io.Writer, ms []materials.Material) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := MaterialHeader
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	for i, m := range ms {
		excelRow := []interface{}{m.ID, m.Name, m.Density, m.DensityUnit, m.BlockPrice, m.SheetPrice}
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

// ParseMaterialSheet читает файл с материалами. Пустая ячейка — значение не
// меняется, строки без material_id пропускаются, строки без изменений не
// попадают в результат. Десятичная запятая допускается.
func ParseMaterialSheet(r io.Reader) ([]MaterialUpdate, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 1 || len(rows[0]) < len(MaterialHeader) {
		return nil, &RowError{Row: 1, Msg: fmt.Sprintf("expected %d columns (material_id ... sheet_price)", len(MaterialHeader))}
	}

	var out []MaterialUpdate
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		line := i + 1
		cell := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}

		idStr := cell(0)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, &RowError{Row: line, Column: "material_id", Value: idStr, Msg: "not an integer"}
		}

		var p materials.Patch
		if s := cell(1); s != "" {
			p.Name = &s
		}
		if p.Density, err = parseAmount(line, "density", cell(2)); err != nil {
			return nil, err
		}
		if s := cell(3); s != "" {
			p.DensityUnit = &s
		}
		if p.BlockPrice, err = parseAmount(line, "block_price", cell(4)); err != nil {
			return nil, err
		}
		if p.SheetPrice, err = parseAmount(line, "sheet_price", cell(5)); err != nil {
			return nil, err
		}

		if p.Empty() {
			continue
		}
		out = append(out, MaterialUpdate{Row: line, ID: id, Patch: p})
	}
	return out, nil
}

func parseAmount(line int, column, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v < 0 || !costing.Finite(v) {
		return nil, &RowError{Row: line, Column: column, Value: s, Msg: "use a non-negative number"}
	}
	return &v, nil
}
