package io

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	bmerrors "github.com/matzehuels/blockmondrian/pkg/errors"
)

const (
	xlsxSheet  = "Sheet1"
	xlsxHeader = "tx_value_btc"
)

// ExportValuesXLSX writes values to the first column of a new workbook,
// below a header cell.
func ExportValuesXLSX(path string, values []float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue(xlsxSheet, "A1", xlsxHeader); err != nil {
		return err
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		var val any = v
		if math.IsNaN(v) || math.IsInf(v, 0) {
			val = FormatNumber(v)
		}
		if err := f.SetCellValue(xlsxSheet, cell, val); err != nil {
			return fmt.Errorf("cell %s: %w", cell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ImportValuesXLSX reads the first column of the first sheet. A first row
// that is not a number is treated as a header and skipped. Cells follow the
// same lenient or strict rules as the text format.
func ImportValuesXLSX(path string, strict bool) ([]float64, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, bmerrors.Wrap(bmerrors.ErrCodeFileNotFound, err, "values file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, bmerrors.New(bmerrors.ErrCodeInvalidInput, "%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	start := 0
	if len(rows) > 0 && math.IsNaN(ParseNumber(firstCell(rows[0]))) {
		start = 1
	}

	out := make([]float64, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		cell := firstCell(rows[i])
		if !strict {
			out = append(out, ParseNumber(cell))
			continue
		}
		v, ok, err := parseStrict(cell, i+1)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return row[0]
}
