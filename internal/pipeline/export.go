package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"monito/internal"
	"monito/internal/util"
)

func ExportProductsToXLSX(rows []internal.ProductExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"document_id", "document_subject", "supplier", "name", "unit", "unit_dimension",
		"price", "price_min", "price_max", "price_type", "currency", "category",
		"quality_score", "merged_from", "price_error",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		supplier := util.DerefString(row.Supplier)
		if supplier == "" {
			supplier = row.DocumentSender
		}
		set(1, row.DocumentID)
		set(2, row.DocumentSubject)
		set(3, supplier)
		set(4, row.Name)
		set(5, util.DerefString(row.Unit))
		set(6, util.DerefString(row.UnitDimension))
		set(7, derefFloat(row.Price))
		set(8, derefFloat(row.PriceMin))
		set(9, derefFloat(row.PriceMax))
		set(10, util.DerefString(row.PriceType))
		set(11, util.DerefString(row.Currency))
		set(12, util.DerefString(row.Category))
		set(13, row.QualityScore)
		set(14, row.MergedFrom)
		set(15, util.DerefString(row.PriceError))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
