package report

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// WriteWorkbook exports the analysis results to an xlsx workbook, one sheet
// per analysis. Nil results are skipped.
func WriteWorkbook(path string, cmp *model.ComparisonResult, cone *model.ConeResult, dist *model.DistributionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	sheet := func(name string) error {
		if first {
			f.SetSheetName("Sheet1", name)
			first = false
			return nil
		}
		_, err := f.NewSheet(name)
		return err
	}

	setCell := func(name string, col, row int, v interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if x, ok := v.(float64); ok && math.IsNaN(x) {
			return nil // leave undefined values blank
		}
		return f.SetCellValue(name, cell, v)
	}

	if cmp != nil {
		if err := sheet("Curves"); err != nil {
			return err
		}
		if err := setCell("Curves", 1, 1, "Date"); err != nil {
			return err
		}
		for c, code := range cmp.Estimators {
			if err := setCell("Curves", c+2, 1, code); err != nil {
				return err
			}
		}
		for r, date := range cmp.Dates {
			if err := setCell("Curves", 1, r+2, date.Format("2006-01-02")); err != nil {
				return err
			}
			for c, code := range cmp.Estimators {
				if err := setCell("Curves", c+2, r+2, cmp.Series[code][r]); err != nil {
					return err
				}
			}
		}

		if err := sheet("Correlation"); err != nil {
			return err
		}
		for i, code := range cmp.Estimators {
			if err := setCell("Correlation", i+2, 1, code); err != nil {
				return err
			}
			if err := setCell("Correlation", 1, i+2, code); err != nil {
				return err
			}
			for j := range cmp.Estimators {
				if err := setCell("Correlation", j+2, i+2, cmp.Correlation[i][j]); err != nil {
					return err
				}
			}
		}

		if err := sheet("Regression"); err != nil {
			return err
		}
		for c, h := range []string{"Estimator", "Alpha", "Beta", "R2", "Efficiency"} {
			if err := setCell("Regression", c+1, 1, h); err != nil {
				return err
			}
		}
		for r, fit := range cmp.Regressions {
			values := []interface{}{fit.Estimator, fit.Alpha, fit.Beta, fit.R2, cmp.Efficiency[fit.Estimator]}
			for c, v := range values {
				if err := setCell("Regression", c+1, r+2, v); err != nil {
					return err
				}
			}
		}
	}

	if cone != nil {
		if err := sheet("Cone"); err != nil {
			return err
		}
		headers := []string{"Bandwidth", "Min"}
		for _, q := range cone.Quantiles {
			headers = append(headers, fmt.Sprintf("Q%g", q*100))
		}
		headers = append(headers, "Max", "Realized")
		for c, h := range headers {
			if err := setCell("Cone", c+1, 1, h); err != nil {
				return err
			}
		}
		for r, band := range cone.Bands {
			values := []interface{}{band.Bandwidth, band.Min}
			for _, q := range band.Quantiles {
				values = append(values, q)
			}
			values = append(values, band.Max, band.Realized)
			for c, v := range values {
				if err := setCell("Cone", c+1, r+2, v); err != nil {
					return err
				}
			}
		}
	}

	if dist != nil {
		if err := sheet("Distribution"); err != nil {
			return err
		}
		for c, h := range []string{"BinLow", "BinHigh", "Count"} {
			if err := setCell("Distribution", c+1, 1, h); err != nil {
				return err
			}
		}
		for r, count := range dist.Counts {
			values := []interface{}{dist.Edges[r], dist.Edges[r+1], count}
			for c, v := range values {
				if err := setCell("Distribution", c+1, r+2, v); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
