package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// WorkbookFetcher implements Fetcher by reading an xlsx time-series sheet
// with Date, Open, High, Low and Close columns. It serves offline datasets
// exported from other tools.
type WorkbookFetcher struct {
	Path  string
	Sheet string // empty means the first sheet
}

// NewWorkbookFetcher creates a fetcher reading from the given workbook.
func NewWorkbookFetcher(path, sheet string) *WorkbookFetcher {
	return &WorkbookFetcher{Path: path, Sheet: sheet}
}

func (f *WorkbookFetcher) Name() string { return "workbook" }

// FetchDailyBars parses the sheet and returns the most recent days bars.
func (f *WorkbookFetcher) FetchDailyBars(_ string, days int) ([]model.Bar, error) {
	bars, err := ParseWorkbook(f.Path, f.Sheet)
	if err != nil {
		return nil, err
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"02-Jan-2006",
}

func parseDateCell(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	// Excel serial date fallback: days since 1899-12-30.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
		return epoch.AddDate(0, 0, int(serial)), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parsePriceCell(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

// ParseWorkbook reads all OHLC rows from the sheet. The first row must be a
// header naming the Date, Open, High, Low and Close columns, in any order.
func ParseWorkbook(path, sheet string) ([]model.Bar, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %q: need a header row and at least one data row", sheet)
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := cols[want]; !ok {
			return nil, fmt.Errorf("sheet %q: missing %q column", sheet, want)
		}
	}

	bars := make([]model.Bar, 0, len(rows)-1)
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		if cell("date") == "" {
			continue // trailing blank rows
		}
		date, err := parseDateCell(cell("date"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		var prices [4]float64
		for i, name := range []string{"open", "high", "low", "close"} {
			v, err := parsePriceCell(cell(name))
			if err != nil {
				return nil, fmt.Errorf("row %d: bad %s value %q", n+2, name, cell(name))
			}
			prices[i] = v
		}
		bars = append(bars, model.Bar{
			Date:  date,
			Open:  prices[0],
			High:  prices[1],
			Low:   prices[2],
			Close: prices[3],
		})
	}
	return bars, nil
}
