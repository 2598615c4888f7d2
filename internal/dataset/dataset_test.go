package dataset

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

func TestBuildSeries_Returns(t *testing.T) {
	bars := GenerateBars(100, 20)
	series, err := BuildSeries("TEST", bars)
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 20 || len(series.Returns) != 20 {
		t.Fatalf("expected 20 bars and returns, got %d/%d", series.Len(), len(series.Returns))
	}
	if !math.IsNaN(series.Returns[0]) {
		t.Errorf("first return should be NaN, got %v", series.Returns[0])
	}
	for i := 1; i < 20; i++ {
		want := math.Log(bars[i].Close / bars[i-1].Close)
		if series.Returns[i] != want {
			t.Errorf("return %d: expected %v, got %v", i, want, series.Returns[i])
		}
	}
}

func TestBuildSeries_Validation(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bar := func(d time.Time, p float64) model.Bar {
		return model.Bar{Date: d, Open: p, High: p, Low: p, Close: p}
	}

	tests := []struct {
		name string
		bars []model.Bar
		want string
	}{
		{"too short", []model.Bar{bar(day, 100)}, "at least 2 bars"},
		{
			"duplicate date",
			[]model.Bar{bar(day, 100), bar(day, 101)},
			"not strictly ascending",
		},
		{
			"descending dates",
			[]model.Bar{bar(day.AddDate(0, 0, 1), 100), bar(day, 101)},
			"not strictly ascending",
		},
		{
			"negative price",
			[]model.Bar{bar(day, 100), bar(day.AddDate(0, 0, 1), -1)},
			"non-finite or negative",
		},
		{
			"NaN price",
			[]model.Bar{bar(day, 100), bar(day.AddDate(0, 0, 1), math.NaN())},
			"non-finite or negative",
		},
	}
	for _, tt := range tests {
		_, err := BuildSeries("TEST", tt.bars)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, err)
		}
	}
}

func TestLoader_CachesFetches(t *testing.T) {
	fetcher := &MockFetcher{}
	loader := NewLoader(fetcher, NewCache(4), nil)

	first, err := loader.Load("TEST", 30)
	if err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load("TEST", 30)
	if err != nil {
		t.Fatal(err)
	}
	if fetcher.Calls != 1 {
		t.Errorf("expected a single fetch, got %d", fetcher.Calls)
	}
	if first != second {
		t.Error("expected the cached series instance on the second load")
	}

	// A different range is a different dataset.
	if _, err := loader.Load("TEST", 40); err != nil {
		t.Fatal(err)
	}
	if fetcher.Calls != 2 {
		t.Errorf("expected a second fetch for a new range, got %d", fetcher.Calls)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	bars := GenerateBars(100, 15)
	if err := store.SaveBars("TEST", bars); err != nil {
		t.Fatal(err)
	}

	got, err := store.Bars("TEST", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 bars, got %d", len(got))
	}
	// Most recent bars, ascending.
	for i := 1; i < len(got); i++ {
		if !got[i-1].Date.Before(got[i].Date) {
			t.Fatal("bars not in ascending date order")
		}
	}
	if got[len(got)-1].Close != bars[len(bars)-1].Close {
		t.Errorf("expected newest close %v, got %v", bars[len(bars)-1].Close, got[len(got)-1].Close)
	}

	// Saving the same bars again must not duplicate rows.
	if err := store.SaveBars("TEST", bars); err != nil {
		t.Fatal(err)
	}
	all, err := store.Bars("TEST", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 15 {
		t.Errorf("expected 15 bars after upsert, got %d", len(all))
	}
}

func TestParseWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.xlsx")

	f := excelize.NewFile()
	header := []string{"Date", "Open", "High", "Low", "Close"}
	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, name)
	}
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for row := 0; row < 5; row++ {
		values := []interface{}{
			day.AddDate(0, 0, row).Format("2006-01-02"),
			100.0 + float64(row),
			101.5 + float64(row),
			99.5 + float64(row),
			100.5 + float64(row),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Sheet1", cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	bars, err := ParseWorkbook(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 5 {
		t.Fatalf("expected 5 bars, got %d", len(bars))
	}
	if !bars[0].Date.Equal(day) {
		t.Errorf("expected first date %s, got %s", day, bars[0].Date)
	}
	if bars[2].High != 103.5 || bars[2].Low != 101.5 {
		t.Errorf("row 3 prices wrong: %+v", bars[2])
	}

	fetcher := NewWorkbookFetcher(path, "")
	recent, err := fetcher.FetchDailyBars("TEST", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 || recent[0].Open != 102.0 {
		t.Errorf("expected the 3 most recent bars, got %+v", recent)
	}
}
