package dataset

import (
	"math"
	"time"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// Fetcher defines the interface for acquiring daily OHLC bars.
type Fetcher interface {
	FetchDailyBars(symbol string, days int) ([]model.Bar, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars  []model.Bar
	Calls int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string, days int) ([]model.Bar, error) {
	m.Calls++
	if m.Bars != nil {
		return m.Bars, nil
	}
	return GenerateBars(100, days), nil
}

// GenerateBars produces a deterministic synthetic OHLC walk, useful for
// tests and dry runs without network access.
func GenerateBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	day := time.Now().AddDate(0, 0, -count)
	price := basePrice
	for i := 0; i < count; i++ {
		drift := math.Sin(float64(i)*0.31)*0.012 + 0.0005
		open := price
		close := price * math.Exp(drift)
		bars[i] = model.Bar{
			Date:  day.AddDate(0, 0, i),
			Open:  open,
			High:  math.Max(open, close) * 1.005,
			Low:   math.Min(open, close) * 0.995,
			Close: close,
		}
		price = close
	}
	return bars
}
