package dataset

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// BuildSeries validates the bars and assembles a PriceSeries with
// close-to-close log returns. The core assumes dates are unique and
// ascending and prices are finite and non-negative, so those guarantees are
// enforced here, before anything is handed to the estimators.
func BuildSeries(symbol string, bars []model.Bar) (*model.PriceSeries, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("series %s: need at least 2 bars, got %d", symbol, len(bars))
	}
	for i, b := range bars {
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return nil, fmt.Errorf("series %s: dates not strictly ascending at row %d (%s then %s)",
				symbol, i, bars[i-1].Date.Format("2006-01-02"), b.Date.Format("2006-01-02"))
		}
		for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
				return nil, fmt.Errorf("series %s: non-finite or negative price at row %d (%s)",
					symbol, i, b.Date.Format("2006-01-02"))
			}
		}
		if b.High < math.Max(b.Open, b.Close) || b.Low > math.Min(b.Open, b.Close) {
			log.Printf("[WARN] series %s: inconsistent OHLC ordering at %s", symbol, b.Date.Format("2006-01-02"))
		}
	}

	returns := make([]float64, len(bars))
	returns[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		returns[i] = math.Log(bars[i].Close / bars[i-1].Close)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Bars:      bars,
		Returns:   returns,
		FetchedAt: time.Now(),
	}, nil
}

// staleAfter is how old the newest stored bar may be before a refetch. Four
// days covers a weekend plus a holiday.
const staleAfter = 4 * 24 * time.Hour

// Loader acquires price series through the in-memory cache and the
// persistent bar store, falling back to the fetcher.
type Loader struct {
	Fetcher Fetcher
	Cache   *Cache
	Store   *Store // optional
}

// NewLoader creates a Loader. Store may be nil.
func NewLoader(fetcher Fetcher, cache *Cache, store *Store) *Loader {
	return &Loader{Fetcher: fetcher, Cache: cache, Store: store}
}

// Load returns the validated price series for symbol covering the most
// recent days observations.
func (l *Loader) Load(symbol string, days int) (*model.PriceSeries, error) {
	key := CacheKey([]string{symbol}, days)
	if l.Cache != nil {
		if series, ok := l.Cache.Get(key); ok {
			return series, nil
		}
	}

	bars, err := l.loadBars(symbol, days)
	if err != nil {
		return nil, err
	}

	series, err := BuildSeries(symbol, bars)
	if err != nil {
		return nil, err
	}
	if l.Cache != nil {
		l.Cache.Put(key, series)
	}
	return series, nil
}

func (l *Loader) loadBars(symbol string, days int) ([]model.Bar, error) {
	if l.Store != nil {
		bars, err := l.Store.Bars(symbol, days)
		if err != nil {
			log.Printf("[WARN] bar store read failed for %s: %v", symbol, err)
		} else if len(bars) >= days && time.Since(bars[len(bars)-1].Date) < staleAfter {
			return bars, nil
		}
	}

	bars, err := l.Fetcher.FetchDailyBars(symbol, days)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if l.Store != nil {
		if err := l.Store.SaveBars(symbol, bars); err != nil {
			log.Printf("[WARN] bar store write failed for %s: %v", symbol, err)
		}
	}
	return bars, nil
}
