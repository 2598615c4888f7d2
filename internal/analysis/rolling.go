package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/volatility"
)

// RollingMean computes the rolling mean of an already-computed volatility
// series, aligned to the end of each window like the estimators. Positions
// before the first full window hold NaN.
func RollingMean(values []float64, bandwidth int) ([]float64, error) {
	return rollingReduce(values, bandwidth, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStdDev computes the rolling sample standard deviation of a series,
// with the same alignment as RollingMean.
func RollingStdDev(values []float64, bandwidth int) ([]float64, error) {
	return rollingReduce(values, bandwidth, func(w []float64) float64 {
		return stat.StdDev(w, nil)
	})
}

func rollingReduce(values []float64, bandwidth int, reduce func([]float64) float64) ([]float64, error) {
	windows, err := volatility.ExtractSeriesWindows(values, bandwidth)
	if err != nil {
		return nil, err
	}

	if bandwidth >= len(values) {
		// Whole-series fallback: one value aligned to the series end.
		out := make([]float64, len(values))
		for i := range out {
			out[i] = math.NaN()
		}
		out[len(out)-1] = reduce(windows[0])
		return out, nil
	}

	out := make([]float64, len(values))
	for i := 0; i < bandwidth-1; i++ {
		out[i] = math.NaN()
	}
	for i, w := range windows {
		out[i+bandwidth-1] = reduce(w)
	}
	return out, nil
}
