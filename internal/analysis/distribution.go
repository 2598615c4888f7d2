package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/volatility"
)

// Distribution builds a histogram of one estimator's rolling volatility
// series together with its moments.
func Distribution(series *model.PriceSeries, estimator volatility.Estimator, bandwidth, bins int) (*model.DistributionResult, error) {
	if bins < 1 {
		return nil, fmt.Errorf("distribution: bins must be positive, got %d", bins)
	}

	values, err := volatility.Estimate(series, estimator, bandwidth, true)
	if err != nil {
		return nil, fmt.Errorf("estimate %s: %w", estimator, err)
	}

	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	if len(defined) < 2 {
		return nil, fmt.Errorf("distribution: only %d defined values", len(defined))
	}

	res := &model.DistributionResult{
		Symbol:    series.Symbol,
		Estimator: estimator.String(),
		Bandwidth: bandwidth,
		Mean:      stat.Mean(defined, nil),
		Std:       stat.StdDev(defined, nil),
		Skewness:  stat.Skew(defined, nil),
		Kurtosis:  stat.ExKurtosis(defined, nil),
	}

	lo, hi := defined[0], defined[0]
	for _, v := range defined {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		hi = lo + 1e-12 // degenerate constant series still gets one bin
	}

	res.Edges = make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := 0; i <= bins; i++ {
		res.Edges[i] = lo + float64(i)*width
	}

	res.Counts = make([]int, bins)
	for _, v := range defined {
		bin := int((v - lo) / width)
		if bin >= bins {
			bin = bins - 1 // the maximum lands in the last bin
		}
		res.Counts[bin]++
	}

	return res, nil
}
