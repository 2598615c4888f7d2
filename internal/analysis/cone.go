package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/volatility"
)

// Cone computes a volatility cone: for each bandwidth in the ladder, the
// dispersion of the estimator's rolling volatility (min, quantile bands,
// max) plus the terminal value, which is the realized point the cone is
// compared against.
func Cone(series *model.PriceSeries, estimator volatility.Estimator, bandwidths []int, quantiles []float64) (*model.ConeResult, error) {
	if len(bandwidths) == 0 {
		return nil, fmt.Errorf("cone: no bandwidths given")
	}
	for _, q := range quantiles {
		if q <= 0 || q >= 1 {
			return nil, fmt.Errorf("cone: quantile %v out of (0, 1)", q)
		}
	}

	res := &model.ConeResult{
		Symbol:    series.Symbol,
		Estimator: estimator.String(),
		Quantiles: quantiles,
	}

	for _, bw := range bandwidths {
		values, err := volatility.Estimate(series, estimator, bw, true)
		if err != nil {
			return nil, fmt.Errorf("estimate %s bw=%d: %w", estimator, bw, err)
		}

		defined := make([]float64, 0, len(values))
		for _, v := range values {
			if !math.IsNaN(v) {
				defined = append(defined, v)
			}
		}
		if len(defined) == 0 {
			return nil, fmt.Errorf("cone: no defined values for bandwidth %d", bw)
		}

		band := model.ConeBand{
			Bandwidth: bw,
			Realized:  defined[len(defined)-1],
			Quantiles: make([]float64, len(quantiles)),
		}

		sorted := make([]float64, len(defined))
		copy(sorted, defined)
		sort.Float64s(sorted)

		band.Min = sorted[0]
		band.Max = sorted[len(sorted)-1]
		for i, q := range quantiles {
			band.Quantiles[i] = stat.Quantile(q, stat.Empirical, sorted, nil)
		}

		res.Bands = append(res.Bands, band)
	}

	return res, nil
}
