package analysis

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/volatility"
)

// Compare runs every requested estimator at one bandwidth and derives the
// cross-estimator statistics: summaries, Pearson correlations, linear fits
// against the close-to-close benchmark and efficiency ratios.
func Compare(series *model.PriceSeries, bandwidth int, estimators []volatility.Estimator) (*model.ComparisonResult, error) {
	if len(estimators) == 0 {
		estimators = volatility.Estimators()
	}

	res := &model.ComparisonResult{
		Symbol:     series.Symbol,
		Bandwidth:  bandwidth,
		Series:     make(map[string][]float64, len(estimators)),
		Efficiency: make(map[string]float64, len(estimators)),
	}

	for _, est := range estimators {
		values, err := volatility.Estimate(series, est, bandwidth, true)
		if err != nil {
			return nil, fmt.Errorf("estimate %s: %w", est, err)
		}
		res.Estimators = append(res.Estimators, est.String())
		res.Series[est.String()] = values
	}

	compactLen := series.Len() - bandwidth + 1
	res.Dates = make([]time.Time, compactLen)
	for i := 0; i < compactLen; i++ {
		res.Dates[i] = series.Bars[i+bandwidth-1].Date
	}

	for _, code := range res.Estimators {
		res.Summaries = append(res.Summaries, summarize(code, res.Series[code]))
	}

	// Cross statistics run on the region where every series is defined.
	mask := jointDefined(res.Series, res.Estimators)
	aligned := make(map[string][]float64, len(res.Estimators))
	for _, code := range res.Estimators {
		aligned[code] = applyMask(res.Series[code], mask)
	}

	res.Correlation = correlationMatrix(aligned, res.Estimators)

	benchmark, hasBenchmark := aligned[volatility.CloseToClose.String()]
	if hasBenchmark && len(benchmark) >= 2 {
		benchVar := stat.Variance(benchmark, nil)
		for _, code := range res.Estimators {
			x := aligned[code]
			alpha, beta := stat.LinearRegression(benchmark, x, nil, false)
			res.Regressions = append(res.Regressions, model.RegressionFit{
				Estimator: code,
				Alpha:     alpha,
				Beta:      beta,
				R2:        stat.RSquared(benchmark, x, nil, alpha, beta),
			})
			res.Efficiency[code] = benchVar / stat.Variance(x, nil)
		}
	}

	return res, nil
}

func summarize(code string, values []float64) model.EstimatorSummary {
	defined := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}
	s := model.EstimatorSummary{Estimator: code, Count: len(defined)}
	if len(defined) == 0 {
		s.Mean, s.Std, s.Min, s.Max, s.Last = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Mean = stat.Mean(defined, nil)
	s.Std = stat.StdDev(defined, nil)
	s.Min, s.Max = defined[0], defined[0]
	for _, v := range defined {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Last = defined[len(defined)-1]
	return s
}

// jointDefined marks the positions where every estimator's series is
// defined. Series are aligned, so a single mask covers them all.
func jointDefined(series map[string][]float64, codes []string) []bool {
	if len(codes) == 0 {
		return nil
	}
	mask := make([]bool, len(series[codes[0]]))
	for i := range mask {
		mask[i] = true
		for _, code := range codes {
			if math.IsNaN(series[code][i]) {
				mask[i] = false
				break
			}
		}
	}
	return mask
}

func applyMask(values []float64, mask []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if mask[i] {
			out = append(out, v)
		}
	}
	return out
}

func correlationMatrix(aligned map[string][]float64, codes []string) [][]float64 {
	matrix := make([][]float64, len(codes))
	for i, a := range codes {
		matrix[i] = make([]float64, len(codes))
		for j, b := range codes {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			matrix[i][j] = stat.Correlation(aligned[a], aligned[b], nil)
		}
	}
	return matrix
}
