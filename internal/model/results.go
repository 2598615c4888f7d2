package model

import "time"

// EstimatorSummary holds descriptive statistics of one estimator's
// volatility series over the region where it is defined.
type EstimatorSummary struct {
	Estimator string
	Count     int
	Mean      float64
	Std       float64
	Min       float64
	Max       float64
	Last      float64
}

// RegressionFit is a linear fit of one estimator's series against the
// close-to-close benchmark series.
type RegressionFit struct {
	Estimator string
	Alpha     float64
	Beta      float64
	R2        float64
}

// ComparisonResult is the output of the estimator comparison analysis:
// aligned volatility curves for every estimator at a single bandwidth, plus
// cross-estimator statistics.
type ComparisonResult struct {
	Symbol      string
	Bandwidth   int
	Estimators  []string
	Dates       []time.Time          // dates of the compact region, aligned with Series
	Series      map[string][]float64 // compact volatility series per estimator code
	Summaries   []EstimatorSummary
	Correlation [][]float64 // Pearson, indexed like Estimators
	Regressions []RegressionFit
	Efficiency  map[string]float64 // Var(CC) / Var(estimator)
}

// ConeBand holds the dispersion of one bandwidth's volatility series.
// Quantiles is aligned with ConeResult.Quantiles.
type ConeBand struct {
	Bandwidth int
	Min       float64
	Max       float64
	Quantiles []float64
	Realized  float64 // terminal value of the series
}

// ConeResult is the output of the volatility cone analysis: one band per
// bandwidth in the ladder, for a single estimator.
type ConeResult struct {
	Symbol    string
	Estimator string
	Quantiles []float64
	Bands     []ConeBand
}

// DistributionResult is the output of the distribution analysis: a histogram
// of one estimator's volatility series plus its moments.
type DistributionResult struct {
	Symbol    string
	Estimator string
	Bandwidth int
	Edges     []float64 // len(Counts)+1 bin edges
	Counts    []int
	Mean      float64
	Std       float64
	Skewness  float64
	Kurtosis  float64 // excess
}
