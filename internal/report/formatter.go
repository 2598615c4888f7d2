package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

func pct(v float64) string {
	if math.IsNaN(v) {
		return "    n/a"
	}
	return fmt.Sprintf("%6.2f%%", v*100)
}

// FormatComparison renders the estimator comparison as plain-text tables.
func FormatComparison(res *model.ComparisonResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Estimator comparison | %s | bandwidth %d\n\n", res.Symbol, res.Bandwidth))

	b.WriteString("Summary (annualized):\n")
	b.WriteString("  EST    COUNT    MEAN     STD     MIN     MAX    LAST\n")
	for _, s := range res.Summaries {
		b.WriteString(fmt.Sprintf("  %-5s %6d %s %s %s %s %s\n",
			s.Estimator, s.Count, pct(s.Mean), pct(s.Std), pct(s.Min), pct(s.Max), pct(s.Last)))
	}

	b.WriteString("\nCorrelation matrix:\n")
	b.WriteString("        ")
	for _, code := range res.Estimators {
		b.WriteString(fmt.Sprintf("%7s", code))
	}
	b.WriteString("\n")
	for i, code := range res.Estimators {
		b.WriteString(fmt.Sprintf("  %-5s ", code))
		for j := range res.Estimators {
			b.WriteString(fmt.Sprintf("%7.3f", res.Correlation[i][j]))
		}
		b.WriteString("\n")
	}

	if len(res.Regressions) > 0 {
		b.WriteString("\nRegression against CC (y = alpha + beta*CC):\n")
		b.WriteString("  EST      ALPHA    BETA      R2    EFFICIENCY\n")
		for _, fit := range res.Regressions {
			b.WriteString(fmt.Sprintf("  %-5s %8.4f %7.3f %7.3f %11.3f\n",
				fit.Estimator, fit.Alpha, fit.Beta, fit.R2, res.Efficiency[fit.Estimator]))
		}
	}

	return b.String()
}

// FormatCone renders the volatility cone as a plain-text table.
func FormatCone(res *model.ConeResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Volatility cone | %s | estimator %s\n\n", res.Symbol, res.Estimator))
	b.WriteString("  BW       MIN")
	for _, q := range res.Quantiles {
		b.WriteString(fmt.Sprintf("   Q%02.0f  ", q*100))
	}
	b.WriteString("    MAX  REALIZED\n")
	for _, band := range res.Bands {
		b.WriteString(fmt.Sprintf("  %-4d %s", band.Bandwidth, pct(band.Min)))
		for _, q := range band.Quantiles {
			b.WriteString(" " + pct(q))
		}
		b.WriteString(fmt.Sprintf(" %s   %s\n", pct(band.Max), pct(band.Realized)))
	}

	return b.String()
}

// FormatDistribution renders the volatility distribution with an ASCII
// histogram.
func FormatDistribution(res *model.DistributionResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Volatility distribution | %s | estimator %s | bandwidth %d\n\n",
		res.Symbol, res.Estimator, res.Bandwidth))
	b.WriteString(fmt.Sprintf("  mean %s  std %s  skew %.3f  exkurt %.3f\n\n",
		pct(res.Mean), pct(res.Std), res.Skewness, res.Kurtosis))

	maxCount := 0
	for _, c := range res.Counts {
		if c > maxCount {
			maxCount = c
		}
	}
	for i, c := range res.Counts {
		barLen := 0
		if maxCount > 0 {
			barLen = c * 40 / maxCount
		}
		b.WriteString(fmt.Sprintf("  [%s, %s) %4d %s\n",
			pct(res.Edges[i]), pct(res.Edges[i+1]), c, strings.Repeat("#", barLen)))
	}

	return b.String()
}
