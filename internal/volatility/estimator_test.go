package volatility

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

func newSeries(bars []model.Bar) *model.PriceSeries {
	returns := make([]float64, len(bars))
	returns[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		returns[i] = math.Log(bars[i].Close / bars[i-1].Close)
	}
	return &model.PriceSeries{Symbol: "TEST", Bars: bars, Returns: returns}
}

func flatSeries(n int, price float64) *model.PriceSeries {
	bars := make([]model.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.Bar{Date: day.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price}
	}
	return newSeries(bars)
}

// syntheticSeries builds a deterministic wiggly but valid OHLC series
// (High >= max(Open, Close) >= min(Open, Close) >= Low).
func syntheticSeries(n int) *model.PriceSeries {
	bars := make([]model.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for i := range bars {
		drift := math.Sin(float64(i)*0.7)*0.01 + 0.002
		open := price
		close := price * math.Exp(drift)
		bars[i] = model.Bar{
			Date:  day.AddDate(0, 0, i),
			Open:  open,
			High:  math.Max(open, close) * 1.004,
			Low:   math.Min(open, close) * 0.996,
			Close: close,
		}
		price = close
	}
	return newSeries(bars)
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}

func TestEstimate_ParkinsonSpike(t *testing.T) {
	series := flatSeries(10, 100)
	series.Bars[5].High = 110

	got, err := Estimate(series, Parkinson, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 10 {
		t.Fatalf("expected 10 values, got %d", len(got))
	}
	for i := 0; i < 2; i++ {
		if !math.IsNaN(got[i]) {
			t.Errorf("position %d: expected NaN marker, got %v", i, got[i])
		}
	}

	raw := math.Log(110.0 / 100.0)
	want := math.Sqrt(raw * raw * 252 / (3 * 4 * math.Ln2))
	for i := 2; i < 10; i++ {
		if i >= 5 && i <= 7 {
			if relDiff(got[i], want) > 1e-9 {
				t.Errorf("position %d: expected %.12f, got %.12f", i, want, got[i])
			}
		} else if got[i] != 0 {
			t.Errorf("position %d: expected 0, got %v", i, got[i])
		}
	}
}

func TestEstimate_CCConstantReturn(t *testing.T) {
	const r = 0.005
	const bw = 5
	n := 30
	bars := make([]model.Bar, n)
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 100 * math.Exp(r*float64(i))
		bars[i] = model.Bar{Date: day.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p}
	}
	series := newSeries(bars)

	cc, err := Estimate(series, CloseToClose, bw, false)
	if err != nil {
		t.Fatal(err)
	}
	// Windows past the undefined first return: the un-annualized sum of
	// squares must equal bandwidth*r^2.
	for i := bw; i < n; i++ {
		sumSq := cc[i] * cc[i] * (bw - 1) / 252
		if relDiff(sumSq, bw*r*r) > 1e-9 {
			t.Errorf("position %d: sum of squares %.12g, want %.12g", i, sumSq, bw*r*r)
		}
	}

	// The demeaned variant sees a constant return, so its variance is zero.
	ccd, err := Estimate(series, CloseToCloseDemeaned, bw, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := bw; i < n; i++ {
		if math.Abs(ccd[i]) > 1e-9 {
			t.Errorf("position %d: expected 0 demeaned volatility, got %v", i, ccd[i])
		}
	}
}

func TestEstimate_AlignmentAndCompaction(t *testing.T) {
	series := syntheticSeries(60)
	const bw = 10

	for _, est := range Estimators() {
		full, err := Estimate(series, est, bw, false)
		if err != nil {
			t.Fatalf("%s: %v", est, err)
		}
		if len(full) != 60 {
			t.Fatalf("%s: expected 60 values, got %d", est, len(full))
		}
		for i := 0; i < bw-1; i++ {
			if !math.IsNaN(full[i]) {
				t.Errorf("%s: position %d should be a NaN marker, got %v", est, i, full[i])
			}
		}

		compact, err := Estimate(series, est, bw, true)
		if err != nil {
			t.Fatalf("%s compact: %v", est, err)
		}
		if len(compact) != 60-bw+1 {
			t.Fatalf("%s: expected %d compact values, got %d", est, 60-bw+1, len(compact))
		}
		for i, v := range compact {
			f := full[i+bw-1]
			if math.IsNaN(v) && math.IsNaN(f) {
				continue
			}
			if v != f {
				t.Errorf("%s: compact[%d]=%v differs from full[%d]=%v", est, i, v, i+bw-1, f)
			}
		}
	}
}

func TestEstimate_NonNegativity(t *testing.T) {
	series := syntheticSeries(120)
	for _, est := range Estimators() {
		out, err := Estimate(series, est, 21, true)
		if err != nil {
			t.Fatalf("%s: %v", est, err)
		}
		defined := 0
		for i, v := range out {
			if math.IsNaN(v) {
				continue
			}
			defined++
			if v < 0 {
				t.Errorf("%s: negative volatility %v at position %d", est, v, i)
			}
		}
		if defined == 0 {
			t.Errorf("%s: no defined values produced", est)
		}
	}
}

func TestEstimate_FirstReturnPropagation(t *testing.T) {
	series := syntheticSeries(40)
	const bw = 5

	// Estimators that consume the previous close or the return column have
	// an undefined first row; the windows spanning it yield NaN, which is a
	// propagated value, not a structural marker, so compaction keeps it.
	for _, est := range []Estimator{CloseToClose, CloseToCloseDemeaned, GarmanKlassYangZhang, HodgesTompkins, YangZhang} {
		compact, err := Estimate(series, est, bw, true)
		if err != nil {
			t.Fatalf("%s: %v", est, err)
		}
		if !math.IsNaN(compact[0]) {
			t.Errorf("%s: window spanning the first row should be NaN, got %v", est, compact[0])
		}
		if math.IsNaN(compact[1]) {
			t.Errorf("%s: first full window past row 0 should be defined", est)
		}
	}

	// Range-based estimators are defined from the very first window.
	for _, est := range []Estimator{GarmanKlass, Meilijson, Parkinson, RogersSatchell} {
		compact, err := Estimate(series, est, bw, true)
		if err != nil {
			t.Fatalf("%s: %v", est, err)
		}
		if math.IsNaN(compact[0]) {
			t.Errorf("%s: first window should be defined, got NaN", est)
		}
	}
}

func TestEstimate_YangZhangClosedForm(t *testing.T) {
	series := syntheticSeries(30)
	const bw = 10
	k := float64(bw)

	got, err := Estimate(series, YangZhang, bw, false)
	if err != nil {
		t.Fatal(err)
	}

	// Recompute the last window by hand.
	var overnight, closeSq, rs float64
	for i := 30 - bw; i < 30; i++ {
		b := series.Bars[i]
		on := math.Log(b.Open / series.Bars[i-1].Close)
		overnight += on * on
		closeSq += series.Returns[i] * series.Returns[i]
		ho := math.Log(b.High / b.Open)
		lo := math.Log(b.Low / b.Open)
		co := math.Log(b.Close / b.Open)
		rs += ho*(ho-co) + lo*(lo-co)
	}
	kappa := 0.34 / (1.34 + (k+1)/(k-1))
	want := math.Sqrt(overnight*252/(k-1) + kappa*closeSq*252/(k-1) + (1-kappa)*rs*252/k)

	if relDiff(got[29], want) > 1e-9 {
		t.Errorf("expected %.12f, got %.12f", want, got[29])
	}
}

func TestEstimate_InvalidArguments(t *testing.T) {
	series := syntheticSeries(30)

	tests := []struct {
		name      string
		series    *model.PriceSeries
		estimator Estimator
		bandwidth int
	}{
		{"bandwidth equal to rows", series, CloseToClose, 30},
		{"bandwidth above rows", series, CloseToClose, 40},
		{"bandwidth too small", series, CloseToClose, 1},
		{"bandwidth above cap", syntheticSeries(300), CloseToClose, 253},
		{"nil series", nil, CloseToClose, 10},
		{"unknown estimator", series, Estimator(42), 10},
	}
	for _, tt := range tests {
		if _, err := Estimate(tt.series, tt.estimator, tt.bandwidth, false); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.name, err)
		}
	}
}

func TestParseEstimator(t *testing.T) {
	for _, est := range Estimators() {
		parsed, err := ParseEstimator(est.String())
		if err != nil {
			t.Fatalf("%s: %v", est, err)
		}
		if parsed != est {
			t.Errorf("round trip %s: got %s", est, parsed)
		}
	}

	if _, err := ParseEstimator("XYZ"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for unknown code, got %v", err)
	}
}
