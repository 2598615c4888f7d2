package volatility

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/model"
)

// Estimator selects one historical volatility formula from the closed set.
type Estimator int

const (
	CloseToClose Estimator = iota
	CloseToCloseDemeaned
	GarmanKlass
	GarmanKlassYangZhang
	HodgesTompkins
	Meilijson
	Parkinson
	RogersSatchell
	YangZhang
)

const (
	tradingDays  = 252
	minBandwidth = 2
	maxBandwidth = 252
)

// Weights of the four component estimators in Meilijson (2009). They sum to
// one because each component is itself an unbiased variance estimator.
const (
	meilijsonW1 = 0.27352
	meilijsonW2 = 0.160358
	meilijsonW3 = 0.365212
	meilijsonW4 = 0.200910
)

var estimatorCodes = map[Estimator]string{
	CloseToClose:         "CC",
	CloseToCloseDemeaned: "CCD",
	GarmanKlass:          "GK",
	GarmanKlassYangZhang: "GKYZ",
	HodgesTompkins:       "HT",
	Meilijson:            "M",
	Parkinson:            "P",
	RogersSatchell:       "RS",
	YangZhang:            "YZ",
}

var estimatorNames = map[Estimator]string{
	CloseToClose:         "Close-to-Close",
	CloseToCloseDemeaned: "Close-to-Close (demeaned)",
	GarmanKlass:          "Garman-Klass",
	GarmanKlassYangZhang: "Garman-Klass-Yang-Zhang",
	HodgesTompkins:       "Hodges-Tompkins",
	Meilijson:            "Meilijson",
	Parkinson:            "Parkinson",
	RogersSatchell:       "Rogers-Satchell",
	YangZhang:            "Yang-Zhang",
}

// Estimators returns the full estimator set in canonical code order.
func Estimators() []Estimator {
	return []Estimator{
		CloseToClose, CloseToCloseDemeaned, GarmanKlass, GarmanKlassYangZhang,
		HodgesTompkins, Meilijson, Parkinson, RogersSatchell, YangZhang,
	}
}

// String returns the canonical short code (CC, GK, YZ, ...).
func (e Estimator) String() string {
	if code, ok := estimatorCodes[e]; ok {
		return code
	}
	return fmt.Sprintf("Estimator(%d)", int(e))
}

// Name returns the full published name of the estimator.
func (e Estimator) Name() string {
	if name, ok := estimatorNames[e]; ok {
		return name
	}
	return e.String()
}

// ParseEstimator maps a canonical short code to its Estimator.
func ParseEstimator(code string) (Estimator, error) {
	for e, c := range estimatorCodes {
		if c == code {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown estimator %q", ErrInvalidArgument, code)
}

// Estimate computes the annualized historical volatility of the series with
// the chosen estimator over rolling windows of bandwidth observations.
//
// The output is aligned to the end of each window: the value at position i
// summarizes the window ending at row i, and the bandwidth-1 positions before
// the first complete window hold NaN. With compact=true the leading NaN
// markers are stripped and the output has t-bandwidth+1 values.
//
// NaN arising inside the computation (the undefined first return, zero
// prices) is not an error; it propagates into the affected window results.
func Estimate(series *model.PriceSeries, estimator Estimator, bandwidth int, compact bool) ([]float64, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: series must not be empty", ErrInvalidArgument)
	}
	t := series.Len()
	if len(series.Returns) != t {
		return nil, fmt.Errorf("%w: series has %d returns for %d bars", ErrInvalidArgument, len(series.Returns), t)
	}
	if bandwidth < minBandwidth || bandwidth > maxBandwidth {
		return nil, fmt.Errorf("%w: bandwidth must be within [%d, %d], got %d", ErrInvalidArgument, minBandwidth, maxBandwidth, bandwidth)
	}
	if bandwidth >= t {
		return nil, fmt.Errorf("%w: bandwidth must be less than the number of observations (%d >= %d)", ErrInvalidArgument, bandwidth, t)
	}

	raw, reduce, err := buildPlan(series, estimator, bandwidth)
	if err != nil {
		return nil, err
	}

	windows, err := ExtractWindows(raw, bandwidth)
	if err != nil {
		return nil, err
	}

	out := make([]float64, t)
	for i := 0; i < bandwidth-1; i++ {
		out[i] = math.NaN()
	}
	for i, w := range windows {
		out[i+bandwidth-1] = reduce(w)
	}

	if compact {
		return out[bandwidth-1:], nil
	}
	return out, nil
}

// reducer collapses one raw window to a single annualized volatility value.
type reducer func(window [][]float64) float64

// buildPlan computes the per-observation raw series (phase A) and returns it
// together with the estimator's window reduction (phase B).
func buildPlan(series *model.PriceSeries, estimator Estimator, bandwidth int) ([][]float64, reducer, error) {
	t := series.Len()
	k := float64(bandwidth)

	switch estimator {
	case CloseToClose:
		raw := make([][]float64, t)
		for i := 0; i < t; i++ {
			r := series.Returns[i]
			raw[i] = []float64{r * r}
		}
		scale := tradingDays / (k - 1)
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case CloseToCloseDemeaned:
		// Demeaned against the mean of the whole return series, not the
		// window mean.
		mean := definedMean(series.Returns)
		raw := make([][]float64, t)
		for i := 0; i < t; i++ {
			d := series.Returns[i] - mean
			raw[i] = []float64{d * d}
		}
		scale := tradingDays / (k - 1)
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case GarmanKlass:
		raw := make([][]float64, t)
		for i, b := range series.Bars {
			raw[i] = []float64{garmanKlassRaw(b)}
		}
		scale := tradingDays / k
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case GarmanKlassYangZhang:
		raw := make([][]float64, t)
		raw[0] = []float64{math.NaN()}
		for i := 1; i < t; i++ {
			b := series.Bars[i]
			on := math.Log(b.Open / series.Bars[i-1].Close)
			raw[i] = []float64{garmanKlassRaw(b) + on*on}
		}
		scale := tradingDays / k
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case HodgesTompkins:
		// Overlapping-window bias correction of the close-to-close standard
		// deviation, Hodges & Tompkins (2002).
		raw := make([][]float64, t)
		for i := 0; i < t; i++ {
			raw[i] = []float64{series.Returns[i]}
		}
		d := float64(t - bandwidth)
		adj := 1 - k/d + (k*k-1)/(3*d*d)
		scale := math.Sqrt(tradingDays / adj)
		return raw, func(w [][]float64) float64 {
			return stat.StdDev(column(w, 0), nil) * scale
		}, nil

	case Meilijson:
		raw := make([][]float64, t)
		for i, b := range series.Bars {
			raw[i] = []float64{meilijsonRaw(b)}
		}
		scale := tradingDays / k
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case Parkinson:
		raw := make([][]float64, t)
		for i, b := range series.Bars {
			hl := math.Log(b.High / b.Low)
			raw[i] = []float64{hl * hl}
		}
		scale := tradingDays / (4 * k * math.Ln2)
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case RogersSatchell:
		raw := make([][]float64, t)
		for i, b := range series.Bars {
			raw[i] = []float64{rogersSatchellRaw(b)}
		}
		scale := tradingDays / k
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0) * scale)
		}, nil

	case YangZhang:
		raw := make([][]float64, t)
		raw[0] = []float64{math.NaN(), math.NaN(), rogersSatchellRaw(series.Bars[0])}
		for i := 1; i < t; i++ {
			b := series.Bars[i]
			on := math.Log(b.Open / series.Bars[i-1].Close)
			r := series.Returns[i]
			raw[i] = []float64{on * on, r * r, rogersSatchellRaw(b)}
		}
		kappa := 0.34 / (1.34 + (k+1)/(k-1))
		overnightScale := tradingDays / (k - 1)
		closeScale := tradingDays / (k - 1)
		rsScale := tradingDays / k
		return raw, func(w [][]float64) float64 {
			return math.Sqrt(sumColumn(w, 0)*overnightScale +
				kappa*sumColumn(w, 1)*closeScale +
				(1-kappa)*sumColumn(w, 2)*rsScale)
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown estimator %d", ErrInvalidArgument, int(estimator))
	}
}

func garmanKlassRaw(b model.Bar) float64 {
	hl := math.Log(b.High / b.Low)
	co := math.Log(b.Close / b.Open)
	return 0.5*hl*hl - (2*math.Ln2-1)*co*co
}

func rogersSatchellRaw(b model.Bar) float64 {
	ho := math.Log(b.High / b.Open)
	lo := math.Log(b.Low / b.Open)
	co := math.Log(b.Close / b.Open)
	return ho*(ho-co) + lo*(lo-co)
}

// meilijsonRaw combines the four unbiased variance components of Meilijson
// (2009). The bar is reflected when the close lands below the open so that
// the combination works on a non-negative close-to-open log return.
func meilijsonRaw(b model.Bar) float64 {
	h := math.Log(b.High / b.Open)
	l := math.Log(b.Low / b.Open)
	c := math.Log(b.Close / b.Open)
	if c < 0 {
		h, l = -l, -h
		c = -c
	}
	e1 := 2 * ((h-c)*(h-c) + l*l)
	e2 := c * c
	e3 := 2 * (h - c - l) * c
	e4 := -((h - c) * l) / (2*math.Ln2 - 1.25)
	return meilijsonW1*e1 + meilijsonW2*e2 + meilijsonW3*e3 + meilijsonW4*e4
}

func sumColumn(w [][]float64, col int) float64 {
	sum := 0.0
	for _, row := range w {
		sum += row[col]
	}
	return sum
}

func column(w [][]float64, col int) []float64 {
	out := make([]float64, len(w))
	for i, row := range w {
		out[i] = row[col]
	}
	return out
}

// definedMean is the arithmetic mean over the non-NaN entries.
func definedMean(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
