package volatility

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is wrapped by every error the core raises for malformed
// input. Undefined numeric results (NaN from zero prices, missing first
// return) are not errors; they propagate into the output series.
var ErrInvalidArgument = errors.New("invalid argument")

// ExtractWindows partitions a t-row matrix into overlapping windows of
// bandwidth consecutive rows. Window i covers rows [i, i+bandwidth), so the
// result has t-bandwidth+1 windows. When bandwidth >= t the whole input is
// returned as a single window instead of an error. Windows are read-only
// views into data; they share its backing arrays.
func ExtractWindows(data [][]float64, bandwidth int) ([][][]float64, error) {
	if bandwidth < 2 {
		return nil, fmt.Errorf("%w: bandwidth must be at least 2, got %d", ErrInvalidArgument, bandwidth)
	}
	t := len(data)
	if t == 0 {
		return nil, fmt.Errorf("%w: data must not be empty", ErrInvalidArgument)
	}
	width := len(data[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: data rows must not be empty", ErrInvalidArgument)
	}
	for i, row := range data {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidArgument, i, len(row), width)
		}
	}

	if bandwidth >= t {
		// Whole-series fallback rather than an error.
		return [][][]float64{data}, nil
	}

	windows := make([][][]float64, 0, t-bandwidth+1)
	for i := 0; i+bandwidth <= t; i++ {
		windows = append(windows, data[i:i+bandwidth])
	}
	return windows, nil
}

// ExtractSeriesWindows is the single-column form of ExtractWindows. It is
// used for rolling statistics over an already-computed volatility series.
func ExtractSeriesWindows(data []float64, bandwidth int) ([][]float64, error) {
	if bandwidth < 2 {
		return nil, fmt.Errorf("%w: bandwidth must be at least 2, got %d", ErrInvalidArgument, bandwidth)
	}
	t := len(data)
	if t == 0 {
		return nil, fmt.Errorf("%w: data must not be empty", ErrInvalidArgument)
	}

	if bandwidth >= t {
		return [][]float64{data}, nil
	}

	windows := make([][]float64, 0, t-bandwidth+1)
	for i := 0; i+bandwidth <= t; i++ {
		windows = append(windows, data[i:i+bandwidth])
	}
	return windows, nil
}
