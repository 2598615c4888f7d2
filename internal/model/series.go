package model

import "time"

// Bar represents a single daily OHLC observation.
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// PriceSeries holds a validated, date-ascending OHLC table together with the
// close-to-close log returns. Returns is aligned to Bars; its first element
// is NaN because the first observation has no predecessor.
type PriceSeries struct {
	Symbol    string
	Bars      []Bar
	Returns   []float64
	FetchedAt time.Time
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int { return len(s.Bars) }
