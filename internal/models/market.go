package models

import "time"

// PricePoint is one (timestamp, value) sample in a market series.
type PricePoint struct {
	Date  time.Time `json:"Date"`
	Value float64   `json:"price"`
}

// PriceSeries is an ordered (timestamp ascending) sequence of samples.
type PriceSeries []PricePoint

// Last returns the most recent value. Callers must ensure the series is
// non-empty before asking for advice.
func (s PriceSeries) Last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Value
}

// PctChange returns the percent change from the first to the last sample.
func (s PriceSeries) PctChange() float64 {
	if len(s) < 2 || s[0].Value == 0 {
		return 0
	}
	return (s[len(s)-1].Value - s[0].Value) / s[0].Value * 100
}

// High returns the maximum value in the series.
func (s PriceSeries) High() float64 {
	high := 0.0
	for i, p := range s {
		if i == 0 || p.Value > high {
			high = p.Value
		}
	}
	return high
}

// Low returns the minimum value in the series.
func (s PriceSeries) Low() float64 {
	low := 0.0
	for i, p := range s {
		if i == 0 || p.Value < low {
			low = p.Value
		}
	}
	return low
}

// Tail returns the last n samples (the whole series when shorter).
func (s PriceSeries) Tail(n int) PriceSeries {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
