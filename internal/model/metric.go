package model

// Metric is an optional numeric result. Valid is false when the inputs
// needed to compute the metric were absent, which is distinct from the
// metric having a value of zero.
type Metric struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// SomeMetric returns a present metric with the given value.
func SomeMetric(v float64) Metric { return Metric{Value: v, Valid: true} }

// NoMetric returns an absent metric.
func NoMetric() Metric { return Metric{} }
