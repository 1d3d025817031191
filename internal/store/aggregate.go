package store

// ResponseTimeAggregator folds one response-time sample into the stored
// per-day average. prev is the stored average (0 for a fresh row), sample
// the new measurement, n the interaction count including the new sample.
type ResponseTimeAggregator func(prev, sample float64, n int64) float64

// MidpointAverage reproduces the historical aggregation: the stored value
// and the new sample are averaged with equal weight, so older history loses
// weight as the count grows. Kept for behavioral compatibility; prefer
// WeightedAverage for a true mean.
func MidpointAverage(prev, sample float64, _ int64) float64 {
	return (prev + sample) / 2
}

// WeightedAverage is the corrected running mean over all n samples.
func WeightedAverage(prev, sample float64, n int64) float64 {
	if n <= 1 {
		return sample
	}
	return (prev*float64(n-1) + sample) / float64(n)
}

// AggregatorByName maps the PERF_AVG_STRATEGY config value to an
// implementation. Unknown names fall back to the midpoint formula.
func AggregatorByName(name string) ResponseTimeAggregator {
	if name == "weighted" {
		return WeightedAverage
	}
	return MidpointAverage
}
