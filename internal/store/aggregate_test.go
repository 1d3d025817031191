package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The midpoint formula is the historical behavior: starting from 0, two
// samples of 100ms and 300ms must yield 50 then 175, not the true mean.
func TestMidpointAverage_HistoricalSequence(t *testing.T) {
	avg := MidpointAverage(0, 100, 1)
	assert.Equal(t, 50.0, avg)

	avg = MidpointAverage(avg, 300, 2)
	assert.Equal(t, 175.0, avg)
}

func TestMidpointAverage_DiscountsHistory(t *testing.T) {
	// After many identical samples one outlier moves the average halfway,
	// regardless of how much history preceded it.
	avg := 100.0
	avg = MidpointAverage(avg, 500, 1000)
	assert.Equal(t, 300.0, avg)
}

func TestWeightedAverage_TrueMean(t *testing.T) {
	avg := WeightedAverage(0, 100, 1)
	assert.Equal(t, 100.0, avg)

	avg = WeightedAverage(avg, 300, 2)
	assert.Equal(t, 200.0, avg)

	avg = WeightedAverage(avg, 200, 3)
	assert.Equal(t, 200.0, avg)
}

func TestAggregatorByName(t *testing.T) {
	midpoint := AggregatorByName("midpoint")
	assert.Equal(t, 50.0, midpoint(0, 100, 1))

	weighted := AggregatorByName("weighted")
	assert.Equal(t, 100.0, weighted(0, 100, 1))

	// Unknown strategies fall back to the historical formula.
	fallback := AggregatorByName("something-else")
	assert.Equal(t, 50.0, fallback(0, 100, 1))
}
