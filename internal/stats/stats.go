// Package stats derives aggregate statistics across repeated run results.
// Aggregates are recomputed from scratch for every session and discarded
// after being printed.
package stats

import "math"

type Aggregate struct {
	Mean      float64
	StdDev    float64
	StdDevPct float64
	Min       float64
	Max       float64
	Count     int
}

// Compute returns the aggregate for a sequence of values. The standard
// deviation is the sample standard deviation, zero for fewer than two
// values; StdDevPct is zero when the mean is zero.
func Compute(values []float64) Aggregate {
	agg := Aggregate{Count: len(values)}
	if len(values) == 0 {
		return agg
	}

	agg.Min = values[0]
	agg.Max = values[0]
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < agg.Min {
			agg.Min = v
		}
		if v > agg.Max {
			agg.Max = v
		}
	}
	agg.Mean = sum / float64(len(values))

	if len(values) > 1 {
		variance := 0.0
		for _, v := range values {
			d := v - agg.Mean
			variance += d * d
		}
		variance /= float64(len(values) - 1)
		agg.StdDev = math.Sqrt(variance)
	}

	if agg.Mean != 0 {
		agg.StdDevPct = agg.StdDev / agg.Mean * 100
	}

	return agg
}
