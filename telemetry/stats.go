package telemetry

import (
	"gonum.org/v1/gonum/stat"
)

// PassStats accumulates per-pass wall-clock durations so sessions can report
// how expensive decision passes were.
type PassStats struct {
	durationsMs []float64
}

func (p *PassStats) Record(ms float64) {
	p.durationsMs = append(p.durationsMs, ms)
}

func (p *PassStats) Count() int { return len(p.durationsMs) }

// Summary returns mean and standard deviation of recorded pass durations in
// milliseconds. Zeroes with no samples.
func (p *PassStats) Summary() (mean, stddev float64) {
	if len(p.durationsMs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(p.durationsMs, nil)
	if len(p.durationsMs) > 1 {
		stddev = stat.StdDev(p.durationsMs, nil)
	}
	return mean, stddev
}
