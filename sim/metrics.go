// Accumulates per-run counters and timing samples, and computes the
// derived sample statistics from the terminal state.

package sim

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about one simulation run. Counters and
// samples are mutated only by the event loop; derived statistics are
// computed on demand after the run ends.
type Metrics struct {
	Arrivals    int64 // jobs that arrived (admitted or not)
	Completions int64 // jobs that finished service
	Losses      int64 // jobs rejected by the full buffer

	WaitTimes   []float64 // per completed job: start − arrival
	SystemTimes []float64 // per completed job: finish − arrival
	BusyTime    float64   // integral of busy-server count over time
}

// NewMetrics creates an empty accumulator.
func NewMetrics() *Metrics {
	return &Metrics{
		WaitTimes:   make([]float64, 0),
		SystemTimes: make([]float64, 0),
	}
}

// RecordCompletion records the departing job's wait and system times and
// bumps the completion counter. The job must have start and finish set.
func (m *Metrics) RecordCompletion(j *Job) {
	m.WaitTimes = append(m.WaitTimes, j.WaitTime())
	m.SystemTimes = append(m.SystemTimes, j.SystemTime())
	m.Completions++
}

// MeanWaitTime returns the sample mean of recorded wait times, 0 when no
// job has completed.
func (m *Metrics) MeanWaitTime() float64 {
	return sampleMean(m.WaitTimes)
}

// WaitTimeVariance returns the sample variance (n−1 denominator) of
// recorded wait times, 0 with fewer than 2 samples.
func (m *Metrics) WaitTimeVariance() float64 {
	return sampleVariance(m.WaitTimes)
}

// MinWaitTime returns the smallest recorded wait time, 0 when none.
func (m *Metrics) MinWaitTime() float64 {
	if len(m.WaitTimes) == 0 {
		return 0.0
	}
	return floats.Min(m.WaitTimes)
}

// MaxWaitTime returns the largest recorded wait time, 0 when none.
func (m *Metrics) MaxWaitTime() float64 {
	if len(m.WaitTimes) == 0 {
		return 0.0
	}
	return floats.Max(m.WaitTimes)
}

// MeanSystemTime returns the sample mean of recorded system times, 0 when
// no job has completed.
func (m *Metrics) MeanSystemTime() float64 {
	return sampleMean(m.SystemTimes)
}

// SystemTimeVariance returns the sample variance (n−1 denominator) of
// recorded system times, 0 with fewer than 2 samples.
func (m *Metrics) SystemTimeVariance() float64 {
	return sampleVariance(m.SystemTimes)
}

// LossProbability returns losses ÷ arrivals, 0 before any arrival.
func (m *Metrics) LossProbability() float64 {
	if m.Arrivals == 0 {
		return 0.0
	}
	return float64(m.Losses) / float64(m.Arrivals)
}

func sampleMean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0.0
	}
	return stat.Mean(xs, nil)
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0.0
	}
	// stat.Variance uses the n−1 denominator.
	return stat.Variance(xs, nil)
}
