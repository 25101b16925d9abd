// Saturation trend tracking: unlike the teacher's queue auto-scaler, the
// augmentation loop has no authority to resize an augmentor fleet it does
// not own, so this package is observability-only. It smooths noisy
// per-tick samples into a trend direction and a stable latency figure that
// recordStats publishes as gauges, so an operator (or an external
// autoscaler watching those gauges) can react.
package scaling

import "augmentloop/internal/calc"

// Tracker holds a bounded window of recent in-flight-utilization and
// augmentor-response-latency samples for one augmentor name.
type Tracker struct {
	utilization []float64 // percent of MaxInFlight currently used, most recent last
	latencyMs   []float64 // observed augmentor round-trip latency samples, most recent last
	window      int
}

func NewTracker(window int) (t *Tracker) {
	if window < 3 {
		window = 3
	}
	t = &Tracker{window: window}
	return
}

// Observe records one tick's worth of samples, dropping the oldest once the
// window fills.
func (t *Tracker) Observe(utilizationPct float64, latencyMs float64) {
	t.utilization = appendBounded(t.utilization, utilizationPct, t.window)
	t.latencyMs = appendBounded(t.latencyMs, latencyMs, t.window)
}

func appendBounded(series []float64, value float64, window int) []float64 {
	series = append(series, value)
	if len(series) > window {
		series = series[len(series)-window:]
	}
	return series
}

// Trend decides whether observed utilization is consistently climbing or
// falling, using the same weighted-delta smoothing shape as the teacher's
// queue scaler, adapted to a percent-occupancy series instead of raw
// queue-depth counts.
func (t *Tracker) Trend() (rising bool, falling bool) {
	n := len(t.utilization)
	if n < 3 {
		return
	}

	deltas := make([]float64, n-1)
	for i := 1; i < n; i++ {
		delta := t.utilization[i] - t.utilization[i-1]
		const maxDelta = 25.0 // clamp spikes, same rationale as the teacher's scaler
		if delta > maxDelta {
			delta = maxDelta
		} else if delta < -maxDelta {
			delta = -maxDelta
		}
		deltas[i-1] = delta
	}

	var weightedSum, weightSum float64
	for i, delta := range deltas {
		weight := float64(i + 1)
		weightedSum += delta * weight
		weightSum += weight
	}
	trend := weightedSum / weightSum

	const upThreshold = 5.0
	const downThreshold = 2.0
	if trend > upThreshold {
		rising = true
	} else if trend < -downThreshold {
		falling = true
	}
	return
}

// SmoothedLatencyMs returns a trimmed mean of the latency window, dropping
// the top and bottom 10% of samples so a single slow augmentor call doesn't
// swing the published gauge on its own.
func (t *Tracker) SmoothedLatencyMs() (ms float64) {
	ms = calc.TrimmedMeanFloat64(t.latencyMs, 0.10)
	return
}

// LatestUtilization reports the most recent utilization sample, or 0 if
// none have been observed yet.
func (t *Tracker) LatestUtilization() (pct float64) {
	if len(t.utilization) == 0 {
		return
	}
	pct = t.utilization[len(t.utilization)-1]
	return
}
