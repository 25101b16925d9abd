package metrics

import (
	"augmentloop/internal/global"
	"fmt"
	"strconv"
	"time"
)

// Coerces a metric's raw value (uint64, int, int64, float64, or a numeric
// string) into a float64 for aggregation purposes.
func toFloat(raw interface{}) (value float64, ok bool) {
	switch v := raw.(type) {
	case uint64:
		value, ok = float64(v), true
	case int:
		value, ok = float64(v), true
	case int64:
		value, ok = float64(v), true
	case float64:
		value, ok = v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err == nil {
			value, ok = parsed, true
		}
	}
	return
}

// Reduces every matching metric value down to a single sum/min/max/avg
// sample, tagged with the most recent matching timestamp.
func (registry *Registry) Aggregate(aggType, name string, namespacePrefix []string, start, end time.Time) (result Metric, err error) {
	matches := registry.Search(name, namespacePrefix, start, end)
	if len(matches) == 0 {
		err = fmt.Errorf("no metrics matched name %q namespace %v in given window", name, namespacePrefix)
		return
	}

	var sum, min, max float64
	var latest time.Time
	var sample Metric

	for i, metric := range matches {
		value, ok := toFloat(metric.Value.Raw)
		if !ok {
			err = fmt.Errorf("metric %q has non-numeric value %v, cannot aggregate", metric.Name, metric.Value.Raw)
			return
		}

		if i == 0 {
			min, max = value, value
		} else {
			if value < min {
				min = value
			}
			if value > max {
				max = value
			}
		}
		sum += value

		if metric.Timestamp.After(latest) {
			latest = metric.Timestamp
			sample = metric
		}
	}

	result = Metric{
		Name:        sample.Name,
		Description: sample.Description,
		Namespace:   sample.Namespace,
		Type:        Summary,
		Timestamp:   latest,
		Value: MetricValue{
			Unit:     sample.Value.Unit,
			Interval: sample.Value.Interval,
		},
	}

	switch aggType {
	case global.MetricSum:
		result.Value.Raw = sum
	case global.MetricMin:
		result.Value.Raw = min
	case global.MetricMax:
		result.Value.Raw = max
	case global.MetricAvg:
		result.Value.Raw = sum / float64(len(matches))
	default:
		err = fmt.Errorf("unknown aggregation type %q", aggType)
	}
	return
}
