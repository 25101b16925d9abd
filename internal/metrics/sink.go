package metrics

import "time"

// Sink is the external collaborator boundary for publishing dispatch
// observability data out of the loop thread. Implementations must not block
// the caller for long: recordStats runs on the loop thread's own cadence and
// a slow sink directly steals dispatch latency budget.
type Sink interface {
	Record(metrics []Metric)
	Close() error
}

// RegistrySink adapts the in-memory Registry to the Sink interface so the
// loop thread can publish through the same boundary regardless of whether
// metrics stay local or also ship externally.
type RegistrySink struct {
	registry *Registry
	interval time.Duration
}

func NewRegistrySink(registry *Registry, interval time.Duration) (sink *RegistrySink) {
	sink = &RegistrySink{registry: registry, interval: interval}
	return
}

func (sink *RegistrySink) Record(batch []Metric) {
	if len(batch) == 0 {
		return
	}
	timeSlice := sink.registry.NewTimeSlice(batch[0].Timestamp, sink.interval)
	sink.registry.Add(timeSlice, batch)
}

func (sink *RegistrySink) Close() (err error) {
	return
}

// TeeSink fans a single Record call out to multiple sinks, used to publish
// to the in-memory registry and an external beats endpoint simultaneously.
type TeeSink struct {
	sinks []Sink
}

func NewTeeSink(sinks ...Sink) (tee *TeeSink) {
	tee = &TeeSink{sinks: sinks}
	return
}

func (tee *TeeSink) Record(batch []Metric) {
	for _, s := range tee.sinks {
		if s != nil {
			s.Record(batch)
		}
	}
}

func (tee *TeeSink) Close() (err error) {
	for _, s := range tee.sinks {
		if s == nil {
			continue
		}
		if cerr := s.Close(); cerr != nil {
			err = cerr
		}
	}
	return
}
