// Package stats wraps rcrowley/go-metrics with the small surface the
// job scheduler actually emits: a scoped receiver handing out counters,
// gauges, and latency timers, rendered to JSON for the demo CLI's final
// report.
//
// Original license: github.com/rcrowley/go-metrics/blob/master/LICENSE
package stats

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"
)

// A StatsReceiver is scoped down a call tree: an actor scopes to its job
// name, an abort scopes further by cause, and so on.
//
//	statsReceiver.Scope("foo", "bar").Counter("baz")  // is equivalent to
//	statsReceiver.Counter("foo", "bar", "baz")
type StatsReceiver interface {
	Scope(scope ...string) StatsReceiver

	// Provides an event counter.
	Counter(name ...string) Counter

	// Provides a latency timer sampled as a histogram in milliseconds.
	Latency(name ...string) Latency

	// Provides a gauge holding an int64 value that can be set arbitrarily.
	Gauge(name ...string) Gauge

	// Removes the given named stats item if it exists.
	Remove(name ...string)

	// Renders the registry as a JSON byte string and resets it.
	Render(pretty bool) []byte
}

// DefaultStatsReceiver returns a StatsReceiver backed by a fresh
// go-metrics registry. Stats are reset every time Render is called.
func DefaultStatsReceiver() StatsReceiver {
	return &defaultStatsReceiver{registry: metrics.NewRegistry()}
}

type defaultStatsReceiver struct {
	registry metrics.Registry
	scope    []string
}

func (s *defaultStatsReceiver) Scope(scope ...string) StatsReceiver {
	return &defaultStatsReceiver{s.registry, s.scoped(scope...)}
}

func (s *defaultStatsReceiver) Counter(name ...string) Counter {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewCounter).(metrics.Counter)
}

func (s *defaultStatsReceiver) Gauge(name ...string) Gauge {
	return s.registry.GetOrRegister(s.scopedName(name...), metrics.NewGauge).(metrics.Gauge)
}

func (s *defaultStatsReceiver) Latency(name ...string) Latency {
	h := s.registry.GetOrRegister(s.scopedName(name...), newLatencyHistogram).(metrics.Histogram)
	return &metricLatency{Histogram: h}
}

func (s *defaultStatsReceiver) Remove(name ...string) {
	s.registry.Unregister(s.scopedName(name...))
}

func (s *defaultStatsReceiver) Render(pretty bool) []byte {
	data := s.snapshot()

	var (
		bytes []byte
		err   error
	)
	if pretty {
		bytes, err = json.MarshalIndent(data, "", "  ")
	} else {
		bytes, err = json.Marshal(data)
	}
	if err != nil {
		panic("stats: registry bug, cannot be marshaled")
	}
	clear(s.registry)
	return bytes
}

// snapshot flattens the registry into scheduler-shaped scalars: raw
// counts for counters and gauges, mean/p99 milliseconds for latencies.
func (s *defaultStatsReceiver) snapshot() map[string]interface{} {
	data := make(map[string]interface{})
	s.registry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			data[name] = m.Count()
		case metrics.Gauge:
			data[name] = m.Value()
		case metrics.Histogram:
			ms := float64(time.Millisecond)
			data[name+".count"] = m.Count()
			data[name+".mean_ms"] = m.Mean() / ms
			data[name+".p99_ms"] = m.Percentile(0.99) / ms
		}
	})
	return data
}

func clear(reg metrics.Registry) {
	reg.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case metrics.Counter:
			m.Clear()
		case metrics.Gauge:
			m.Update(0)
		case metrics.Histogram:
			m.Clear()
		}
	})
}

// Append to existing scope and scrub slashes.
func (s *defaultStatsReceiver) scoped(scope ...string) []string {
	for i, e := range scope {
		scope[i] = strings.Replace(e, "/", "_SLASH_", -1)
	}
	return append(s.scope[:], scope...)
}

// Append to the existing scope and convert to slash-delimited string.
func (s *defaultStatsReceiver) scopedName(scope ...string) string {
	return strings.Join(s.scoped(scope...), "/")
}

// NilStatsReceiver ignores all stats operations. It's the default for
// a jobactor.Config that doesn't set Stats explicitly.
func NilStatsReceiver(scope ...string) StatsReceiver {
	return &nilStatsReceiver{}
}

type nilStatsReceiver struct{}

func (s *nilStatsReceiver) Scope(scope ...string) StatsReceiver { return s }
func (s *nilStatsReceiver) Counter(name ...string) Counter      { return &metrics.NilCounter{} }
func (s *nilStatsReceiver) Gauge(name ...string) Gauge          { return &metrics.NilGauge{} }
func (s *nilStatsReceiver) Latency(name ...string) Latency      { return &nilLatency{} }
func (s *nilStatsReceiver) Remove(name ...string)                {}
func (s *nilStatsReceiver) Render(pretty bool) []byte            { return []byte{} }

// Counter and Gauge are exactly the go-metrics instruments; the
// scheduler only ever calls Inc/Count and Update/Value on them.
type Counter = metrics.Counter
type Gauge = metrics.Gauge

// Latency records a duration on Stop after Time is called, sampled
// into an underlying histogram. Callers use it as:
//
//	lat := stat.Latency("assign_ms").Time()
//	... do work ...
//	lat.Stop()
type Latency interface {
	Time() Latency
	Stop()
}

type metricLatency struct {
	metrics.Histogram
	start time.Time
}

func (l *metricLatency) Time() Latency { l.start = time.Now(); return l }
func (l *metricLatency) Stop()         { l.Update(time.Since(l.start).Nanoseconds()) }

func newLatencyHistogram() metrics.Histogram {
	return metrics.NewHistogram(metrics.NewUniformSample(1000))
}

type nilLatency struct{}

func (l *nilLatency) Time() Latency { return l }
func (l *nilLatency) Stop()         {}
