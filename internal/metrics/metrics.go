package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Registry keeps in-process counters for the /metrics endpoint and mirrors
// every increment to an OpenTelemetry counter instrument.
type Registry struct {
	mu       sync.Mutex
	counters map[string]int64
	meter    metric.Meter
	otelCtrs map[string]metric.Int64Counter
}

func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[string]int64),
		meter:    otel.GetMeterProvider().Meter("slideconv"),
		otelCtrs: make(map[string]metric.Int64Counter),
	}
}

// fullKey makes a deterministic key from name and labels.
func fullKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Inc increases the named counter by one.
func (r *Registry) Inc(ctx context.Context, name string, labels map[string]string) {
	r.mu.Lock()
	r.counters[fullKey(name, labels)]++
	inst, ok := r.otelCtrs[name]
	if !ok {
		inst, _ = r.meter.Int64Counter(name)
		r.otelCtrs[name] = inst
	}
	r.mu.Unlock()

	if inst != nil {
		attrs := make([]attribute.KeyValue, 0, len(labels))
		for k, v := range labels {
			attrs = append(attrs, attribute.String(k, v))
		}
		inst.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// SnapshotLines renders every counter as "name{labels} value", sorted.
func (r *Registry) SnapshotLines() []string {
	r.mu.Lock()
	lines := make([]string, 0, len(r.counters))
	for k, v := range r.counters {
		lines = append(lines, fmt.Sprintf("%s %d", k, v))
	}
	r.mu.Unlock()

	sort.Strings(lines)
	return lines
}
