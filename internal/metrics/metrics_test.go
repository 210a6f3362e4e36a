package metrics

import (
	"context"
	"strings"
	"testing"
)

func TestIncAndSnapshot(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	r.Inc(ctx, "conversions_total", map[string]string{"format": "pdf", "outcome": "ok"})
	r.Inc(ctx, "conversions_total", map[string]string{"format": "pdf", "outcome": "ok"})
	r.Inc(ctx, "conversions_total", map[string]string{"format": "zip", "outcome": "failed"})
	r.Inc(ctx, "sweeps_total", nil)

	lines := r.SnapshotLines()
	want := []string{
		"conversions_total{format=pdf,outcome=ok} 2",
		"conversions_total{format=zip,outcome=failed} 1",
		"sweeps_total 1",
	}
	joined := strings.Join(lines, "\n")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			t.Errorf("missing line %q in snapshot:\n%s", w, joined)
		}
	}
}

func TestFullKeyDeterministic(t *testing.T) {
	a := fullKey("c", map[string]string{"b": "2", "a": "1"})
	b := fullKey("c", map[string]string{"a": "1", "b": "2"})
	if a != b {
		t.Fatalf("expected deterministic keys, got %q vs %q", a, b)
	}
	if a != "c{a=1,b=2}" {
		t.Fatalf("unexpected key %q", a)
	}
}
