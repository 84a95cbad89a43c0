package metrics

import (
	"testing"
	"time"
)

func TestTimingMetricRecord(t *testing.T) {
	SetEnabled(true)
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	s := m.Stats()
	if s.Count != 2 {
		t.Fatalf("expected count 2, got %d", s.Count)
	}
	if s.MinMs != 2 || s.MaxMs != 4 || s.AvgMs != 3 {
		t.Errorf("unexpected stats %+v", s)
	}

	m.Reset()
	if m.Count() != 0 {
		t.Errorf("expected reset count 0, got %d", m.Count())
	}
}

func TestDisabledRecordsNothing(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	m := newTimingMetric("off")
	Timer(m)()
	m.Record(time.Second)
	c := &Counter{name: "off"}
	c.Inc()
	if m.Count() != 0 || c.Value() != 0 {
		t.Errorf("expected nothing recorded, got timing=%d counter=%d", m.Count(), c.Value())
	}
}

func TestAllTimingStatsSkipsEmpty(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	RowMeasure.Record(time.Millisecond)
	StoreWrites.Inc()

	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "row_measure" {
		t.Errorf("expected only row_measure, got %+v", stats)
	}
	if StoreWrites.Value() != 1 {
		t.Errorf("expected 1 store write, got %d", StoreWrites.Value())
	}
	ResetAll()
}
