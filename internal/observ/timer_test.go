package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 classes")
	tm.Record("classify", 2*time.Millisecond, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "load" || r.Phases[0].Note != "3 classes" {
		t.Fatalf("report = %+v", r)
	}
	if r.Phases[1].DurationMS != 2 || !r.Phases[1].Nested {
		t.Fatalf("recorded phase = %+v", r.Phases[1])
	}
	if r.TotalMS != r.Phases[0].DurationMS {
		t.Fatalf("nested phase counted in total: %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "classify") || !strings.Contains(s, "// 3 classes") || !strings.Contains(s, "total") {
		t.Fatalf("summary = %q", s)
	}
}

func TestNilTimerIsInert(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Record("y", time.Second, "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer report = %+v", r)
	}
}
