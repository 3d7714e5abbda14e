package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeModel, false},
		{LevelDetail, ScopeModel, true},
		{LevelDetail, ScopeText, false},
		{LevelDebug, ScopeText, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestStreamTracerWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeModel, "load", 0)
	span.WithExtra("classes", "2").WithExtra("digest", "ab")
	span.End("ok")

	Begin(tr, ScopeText, "rank", span.ID()).End("")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines (text scope filtered), got %q", out)
	}
	if !strings.Contains(lines[0], "→ load") {
		t.Fatalf("begin line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "← load (ok) {classes=2, digest=ab}") {
		t.Fatalf("end line = %q", lines[1])
	}
}

func TestFailedPointPassesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)

	Point(tr, ScopeText, "classify", "", nil)
	Point(tr, ScopeModel, "restrict", "", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the failed point, got %q", buf.String())
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["name"] != "restrict" || got["failed"] != true {
		t.Fatalf("unexpected event %v", got)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeText, name, "", nil)
	}
	snap := ring.Snapshot()
	if len(snap) != 3 || ring.Len() != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"c", "d", "e"} {
		if snap[i].Name != want {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].Name, want)
		}
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer should be disabled")
	}
	span := Begin(tr, ScopeDriver, "x", 0)
	if span.End("") != 0 || span.ID() != 0 {
		t.Fatal("nop span should be inert")
	}
}

func TestNewBothFansOut(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf, RingSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	Begin(tr, ScopeDriver, "batch", 0).End("")
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("stream output = %q", buf.String())
	}
	multi, ok := tr.(*MultiTracer)
	if !ok {
		t.Fatalf("expected *MultiTracer, got %T", tr)
	}
	ring := multi.Ring()
	if ring == nil || ring != multi.tracers[1] {
		t.Fatal("Ring should return the ring member")
	}
	if ring.Len() != 2 {
		t.Fatalf("ring holds %d events", ring.Len())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("empty context should yield Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	span := Begin(ring, ScopeDriver, "outer", 0)
	ctx = WithSpan(ctx, span)
	if ParentSpan(ctx) != span.ID() {
		t.Fatalf("ParentSpan = %d, want %d", ParentSpan(ctx), span.ID())
	}
}
