package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"langid/internal/langid"
	"langid/internal/resultcache"
	"langid/internal/testkit"
)

func testModel(t *testing.T) *langid.Model {
	t.Helper()
	m, err := langid.LoadBytes(testkit.ModelBytes())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func writeInputs(t *testing.T, texts map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		text, ok := texts[name]
		if !ok {
			continue
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return paths
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(status Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.File != "" && ev.Status == status {
			n++
		}
	}
	return n
}

func TestRunKeepsInputOrder(t *testing.T) {
	m := testModel(t)
	files := writeInputs(t, map[string]string{
		"a.txt": "hello world",
		"b.txt": "zzzz zz",
		"c.txt": "",
		"d.txt": "quiet hello",
	})
	rec := &recorder{}
	var timings Timings
	results, sum, err := Run(context.Background(), m, Request{Files: files, Jobs: 2, Progress: rec, Timings: &timings})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"en", "de", "en", "en"}
	for i, res := range results {
		if res.Path != files[i] {
			t.Fatalf("results[%d].Path = %s, want %s", i, res.Path, files[i])
		}
		best, ok := res.Best()
		if !ok || best.Class != want[i] {
			t.Fatalf("%s: best = %v, want %s", filepath.Base(res.Path), best, want[i])
		}
		direct := m.Rank(mustRead(t, res.Path))
		if best != direct[0] {
			t.Fatalf("%s: batch %v differs from direct %v", res.Path, best, direct[0])
		}
	}
	if sum.Files != 4 || sum.Failed != 0 || sum.Cached != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if rec.count(StatusQueued) != 4 || rec.count(StatusDone) != 4 {
		t.Fatalf("events = %+v", rec.events)
	}
	if timings.Sum(StageRead, StageClassify) <= 0 {
		t.Fatal("timings not recorded")
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunRecordsPerFileErrors(t *testing.T) {
	m := testModel(t)
	files := writeInputs(t, map[string]string{"a.txt": "hello", "b.txt": strings.Repeat("z", 64)})
	files = append(files, filepath.Join(t.TempDir(), "missing.txt"))

	results, sum, err := Run(context.Background(), m, Request{Files: files, MaxBytes: 32})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failed != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if results[0].Err != nil || len(results[0].Ranked) != 3 {
		t.Fatalf("first file should succeed: %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrTooLarge) || results[1].Error == "" {
		t.Fatalf("expected ErrTooLarge, got %v", results[1].Err)
	}
	if !errors.Is(results[2].Err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", results[2].Err)
	}
}

func TestRunUsesCache(t *testing.T) {
	m := testModel(t)
	cache, err := resultcache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files := writeInputs(t, map[string]string{"a.txt": "hello world", "b.txt": "zz"})

	first, sum, err := Run(context.Background(), m, Request{Files: files, Cache: cache})
	if err != nil || sum.Cached != 0 {
		t.Fatalf("first run: sum=%+v err=%v", sum, err)
	}
	second, sum, err := Run(context.Background(), m, Request{Files: files, Cache: cache})
	if err != nil || sum.Cached != 2 {
		t.Fatalf("second run: sum=%+v err=%v", sum, err)
	}
	for i := range first {
		if first[i].Ranked[0] != second[i].Ranked[0] {
			t.Fatalf("cached result differs: %v vs %v", first[i].Ranked, second[i].Ranked)
		}
	}

	// a restriction changes the key, so nothing is served from the old entries
	if err := m.Restrict([]string{"de", "fr"}); err != nil {
		t.Fatal(err)
	}
	third, sum, err := Run(context.Background(), m, Request{Files: files, Cache: cache})
	if err != nil || sum.Cached != 0 {
		t.Fatalf("restricted run: sum=%+v err=%v", sum, err)
	}
	if len(third[0].Ranked) != 2 {
		t.Fatalf("restricted result has %d classes", len(third[0].Ranked))
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	m := testModel(t)
	files := writeInputs(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Run(ctx, m, Request{Files: files, Jobs: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunWithoutFiles(t *testing.T) {
	results, sum, err := Run(context.Background(), testModel(t), Request{})
	if err != nil || results != nil || sum.Files != 0 {
		t.Fatalf("empty run = %v, %+v, %v", results, sum, err)
	}
}

func TestChannelAndFuncSinks(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "x", Status: StatusDone})
	if ev := <-ch; ev.File != "x" {
		t.Fatalf("channel sink delivered %+v", ev)
	}
	ChannelSink{}.OnEvent(Event{})

	var got Status
	FuncSink(func(ev Event) { got = ev.Status }).OnEvent(Event{Status: StatusCached})
	if got != StatusCached {
		t.Fatalf("func sink delivered %v", got)
	}
}
