// Package batch classifies many files concurrently against one shared model.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"langid/internal/bayes"
	"langid/internal/langid"
	"langid/internal/modelfile"
	"langid/internal/resultcache"
	"langid/internal/trace"
)

// ErrTooLarge reports a file above Request.MaxBytes.
var ErrTooLarge = errors.New("input too large")

// Ranker is the part of *langid.Model a batch needs.
type Ranker interface {
	Rank(text string) []bayes.Result
	ActiveClasses() []string
	Digest() modelfile.Digest
	Settings() langid.Settings
}

// Request configures a batch run.
type Request struct {
	Files    []string
	Jobs     int                // <= 0 means GOMAXPROCS
	MaxBytes int64              // <= 0 means unlimited
	Cache    *resultcache.Cache // nil disables caching
	Progress ProgressSink
	Tracer   trace.Tracer
	Timings  *Timings
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string         `json:"path" msgpack:"path"`
	Ranked  []bayes.Result `json:"ranked,omitempty" msgpack:"ranked,omitempty"`
	Cached  bool           `json:"cached,omitempty" msgpack:"cached,omitempty"`
	Error   string         `json:"error,omitempty" msgpack:"error,omitempty"`
	Err     error          `json:"-" msgpack:"-"`
	Elapsed time.Duration  `json:"-" msgpack:"-"`
}

// Best returns the top ranked class, if any.
func (r *FileResult) Best() (bayes.Result, bool) {
	if len(r.Ranked) == 0 {
		return bayes.Result{}, false
	}
	return r.Ranked[0], true
}

// Summary counts what happened during a run.
type Summary struct {
	Files  int
	Cached int
	Failed int
}

// Run ranks every file in req.Files. Per-file failures are recorded in the
// corresponding FileResult; only cancellation aborts the run. Results keep
// the order of req.Files.
//
// The model is only read. Restrict it before calling Run.
func Run(ctx context.Context, m Ranker, req Request) ([]FileResult, Summary, error) {
	if m == nil {
		return nil, Summary{}, fmt.Errorf("batch: nil model")
	}
	tracer := req.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	span := trace.Begin(tracer, trace.ScopeDriver, "batch", trace.ParentSpan(ctx))
	defer span.End("")

	if len(req.Files) == 0 {
		return nil, Summary{}, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span.WithExtra("files", strconv.Itoa(len(req.Files))).WithExtra("jobs", strconv.Itoa(jobs))

	// одна выборка на весь прогон: ключи кэша согласованы с результатами
	classes := m.ActiveClasses()
	settings := m.Settings().String()
	digest := m.Digest()

	for _, f := range req.Files {
		emit(req.Progress, f, StageRead, StatusQueued, nil, 0)
	}
	emit(req.Progress, "", StageClassify, StatusWorking, nil, 0)

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = processFile(m, path, req, classes, settings, digest, tracer)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.Fail(err)
		emit(req.Progress, "", StageClassify, StatusError, err, 0)
		return nil, Summary{}, err
	}

	sum := Summary{Files: len(results)}
	for i := range results {
		if results[i].Cached {
			sum.Cached++
		}
		if results[i].Err != nil {
			sum.Failed++
		}
	}
	span.WithExtra("cached", strconv.Itoa(sum.Cached)).WithExtra("failed", strconv.Itoa(sum.Failed))
	emit(req.Progress, "", StageClassify, StatusDone, nil, 0)
	return results, sum, nil
}

func processFile(m Ranker, path string, req Request, classes []string, settings string, digest modelfile.Digest, tracer trace.Tracer) FileResult {
	started := time.Now()
	res := FileResult{Path: path}
	fail := func(stage Stage, err error) FileResult {
		res.Err = err
		res.Error = err.Error()
		res.Elapsed = time.Since(started)
		trace.Point(tracer, trace.ScopeText, string(stage), path, err)
		emit(req.Progress, path, stage, StatusError, err, res.Elapsed)
		return res
	}

	emit(req.Progress, path, StageRead, StatusWorking, nil, 0)
	t0 := time.Now()
	data, err := readInput(path, req.MaxBytes)
	req.Timings.Add(StageRead, time.Since(t0))
	if err != nil {
		return fail(StageRead, err)
	}

	key := resultcache.KeyFor(digest, classes, settings, data)
	if req.Cache != nil {
		emit(req.Progress, path, StageCache, StatusWorking, nil, 0)
		t0 = time.Now()
		payload, ok, err := req.Cache.Get(key)
		req.Timings.Add(StageCache, time.Since(t0))
		if err != nil {
			// битая запись: считаем промахом и перезапишем ниже
			trace.Point(tracer, trace.ScopeText, "cache", path, err)
		}
		if ok && payload.Settings == settings {
			res.Ranked = payload.Ranked
			res.Cached = true
			res.Elapsed = time.Since(started)
			emit(req.Progress, path, StageCache, StatusCached, nil, res.Elapsed)
			return res
		}
	}

	emit(req.Progress, path, StageClassify, StatusWorking, nil, 0)
	t0 = time.Now()
	res.Ranked = m.Rank(string(data))
	req.Timings.Add(StageClassify, time.Since(t0))

	if req.Cache != nil {
		payload := &resultcache.Payload{Settings: settings, Ranked: res.Ranked, Created: time.Now()}
		if err := req.Cache.Put(key, payload); err != nil {
			trace.Point(tracer, trace.ScopeText, "cache", path, err)
		}
	}

	res.Elapsed = time.Since(started)
	emit(req.Progress, path, StageClassify, StatusDone, nil, res.Elapsed)
	return res
}

func readInput(path string, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > maxBytes {
			return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", path, ErrTooLarge, info.Size(), maxBytes)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// файл мог вырасти между Stat и ReadFile
	if maxBytes > 0 {
		size, convErr := safecast.Conv[int64](len(data))
		if convErr != nil || size > maxBytes {
			return nil, fmt.Errorf("%s: %w", path, ErrTooLarge)
		}
	}
	return data, nil
}
