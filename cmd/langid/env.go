package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"langid/internal/langid"
	"langid/internal/observ"
	"langid/internal/trace"
)

// cmdEnv is what every model-backed command sets up before running.
type cmdEnv struct {
	cmd      *cobra.Command
	settings runSettings
	tracer   trace.Tracer
	root     *trace.Span
	timer    *observ.Timer
	cleanups []func()
}

func prepare(cmd *cobra.Command, needModel bool) (*cmdEnv, error) {
	settings, err := resolveSettings(cmd, needModel)
	if err != nil {
		return nil, err
	}
	env := &cmdEnv{cmd: cmd, settings: settings}

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	env.cleanups = append(env.cleanups, stopProf)

	tracer, stopTrace, err := setupTracing(cmd)
	if err != nil {
		env.close()
		return nil, err
	}
	env.cleanups = append(env.cleanups, stopTrace)
	env.tracer = tracer
	env.root = trace.Begin(tracer, trace.ScopeDriver, cmd.Name(), 0)
	cmd.SetContext(trace.WithSpan(cmd.Context(), env.root))

	if settings.Timings {
		env.timer = observ.NewTimer()
	}
	return env, nil
}

func (e *cmdEnv) ctx() context.Context {
	if ctx := e.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// close runs cleanups in reverse order and prints timings.
func (e *cmdEnv) close() {
	if e.root != nil {
		e.root.End("")
	}
	if e.timer != nil {
		fmt.Fprint(e.cmd.ErrOrStderr(), e.timer.Summary())
	}
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i]()
	}
	e.cleanups = nil
}

// loadModel opens the configured model and applies the language restriction.
func (e *cmdEnv) loadModel() (*langid.Model, error) {
	s := e.settings
	f, err := os.Open(s.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer func() { _ = f.Close() }()

	idx := e.timer.Begin("load")
	m, err := langid.Load(f,
		langid.WithNormalizer(s.Normalizer),
		langid.WithSymbolMode(s.Symbols),
		langid.WithTextForm(s.Form),
		langid.WithTracer(e.tracer, e.root.ID()),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.ModelPath, err)
	}
	e.timer.End(idx, fmt.Sprintf("%d classes, %d features", len(m.Classes()), m.NumFeatures()))

	if s.Langs != nil {
		idx = e.timer.Begin("restrict")
		if err := m.Restrict(s.Langs); err != nil {
			return nil, fmt.Errorf("--langs: %w", err)
		}
		e.timer.End(idx, strings.Join(m.ActiveClasses(), ","))
	}
	return m, nil
}

// readText joins args, or reads stdin when there are none or the only one is "-".
func readText(in io.Reader, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}
