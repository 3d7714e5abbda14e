// Package trace provides structured tracing for langid.
//
// Tracing shows where time goes between loading a model, restricting its
// language set and scoring input texts, without touching the results.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	langid rank --trace=- --trace-level=detail "some text"
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer of the latest events
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Each event carries a scope. The level decides which scopes are emitted:
//
//   - LevelPhase: ScopeDriver (CLI commands, batch runs)
//   - LevelDetail: + ScopeModel (load, restrict)
//   - LevelDebug: + ScopeText (every classify/rank call)
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeModel, "load", 0)
//	defer span.End("")
package trace
