// Package trace records spans of the compilation pipeline.
//
// A Tracer travels through the pipeline inside a context.Context:
//
//	ctx = trace.WithTracer(ctx, t)
//	ctx, span := trace.Start(ctx, trace.ScopeFunction, "compile:Net.forward")
//	defer span.End("")
//
// Levels pick how deep the pipeline is recorded:
//
//   - off: nothing
//   - error: nothing is streamed; a ring keeps every event and the CLI dumps
//     it when the command fails
//   - phase: driver and pass boundaries (load operators, decode, compile)
//   - detail: one span per compiled method
//   - debug: every sugared-value capability dispatch and chosen overload
//
// Sinks are a streaming writer (text or NDJSON), an in-memory ring, or both.
package trace
