// Package sandbox decides how lab programs are executed and executes them.
//
// Decide applies the execution policy: programs carrying html/css/js
// fragments are rendered as markup, JavaScript programs are evaluated, and
// everything else is view-only with an advisory message.
//
// Markup is rendered into a FrameStore, an in-memory stand-in for a
// sandboxed iframe that serves each frame over HTTP with a restrictive
// Content-Security-Policy. Scripts run in a fresh goja runtime per call with
// console output captured through an explicit ConsoleSink and forwarded to
// the zap logger. Evaluation is synchronous and has no timeout.
//
// Usage:
//
//	frames := sandbox.NewFrameStore("", "sandbox allow-scripts")
//	executor := sandbox.NewExecutor(logger, frames)
//	outcome, err := executor.Execute(ctx, sandbox.Request{
//	    Selection: sel,
//	    Source:    "console.log('hi'); 42",
//	})
package sandbox
