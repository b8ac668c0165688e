package sandbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/isdmx/labhub/catalog"
	"github.com/isdmx/labhub/metrics"
)

// Request asks for one program to be run with an already resolved source.
type Request struct {
	Selection catalog.Selection
	// Source is the effective source: the user's copy when present, else the composed document.
	Source string
}

// Outcome is what a run produced.
type Outcome struct {
	Mode Mode
	// Output is the textual run output. Empty for rendered markup.
	Output string
	Failed bool
	// Frame is set only for ModeRenderMarkup.
	Frame *Frame
}

// SandboxExecutor defines the interface for program execution
type SandboxExecutor interface {
	Execute(ctx context.Context, req Request) (Outcome, error)
}

// Executor dispatches a program to the markup renderer, the script runner,
// or neither, according to Decide.
type Executor struct {
	logger   *zap.Logger
	scripts  *ScriptRunner
	renderer Renderer
}

// ExecutorOption defines a functional option for Executor
type ExecutorOption func(*Executor)

// WithScriptRunner sets the ScriptRunner for Executor
func WithScriptRunner(runner *ScriptRunner) ExecutorOption {
	return func(e *Executor) {
		e.scripts = runner
	}
}

// NewExecutor creates a new Executor rendering markup through renderer.
func NewExecutor(logger *zap.Logger, renderer Renderer, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		logger:   logger,
		scripts:  NewScriptRunner(logger.Named("script")),
		renderer: renderer,
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Execute runs the request synchronously. Script failures are reported in
// the Outcome, never as an error; the error return only reflects a context
// that was already done before the run started.
func (e *Executor) Execute(ctx context.Context, req Request) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	sel := req.Selection
	mode := Decide(sel.Program)
	start := time.Now()

	defer func() {
		metrics.Runs().WithLabelValues(mode.Kind.String()).Inc()
		metrics.RunDuration().WithLabelValues(mode.Kind.String()).Observe(time.Since(start).Seconds())
	}()

	// Every run starts from an empty frame.
	e.renderer.Clear(sel.Subject.ID, sel.Program.ID)

	out := Outcome{Mode: mode}
	switch mode.Kind {
	case ModeRenderMarkup:
		frame := e.renderer.Render(sel.Subject.ID, sel.Program.ID, req.Source)
		out.Frame = &frame
	case ModeRunScript:
		res := e.scripts.Run(req.Source)
		out.Output = res.Text()
		out.Failed = res.Failed
		if res.Failed {
			metrics.RunFailures().WithLabelValues(mode.Kind.String()).Inc()
		}
	default:
		out.Output = mode.Reason
	}

	e.logger.Info("program executed",
		zap.String("subject_id", sel.Subject.ID),
		zap.String("program_id", sel.Program.ID),
		zap.Stringer("mode", mode.Kind),
		zap.Bool("failed", out.Failed),
		zap.Duration("elapsed", time.Since(start)))

	return out, nil
}
