package sandbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// maxCallStackSize turns runaway recursion into a reported failure instead
// of exhausting the host goroutine stack.
const maxCallStackSize = 10000

// Output labels of a formatted run.
const (
	labelConsole  = "Console output:\n"
	labelReturn   = "\nReturn value:\n"
	labelError    = "Error while executing JavaScript:\n"
	textCompleted = "Code executed."
)

// ConsoleSink receives console calls made by a running script, in emission order.
type ConsoleSink interface {
	Write(method, line string)
}

// Capture collects console lines.
type Capture struct {
	Lines []string
}

// Write implements ConsoleSink.
func (c *Capture) Write(_, line string) {
	c.Lines = append(c.Lines, line)
}

// forwardingSink taps console output into the host log without swallowing it.
type forwardingSink struct {
	next   ConsoleSink
	logger *zap.Logger
}

func (f forwardingSink) Write(method, line string) {
	f.next.Write(method, line)

	fields := []zap.Field{zap.String("method", method), zap.String("line", line)}
	switch method {
	case "error":
		f.logger.Error("script console", fields...)
	case "warn":
		f.logger.Warn("script console", fields...)
	case "debug":
		f.logger.Debug("script console", fields...)
	default:
		f.logger.Info("script console", fields...)
	}
}

// RunResult is the outcome of one script evaluation.
type RunResult struct {
	Output   []string
	Value    string
	HasValue bool
	Failed   bool
	Error    string
}

// Text formats the result for display.
func (r RunResult) Text() string {
	if r.Failed {
		return labelError + r.Error
	}

	var b strings.Builder
	if len(r.Output) > 0 {
		b.WriteString(labelConsole)
		b.WriteString(strings.Join(r.Output, "\n"))
		b.WriteString("\n")
	}
	if r.HasValue {
		b.WriteString(labelReturn)
		b.WriteString(r.Value)
	}
	if b.Len() == 0 {
		return textCompleted
	}
	return b.String()
}

// ScriptRunner evaluates JavaScript in a fresh interpreter per run.
//
// Runs are synchronous and unbounded: there is no timeout and no
// cancellation, so a script that never terminates blocks its caller.
type ScriptRunner struct {
	logger *zap.Logger
}

// NewScriptRunner creates a ScriptRunner forwarding console output to logger.
func NewScriptRunner(logger *zap.Logger) *ScriptRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptRunner{logger: logger}
}

// Run evaluates source, capturing console output and forwarding it to the log.
func (s *ScriptRunner) Run(source string) RunResult {
	capture := &Capture{}
	res := s.RunWith(source, forwardingSink{next: capture, logger: s.logger})
	res.Output = capture.Lines
	return res
}

// RunWith evaluates source, sending console output only to sink.
// The returned Output is left empty; the sink owns the lines.
func (s *ScriptRunner) RunWith(source string, sink ConsoleSink) (res RunResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("script evaluation panicked", zap.Any("panic", r))
			res = RunResult{Failed: true, Error: fmt.Sprint(r)}
		}
	}()

	prg, err := compile(source)
	if err != nil {
		return RunResult{Failed: true, Error: describe(err)}
	}

	vm := goja.New()
	vm.SetMaxCallStackSize(maxCallStackSize)
	if err := vm.Set("console", newConsole(vm, sink)); err != nil {
		return RunResult{Failed: true, Error: describe(err)}
	}

	value, err := vm.RunProgram(prg)
	if err != nil {
		return RunResult{Failed: true, Error: describe(err)}
	}

	if value == nil || goja.IsUndefined(value) {
		return RunResult{}
	}
	return RunResult{Value: value.String(), HasValue: true}
}

// compile parses source as a script. Source that only parses as a function
// body, for example because it uses a top-level return, is wrapped in one.
func compile(source string) (*goja.Program, error) {
	prg, err := goja.Compile("program.js", source, false)
	if err == nil {
		return prg, nil
	}

	var syntaxErr *goja.CompilerSyntaxError
	if !errors.As(err, &syntaxErr) {
		return nil, err
	}

	wrapped, wrapErr := goja.Compile("program.js", "(function() {\n"+source+"\n})()", false)
	if wrapErr != nil {
		return nil, err
	}
	return wrapped, nil
}

func newConsole(vm *goja.Runtime, sink ConsoleSink) *goja.Object {
	console := vm.NewObject()
	for _, method := range []string{"log", "info", "debug", "warn", "error"} {
		_ = console.Set(method, func(call goja.FunctionCall) goja.Value {
			sink.Write(method, joinArgs(call.Arguments))
			return goja.Undefined()
		})
	}
	return console
}

// joinArgs mirrors Array.prototype.join(" "): null and undefined print as empty.
func joinArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil || goja.IsUndefined(a) || goja.IsNull(a) {
			continue
		}
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

func describe(err error) string {
	var ex *goja.Exception
	if errors.As(err, &ex) && ex.Value() != nil {
		return ex.Value().String()
	}
	return err.Error()
}
