package golox

import (
	"io"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("golox")

// Runner owns one interpreter session and drives the pipeline over it:
// scan → parse → resolve → interpret, with evaluation gated on a clean
// static-error flag. A REPL reuses one Runner so globals persist across
// lines.
type Runner struct {
	interpreter *Interpreter
	reporter    *Reporter
}

func NewRunner(stdout, stderr io.Writer) *Runner {
	reporter := NewReporter(stderr)
	return &Runner{
		interpreter: NewInterpreter(stdout, reporter),
		reporter:    reporter,
	}
}

func (r *Runner) Run(src string) {
	tokens := NewScanner(src, r.reporter).ScanTokens()
	log.Debugf("scanned %d tokens", len(tokens))

	stmts := NewParser(tokens, r.reporter).Parse()
	if r.reporter.HadError() {
		return
	}
	log.Debugf("parsed %d top-level statements", len(stmts))

	NewResolver(r.interpreter, r.reporter).Resolve(stmts)
	if r.reporter.HadError() {
		return
	}
	log.Debugf("resolved %d local references", len(r.interpreter.localDistance))

	_ = r.interpreter.Interpret(stmts)
}

func (r *Runner) HadError() bool        { return r.reporter.HadError() }
func (r *Runner) HadRuntimeError() bool { return r.reporter.HadRuntimeError() }

// ResetErrors clears the error flags between REPL lines.
func (r *Runner) ResetErrors() { r.reporter.Reset() }
