package golox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runProgram(src string) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runner := NewRunner(stdout, stderr)
	runner.Run(src)
	return runner, stdout, stderr
}

func TestRunner_endToEnd(t *testing.T) {
	testCases := map[string]struct {
		in       string
		expected string
	}{
		"arithmetic and print": {
			in:       "print 1 + 2 * 3;",
			expected: "7\n",
		},
		"closure capture is stable across shadowing": {
			in: `
var a = "global";
{ fun showA() { print a; } showA(); var a = "block"; showA(); }
`,
			expected: "global\nglobal\n",
		},
		"class, method, this": {
			in: `
class Bacon { eat() { print "Crunch!"; } }
Bacon().eat();
`,
			expected: "Crunch!\n",
		},
		"initializer implicit return": {
			in: `
class Foo { init() { this.x = 1; return; } }
print Foo().x;
`,
			expected: "1\n",
		},
		"inheritance via super": {
			in: `
class A { greet() { print "A"; } }
class B < A { greet() { super.greet(); print "B"; } }
B().greet();
`,
			expected: "A\nB\n",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			runner, stdout, stderr := runProgram(tc.in)
			require.False(t, runner.HadError(), "static error: %s", stderr.String())
			require.False(t, runner.HadRuntimeError(), "runtime error: %s", stderr.String())
			assert.Equal(t, tc.expected, stdout.String())
		})
	}
}

func TestRunner_runtimeErrorDiagnosticFormat(t *testing.T) {
	runner, stdout, stderr := runProgram("print \"a\" - 1;")
	assert.False(t, runner.HadError())
	assert.True(t, runner.HadRuntimeError())
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Operands must be numbers.\n[line 1]\n", stderr.String())
}

func TestRunner_staticErrorDiagnosticFormat(t *testing.T) {
	runner, stdout, stderr := runProgram("{ var x = x; }")
	assert.True(t, runner.HadError())
	assert.False(t, runner.HadRuntimeError())
	assert.Empty(t, stdout.String())
	assert.Equal(t,
		"[line 1] Error at 'x': Can't read local variable in its own initializer.\n",
		stderr.String())
}

func TestRunner_scanErrorRefusesExecution(t *testing.T) {
	runner, stdout, stderr := runProgram("print 1; @")
	assert.True(t, runner.HadError())
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Unexpected character.")
}

func TestRunner_parseErrorRefusesExecution(t *testing.T) {
	runner, stdout, _ := runProgram("print 1; print ;")
	assert.True(t, runner.HadError())
	assert.Empty(t, stdout.String())
}

func TestRunner_resolveErrorRefusesExecution(t *testing.T) {
	runner, stdout, _ := runProgram("print 1; return;")
	assert.True(t, runner.HadError())
	assert.Empty(t, stdout.String())
}

func TestRunner_replStyleRecovery(t *testing.T) {
	// one Runner, multiple lines: a bad line reports, resets, and the
	// session keeps its globals
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runner := NewRunner(stdout, stderr)

	runner.Run("var greeting = \"hi\";")
	require.False(t, runner.HadError())

	runner.Run("print missing;")
	assert.True(t, runner.HadRuntimeError())
	runner.ResetErrors()
	assert.False(t, runner.HadRuntimeError())

	runner.Run("print greeting;")
	assert.False(t, runner.HadError())
	assert.False(t, runner.HadRuntimeError())
	assert.Equal(t, "hi\n", stdout.String())
}

func TestRunner_multipleStaticErrorsReported(t *testing.T) {
	_, _, stderr := runProgram("var 1;\nvar 2;\nprint 3;")
	assert.Equal(t, 2, bytes.Count(stderr.Bytes(), []byte("Expect variable name.")))
}
