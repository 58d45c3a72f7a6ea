package golox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interpretSource runs the full pipeline, requiring the program to be
// statically clean, and returns stdout plus any runtime error.
func interpretSource(t *testing.T, src string) (string, *Interpreter, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	reporter := NewReporter(stderr)

	tokens := NewScanner(src, reporter).ScanTokens()
	stmts := NewParser(tokens, reporter).Parse()
	require.False(t, reporter.HadError(), "static error in test input: %s", stderr.String())

	interpreter := NewInterpreter(stdout, reporter)
	NewResolver(interpreter, reporter).Resolve(stmts)
	require.False(t, reporter.HadError(), "static error in test input: %s", stderr.String())

	err := interpreter.Interpret(stmts)
	return stdout.String(), interpreter, err
}

func TestInterpreter_Interpret_script(t *testing.T) {
	testCases := map[string]struct {
		in          string
		expected    string
		expectedErr string
	}{
		"block scope": {
			in: `
var a = "global a";
var b = "global b";
var c = "global c";
{
    var a = "outer a";
    var b = "outer b";
    {
        var a = "inner a";
        print a;
        print b;
        print c;
    }
    print a;
    print b;
    print c;
}
print a;
print b;
print c;`,
			expected: "inner a\nouter b\nglobal c\nouter a\nouter b\nglobal c\nglobal a\nglobal b\nglobal c\n",
		},
		"if true": {
			in:       "var a = true; if (a) print \"yes\";",
			expected: "yes\n",
		},
		"else true": {
			in:       "var a = false; if (a) print \"yes\"; else print \"no\";",
			expected: "no\n",
		},
		"logical or returns operand not boolean": {
			in:       "print \"hi\" or 2; print nil or \"yes\";",
			expected: "hi\nyes\n",
		},
		"logical and short-circuits": {
			in:       "print nil and 1; print true and \"x\";",
			expected: "nil\nx\n",
		},
		"trivial for loop": {
			in: `for (var i = 0; i < 3; i = i + 1) {
				print i;}`,
			expected: "0\n1\n2\n",
		},
		"while loop": {
			in:       "var i = 0; while (i < 2) { print i; i = i + 1; }",
			expected: "0\n1\n",
		},
		"recursion with return": {
			in:       "fun fib(n) { if (n <= 1) return n; return fib(n - 2) + fib(n - 1); } print fib(10);",
			expected: "55\n",
		},
		"return unwinds nested blocks": {
			in:       "fun f() { while (true) { { return \"done\"; } } } print f();",
			expected: "done\n",
		},
		"fall-through returns nil": {
			in:       "fun f() { var a = 1; } print f();",
			expected: "nil\n",
		},
		"closures": {
			in:       "fun makeCounter() { var i = 0; fun count() { i = i + 1; print i; } return count; } var counter = makeCounter(); counter(); counter();",
			expected: "1\n2\n",
		},
		"scope is static": {
			in: `
var a = "global";
{
  fun showA() {
    print a;
  }
  showA();
  var a = "block";
  showA();
  print a;
}
`,
			expected: "global\nglobal\nblock\n",
		},
		"assignment is an expression": {
			in:       "var a = 1; print a = 2; print a;",
			expected: "2\n2\n",
		},
		"class with fields": {
			in: `
class Cake {
  exclaim() {
    return "Hooray, cake!";
  }
}

print Cake;

// can create instance
var c = Cake();
print c;

// can set/get fields
c.foo = "foo";
print c.foo;

// can call a method with no "this" binding needed
print c.exclaim();`,
			expected: "Cake\nCake instance\nfoo\nHooray, cake!\n",
		},
		"class with methods": {
			in: `
class Sammy {
  init(flavor) { this.flavor = flavor; }
  describe() { return "A delicious " + this.flavor + " sandwich."; }
}
var sammy = Sammy("turkey");
print sammy.describe();
// methods are first-class objects, bound to an instance
var x = sammy.describe;
print x();
`,
			expected: "A delicious turkey sandwich.\nA delicious turkey sandwich.\n",
		},
		"implicit+explicit calls to init() all return the instance": {
			in: `
class foo {
  init(myParam) {
    this.myParam = myParam;
  }
}

print foo("foo");
var ie = foo("foo");
print ie;
print ie.init("bar");
`,
			expected: "foo instance\nfoo instance\nfoo instance\n",
		},
		"bare return from init still yields the instance": {
			in: `
class Foo { init() { this.x = 1; return; } }
print Foo().x;
`,
			expected: "1\n",
		},
		"field shadows method": {
			in: `
class C { m() { return "method"; } }
var c = C();
print c.m();
c.m = "field";
print c.m;
`,
			expected: "method\nfield\n",
		},
		"inherited methods work": {
			in: `
class foo {
  blah() { return "foo level blah"; }
}
class bar < foo {}
var x = bar();
print x.blah();
`,
			expected: "foo level blah\n",
		},
		"inherited init runs for subclass construction": {
			in: `
class A { init(v) { this.v = v; } }
class B < A {}
print B("hi").v;
`,
			expected: "hi\n",
		},
		"super methods work": {
			in: `
class bread {
  str() { return "bread"; }
}
class donut < bread {
  str() { return super.str() + ", donut"; }
}
class kruller < donut {}
var k = kruller();
print k.str();
`,
			expected: "bread, donut\n",
		},
		"super binds this to the calling instance": {
			in: `
class A { name() { return this.kind; } }
class B < A { name() { return "B:" + super.name(); } }
var b = B();
b.kind = "x";
print b.name();
`,
			expected: "B:x\n",
		},
		"superclass must be a class": {
			in:          "var foo = 0; class bar < foo {}",
			expectedErr: "Superclass must be a class.",
		},
		"string equality": {
			in:       "print \"a\" == \"a\"; print \"a\" == \"b\";",
			expected: "true\nfalse\n",
		},
		"nil equality": {
			in:       "print nil == nil; print nil == false;",
			expected: "true\nfalse\n",
		},
		"mixed-type equality is false, not an error": {
			in:       "print 1 == \"1\"; print true == 1;",
			expected: "false\nfalse\n",
		},
		"instances compare by identity": {
			in: `
class C {}
var a = C();
var b = C();
print a == a;
print a == b;
`,
			expected: "true\nfalse\n",
		},
		"functions compare by identity": {
			in: `
fun f() {}
var g = f;
print f == g;
fun h() {}
print f == h;
`,
			expected: "true\nfalse\n",
		},
		"truthiness of zero and empty string": {
			in:       "if (0) print \"zero\"; if (\"\") print \"empty\";",
			expected: "zero\nempty\n",
		},
		"clock returns a number": {
			in:       "print clock() > 0;",
			expected: "true\n",
		},
		"native stringify": {
			in:       "print clock;",
			expected: "<native fn>\n",
		},
		"function stringify": {
			in:       "fun f() {} print f;",
			expected: "<fn f>\n",
		},
		"number stringify": {
			in:       "print 1 + 2 * 3; print 0.5; print -0; print 10.0;",
			expected: "7\n0.5\n-0\n10\n",
		},
		"division": {
			in:       "print 10 / 4; print 1 / 0.001;",
			expected: "2.5\n1000\n",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			actual, _, err := interpretSource(t, tc.in)
			if tc.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestInterpreter_runtimeErrors(t *testing.T) {
	testCases := map[string]struct {
		in          string
		expectedMsg string
		// output produced before the error must survive
		expectedOut string
	}{
		"subtraction of string": {
			in:          "print \"a\" - 1;",
			expectedMsg: "Operands must be numbers.",
		},
		"comparison of strings": {
			in:          "print \"a\" < \"b\";",
			expectedMsg: "Operands must be numbers.",
		},
		"plus with mixed operands": {
			in:          "print 1 + \"a\";",
			expectedMsg: "Operands must be two numbers or two strings.",
		},
		"unary minus on non-number": {
			in:          "print -\"a\";",
			expectedMsg: "Operand must be a number.",
		},
		"division by zero": {
			in:          "print 1 / 0;",
			expectedMsg: "Cannot divide by 0.",
		},
		"division by near-zero": {
			in:          "print 1 / 0.0000001;",
			expectedMsg: "Cannot divide by 0.",
		},
		"call of non-callable": {
			in:          "var x = 1; x();",
			expectedMsg: "Can only call functions and classes.",
		},
		"arity mismatch": {
			in:          "fun f(a, b) {} f(1);",
			expectedMsg: "Expected 2 arguments but got 1.",
		},
		"undefined global": {
			in:          "print nope;",
			expectedMsg: "Undefined variable 'nope'.",
		},
		"assignment to undefined global": {
			in:          "nope = 1;",
			expectedMsg: "Undefined variable 'nope'.",
		},
		"property access on non-instance": {
			in:          "var x = 1; print x.field;",
			expectedMsg: "Only instances have properties.",
		},
		"field write on non-instance": {
			in:          "var x = 1; x.field = 2;",
			expectedMsg: "Only instances have fields.",
		},
		"undefined property": {
			in:          "class C {} print C().nope;",
			expectedMsg: "Undefined property 'nope'.",
		},
		"undefined super method": {
			in: `
class A {}
class B < A { m() { return super.nope(); } }
B().m();
`,
			expectedMsg: "Undefined property 'nope'.",
		},
		"execution halts at first runtime error": {
			in:          "print 1; print \"a\" - 1; print 2;",
			expectedMsg: "Operands must be numbers.",
			expectedOut: "1\n",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			actual, _, err := interpretSource(t, tc.in)
			require.Error(t, err)
			rte, ok := err.(*RuntimeError)
			require.True(t, ok, "expected *RuntimeError, got %T", err)
			assert.Equal(t, tc.expectedMsg, rte.Message)
			assert.Equal(t, tc.expectedOut, actual)
		})
	}
}

func TestInterpreter_environmentRestoredAfterRuntimeError(t *testing.T) {
	// the error fires deep inside nested blocks; every swapped-in frame
	// must be restored on the way out
	_, interpreter, err := interpretSource(t, `
var a = 1;
{
  var b = 2;
  {
    var c = 3;
    print c - "boom";
  }
}
`)
	require.Error(t, err)
	assert.Same(t, interpreter.globals, interpreter.env)
}

func TestInterpreter_environmentRestoredAfterReturn(t *testing.T) {
	_, interpreter, err := interpretSource(t, `
fun f() {
  {
    {
      return 1;
    }
  }
}
print f();
`)
	require.NoError(t, err)
	assert.Same(t, interpreter.globals, interpreter.env)
}

func TestInterpreter_globalsPersistAcrossInterpretCalls(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runner := NewRunner(stdout, stderr)

	runner.Run("var a = 1;")
	runner.Run("print a;")
	require.False(t, runner.HadError())
	require.False(t, runner.HadRuntimeError())
	assert.Equal(t, "1\n", stdout.String())
}

func TestInterpreter_closureCapturesFrameNotValue(t *testing.T) {
	out, _, err := interpretSource(t, `
var holder = nil;
fun capture() {
  var x = 1;
  fun read() { print x; }
  holder = read;
  x = 2;
}
capture();
holder();
`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}
