package golox

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Divisors closer to zero than this raise "Cannot divide by 0."
const divisionEpsilon = 1e-5

// returnable carries a return value up the host stack from a 'return'
// statement to the enclosing function call, which recovers it.
type returnable struct {
	Value interface{}
}

type Callable interface {
	Arity() int
	Call(interpreter *Interpreter, args []interface{}) interface{}
}

// Interpreter executes a resolved statement list. globals is the root frame;
// env is whichever frame is active, and every block/call that swaps it is
// responsible for restoring it on all exit paths.
type Interpreter struct {
	stdout        io.Writer
	reporter      *Reporter
	localDistance map[Expr]int
	globals       *environment
	env           *environment
}

func NewInterpreter(stdout io.Writer, reporter *Reporter) *Interpreter {
	globals := newEnvironment(nil)
	globals.define("clock", ClockBuiltin{})
	return &Interpreter{
		stdout:        stdout,
		reporter:      reporter,
		localDistance: make(map[Expr]int),
		globals:       globals,
		env:           globals,
	}
}

// Interpret runs the program, converting the first runtime error into a
// reported diagnostic and a non-nil return.
func (i *Interpreter) Interpret(stmts []Stmt) (returnErr error) {
	defer func() {
		if r := recover(); r != nil {
			rte, ok := r.(*RuntimeError)
			if !ok {
				panic(r)
			}
			i.reporter.RuntimeError(rte)
			returnErr = rte
		}
	}()

	for _, stmt := range stmts {
		i.execute(stmt)
	}

	return nil
}

// Resolve records a reference's lexical distance. Written only by the
// resolver, read-only during evaluation.
func (i *Interpreter) Resolve(expr Expr, distance int) {
	i.localDistance[expr] = distance
}

func (i *Interpreter) runtimeError(tok Token, msg string) {
	panic(&RuntimeError{
		Token:   tok,
		Message: msg,
	})
}

func (i *Interpreter) evaluate(expr Expr) interface{} {
	return expr.Accept(i)
}

func (i *Interpreter) execute(stmt Stmt) {
	stmt.Accept(i)
}

// executeBlock swaps in newEnv for the duration of stmts. The deferred
// restore is what keeps the current frame correct when a runtime error or a
// 'return' unwinds through here.
func (i *Interpreter) executeBlock(stmts []Stmt, newEnv *environment) {
	prevEnv := i.env
	defer func() {
		i.env = prevEnv
	}()
	i.env = newEnv

	for _, stmt := range stmts {
		i.execute(stmt)
	}
}

func (i *Interpreter) VisitAssign(expr *Assign) interface{} {
	value := i.evaluate(expr.Value)
	distance, found := i.localDistance[expr]
	if found {
		i.env.assignAt(distance, expr.Name, value)
	} else {
		i.globals.assign(expr.Name, value)
	}
	return value
}

func (i *Interpreter) VisitBinary(expr *Binary) interface{} {
	left := i.evaluate(expr.Left)
	right := i.evaluate(expr.Right)
	switch expr.Operator.Type {
	case MINUS:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) - right.(float64)
	case SLASH:
		i.checkNumberOperands(expr.Operator, left, right)
		i.checkValidDivisor(expr.Operator, right.(float64))
		return left.(float64) / right.(float64)
	case STAR:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) * right.(float64)
	case PLUS:
		if leftNum, ok := left.(float64); ok {
			if rightNum, ok := right.(float64); ok {
				return leftNum + rightNum
			}
		}
		if leftStr, ok := left.(string); ok {
			if rightStr, ok := right.(string); ok {
				return leftStr + rightStr
			}
		}
		i.runtimeError(expr.Operator, "Operands must be two numbers or two strings.")
	case GREATER:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) > right.(float64)
	case GREATER_EQUAL:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) >= right.(float64)
	case LESS:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) < right.(float64)
	case LESS_EQUAL:
		i.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) <= right.(float64)
	case BANG_EQUAL:
		return !isEqual(left, right)
	case EQUAL_EQUAL:
		return isEqual(left, right)
	}

	panic("VisitBinary hit intended-unreachable code")
}

// isEqual: numbers, strings and booleans compare by value; functions,
// classes and instances by identity; nil only equals nil.
func isEqual(left, right interface{}) bool {
	if left == nil && right == nil {
		return true
	}
	if left == nil || right == nil {
		return false
	}
	switch l := left.(type) {
	case float64:
		r, ok := right.(float64)
		return ok && l == r
	case string:
		r, ok := right.(string)
		return ok && l == r
	case bool:
		r, ok := right.(bool)
		return ok && l == r
	default:
		// callables and instances are pointer-shaped, so this is
		// reference identity
		return left == right
	}
}

func (i *Interpreter) checkNumberOperands(op Token, left, right interface{}) {
	_, leftOk := left.(float64)
	_, rightOk := right.(float64)
	if !leftOk || !rightOk {
		i.runtimeError(op, "Operands must be numbers.")
	}
}

func (i *Interpreter) checkValidDivisor(op Token, divisor float64) {
	if math.Abs(divisor) < divisionEpsilon {
		i.runtimeError(op, "Cannot divide by 0.")
	}
}

func (i *Interpreter) VisitCall(expr *Call) interface{} {
	callee := i.evaluate(expr.Callee)
	var args []interface{}
	for _, argExpr := range expr.Args {
		args = append(args, i.evaluate(argExpr))
	}
	function, ok := callee.(Callable)
	if !ok {
		i.runtimeError(expr.Paren, "Can only call functions and classes.")
	}
	if len(args) != function.Arity() {
		i.runtimeError(
			expr.Paren,
			fmt.Sprintf("Expected %d arguments but got %d.", function.Arity(), len(args)),
		)
	}

	return function.Call(i, args)
}

func (i *Interpreter) VisitGet(expr *Get) interface{} {
	obj := i.evaluate(expr.Object)
	instance, ok := obj.(*Instance)
	if !ok {
		i.runtimeError(expr.Name, "Only instances have properties.")
	}
	val, err := instance.Get(expr.Name)
	if err != nil {
		i.runtimeError(expr.Name, err.Error())
	}
	return val
}

func (i *Interpreter) VisitGrouping(expr *Grouping) interface{} {
	return i.evaluate(expr.Expression)
}

func (i *Interpreter) VisitLiteral(expr *Literal) interface{} {
	return expr.Value
}

func (i *Interpreter) VisitLogical(expr *Logical) interface{} {
	left := i.evaluate(expr.Left)
	leftTruthy := isTruthy(left)

	if expr.Operator.Type == OR {
		// short-circuit OR
		if leftTruthy {
			return left
		}
	} else {
		// short-circuit AND
		if !leftTruthy {
			return left
		}
	}

	return i.evaluate(expr.Right)
}

func (i *Interpreter) VisitSet(expr *Set) interface{} {
	obj := i.evaluate(expr.Object)
	instance, ok := obj.(*Instance)
	if !ok {
		i.runtimeError(expr.Name, "Only instances have fields.")
	}
	value := i.evaluate(expr.Value)
	instance.Set(expr.Name, value)
	return value
}

func (i *Interpreter) VisitSuper(expr *Super) interface{} {
	distance := i.localDistance[expr]
	superclass := i.env.getAt(distance, expr.Keyword).(*Class)
	method, found := superclass.findMethod(expr.Method.Lexeme)
	if !found {
		i.runtimeError(expr.Method, fmt.Sprintf("Undefined property '%s'.", expr.Method.Lexeme))
	}
	// "this" lives in the frame just inside the one holding "super"
	instance := i.env.getAt(distance-1, Token{Lexeme: "this"}).(*Instance)
	return method.bindMethodToInstance(instance)
}

func (i *Interpreter) VisitThis(expr *This) interface{} {
	return i.lookupVariable(expr.Keyword, expr)
}

func (i *Interpreter) VisitUnary(expr *Unary) interface{} {
	right := i.evaluate(expr.Right)

	switch expr.Operator.Type {
	case MINUS:
		rightNum, ok := right.(float64)
		if !ok {
			i.runtimeError(expr.Operator, "Operand must be a number.")
		}
		return -rightNum
	case BANG:
		return !isTruthy(right)
	}

	panic("VisitUnary hit intended-unreachable code")
}

func (i *Interpreter) VisitVariable(expr *Variable) interface{} {
	return i.lookupVariable(expr.Name, expr)
}

func (i *Interpreter) lookupVariable(name Token, expr Expr) interface{} {
	distance, found := i.localDistance[expr]
	if found {
		return i.env.getAt(distance, name)
	}
	return i.globals.get(name)
}

func (i *Interpreter) VisitBlockStmt(stmt *BlockStmt) {
	// a BlockStmt is only used for non-call constructs like if/while/for,
	// so the enclosing scope stays visible
	i.executeBlock(stmt.Statements, newEnvironment(i.env))
}

func (i *Interpreter) VisitClassStmt(stmt *ClassStmt) {
	var superclass *Class
	if stmt.Superclass != nil {
		superclassMaybe := i.evaluate(stmt.Superclass)
		var ok bool
		superclass, ok = superclassMaybe.(*Class)
		if !ok {
			i.runtimeError(stmt.Superclass.Name, "Superclass must be a class.")
		}
	}

	// defined before the methods are built so they can refer to the class
	// by name
	i.env.define(stmt.Name.Lexeme, nil)

	if stmt.Superclass != nil {
		i.env = newEnvironment(i.env)
		i.env.define("super", superclass)
	}

	methods := make(map[string]*Function)
	for _, methodStmt := range stmt.Methods {
		methods[methodStmt.Name.Lexeme] = &Function{
			Declaration:   methodStmt,
			Closure:       i.env,
			isInitializer: methodStmt.Name.Lexeme == "init",
		}
	}

	class := &Class{
		Name:       stmt.Name.Lexeme,
		Superclass: superclass,
		Methods:    methods,
	}
	if stmt.Superclass != nil {
		i.env = i.env.enclosing
	}
	i.env.assign(stmt.Name, class)
}

func (i *Interpreter) VisitExpressionStmt(stmt *ExprStmt) {
	i.evaluate(stmt.Expression)
}

func (i *Interpreter) VisitFunctionStmt(stmt *FunctionStmt) {
	fun := &Function{
		Declaration:   stmt,
		Closure:       i.env,
		isInitializer: false,
	}
	i.env.define(stmt.Name.Lexeme, fun)
}

func (i *Interpreter) VisitIfStmt(stmt *IfStmt) {
	if isTruthy(i.evaluate(stmt.Condition)) {
		i.execute(stmt.Then)
	} else if stmt.Else != nil {
		i.execute(stmt.Else)
	}
}

func (i *Interpreter) VisitPrintStmt(stmt *PrintStmt) {
	value := i.evaluate(stmt.Expression)
	_, _ = fmt.Fprintln(i.stdout, stringify(value))
}

func (i *Interpreter) VisitReturnStmt(stmt *ReturnStmt) {
	var value interface{}
	if stmt.Value != nil {
		value = i.evaluate(stmt.Value)
	}
	panic(returnable{Value: value})
}

func (i *Interpreter) VisitVarStmt(stmt *VariableStmt) {
	var value interface{}
	if stmt.Initializer != nil {
		value = i.evaluate(stmt.Initializer)
	}
	i.env.define(stmt.Name.Lexeme, value)
}

func (i *Interpreter) VisitWhileStmt(stmt *WhileStmt) {
	for isTruthy(i.evaluate(stmt.Condition)) {
		i.execute(stmt.Body)
	}
}

// isTruthy: nil and false are falsy, everything else is truthy.
func isTruthy(obj interface{}) bool {
	if obj == nil {
		return false
	}
	if boolObj, ok := obj.(bool); ok {
		return boolObj
	}
	return true
}

// stringify renders a value the way 'print' shows it. Integral numbers lose
// the trailing fractional part; callables and instances render themselves.
func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
