package golox

// scope tracks names visible in one lexical block. A name maps to false
// between declaration and the end of its initializer, true once usable.
type scope map[string]bool

type FunctionType int

const (
	NONEFUNC FunctionType = iota
	FUNCTION
	INITIALIZER
	METHOD
)

type ClassType int

const (
	NONECLASS ClassType = iota
	CLASSCLASS
	SUBCLASSCLASS
)

// Resolver walks the parsed tree once, before evaluation, recording for each
// local reference how many scopes up its binding lives. Globals stay
// unrecorded. It also enforces the static rules that don't need runtime
// values. Errors accumulate in the reporter; the walk keeps going so one run
// reports everything it can.
type Resolver struct {
	scopes              []scope
	interpreter         *Interpreter
	reporter            *Reporter
	currentFunctionType FunctionType
	currentClassType    ClassType
}

func NewResolver(interpreter *Interpreter, reporter *Reporter) *Resolver {
	return &Resolver{
		interpreter: interpreter,
		reporter:    reporter,
	}
}

func (r *Resolver) Resolve(stmts []Stmt) {
	r.resolveStmts(stmts)
}

func (r *Resolver) resolveStmts(stmts []Stmt) {
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
}

func (r *Resolver) resolveStmt(stmt Stmt) {
	stmt.Accept(r)
}

func (r *Resolver) resolveExpr(expr Expr) {
	expr.Accept(r)
}

func (r *Resolver) resolveFunction(fStmt *FunctionStmt, typ FunctionType) {
	enclosingFunctionType := r.currentFunctionType
	r.currentFunctionType = typ

	r.beginScope()
	for _, param := range fStmt.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fStmt.Body)
	r.endScope()
	r.currentFunctionType = enclosingFunctionType
}

// resolveLocal scans scopes innermost-outward; the first hit pins the
// reference's distance. A miss means the name is (hopefully) global.
func (r *Resolver) resolveLocal(expr Expr, name Token) {
	for depth := 0; depth < len(r.scopes); depth++ {
		idx := len(r.scopes) - depth - 1
		if _, found := r.scopes[idx][name.Lexeme]; found {
			r.interpreter.Resolve(expr, depth)
			return
		}
	}
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *Resolver) peekScope() scope {
	if len(r.scopes) == 0 {
		return nil
	}
	return r.scopes[len(r.scopes)-1]
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name Token) {
	if len(r.scopes) == 0 {
		return // it's global, no resolution needed
	}
	if _, found := r.peekScope()[name.Lexeme]; found {
		r.reporter.TokenError(name, "Already a variable with this name in this scope.")
	}
	r.peekScope()[name.Lexeme] = false
}

func (r *Resolver) define(name Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peekScope()[name.Lexeme] = true
}

func (r *Resolver) VisitExpressionStmt(stmt *ExprStmt) {
	r.resolveExpr(stmt.Expression)
}

func (r *Resolver) VisitFunctionStmt(stmt *FunctionStmt) {
	r.declare(stmt.Name)
	// defined eagerly so the body can recurse
	r.define(stmt.Name)
	r.resolveFunction(stmt, FUNCTION)
}

func (r *Resolver) VisitIfStmt(stmt *IfStmt) {
	r.resolveExpr(stmt.Condition)
	r.resolveStmt(stmt.Then)
	if stmt.Else != nil {
		r.resolveStmt(stmt.Else)
	}
}

func (r *Resolver) VisitPrintStmt(stmt *PrintStmt) {
	r.resolveExpr(stmt.Expression)
}

func (r *Resolver) VisitWhileStmt(stmt *WhileStmt) {
	r.resolveExpr(stmt.Condition)
	r.resolveStmt(stmt.Body)
}

func (r *Resolver) VisitBlockStmt(stmt *BlockStmt) {
	r.beginScope()
	r.resolveStmts(stmt.Statements)
	r.endScope()
}

func (r *Resolver) VisitClassStmt(stmt *ClassStmt) {
	enclosingClassType := r.currentClassType
	r.currentClassType = CLASSCLASS

	r.declare(stmt.Name)
	r.define(stmt.Name)

	if stmt.Superclass != nil {
		if stmt.Name.Lexeme == stmt.Superclass.Name.Lexeme {
			r.reporter.TokenError(stmt.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClassType = SUBCLASSCLASS
		r.resolveExpr(stmt.Superclass)
		r.beginScope()
		r.peekScope()["super"] = true
	}

	r.beginScope()
	r.peekScope()["this"] = true

	for _, method := range stmt.Methods {
		funcType := METHOD
		if method.Name.Lexeme == "init" {
			funcType = INITIALIZER
		}
		r.resolveFunction(method, funcType)
	}

	r.endScope()
	if stmt.Superclass != nil {
		r.endScope()
	}
	r.currentClassType = enclosingClassType
}

func (r *Resolver) VisitReturnStmt(stmt *ReturnStmt) {
	if r.currentFunctionType == NONEFUNC {
		r.reporter.TokenError(stmt.Keyword, "Can't return from top-level code.")
	}

	if stmt.Value != nil {
		if r.currentFunctionType == INITIALIZER {
			r.reporter.TokenError(stmt.Keyword, "Can't return a value from an initializer.")
		}
		r.resolveExpr(stmt.Value)
	}
}

func (r *Resolver) VisitVarStmt(stmt *VariableStmt) {
	r.declare(stmt.Name)
	if stmt.Initializer != nil {
		r.resolveExpr(stmt.Initializer)
	}
	r.define(stmt.Name)
}

func (r *Resolver) VisitAssign(expr *Assign) interface{} {
	r.resolveExpr(expr.Value)
	r.resolveLocal(expr, expr.Name)
	return nil
}

func (r *Resolver) VisitBinary(expr *Binary) interface{} {
	r.resolveExpr(expr.Left)
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitCall(expr *Call) interface{} {
	r.resolveExpr(expr.Callee)
	for _, arg := range expr.Args {
		r.resolveExpr(arg)
	}
	return nil
}

func (r *Resolver) VisitGet(expr *Get) interface{} {
	// properties are looked up dynamically; only the object resolves
	r.resolveExpr(expr.Object)
	return nil
}

func (r *Resolver) VisitGrouping(expr *Grouping) interface{} {
	r.resolveExpr(expr.Expression)
	return nil
}

func (r *Resolver) VisitLiteral(expr *Literal) interface{} {
	return nil
}

func (r *Resolver) VisitLogical(expr *Logical) interface{} {
	r.resolveExpr(expr.Left)
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitSet(expr *Set) interface{} {
	r.resolveExpr(expr.Value)
	r.resolveExpr(expr.Object)
	return nil
}

func (r *Resolver) VisitSuper(expr *Super) interface{} {
	if r.currentClassType == NONECLASS {
		r.reporter.TokenError(expr.Keyword, "Can't use 'super' outside of a class.")
	} else if r.currentClassType != SUBCLASSCLASS {
		r.reporter.TokenError(expr.Keyword, "Can't use 'super' in a class with no superclass.")
	}
	r.resolveLocal(expr, expr.Keyword)
	return nil
}

func (r *Resolver) VisitThis(expr *This) interface{} {
	if r.currentClassType == NONECLASS {
		r.reporter.TokenError(expr.Keyword, "Can't use 'this' outside of a class.")
		return nil
	}
	r.resolveLocal(expr, expr.Keyword)
	return nil
}

func (r *Resolver) VisitUnary(expr *Unary) interface{} {
	r.resolveExpr(expr.Right)
	return nil
}

func (r *Resolver) VisitVariable(expr *Variable) interface{} {
	if innerScope := r.peekScope(); innerScope != nil {
		if defined, declared := innerScope[expr.Name.Lexeme]; declared && !defined {
			r.reporter.TokenError(expr.Name, "Can't read local variable in its own initializer.")
		}
	}
	r.resolveLocal(expr, expr.Name)
	return nil
}
