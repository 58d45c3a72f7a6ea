package golox

import (
	"fmt"
)

// Expr nodes are allocated once by the parser and never copied afterward, so
// the resolver's side table can key on plain pointer identity. Two
// syntactically identical references (say, the condition and increment of a
// desugared for loop) are distinct nodes and get distinct entries.
type Expr interface {
	Accept(ExprVisitor) interface{}
}

type ExprVisitor interface {
	VisitAssign(*Assign) interface{}
	VisitBinary(*Binary) interface{}
	VisitCall(*Call) interface{}
	VisitGet(*Get) interface{}
	VisitGrouping(*Grouping) interface{}
	VisitLiteral(*Literal) interface{}
	VisitLogical(*Logical) interface{}
	VisitSet(*Set) interface{}
	VisitSuper(*Super) interface{}
	VisitThis(*This) interface{}
	VisitUnary(*Unary) interface{}
	VisitVariable(*Variable) interface{}
}

type Assign struct {
	Name  Token
	Value Expr
}

func (a *Assign) Accept(v ExprVisitor) interface{} {
	return v.VisitAssign(a)
}

func (a *Assign) String() string {
	return fmt.Sprintf("%v = %v;", a.Name, a.Value)
}

type Binary struct {
	Left     Expr
	Operator Token
	Right    Expr
}

func (b *Binary) Accept(v ExprVisitor) interface{} {
	return v.VisitBinary(b)
}

type Call struct {
	Callee Expr
	Paren  Token
	Args   []Expr
}

func (c *Call) Accept(v ExprVisitor) interface{} {
	return v.VisitCall(c)
}

func (c *Call) String() string {
	return fmt.Sprintf("call<%v>(%v)", c.Callee, c.Args)
}

type Get struct {
	Object Expr
	Name   Token
}

func (g *Get) Accept(v ExprVisitor) interface{} {
	return v.VisitGet(g)
}

func (g *Get) String() string {
	return fmt.Sprintf("%s.get(%q)", g.Object, g.Name.Lexeme)
}

type Set struct {
	Object Expr
	Name   Token
	Value  Expr
}

func (s *Set) Accept(v ExprVisitor) interface{} {
	return v.VisitSet(s)
}

func (s *Set) String() string {
	return fmt.Sprintf("%s.set(%q) = %v", s.Object, s.Name.Lexeme, s.Value)
}

type Grouping struct {
	Expression Expr
}

func (g *Grouping) Accept(v ExprVisitor) interface{} {
	return v.VisitGrouping(g)
}

type Literal struct {
	Value interface{}
}

func (l *Literal) Accept(v ExprVisitor) interface{} {
	return v.VisitLiteral(l)
}

type Logical struct {
	Left     Expr
	Operator Token
	Right    Expr
}

func (l *Logical) Accept(v ExprVisitor) interface{} {
	return v.VisitLogical(l)
}

type Super struct {
	Keyword Token
	Method  Token
}

func (s *Super) Accept(v ExprVisitor) interface{} {
	return v.VisitSuper(s)
}

type This struct {
	Keyword Token
}

func (t *This) Accept(v ExprVisitor) interface{} {
	return v.VisitThis(t)
}

type Unary struct {
	Operator Token
	Right    Expr
}

func (u *Unary) Accept(v ExprVisitor) interface{} {
	return v.VisitUnary(u)
}

type Variable struct {
	Name Token
}

func (v *Variable) Accept(visitor ExprVisitor) interface{} {
	return visitor.VisitVariable(v)
}

func (v *Variable) String() string {
	return fmt.Sprintf("var(%v)", v.Name)
}
