package golox

import "fmt"

type Function struct {
	Declaration   *FunctionStmt
	Closure       *environment
	isInitializer bool // allows us to return "this" from a re-call to init()
}

// bindMethodToInstance produces a copy of the method whose closure has "this"
// bound to inst. The copy shares the original's declaration and parent
// frames.
func (f *Function) bindMethodToInstance(inst *Instance) *Function {
	env := newEnvironment(f.Closure)
	env.define("this", inst)
	return &Function{
		Declaration:   f.Declaration,
		Closure:       env,
		isInitializer: f.isInitializer,
	}
}

func (f *Function) Arity() int {
	return len(f.Declaration.Params)
}

func (f *Function) Call(i *Interpreter, args []interface{}) (returnVal interface{}) {
	// call semantics mean we can't see variables in the caller's scope,
	// only the closure chain and globals
	newEnv := newEnvironment(f.Closure)
	for idx, arg := range args {
		newEnv.define(f.Declaration.Params[idx].Lexeme, arg)
	}

	// A "return" statement unwinds the host stack via panic; this is the
	// boundary that catches it and harvests the value. Runtime errors
	// pass through untouched.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		returned, ok := r.(returnable)
		if !ok {
			panic(r)
		}
		returnVal = returned.Value
		if f.isInitializer {
			returnVal = f.Closure.getAt(0, Token{Lexeme: "this"})
		}
	}()

	i.executeBlock(f.Declaration.Body, newEnv)

	if f.isInitializer {
		return f.Closure.getAt(0, Token{Lexeme: "this"})
	}

	return nil
}

func (f *Function) String() string {
	return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme)
}
