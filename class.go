package golox

import "fmt"

type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) String() string {
	return c.Name
}

// Call allocates a fresh instance and, if an init method exists anywhere on
// the class chain, runs it bound to the new instance.
func (c *Class) Call(i *Interpreter, args []interface{}) interface{} {
	inst := &Instance{
		class: c,
	}
	if initializer, found := c.findMethod("init"); found {
		initializer.bindMethodToInstance(inst).Call(i, args)
	}
	return inst
}

func (c *Class) Arity() int {
	initializer, found := c.findMethod("init")
	if !found {
		return 0
	}
	return initializer.Arity()
}

func (c *Class) findMethod(name string) (*Function, bool) {
	if method, found := c.Methods[name]; found {
		return method, true
	}
	if c.Superclass != nil {
		return c.Superclass.findMethod(name)
	}
	return nil, false
}

type Instance struct {
	class  *Class
	fields map[string]interface{}
}

func (i *Instance) String() string {
	return i.class.Name + " instance"
}

// Get checks fields first, then methods on the class chain; a method comes
// back bound to this instance. Shadowing a method with a field is allowed.
func (i *Instance) Get(name Token) (interface{}, error) {
	if field, found := i.fields[name.Lexeme]; found {
		return field, nil
	}

	if method, found := i.class.findMethod(name.Lexeme); found {
		return method.bindMethodToInstance(i), nil
	}

	return nil, fmt.Errorf("Undefined property '%s'.", name.Lexeme)
}

// Set writes a field directly; it never consults methods.
func (i *Instance) Set(name Token, value interface{}) {
	if i.fields == nil {
		i.fields = make(map[string]interface{})
	}
	i.fields[name.Lexeme] = value
}
