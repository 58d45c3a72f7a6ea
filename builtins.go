package golox

import "time"

// ClockBuiltin is the only native: seconds since the epoch, sub-second
// precision, as a Lox number.
type ClockBuiltin struct{}

func (cb ClockBuiltin) Arity() int { return 0 }

func (cb ClockBuiltin) Call(i *Interpreter, args []interface{}) interface{} {
	return float64(time.Now().UnixNano()) / 1e9
}

func (cb ClockBuiltin) String() string { return "<native fn>" }
