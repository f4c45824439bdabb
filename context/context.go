// Package context implements the ExecutionContext the evaluator runs
// against: a mutable variable environment plus a function registry.
package context

import (
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

// Func is a callable registered in a Context's function table. Arity is the
// number of arguments the handler expects, or -1 if the handler accepts any
// number of arguments (used by min/max and the voting functions).
type Func struct {
	Arity   int
	Handler func(args []value.Value) value.Value
}

// ExecutionContext is the variable environment and function registry an
// Expression executes against. A Context is exclusively owned by the
// evaluation running against it for the duration of one Exec call; it is not
// safe to mutate from multiple goroutines concurrently.
type ExecutionContext struct {
	values    map[string]value.Value
	functions map[string]Func
}

// New returns a Context pre-populated with the standard constants and
// functions. Each call builds its own maps, so mutating one Context's
// standard_functions/standard_variables never affects another.
func New() *ExecutionContext {
	c := &ExecutionContext{
		values:    map[string]value.Value{},
		functions: map[string]Func{},
	}
	c.loadStandardVariables()
	c.loadStandardFunctions()
	return c
}

// Store sets the value at path, auto-creating intermediate Object entries
// for missing segments. It returns the stored value (so assignment can be
// used as an expression), or Error(NotAnObject) if an intermediate segment
// already holds a non-Object value.
func (c *ExecutionContext) Store(path []string, v value.Value) value.Value {
	if len(path) == 0 {
		return v
	}

	head := path[0]
	if len(path) == 1 {
		c.values[head] = v
		return v
	}

	cur, ok := c.values[head]
	if !ok {
		cur = value.Obj(value.NewMapAssociation())
		c.values[head] = cur
	}
	if cur.Kind() != value.KindObject {
		return value.Errf(shyerr.NotAnObject, "%q is not an object", head)
	}
	obj := cur.Object()

	for _, seg := range path[1 : len(path)-1] {
		next, ok := obj.Get(seg)
		if !ok {
			next = value.Obj(value.NewMapAssociation())
			obj.Set(seg, next)
		}
		if next.Kind() != value.KindObject {
			return value.Errf(shyerr.NotAnObject, "%q is not an object", seg)
		}
		obj = next.Object()
	}

	obj.Set(path[len(path)-1], v)
	return v
}

// Load resolves path left to right: the first segment names a Context
// variable, each subsequent segment navigates into the current value's
// Association capability. It returns Error(UnknownVariable) if any segment
// is missing or the current value does not expose a property at all.
func (c *ExecutionContext) Load(path []string) value.Value {
	if len(path) == 0 {
		return value.Errf(shyerr.UnknownVariable, "empty variable path")
	}

	head := path[0]
	cur, ok := c.values[head]
	if !ok {
		return value.Errf(shyerr.UnknownVariable, "unknown variable %q", head)
	}

	for _, seg := range path[1:] {
		if cur.Kind() != value.KindObject {
			return value.Errf(shyerr.UnknownVariable, "%q has no property %q", head, seg)
		}
		next, ok := cur.Object().Get(seg)
		if !ok {
			return value.Errf(shyerr.UnknownVariable, "unknown property %q", seg)
		}
		cur = next
	}

	return cur
}

// RegisterFunction adds or replaces a function in the Context's function
// table. arity is -1 for a function that accepts any number of arguments.
func (c *ExecutionContext) RegisterFunction(name string, arity int, handler func(args []value.Value) value.Value) {
	c.functions[name] = Func{Arity: arity, Handler: handler}
}

// Lookup returns the function registered under name, falling back to the
// standard functions loaded at construction (they live in the same table, so
// a caller-registered function of the same name shadows a standard one).
func (c *ExecutionContext) Lookup(name string) (Func, bool) {
	f, ok := c.functions[name]
	return f, ok
}

// Call invokes the function named name with args, enforcing arity, and
// returns its result or a runtime-error Value (UnknownFunction,
// ArityMismatch). Handler-produced errors (e.g. TypeMismatch) pass through
// unchanged.
func (c *ExecutionContext) Call(name string, args []value.Value) value.Value {
	fn, ok := c.Lookup(name)
	if !ok {
		return value.Errf(shyerr.UnknownFunction, "unknown function %q", name)
	}
	if fn.Arity >= 0 && fn.Arity != len(args) {
		return value.Errf(shyerr.ArityMismatch, "%s expects %d argument(s), got %d", name, fn.Arity, len(args))
	}
	for _, a := range args {
		if a.IsError() {
			return a
		}
	}
	return fn.Handler(args)
}

func (c *ExecutionContext) loadStandardVariables() {
	c.values["π"] = value.Rational(3.141592653589793)
	c.values["PI"] = value.Rational(3.141592653589793)
	c.values["e"] = value.Rational(2.718281828459045)
	c.values["φ"] = value.Rational(1.618033988749895)
	c.values["PHI"] = value.Rational(1.618033988749895)
}
