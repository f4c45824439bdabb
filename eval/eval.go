// Package eval executes a compiled instr.Expression against a
// context.ExecutionContext as a single-pass stack machine: a linear scan
// over a flat []instr.Instruction program rather than a tree walk, since
// there is no tree left by the time the parser is done.
package eval

import (
	"fmt"

	"github.com/shy-lang/shy/context"
	"github.com/shy-lang/shy/instr"
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

// Exec runs expr against ctx and returns the expression's result.
//
// The returned error is reserved for conditions that indicate a malformed
// program (stack underflow, unknown instruction or opcode, residual stack
// values at termination) — the kind of bug that should never occur against
// output from this package's own parser. Ordinary runtime failures
// (UnknownVariable, TypeMismatch, DivideByZero, EmptyExpression, and so on)
// are not Go errors: they are Value::Error results that a caller can inspect
// or propagate like any other value, and are returned as Exec's Value with a
// nil error.
func Exec(expr *instr.Expression, ctx *context.ExecutionContext) (value.Value, error) {
	stack := make([]value.Value, 0, len(expr.Instructions))

	for _, ins := range expr.Instructions {
		switch in := ins.(type) {
		case *instr.PushLiteral:
			stack = append(stack, in.Value)

		case *instr.LoadVar:
			stack = append(stack, ctx.Load(in.Path))

		case *instr.StoreVar:
			v, rest, err := pop(stack)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(rest, ctx.Store(in.Path, v))

		case *instr.Call:
			args, rest, err := popN(stack, in.Argc)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(rest, ctx.Call(in.Name, args))

		case *instr.Op:
			var err error
			stack, err = execOp(in, stack)
			if err != nil {
				return value.Value{}, err
			}

		case *instr.QuitIfFalse:
			top, err := peek(stack)
			if err != nil {
				return value.Value{}, err
			}
			if !value.CoerceBool(top) {
				return top, nil
			}

		case *instr.PopStatement:
			_, rest, err := pop(stack)
			if err != nil {
				return value.Value{}, err
			}
			stack = rest

		default:
			return value.Value{}, fmt.Errorf("eval: unknown instruction type %T", ins)
		}
	}

	return finalResult(stack)
}

func finalResult(stack []value.Value) (value.Value, error) {
	switch len(stack) {
	case 0:
		return value.Errf(shyerr.EmptyExpression, "expression produced no value"), nil
	case 1:
		return stack[0], nil
	default:
		return value.Value{}, fmt.Errorf("eval: %d residual values on stack at termination", len(stack))
	}
}

func pop(stack []value.Value) (value.Value, []value.Value, error) {
	if len(stack) == 0 {
		return value.Value{}, nil, fmt.Errorf("eval: stack underflow")
	}
	last := len(stack) - 1
	return stack[last], stack[:last], nil
}

func peek(stack []value.Value) (value.Value, error) {
	if len(stack) == 0 {
		return value.Value{}, fmt.Errorf("eval: stack underflow")
	}
	return stack[len(stack)-1], nil
}

// popN pops n values off stack, returning them in push (left-to-right) order.
func popN(stack []value.Value, n int) ([]value.Value, []value.Value, error) {
	if len(stack) < n {
		return nil, nil, fmt.Errorf("eval: stack underflow, need %d values, have %d", n, len(stack))
	}
	split := len(stack) - n
	args := make([]value.Value, n)
	copy(args, stack[split:])
	return args, stack[:split], nil
}
