package eval

import (
	"strconv"
	"testing"

	"github.com/shy-lang/shy/instr"
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

func TestExecOp_StringConcat(t *testing.T) {
	stack := []value.Value{value.Str("foo"), value.Str("bar")}
	op := &instr.Op{Code: instr.Add, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Str() != "foobar" {
		t.Fatalf("got %v, want [foobar]", got)
	}
}

func TestExecOp_StringConcat_EmptyOperand(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"", "bar", "bar"},
		{"foo", "", "foo"},
		{"", "", ""},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			stack := []value.Value{value.Str(test.a), value.Str(test.b)}
			op := &instr.Op{Code: instr.Add, Arity: 2}
			got, err := execOp(op, stack)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[0].Str() != test.want {
				t.Fatalf("got %q, want %q", got[0].Str(), test.want)
			}
		})
	}
}

func TestExecOp_FactorialOverflowPromotesToRational(t *testing.T) {
	stack := []value.Value{value.Int(25)}
	op := &instr.Op{Code: instr.Factorial, Arity: 1}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind() != value.KindRational {
		t.Fatalf("expected overflow to promote to Rational, got %s", got[0].Kind())
	}
}

func TestExecOp_FactorialNegative(t *testing.T) {
	stack := []value.Value{value.Int(-1)}
	op := &instr.Op{Code: instr.Factorial, Arity: 1}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].IsError() || got[0].ErrorKind() != shyerr.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %s", got[0])
	}
}

func TestExecOp_IntDivExactStaysInteger(t *testing.T) {
	stack := []value.Value{value.Int(10), value.Int(5)}
	op := &instr.Op{Code: instr.Div, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind() != value.KindInteger || got[0].Int() != 2 {
		t.Fatalf("got %s, want Integer 2", got[0])
	}
}

func TestExecOp_IntDivInexactPromotesToRational(t *testing.T) {
	stack := []value.Value{value.Int(1), value.Int(3)}
	op := &instr.Op{Code: instr.Div, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind() != value.KindRational {
		t.Fatalf("got %s, want Rational", got[0])
	}
}

func TestExecOp_AndIgnoresRightWhenLeftFalse(t *testing.T) {
	stack := []value.Value{value.Bool(false), value.Err(shyerr.DivideByZero, "boom")}
	op := &instr.Op{Code: instr.And, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind() != value.KindBool || got[0].Bool() {
		t.Fatalf("got %s, want Bool(false)", got[0])
	}
}

func TestExecOp_OrIgnoresRightWhenLeftTrue(t *testing.T) {
	stack := []value.Value{value.Bool(true), value.Err(shyerr.DivideByZero, "boom")}
	op := &instr.Op{Code: instr.Or, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind() != value.KindBool || !got[0].Bool() {
		t.Fatalf("got %s, want Bool(true)", got[0])
	}
}

func TestExecOp_AddPropagatesErrorOperand(t *testing.T) {
	stack := []value.Value{value.Err(shyerr.DivideByZero, "boom"), value.Int(5)}
	op := &instr.Op{Code: instr.Add, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].IsError() || got[0].ErrorKind() != shyerr.DivideByZero {
		t.Fatalf("got %s, want Error(DivideByZero)", got[0])
	}
}

func TestExecOp_NegPropagatesErrorOperand(t *testing.T) {
	stack := []value.Value{value.Err(shyerr.DivideByZero, "boom")}
	op := &instr.Op{Code: instr.Neg, Arity: 1}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].IsError() || got[0].ErrorKind() != shyerr.DivideByZero {
		t.Fatalf("got %s, want Error(DivideByZero)", got[0])
	}
}

func TestExecOp_AndPropagatesLeftError(t *testing.T) {
	stack := []value.Value{value.Err(shyerr.DivideByZero, "boom"), value.Bool(true)}
	op := &instr.Op{Code: instr.And, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].IsError() || got[0].ErrorKind() != shyerr.DivideByZero {
		t.Fatalf("got %s, want Error(DivideByZero)", got[0])
	}
}

func TestExecOp_RegexCompileError(t *testing.T) {
	stack := []value.Value{value.Str("abc"), value.Str("(unclosed")}
	op := &instr.Op{Code: instr.RegexMatch, Arity: 2}

	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].IsError() || got[0].ErrorKind() != shyerr.RegexCompile {
		t.Fatalf("expected RegexCompile error, got %s", got[0])
	}
}

func TestExecOp_RegexMemoization(t *testing.T) {
	op := &instr.Op{Code: instr.RegexMatch, Arity: 2}

	stack := []value.Value{value.Str("abc"), value.Str("a.c")}
	got, err := execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got[0].Bool() {
		t.Fatalf("expected match, got %s", got[0])
	}

	// second call pushes a different pattern string; the Op compiles that
	// pattern afresh instead of reusing the memoized "a.c".
	stack = []value.Value{value.Str("xyz"), value.Str("completely different")}
	got, err = execOp(op, stack)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Bool() {
		t.Fatalf("expected no match against the new pattern, got %s", got[0])
	}
}
