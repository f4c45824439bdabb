package eval

import (
	"strconv"
	"testing"

	"github.com/shy-lang/shy/context"
	"github.com/shy-lang/shy/instr"
	"github.com/shy-lang/shy/parser"
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

func TestExec_Integer(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"0", 0},
		{"5", 5},
		{"-5", -5},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"29 % 5", 4},
		{"29 - 5", 24},
		{"10 / 5", 2},
		{"2 ^ 10", 1024},
		{"5!", 120},
		{"0!", 1},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := evalExpr(t, test.input)
			if got.Kind() != value.KindInteger {
				t.Fatalf("%q: wrong kind %s, value=%s", test.input, got.Kind(), got)
			}
			if got.Int() != test.expected {
				t.Fatalf("%q: got %d, want %d", test.input, got.Int(), test.expected)
			}
		})
	}
}

func TestExec_Rational(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1 / 4", 0.25},
		{"1.5 + 2.5", 4},
		{"2.0 * 3", 6},
		{"9 ^ 0.5", 3},
		{"r = 5; π * r ^ 2", 78.53981633974483},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := evalExpr(t, test.input)
			if got.Kind() != value.KindRational {
				t.Fatalf("%q: wrong kind %s, value=%s", test.input, got.Kind(), got)
			}
			if got.Rat() != test.expected {
				t.Fatalf("%q: got %v, want %v", test.input, got.Rat(), test.expected)
			}
		})
	}
}

func TestExec_Bool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"!true", false},
		{"5 == 5", true},
		{"5 != 5", false},
		{"5 < 6", true},
		{"5 < 6 && 6 < 7", true},
		{"false && (1 / 0 == 0)", false},
		{"true || (1 / 0 == 0)", true},
		{`"abc" ~ "a.c"`, true},
		{`"abc" ~ "^z"`, false},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := evalExpr(t, test.input)
			if got.Kind() != value.KindBool {
				t.Fatalf("%q: wrong kind %s, value=%s", test.input, got.Kind(), got)
			}
			if got.Bool() != test.expected {
				t.Fatalf("%q: got %v, want %v", test.input, got.Bool(), test.expected)
			}
		})
	}
}

func TestExec_Assignment(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"x = 5; x", 5},
		{"x = 5; x += 3; x", 8},
		{"x = 5; x *= 2; x", 10},
		{"well.depth = 42; well.depth", 42},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := evalExpr(t, test.input)
			if got.Int() != test.expected {
				t.Fatalf("%q: got %d, want %d", test.input, got.Int(), test.expected)
			}
		})
	}
}

func TestExec_QuitIfFalse(t *testing.T) {
	expr := mustParse(t, "applicable = false?; side = 1")
	ctx := context.New()

	got, err := Exec(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind() != value.KindBool || got.Bool() {
		t.Fatalf("expected false result, got %s", got)
	}

	side := ctx.Load([]string{"side"})
	if !side.IsError() || side.ErrorKind() != shyerr.UnknownVariable {
		t.Fatalf("side should never have been assigned, got %s", side)
	}
}

func TestExec_QuitIfFalse_ContinuesWhenTrue(t *testing.T) {
	got := evalExpr(t, "applicable = true?; side = 1")
	if got.Int() != 1 {
		t.Fatalf("got %s, want 1", got)
	}
}

func TestExec_Voting(t *testing.T) {
	got := evalExpr(t, "majority(true, true, false)")
	if !got.Bool() {
		t.Fatalf("expected majority(true,true,false) to be true, got %s", got)
	}
}

func TestExec_ErrorsArePropagatedAsValues(t *testing.T) {
	tests := []struct {
		input string
		kind  shyerr.Kind
	}{
		{"1 / 0", shyerr.DivideByZero},
		{"unknown_var", shyerr.UnknownVariable},
		{"nosuchfunction(1)", shyerr.UnknownFunction},
		{"sqrt(1, 2)", shyerr.ArityMismatch},
		{`1 + "a"`, shyerr.TypeMismatch},
		{"1 / 0 + 5", shyerr.DivideByZero},
		{"-(1 / 0)", shyerr.DivideByZero},
		{"sqrt(1 / 0)", shyerr.DivideByZero},
		{"abs(1 / 0)", shyerr.DivideByZero},
		{"min(1 / 0, 1)", shyerr.DivideByZero},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := evalExpr(t, test.input)
			if !got.IsError() {
				t.Fatalf("%q: expected an Error value, got %s", test.input, got)
			}
			if got.ErrorKind() != test.kind {
				t.Fatalf("%q: got error kind %s, want %s", test.input, got.ErrorKind(), test.kind)
			}
		})
	}
}

func TestExec_FuncCallAndProperty(t *testing.T) {
	ctx := context.New()
	ctx.RegisterFunction("wellAt", 0, func(args []value.Value) value.Value {
		assoc := value.NewMapAssociation()
		assoc.Set("depth", value.Int(99))
		return value.Obj(assoc)
	})

	expr := mustParse(t, "wellAt().depth")
	got, err := Exec(expr, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Int() != 99 {
		t.Fatalf("got %s, want 99", got)
	}
}

func evalExpr(t *testing.T, input string) value.Value {
	t.Helper()
	expr := mustParse(t, input)
	got, err := Exec(expr, context.New())
	if err != nil {
		t.Fatalf("%q: unexpected error: %v", input, err)
	}
	return got
}

func mustParse(t *testing.T, input string) *instr.Expression {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("%q: unexpected parse error: %v", input, err)
	}
	return expr
}

