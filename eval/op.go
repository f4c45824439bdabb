package eval

import (
	"math"

	"github.com/shy-lang/shy/instr"
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

// execOp pops op.Arity operands off stack, applies op, and pushes the
// result. Operator handling is split by kind (bool/string/numeric) rather
// than one large switch, with the numeric path implementing the full
// Integer/Rational promotion lattice rather than plain int64-only math.
func execOp(op *instr.Op, stack []value.Value) ([]value.Value, error) {
	args, rest, err := popN(stack, op.Arity)
	if err != nil {
		return nil, err
	}

	var result value.Value
	if op.Code.IsUnary() {
		result = evalUnary(op, args[0])
	} else {
		result = evalBinary(op, args[0], args[1])
	}

	return append(rest, result), nil
}

func evalUnary(op *instr.Op, v value.Value) value.Value {
	if v.IsError() {
		return v
	}

	switch op.Code {
	case instr.Neg:
		switch v.Kind() {
		case value.KindInteger:
			return value.Int(-v.Int())
		case value.KindRational:
			return value.Rational(-v.Rat())
		default:
			return value.Errf(shyerr.TypeMismatch, "cannot negate %s", v.Kind())
		}

	case instr.Pos:
		if !v.IsNumeric() {
			return value.Errf(shyerr.TypeMismatch, "unary + requires a numeric operand, got %s", v.Kind())
		}
		return v

	case instr.Not:
		return value.Bool(!value.CoerceBool(v))

	case instr.Sqrt:
		r, ok := v.AsRational()
		if !ok {
			return value.Errf(shyerr.TypeMismatch, "√ requires a numeric operand, got %s", v.Kind())
		}
		return value.Rational(math.Sqrt(r))

	case instr.Factorial:
		return factorial(v)

	default:
		return value.Errf(shyerr.UnknownOperator, "opcode %s is not unary", op.Code)
	}
}

func factorial(v value.Value) value.Value {
	if v.Kind() != value.KindInteger {
		return value.Errf(shyerr.TypeMismatch, "! requires an Integer operand, got %s", v.Kind())
	}
	n := v.Int()
	if n < 0 {
		return value.Errf(shyerr.TypeMismatch, "! requires a non-negative operand, got %d", n)
	}

	result := int64(1)
	for i := int64(2); i <= n; i++ {
		next := result * i
		if result != 0 && next/i != result {
			// overflowed int64: promote to Rational rather than wrapping.
			return value.Rational(math.Gamma(float64(n) + 1))
		}
		result = next
	}
	return value.Int(result)
}

func evalBinary(op *instr.Op, l, r value.Value) value.Value {
	switch op.Code {
	case instr.And:
		if l.IsError() {
			return l
		}
		if !value.CoerceBool(l) {
			return value.Bool(false)
		}
		return value.Bool(value.CoerceBool(r))

	case instr.Or:
		if l.IsError() {
			return l
		}
		if value.CoerceBool(l) {
			return value.Bool(true)
		}
		return value.Bool(value.CoerceBool(r))
	}

	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}

	switch op.Code {
	case instr.Property:
		return evalProperty(l, r)

	case instr.Equal:
		return value.Bool(value.Equal(l, r))

	case instr.NotEqual:
		return value.Bool(!value.Equal(l, r))

	case instr.RegexMatch:
		return evalRegexMatch(op, l, r)
	}

	if l.Kind() == value.KindString && r.Kind() == value.KindString {
		if s, ok := evalStringOp(op.Code, l.Str(), r.Str()); ok {
			return s
		}
	}

	if l.IsNumeric() && r.IsNumeric() {
		return evalNumericOp(op.Code, l, r)
	}

	return value.Errf(shyerr.TypeMismatch, "cannot apply %s to %s and %s", op.Code, l.Kind(), r.Kind())
}

// evalStringOp handles the operators meaningful on two Strings: comparisons,
// and + as concatenation (the empty-operand checks avoid an allocation when
// one side is "").
func evalStringOp(code instr.Opcode, l, r string) (value.Value, bool) {
	switch code {
	case instr.Add:
		if l == "" {
			return value.Str(r), true
		}
		if r == "" {
			return value.Str(l), true
		}
		return value.Str(l + r), true
	case instr.Less:
		return value.Bool(l < r), true
	case instr.LessOrEqual:
		return value.Bool(l <= r), true
	case instr.Greater:
		return value.Bool(l > r), true
	case instr.GreaterOrEqual:
		return value.Bool(l >= r), true
	default:
		return value.Value{}, false
	}
}

// evalNumericOp implements the numeric promotion rule: any binary numeric op
// with at least one Rational yields Rational; two Integers stay Integer
// unless division produces a non-integer result, in which case the result
// promotes to Rational. Integer +, -, * and ^ that would overflow int64 also
// promote to Rational. Comparisons always widen to Rational.
func evalNumericOp(code instr.Opcode, l, r value.Value) value.Value {
	switch code {
	case instr.Less, instr.LessOrEqual, instr.Greater, instr.GreaterOrEqual:
		lr, _ := l.AsRational()
		rr, _ := r.AsRational()
		switch code {
		case instr.Less:
			return value.Bool(lr < rr)
		case instr.LessOrEqual:
			return value.Bool(lr <= rr)
		case instr.Greater:
			return value.Bool(lr > rr)
		default:
			return value.Bool(lr >= rr)
		}
	}

	bothInt := l.Kind() == value.KindInteger && r.Kind() == value.KindInteger
	if bothInt {
		li, ri := l.Int(), r.Int()
		switch code {
		case instr.Add:
			if s := li + ri; (s > li) == (ri > 0) {
				return value.Int(s)
			}
			return value.Rational(float64(li) + float64(ri))
		case instr.Sub:
			if d := li - ri; (d < li) == (ri > 0) {
				return value.Int(d)
			}
			return value.Rational(float64(li) - float64(ri))
		case instr.Mul:
			p := li * ri
			if li != 0 && (p/li != ri || (li == -1 && ri == math.MinInt64)) {
				return value.Rational(float64(li) * float64(ri))
			}
			return value.Int(p)
		case instr.Pow:
			return intPow(li, ri)
		case instr.Div:
			if ri == 0 {
				return value.Errf(shyerr.DivideByZero, "division by zero")
			}
			if li%ri == 0 {
				return value.Int(li / ri)
			}
			return value.Rational(float64(li) / float64(ri))
		case instr.Mod:
			if ri == 0 {
				return value.Errf(shyerr.DivideByZero, "division by zero")
			}
			return value.Int(li % ri)
		}
	}

	lr, _ := l.AsRational()
	rr, _ := r.AsRational()
	switch code {
	case instr.Add:
		return value.Rational(lr + rr)
	case instr.Sub:
		return value.Rational(lr - rr)
	case instr.Mul:
		return value.Rational(lr * rr)
	case instr.Pow:
		return value.Rational(math.Pow(lr, rr))
	case instr.Div:
		if rr == 0 {
			return value.Errf(shyerr.DivideByZero, "division by zero")
		}
		return value.Rational(lr / rr)
	case instr.Mod:
		if rr == 0 {
			return value.Errf(shyerr.DivideByZero, "division by zero")
		}
		return value.Rational(math.Mod(lr, rr))
	default:
		return value.Errf(shyerr.UnknownOperator, "opcode %s has no numeric implementation", code)
	}
}

// intPow computes base^exp for non-negative exponents, promoting to
// Rational on overflow or on a negative exponent (which has no Integer
// result).
func intPow(base, exp int64) value.Value {
	if exp < 0 {
		return value.Rational(math.Pow(float64(base), float64(exp)))
	}

	result := int64(1)
	for i := int64(0); i < exp; i++ {
		next := result * base
		if base != 0 && next/base != result {
			return value.Rational(math.Pow(float64(base), float64(exp)))
		}
		result = next
	}
	return value.Int(result)
}

func evalRegexMatch(op *instr.Op, l, r value.Value) value.Value {
	if l.Kind() != value.KindString || r.Kind() != value.KindString {
		return value.Errf(shyerr.TypeMismatch, "~ requires two Strings, got %s and %s", l.Kind(), r.Kind())
	}
	re, err := op.CompiledRegex(r.Str())
	if err != nil {
		return value.Errf(shyerr.RegexCompile, "invalid regex %q: %v", r.Str(), err)
	}
	return value.Bool(re.MatchString(l.Str()))
}

// evalProperty realizes a "." that the lexer did not fold into a Property
// token (e.g. foo().bar): pop the object and the property-name string the
// parser pushed ahead of it, and get the named property.
func evalProperty(obj, name value.Value) value.Value {
	if obj.Kind() != value.KindObject {
		return value.Errf(shyerr.NotAnObject, "%s has no properties", obj.Kind())
	}
	v, ok := obj.Object().Get(name.Str())
	if !ok {
		return value.Errf(shyerr.UnknownVariable, "unknown property %q", name.Str())
	}
	return v
}
