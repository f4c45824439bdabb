package context

import (
	"math"

	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/value"
)

// loadStandardFunctions registers the trig/exp/log family, the aggregate
// functions (min, max, abs, floor, ceil), if, and the voting functions every
// default Context carries.
func (c *ExecutionContext) loadStandardFunctions() {
	for name, fn := range unaryMathFuncs {
		fn := fn
		c.RegisterFunction(name, 1, func(args []value.Value) value.Value {
			r, ok := args[0].AsRational()
			if !ok {
				return value.Errf(shyerr.TypeMismatch, "%s: non-numeric argument", name)
			}
			return value.Rational(fn(r))
		})
	}

	c.RegisterFunction("abs", 1, absFunc)
	c.RegisterFunction("min", -1, minFunc)
	c.RegisterFunction("max", -1, maxFunc)
	c.RegisterFunction("if", 3, ifFunc)

	for name, pred := range votingFuncs {
		pred := pred
		c.RegisterFunction(name, -1, func(args []value.Value) value.Value {
			return value.Bool(pred(countTrue(args), len(args)))
		})
	}
}

var unaryMathFuncs = map[string]func(float64) float64{
	"sin":    math.Sin,
	"cos":    math.Cos,
	"tan":    math.Tan,
	"asin":   math.Asin,
	"acos":   math.Acos,
	"atan":   math.Atan,
	"exp":    math.Exp,
	"ln":     math.Log,
	"log10":  math.Log10,
	"sqrt":   math.Sqrt,
	"floor":  math.Floor,
	"ceil":   math.Ceil,
}

func absFunc(args []value.Value) value.Value {
	switch args[0].Kind() {
	case value.KindInteger:
		n := args[0].Int()
		if n < 0 {
			n = -n
		}
		return value.Int(n)
	case value.KindRational:
		return value.Rational(math.Abs(args[0].Rat()))
	default:
		return value.Errf(shyerr.TypeMismatch, "abs: non-numeric argument")
	}
}

func minFunc(args []value.Value) value.Value {
	return extremum(args, "min", func(r, best float64) bool { return r < best })
}

func maxFunc(args []value.Value) value.Value {
	return extremum(args, "max", func(r, best float64) bool { return r > best })
}

func extremum(args []value.Value, name string, better func(r, best float64) bool) value.Value {
	if len(args) == 0 {
		return value.Errf(shyerr.ArityMismatch, "%s requires at least 1 argument", name)
	}
	best := args[0]
	bestR, ok := best.AsRational()
	if !ok {
		return value.Errf(shyerr.TypeMismatch, "%s: non-numeric argument", name)
	}
	for _, a := range args[1:] {
		r, ok := a.AsRational()
		if !ok {
			return value.Errf(shyerr.TypeMismatch, "%s: non-numeric argument", name)
		}
		if better(r, bestR) {
			best, bestR = a, r
		}
	}
	return best
}

func ifFunc(args []value.Value) value.Value {
	if value.CoerceBool(args[0]) {
		return args[1]
	}
	return args[2]
}

// countTrue returns how many of args are true-ish per CoerceBool.
func countTrue(args []value.Value) int {
	t := 0
	for _, a := range args {
		if value.CoerceBool(a) {
			t++
		}
	}
	return t
}

// votingFuncs enumerates the named t-out-of-n predicates.
// t is the number of true-ish arguments, n the total argument count.
var votingFuncs = map[string]func(t, n int) bool{
	"none": func(t, n int) bool { return t == 0 },
	"one":  func(t, n int) bool { return t == 1 },
	"any":  func(t, n int) bool { return t >= 1 },
	"minority": func(t, n int) bool {
		return t > 0 && 2*t < n
	},
	"half": func(t, n int) bool {
		return 2*t >= n
	},
	"majority": func(t, n int) bool {
		return 2*t > n
	},
	"twothirds": func(t, n int) bool {
		return 3*t >= 2*n
	},
	"allbutone": func(t, n int) bool { return n > 0 && t == n-1 },
	"all":       func(t, n int) bool { return t == n },
	"unanimous": func(t, n int) bool { return t == 0 || t == n },
}
