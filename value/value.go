// Package value defines the tagged Value variant shared by Shy's lexer
// literals, parser output, execution contexts, and evaluator stack.
package value

import (
	"fmt"

	"github.com/shy-lang/shy/shyerr"
)

// Kind tags the case a Value currently holds.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindRational
	KindString
	KindBool
	KindList
	KindObject
	KindFunctionRef
	KindError
)

var kindNames = map[Kind]string{
	KindNull:        "Null",
	KindInteger:     "Integer",
	KindRational:    "Rational",
	KindString:      "String",
	KindBool:        "Bool",
	KindList:        "List",
	KindObject:      "Object",
	KindFunctionRef: "FunctionRef",
	KindError:       "Error",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// Value is the tagged variant Shy programs operate on. The zero Value is Null.
type Value struct {
	kind Kind

	i    int64
	r    float64
	s    string
	b    bool
	list []Value
	obj  Association

	errKind shyerr.Kind
	errMsg  string
}

// Null returns the Null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Int returns an Integer value.
func Int(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Rational returns a Rational value.
func Rational(r float64) Value {
	return Value{kind: KindRational, r: r}
}

// Str returns a String value.
func Str(s string) Value {
	return Value{kind: KindString, s: s}
}

// Bool returns a Bool value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// List returns a List value wrapping items. items is not copied.
func List(items []Value) Value {
	return Value{kind: KindList, list: items}
}

// Obj returns an Object value wrapping the capability a.
func Obj(a Association) Value {
	return Value{kind: KindObject, obj: a}
}

// FunctionRef returns a FunctionRef value naming a callable in a function table.
func FunctionRef(name string) Value {
	return Value{kind: KindFunctionRef, s: name}
}

// Err returns an Error value of kind k with message msg.
func Err(k shyerr.Kind, msg string) Value {
	return Value{kind: KindError, errKind: k, errMsg: msg}
}

// Errf is like Err but formats msg.
func Errf(k shyerr.Kind, format string, args ...interface{}) Value {
	return Err(k, fmt.Sprintf(format, args...))
}

// Kind returns v's tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is Null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsError reports whether v is an Error.
func (v Value) IsError() bool {
	return v.kind == KindError
}

// Int returns v's integer payload. Only meaningful when Kind() == KindInteger.
func (v Value) Int() int64 {
	return v.i
}

// Rat returns v's rational payload. Only meaningful when Kind() == KindRational.
func (v Value) Rat() float64 {
	return v.r
}

// Str returns v's string payload. Only meaningful when Kind() == KindString or KindFunctionRef.
func (v Value) Str() string {
	return v.s
}

// Bool returns v's bool payload. Only meaningful when Kind() == KindBool.
func (v Value) Bool() bool {
	return v.b
}

// Items returns v's list payload. Only meaningful when Kind() == KindList.
func (v Value) Items() []Value {
	return v.list
}

// Object returns v's Association capability. Only meaningful when Kind() == KindObject.
func (v Value) Object() Association {
	return v.obj
}

// FuncName returns v's function name. Only meaningful when Kind() == KindFunctionRef.
func (v Value) FuncName() string {
	return v.s
}

// ErrorKind returns v's error kind. Only meaningful when Kind() == KindError.
func (v Value) ErrorKind() shyerr.Kind {
	return v.errKind
}

// ErrorMessage returns v's error message. Only meaningful when Kind() == KindError.
func (v Value) ErrorMessage() string {
	return v.errMsg
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindRational:
		return fmt.Sprintf("%v", v.r)
	case KindString:
		return v.s
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindList:
		return fmt.Sprintf("%v", v.list)
	case KindObject:
		return fmt.Sprintf("<object %v>", v.obj.Keys())
	case KindFunctionRef:
		return "<func " + v.s + ">"
	case KindError:
		return fmt.Sprintf("<error %s: %s>", v.errKind, v.errMsg)
	default:
		return "<unknown>"
	}
}

// IsNumeric reports whether v is Integer or Rational.
func (v Value) IsNumeric() bool {
	return v.kind == KindInteger || v.kind == KindRational
}

// AsRational returns v's value widened to float64. ok is false if v is not numeric.
func (v Value) AsRational() (r float64, ok bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindRational:
		return v.r, true
	default:
		return 0, false
	}
}

// CoerceBool implements the false-ish rule used by QuitIfFalse and the voting
// functions: Bool false, Integer 0, Rational 0.0, Null, Error, empty string, and
// empty list are false; everything else is true.
func CoerceBool(v Value) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInteger:
		return v.i != 0
	case KindRational:
		return v.r != 0
	case KindNull, KindError:
		return false
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) != 0
	default:
		return true
	}
}

// Equal reports whether a and b are the same value, comparing numeric kinds by
// widening to Rational.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		ar, _ := a.AsRational()
		br, _ := b.AsRational()
		return ar == br
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindString, KindFunctionRef:
		return a.s == b.s
	case KindBool:
		return a.b == b.b
	case KindError:
		return a.errKind == b.errKind && a.errMsg == b.errMsg
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
