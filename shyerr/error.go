// Package shyerr defines the error taxonomy shared by Shy's lexer, parser,
// and evaluator.
package shyerr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a Shy error, independent of its message.
type Kind int

const (
	// Unknown is the zero Kind, used only for errors that predate this taxonomy.
	Unknown Kind = iota

	// LexError is produced by the lexer for malformed source text.
	LexError

	// ParseError is produced by the parser for malformed token sequences not
	// covered by a more specific kind below.
	ParseError

	// MismatchedParen is produced when a "(" is never closed, or a ")" has no
	// matching "(", within one statement.
	MismatchedParen

	// UnexpectedToken is produced when a token appears in a position the
	// grammar does not allow (two operands with no operator between them, a
	// binary operator missing an operand, etc).
	UnexpectedToken

	// TrailingComma is produced by a "," immediately followed by ")" in a
	// function call's argument list.
	TrailingComma

	// UnknownOperator is produced when an operator token has no corresponding
	// runtime operation registered for its resolved fixity.
	UnknownOperator

	// UnknownVariable is produced when LoadVar cannot resolve an identifier.
	UnknownVariable

	// UnknownFunction is produced by Call when the function table has no matching name.
	UnknownFunction

	// ArityMismatch is produced by Call when argc does not match the registered arity.
	ArityMismatch

	// TypeMismatch is produced when an operator or function receives incompatible operand kinds.
	TypeMismatch

	// DivideByZero is produced by / and % when the right operand is zero.
	DivideByZero

	// Overflow is reserved for implementations that do not auto-promote Integer arithmetic.
	// This implementation promotes instead, so it never produces Overflow from arithmetic.
	Overflow

	// InvalidAssignmentTarget is produced when the left operand of = or a compound assignment
	// is not a variable or property path.
	InvalidAssignmentTarget

	// NotAnObject is produced when a property path navigates through a non-Object value.
	NotAnObject

	// RegexCompile is produced when the right-hand operand of ~ fails to compile as a pattern.
	RegexCompile

	// EmptyExpression is produced when execution ends with no value left on the stack
	// (for example, a program with no instructions).
	EmptyExpression

	// InternalInvariant marks a condition the parser should never allow the evaluator to reach.
	InternalInvariant
)

var kindNames = map[Kind]string{
	Unknown:                  "Unknown",
	LexError:                 "LexError",
	ParseError:               "ParseError",
	MismatchedParen:          "MismatchedParen",
	UnexpectedToken:          "UnexpectedToken",
	TrailingComma:            "TrailingComma",
	UnknownOperator:          "UnknownOperator",
	UnknownVariable:          "UnknownVariable",
	UnknownFunction:          "UnknownFunction",
	ArityMismatch:            "ArityMismatch",
	TypeMismatch:             "TypeMismatch",
	DivideByZero:             "DivideByZero",
	Overflow:                 "Overflow",
	InvalidAssignmentTarget:  "InvalidAssignmentTarget",
	NotAnObject:              "NotAnObject",
	RegexCompile:             "RegexCompile",
	EmptyExpression:          "EmptyExpression",
	InternalInvariant:        "InternalInvariant",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Unknown"
}

// ParseKind returns the Kind named name, or Unknown if name does not match any
// known kind. Used when decoding a Value::Error from its JSON-like tree form.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return Unknown
}

// Error is a positioned, kinded error shared by the lexer, parser, and evaluator.
type Error struct {
	kind Kind
	err  error
	pos  int
}

// New returns an Error of kind k at byte offset pos, wrapping err.
func New(k Kind, pos int, err error) *Error {
	return &Error{kind: k, err: err, pos: pos}
}

// Newf is like New but builds the wrapped error from a format string.
func Newf(k Kind, pos int, format string, args ...interface{}) *Error {
	var err error
	if len(args) > 0 {
		err = fmt.Errorf(format, args...)
	} else {
		err = errors.New(format)
	}
	return New(k, pos, err)
}

// Kind returns the error's category.
func (e *Error) Kind() Kind {
	return e.kind
}

// Pos returns the byte offset in the source text the error refers to.
func (e *Error) Pos() int {
	return e.pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.kind, e.pos, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether err is a *Error of kind k.
func Is(err error, k Kind) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.kind == k
}

// As extracts the *Error from err, if any, the way errors.As would.
func As(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}
