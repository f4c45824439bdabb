// Package instr defines the flat postfix Instruction sequence the parser
// emits and the evaluator runs: one small struct per instruction kind, with
// a Pos() diagnostic accessor, laid out as a linear program rather
// than a recursive tree since the evaluator is a stack machine, not a tree
// walker.
package instr

import (
	"regexp"
	"sync/atomic"

	"github.com/shy-lang/shy/value"
)

// Instruction is one step of a compiled Expression's postfix program.
type Instruction interface {
	// Pos returns the byte offset in the source text the instruction was
	// compiled from, for error reporting.
	Pos() int

	instruction()
}

// PushLiteral pushes a constant Value.
type PushLiteral struct {
	StartPos int
	Value    value.Value
}

func (p *PushLiteral) Pos() int     { return p.StartPos }
func (p *PushLiteral) instruction() {}

// LoadVar resolves Path against the Context's variable table (Path[0]),
// navigating the Association capability for any remaining segments, and
// pushes the result.
type LoadVar struct {
	StartPos int
	Path     []string
}

func (l *LoadVar) Pos() int     { return l.StartPos }
func (l *LoadVar) instruction() {}

// StoreVar pops a value and stores it at Path, auto-creating intermediate
// Object entries, then pushes the stored value back.
type StoreVar struct {
	StartPos int
	Path     []string
}

func (s *StoreVar) Pos() int     { return s.StartPos }
func (s *StoreVar) instruction() {}

// Call pops Argc values (in reverse push order), looks up Name in the
// Context's function table (falling back to standard functions), and
// pushes the result.
type Call struct {
	StartPos int
	Name     string
	Argc     int
}

func (c *Call) Pos() int     { return c.StartPos }
func (c *Call) instruction() {}

// Op pops Arity operands and applies Code, pushing the result.
//
// Op is also the only Instruction with internal mutable state: a RegexMatch
// Op lazily compiles and memoizes its pattern on first use via an
// atomic.Pointer compare-and-swap cell, so a compiled Expression stays safe
// to share and execute concurrently across threads even though this one
// cell mutates after compilation. Grounded on stdlib regexp/sync/atomic; no
// third-party regex engine appears anywhere in the retrieval pack.
type Op struct {
	StartPos int
	Code     Opcode
	Arity    int

	compiledRegex atomic.Pointer[regexp.Regexp]
}

func (o *Op) Pos() int     { return o.StartPos }
func (o *Op) instruction() {}

// CompiledRegex returns the compiled form of pattern. The cached value is
// returned while pattern matches the source it was compiled from; a
// different pattern (the right-hand operand of ~ can be any expression, not
// only a literal) is compiled afresh and replaces the cached one.
func (o *Op) CompiledRegex(pattern string) (*regexp.Regexp, error) {
	cached := o.compiledRegex.Load()
	if cached != nil && cached.String() == pattern {
		return cached, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	o.compiledRegex.CompareAndSwap(cached, re)
	return re, nil
}

// QuitIfFalse examines the stack top; if false-ish, execution halts without
// popping it and that value becomes the expression result.
type QuitIfFalse struct {
	StartPos int
}

func (q *QuitIfFalse) Pos() int     { return q.StartPos }
func (q *QuitIfFalse) instruction() {}

// PopStatement discards the stack top, so only the final statement's value
// survives as the expression result.
type PopStatement struct {
	StartPos int
}

func (p *PopStatement) Pos() int     { return p.StartPos }
func (p *PopStatement) instruction() {}

// Expression is a compiled postfix program plus the source text it was
// compiled from (kept for diagnostics and cache-key identity).
type Expression struct {
	Source       string
	Instructions []Instruction
}

var (
	_ Instruction = (*PushLiteral)(nil)
	_ Instruction = (*LoadVar)(nil)
	_ Instruction = (*StoreVar)(nil)
	_ Instruction = (*Call)(nil)
	_ Instruction = (*Op)(nil)
	_ Instruction = (*QuitIfFalse)(nil)
	_ Instruction = (*PopStatement)(nil)
)
