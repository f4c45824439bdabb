// Package parser implements Shy's Shunting-Yard parser: an infix token
// stream in, a flat postfix instr.Instruction sequence out. It keeps a
// channel-fed curr/next-token lookahead, but replaces Pratt-style
// prefix/infix registration-table dispatch with the explicit
// operator-stack/output-list formulation of Shunting Yard, driven by a
// precedence/associativity/collapse table per operator.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shy-lang/shy/instr"
	"github.com/shy-lang/shy/lexer"
	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/token"
	"github.com/shy-lang/shy/value"
)

// Parser consumes a token channel and runs Shunting Yard.
type Parser struct {
	tokCh <-chan token.Token

	currToken token.Token
	nextToken token.Token

	output []instr.Instruction
	stack  []stackEntry

	// expectOperand mirrors the lexer's lastWasValue: true when the next
	// token must begin a value (a literal, identifier, prefix operator, or
	// opening paren), false when it must continue one (an infix/postfix
	// operator, ")", ",", or ";"). Disambiguates the prefix/infix/postfix
	// operators the lexer itself leaves ambiguous (-, +, ! and their sibling
	// fixities), since the parser is in the better position to decide: it
	// already tracks this same state for Shunting Yard's own bookkeeping.
	expectOperand bool
}

// stackEntry is either an operator awaiting its collapse point, or a marker
// for an open "(" — a plain grouping paren or a pending function call.
type stackEntry struct {
	isMarker bool

	// marker fields, valid when isMarker is true
	isCall     bool
	callName   string
	callPos    int
	commaCount int
	emptyCall  bool
	outputMark int

	// operator fields, valid when isMarker is false
	tok     token.Token
	info    token.OpInfo
	leftIdx int // for assignment operators: index in output of the LoadVar to rewrite

	propertyPath []string // for Dot entries only
}

// Parse compiles src into a postfix Expression.
func Parse(src string) (*instr.Expression, error) {
	l := lexer.New(src)
	tCh, done := l.Tokens()
	defer close(done)

	p := &Parser{tokCh: tCh, expectOperand: true}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.currToken.Type != token.EOF {
		if err := p.parseOne(); err != nil {
			return nil, err
		}
	}

	if err := p.drainAll(p.currToken); err != nil {
		return nil, err
	}

	return &instr.Expression{Source: src, Instructions: p.output}, nil
}

func (p *Parser) advance() error {
	p.currToken = p.nextToken

	t, ok := <-p.tokCh
	if !ok {
		p.nextToken = token.Token{Type: token.EOF, Pos: p.currToken.Pos}
		return nil
	}
	if t.Err != nil {
		return t.Err
	}
	p.nextToken = t
	return nil
}

func (p *Parser) parseOne() error {
	tok := p.currToken

	switch tok.Type {
	case token.Number, token.String, token.True, token.False, token.Null,
		token.Ident, token.Property, token.FuncName, token.LeftParen:
		if !p.expectOperand {
			return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "unexpected %s", tok)
		}
	}

	switch tok.Type {
	case token.Number:
		v, err := parseNumber(tok.Literal)
		if err != nil {
			return shyerr.New(shyerr.ParseError, tok.Pos, err)
		}
		p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: v})
		p.expectOperand = false
		return p.advance()

	case token.String:
		p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: value.Str(tok.Literal)})
		p.expectOperand = false
		return p.advance()

	case token.True:
		p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: value.Bool(true)})
		p.expectOperand = false
		return p.advance()

	case token.False:
		p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: value.Bool(false)})
		p.expectOperand = false
		return p.advance()

	case token.Null:
		p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: value.Null()})
		p.expectOperand = false
		return p.advance()

	case token.Ident:
		p.output = append(p.output, &instr.LoadVar{StartPos: tok.Pos, Path: []string{tok.Literal}})
		p.expectOperand = false
		return p.advance()

	case token.Property:
		p.output = append(p.output, &instr.LoadVar{StartPos: tok.Pos, Path: strings.Split(tok.Literal, ".")})
		p.expectOperand = false
		return p.advance()

	case token.FuncName:
		return p.parseFuncCallOpen(tok)

	case token.LeftParen:
		return p.parseGroupOpen(tok)

	case token.RightParen:
		return p.parseClose(tok)

	case token.Comma:
		return p.parseComma(tok)

	case token.Semicolon:
		return p.parseStatementEnd(tok)

	case token.Dot:
		if p.expectOperand {
			return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "unexpected '.'")
		}
		return p.parseDot(tok)

	case token.QuitIfFalse:
		if p.expectOperand {
			return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "unexpected '?'")
		}
		info, _ := token.Lookup(token.QuitIfFalse, token.Postfix)
		if err := p.collapseTo(info); err != nil {
			return err
		}
		p.output = append(p.output, &instr.QuitIfFalse{StartPos: tok.Pos})
		p.expectOperand = false
		return p.advance()
	}

	if fixity, ok := p.operatorFixity(tok.Type); ok {
		return p.parseOperator(tok, fixity)
	}

	return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "unexpected token %s", tok)
}

// operatorFixity resolves which of an operator token's registered fixities
// applies here, the way the lexer resolves superscript digits: by whether a
// value is expected next.
func (p *Parser) operatorFixity(t token.Type) (token.Fixity, bool) {
	if p.expectOperand {
		if token.IsPrefixOperator(t) {
			return token.Prefix, true
		}
		return 0, false
	}
	if token.IsPostfixOperator(t) {
		return token.Postfix, true
	}
	if token.IsInfixOperator(t) {
		return token.Infix, true
	}
	return 0, false
}

func (p *Parser) parseOperator(tok token.Token, fixity token.Fixity) error {
	info, _ := token.Lookup(tok.Type, fixity)

	if fixity == token.Postfix {
		// Bang-postfix (factorial) and superscript power apply immediately to
		// the value already in output: nothing can come between a value and
		// its own postfix operator, so there is no later collapse to wait for.
		if tok.Type == token.SuperscriptPow {
			exp, err := strconv.ParseInt(tok.Literal, 10, 64)
			if err != nil {
				return shyerr.New(shyerr.ParseError, tok.Pos, err)
			}
			p.output = append(p.output, &instr.PushLiteral{StartPos: tok.Pos, Value: value.Int(exp)})
			p.output = append(p.output, &instr.Op{StartPos: tok.Pos, Code: instr.Pow, Arity: 2})
		} else {
			code, _ := opcodeForToken(tok.Type, fixity)
			p.output = append(p.output, &instr.Op{StartPos: tok.Pos, Code: code, Arity: info.Arity})
		}
		p.expectOperand = false
		return p.advance()
	}

	if err := p.collapseTo(info); err != nil {
		return err
	}

	entry := stackEntry{tok: tok, info: info}
	if fixity == token.Infix && token.IsAssignment(tok.Type) {
		if len(p.output) == 0 {
			return shyerr.New(shyerr.InvalidAssignmentTarget, tok.Pos, fmt.Errorf("nothing to assign to"))
		}
		if _, ok := p.output[len(p.output)-1].(*instr.LoadVar); !ok {
			return shyerr.New(shyerr.InvalidAssignmentTarget, tok.Pos,
				fmt.Errorf("left operand of %q is not a variable or property path", tok.Literal))
		}
		entry.leftIdx = len(p.output) - 1
	}

	p.stack = append(p.stack, entry)
	p.expectOperand = true
	return p.advance()
}

// parseDot handles an infix "." that was not folded into a Property token by
// the lexer — one that follows something other than a bare identifier, e.g.
// "foo().bar". The property name (possibly itself a dotted chain) is parsed
// right away and carried on the stack entry, since it is not a general
// expression the way a normal infix operator's right operand is.
func (p *Parser) parseDot(tok token.Token) error {
	info, _ := token.Lookup(token.Dot, token.Infix)
	if err := p.collapseTo(info); err != nil {
		return err
	}

	if err := p.advance(); err != nil { // consume '.'
		return err
	}
	if p.currToken.Type != token.Ident && p.currToken.Type != token.Property {
		return shyerr.Newf(shyerr.UnexpectedToken, p.currToken.Pos, "expected property name after '.', got %s", p.currToken)
	}

	segs := strings.Split(p.currToken.Literal, ".")
	p.stack = append(p.stack, stackEntry{tok: tok, info: info, propertyPath: segs})
	p.expectOperand = false
	return p.advance()
}

func (p *Parser) parseFuncCallOpen(tok token.Token) error {
	if err := p.advance(); err != nil { // consume FuncName
		return err
	}
	if p.currToken.Type != token.LeftParen {
		return shyerr.Newf(shyerr.UnexpectedToken, p.currToken.Pos, "expected '(' after function name %q", tok.Literal)
	}

	empty := p.nextToken.Type == token.RightParen
	p.stack = append(p.stack, stackEntry{
		isMarker:   true,
		isCall:     true,
		callName:   tok.Literal,
		callPos:    tok.Pos,
		emptyCall:  empty,
		outputMark: len(p.output),
	})

	if err := p.advance(); err != nil { // consume '('
		return err
	}
	p.expectOperand = true
	return nil
}

func (p *Parser) parseGroupOpen(tok token.Token) error {
	p.stack = append(p.stack, stackEntry{isMarker: true, outputMark: len(p.output)})
	if err := p.advance(); err != nil {
		return err
	}
	p.expectOperand = true
	return nil
}

func (p *Parser) parseClose(tok token.Token) error {
	for {
		if len(p.stack) == 0 {
			return shyerr.Newf(shyerr.MismatchedParen, tok.Pos, "unmatched ')'")
		}
		top := p.stack[len(p.stack)-1]
		if top.isMarker {
			break
		}
		if err := p.popEntryToOutput(top); err != nil {
			return err
		}
		p.stack = p.stack[:len(p.stack)-1]
	}

	marker := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	if marker.isCall {
		argc := 0
		if !marker.emptyCall {
			argc = marker.commaCount + 1
		}
		p.output = append(p.output, &instr.Call{StartPos: marker.callPos, Name: marker.callName, Argc: argc})
	} else if len(p.output) == marker.outputMark {
		return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "empty parentheses")
	}

	p.expectOperand = false
	return p.advance()
}

func (p *Parser) parseComma(tok token.Token) error {
	info, _ := token.Lookup(token.Comma, token.Infix)
	if err := p.collapseTo(info); err != nil {
		return err
	}

	if len(p.stack) == 0 || !p.stack[len(p.stack)-1].isMarker || !p.stack[len(p.stack)-1].isCall {
		return shyerr.Newf(shyerr.UnexpectedToken, tok.Pos, "',' outside a function call's argument list")
	}
	if p.nextToken.Type == token.RightParen {
		return shyerr.Newf(shyerr.TrailingComma, tok.Pos, "trailing ',' before ')'")
	}

	p.stack[len(p.stack)-1].commaCount++
	p.expectOperand = true
	return p.advance()
}

func (p *Parser) parseStatementEnd(tok token.Token) error {
	if err := p.drainAll(tok); err != nil {
		return err
	}
	p.output = append(p.output, &instr.PopStatement{StartPos: tok.Pos})
	p.expectOperand = true
	return p.advance()
}

// collapseTo pops operator entries to output while the incoming operator's
// info collapses them, per Shunting Yard's precedence/associativity rule.
// Markers (open parens) always stop the collapse.
func (p *Parser) collapseTo(info token.OpInfo) error {
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if top.isMarker {
			break
		}
		if !token.Collapses(info, top.info) {
			break
		}
		if err := p.popEntryToOutput(top); err != nil {
			return err
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
	return nil
}

// drainAll pops every remaining operator entry to output. A marker left on
// the stack when draining means an unclosed "(".
func (p *Parser) drainAll(tok token.Token) error {
	for len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if top.isMarker {
			return shyerr.Newf(shyerr.MismatchedParen, tok.Pos, "unclosed '('")
		}
		if err := p.popEntryToOutput(top); err != nil {
			return err
		}
		p.stack = p.stack[:len(p.stack)-1]
	}
	return nil
}

// popEntryToOutput emits the Instruction(s) an operator stack entry
// represents once it has collapsed off the stack.
func (p *Parser) popEntryToOutput(e stackEntry) error {
	if e.tok.Type == token.Dot {
		for _, seg := range e.propertyPath {
			p.output = append(p.output, &instr.PushLiteral{StartPos: e.tok.Pos, Value: value.Str(seg)})
			p.output = append(p.output, &instr.Op{StartPos: e.tok.Pos, Code: instr.Property, Arity: 2})
		}
		return nil
	}

	if token.IsAssignment(e.tok.Type) {
		lv, ok := p.output[e.leftIdx].(*instr.LoadVar)
		if !ok {
			return shyerr.New(shyerr.InvalidAssignmentTarget, e.tok.Pos,
				fmt.Errorf("left operand of %q is not a variable or property path", e.tok.Literal))
		}
		path := lv.Path

		if e.tok.Type == token.Assign {
			p.output = append(p.output[:e.leftIdx], p.output[e.leftIdx+1:]...)
		} else {
			underlying, _ := token.UnderlyingOp(e.tok.Type)
			code, _ := opcodeForToken(underlying, token.Infix)
			p.output = append(p.output, &instr.Op{StartPos: e.tok.Pos, Code: code, Arity: 2})
		}
		p.output = append(p.output, &instr.StoreVar{StartPos: e.tok.Pos, Path: path})
		return nil
	}

	code, ok := opcodeForToken(e.tok.Type, e.info.Fixity)
	if !ok {
		return shyerr.Newf(shyerr.UnknownOperator, e.tok.Pos, "no runtime operation for operator %s", e.tok.Type)
	}
	p.output = append(p.output, &instr.Op{StartPos: e.tok.Pos, Code: code, Arity: e.info.Arity})
	return nil
}

func opcodeForToken(t token.Type, fixity token.Fixity) (instr.Opcode, bool) {
	switch {
	case t == token.Plus && fixity == token.Prefix:
		return instr.Pos, true
	case t == token.Plus && fixity == token.Infix:
		return instr.Add, true
	case t == token.Minus && fixity == token.Prefix:
		return instr.Neg, true
	case t == token.Minus && fixity == token.Infix:
		return instr.Sub, true
	case t == token.Bang && fixity == token.Prefix:
		return instr.Not, true
	case t == token.Bang && fixity == token.Postfix:
		return instr.Factorial, true
	case t == token.Sqrt && fixity == token.Prefix:
		return instr.Sqrt, true
	case t == token.Power && fixity == token.Infix:
		return instr.Pow, true
	case t == token.Asterisk && fixity == token.Infix:
		return instr.Mul, true
	case t == token.Slash && fixity == token.Infix:
		return instr.Div, true
	case t == token.Percent && fixity == token.Infix:
		return instr.Mod, true
	case t == token.Tilde && fixity == token.Infix:
		return instr.RegexMatch, true
	case t == token.LessThan && fixity == token.Infix:
		return instr.Less, true
	case t == token.LessOrEqual && fixity == token.Infix:
		return instr.LessOrEqual, true
	case t == token.GreaterThan && fixity == token.Infix:
		return instr.Greater, true
	case t == token.GreaterOrEqual && fixity == token.Infix:
		return instr.GreaterOrEqual, true
	case t == token.Equal && fixity == token.Infix:
		return instr.Equal, true
	case t == token.NotEqual && fixity == token.Infix:
		return instr.NotEqual, true
	case t == token.And && fixity == token.Infix:
		return instr.And, true
	case t == token.Or && fixity == token.Infix:
		return instr.Or, true
	default:
		return 0, false
	}
}

func parseNumber(lit string) (value.Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		i, err := strconv.ParseInt(lit, 10, 64)
		if err == nil {
			return value.Int(i), nil
		}
		// too large for int64: fall through to float, consistent with
		// promoting overflowing integer arithmetic to Rational elsewhere.
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return value.Value{}, err
	}
	return value.Rational(f), nil
}
