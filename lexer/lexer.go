// Package lexer implements Shy's pushdown tokenizer: a byte stream in, a
// restartable token sequence out. Grounded on the rune-pair lookahead and
// channel-fed token production of blizzy78/copper's lexer, generalized from
// its two-mode (literal-text / code-block) template grammar down to Shy's
// single-mode expression grammar and extended with exponential/superscript
// numbers, dotted property paths, function-name lookahead, and multi-char
// compound-assignment operators.
package lexer

import (
	"bufio"
	"strings"
	"sync"
	"unicode"

	"github.com/shy-lang/shy/shyerr"
	"github.com/shy-lang/shy/token"
)

// Lexer tokenizes Shy source text.
type Lexer struct {
	b *bufio.Reader

	bytesConsumed int // total bytes read from b so far

	pos     int // byte offset of currChar
	nextPos int // byte offset of nextChar

	currChar rune
	nextChar rune
	currEOF  bool
	nextEOF  bool

	initOnce sync.Once
	initErr  error

	// lastWasValue tracks whether the most recently emitted token can end a
	// value-producing expression, which recognizes a trailing superscript digit
	// run as a postfix power operator rather than the start of a new token.
	// "!" is emitted as a single Bang token either way; the parser decides
	// whether it is prefix logical-not or postfix factorial.
	lastWasValue bool

	// parenDepth tracks open "(" nesting. A newline only terminates a statement
	// at depth 0; inside parentheses it is plain whitespace.
	parenDepth int
}

var superscriptDigits = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9',
}

// New returns a new lexer over src.
func New(src string) *Lexer {
	return &Lexer{b: bufio.NewReader(strings.NewReader(src))}
}

// Tokens reads from the lexer's input and writes a sequence of tokens into tCh.
// If tokenization fails, the failing token carries a non-nil Err and is the
// last token sent. Production also stops when the caller closes done.
func (l *Lexer) Tokens() (tCh <-chan token.Token, done chan<- struct{}) {
	tokenCh := make(chan token.Token)
	tCh = tokenCh

	doneCh := make(chan struct{})
	done = doneCh

	go func() {
		defer close(tokenCh)

		for {
			t, err := l.next()
			if err != nil {
				t.Err = err
			}

			select {
			case <-doneCh:
				return
			case tokenCh <- t:
			}

			if t.Type == token.EOF || t.Err != nil {
				return
			}
		}
	}()

	return
}

// Tokenize runs the lexer to completion and returns the full token sequence,
// for callers that don't need streaming.
func Tokenize(src string) ([]token.Token, error) {
	l := New(src)
	tCh, done := l.Tokens()
	defer close(done)

	var out []token.Token
	for t := range tCh {
		if t.Err != nil {
			return nil, t.Err
		}
		out = append(out, t)
		if t.Type == token.EOF {
			break
		}
	}
	return out, nil
}

func (l *Lexer) next() (token.Token, error) {
	var err error
	l.initOnce.Do(func() {
		l.initErr = l.readNextChar()
		if l.initErr == nil {
			l.initErr = l.readNextChar()
		}
	})
	if l.initErr != nil {
		return token.Token{}, l.initErr
	}

	if err = l.skipWhitespace(); err != nil {
		return token.Token{}, err
	}

	if l.currEOF {
		return token.Token{Type: token.EOF, Pos: l.pos}, nil
	}

	switch {
	case !l.lastWasValue && l.isSuperscriptDigit(l.currChar):
		// a superscript digit can only be a postfix power after a value; on its
		// own it is not part of the grammar.
		return token.Token{}, shyerr.Newf(shyerr.LexError, l.pos, "unexpected superscript digit")

	case l.lastWasValue && l.isSuperscriptDigit(l.currChar):
		return l.readSuperscriptPower()

	case isDigit(l.currChar):
		return l.readNumber()

	case isIdentFirstChar(l.currChar):
		return l.readIdentOrPropertyOrFuncName()

	case l.currChar == '"':
		return l.readString()

	default:
		return l.readOperatorOrPunctuation()
	}
}

func (l *Lexer) skipWhitespace() error {
	for !l.currEOF {
		if isWhitespace(l.currChar) {
			if err := l.readNextChar(); err != nil {
				return err
			}
			continue
		}
		if l.currChar == '\n' && l.parenDepth > 0 {
			if err := l.readNextChar(); err != nil {
				return err
			}
			continue
		}
		break
	}
	return nil
}

func (l *Lexer) readNumber() (token.Token, error) {
	start := l.pos
	b := strings.Builder{}

	for !l.currEOF && isDigit(l.currChar) {
		b.WriteRune(l.currChar)
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
	}

	if !l.currEOF && l.currChar == '.' && isDigit(l.nextChar) {
		b.WriteRune('.')
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		for !l.currEOF && isDigit(l.currChar) {
			b.WriteRune(l.currChar)
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
		}
	}

	if !l.currEOF && (l.currChar == 'e' || l.currChar == 'E') {
		// Once e/E follows a digit run with no separating whitespace, the
		// only legal continuation is an exponent: commit to it and fail
		// rather than silently handing "e" back as a separate identifier.
		b.WriteRune(l.currChar)
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		if !l.currEOF && (l.currChar == '+' || l.currChar == '-') {
			b.WriteRune(l.currChar)
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
		}
		if l.currEOF || !isDigit(l.currChar) {
			return token.Token{}, shyerr.Newf(shyerr.LexError, start, "malformed exponent in number literal")
		}
		for !l.currEOF && isDigit(l.currChar) {
			b.WriteRune(l.currChar)
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
		}
	}

	l.lastWasValue = true
	return token.Token{Type: token.Number, Literal: b.String(), Pos: start}, nil
}

func (l *Lexer) readSuperscriptPower() (token.Token, error) {
	start := l.pos
	b := strings.Builder{}

	for !l.currEOF && l.isSuperscriptDigit(l.currChar) {
		b.WriteRune(superscriptDigits[l.currChar])
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
	}

	l.lastWasValue = true
	return token.Token{Type: token.SuperscriptPow, Literal: b.String(), Pos: start}, nil
}

func (l *Lexer) isSuperscriptDigit(r rune) bool {
	_, ok := superscriptDigits[r]
	return ok
}

// readIdentOrPropertyOrFuncName reads one identifier, then, so long as a "."
// is immediately (no whitespace) followed by another identifier-starting
// character, folds "ident.ident" chains into a single Property token rather
// than emitting a standalone Dot operator token, per the lexer's disambiguation
// rule for property paths.
func (l *Lexer) readIdentOrPropertyOrFuncName() (token.Token, error) {
	start := l.pos
	b := strings.Builder{}

	if err := l.readIdentSegment(&b); err != nil {
		return token.Token{}, err
	}

	hasDot := false
	for !l.currEOF && l.currChar == '.' && isIdentFirstChar(l.nextChar) {
		hasDot = true
		b.WriteRune('.')
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		if err := l.readIdentSegment(&b); err != nil {
			return token.Token{}, err
		}
	}

	lit := b.String()

	if !l.currEOF && l.currChar == '(' {
		l.lastWasValue = false
		return token.Token{Type: token.FuncName, Literal: lit, Pos: start}, nil
	}

	switch lit {
	case "true":
		l.lastWasValue = true
		return token.Token{Type: token.True, Literal: lit, Pos: start}, nil
	case "false":
		l.lastWasValue = true
		return token.Token{Type: token.False, Literal: lit, Pos: start}, nil
	case "null":
		l.lastWasValue = true
		return token.Token{Type: token.Null, Literal: lit, Pos: start}, nil
	}

	l.lastWasValue = true
	if hasDot {
		return token.Token{Type: token.Property, Literal: lit, Pos: start}, nil
	}
	return token.Token{Type: token.Ident, Literal: lit, Pos: start}, nil
}

func (l *Lexer) readIdentSegment(b *strings.Builder) error {
	for !l.currEOF && isIdentChar(l.currChar) {
		b.WriteRune(l.currChar)
		if err := l.readNextChar(); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lexer) readString() (token.Token, error) {
	start := l.pos

	if err := l.readNextChar(); err != nil {
		return token.Token{}, err
	}

	b := strings.Builder{}
	for !l.currEOF && l.currChar != '"' {
		if l.currChar == '\\' {
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			if l.currEOF {
				break
			}
			switch l.currChar {
			case '"':
				b.WriteRune('"')
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case '\\':
				b.WriteRune('\\')
			default:
				return token.Token{}, shyerr.Newf(shyerr.LexError, l.pos, "invalid escape sequence \\%c", l.currChar)
			}
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			continue
		}

		b.WriteRune(l.currChar)
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
	}

	if l.currEOF {
		return token.Token{}, shyerr.Newf(shyerr.LexError, start, "unterminated string literal")
	}

	if err := l.readNextChar(); err != nil {
		return token.Token{}, err
	}

	l.lastWasValue = true
	return token.Token{Type: token.String, Literal: b.String(), Pos: start}, nil
}

func (l *Lexer) readOperatorOrPunctuation() (token.Token, error) {
	start := l.pos
	ch := l.currChar

	two := func(second rune, t token.Type, lit string) (token.Token, bool, error) {
		if l.nextChar == second {
			if err := l.readNextChar(); err != nil {
				return token.Token{}, false, err
			}
			if err := l.readNextChar(); err != nil {
				return token.Token{}, false, err
			}
			return token.Token{Type: t, Literal: lit, Pos: start}, true, nil
		}
		return token.Token{}, false, nil
	}

	switch ch {
	case '=':
		if t, ok, err := two('=', token.Equal, "=="); err != nil {
			return token.Token{}, err
		} else if ok {
			l.lastWasValue = false
			return t, nil
		}
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Assign, Literal: "=", Pos: start}, nil

	case '!':
		if t, ok, err := two('=', token.NotEqual, "!="); err != nil {
			return token.Token{}, err
		} else if ok {
			l.lastWasValue = false
			return t, nil
		}
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		// if the previous token was value-producing, this "!" is postfix factorial
		// and the result is again a value; otherwise it is prefix logical-not and
		// an operand is still expected.
		return token.Token{Type: token.Bang, Literal: "!", Pos: start}, nil

	case '<':
		if t, ok, err := two('=', token.LessOrEqual, "<="); err != nil {
			return token.Token{}, err
		} else if ok {
			l.lastWasValue = false
			return t, nil
		}
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.LessThan, Literal: "<", Pos: start}, nil

	case '>':
		if t, ok, err := two('=', token.GreaterOrEqual, ">="); err != nil {
			return token.Token{}, err
		} else if ok {
			l.lastWasValue = false
			return t, nil
		}
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.GreaterThan, Literal: ">", Pos: start}, nil

	case '&':
		if l.nextChar == '&' {
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			if !l.currEOF && l.currChar == '=' {
				if err := l.readNextChar(); err != nil {
					return token.Token{}, err
				}
				l.lastWasValue = false
				return token.Token{Type: token.AndEq, Literal: "&&=", Pos: start}, nil
			}
			l.lastWasValue = false
			return token.Token{Type: token.And, Literal: "&&", Pos: start}, nil
		}
		return token.Token{}, shyerr.Newf(shyerr.LexError, start, "unexpected character '&'")

	case '|':
		if l.nextChar == '|' {
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			if err := l.readNextChar(); err != nil {
				return token.Token{}, err
			}
			if !l.currEOF && l.currChar == '=' {
				if err := l.readNextChar(); err != nil {
					return token.Token{}, err
				}
				l.lastWasValue = false
				return token.Token{Type: token.OrEq, Literal: "||=", Pos: start}, nil
			}
			l.lastWasValue = false
			return token.Token{Type: token.Or, Literal: "||", Pos: start}, nil
		}
		return token.Token{}, shyerr.Newf(shyerr.LexError, start, "unexpected character '|'")

	case '+':
		return l.readMaybeCompoundAssign(token.Plus, token.PlusEq, "+", "+=")
	case '-':
		return l.readMaybeCompoundAssign(token.Minus, token.MinusEq, "-", "-=")
	case '*':
		return l.readMaybeCompoundAssign(token.Asterisk, token.AsteriskEq, "*", "*=")
	case '/':
		return l.readMaybeCompoundAssign(token.Slash, token.SlashEq, "/", "/=")
	case '%':
		return l.readMaybeCompoundAssign(token.Percent, token.PercentEq, "%", "%=")

	case '√':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Sqrt, Literal: "√", Pos: start}, nil

	case '^':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Power, Literal: "^", Pos: start}, nil

	case '~':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Tilde, Literal: "~", Pos: start}, nil

	case '.':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Dot, Literal: ".", Pos: start}, nil

	case '?':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = true
		return token.Token{Type: token.QuitIfFalse, Literal: "?", Pos: start}, nil

	case ',':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Comma, Literal: ",", Pos: start}, nil

	case ';':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Semicolon, Literal: ";", Pos: start}, nil

	case '\n':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: token.Semicolon, Literal: "\n", Pos: start}, nil

	case '(':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.parenDepth++
		l.lastWasValue = false
		return token.Token{Type: token.LeftParen, Literal: "(", Pos: start}, nil

	case ')':
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		l.lastWasValue = true
		return token.Token{Type: token.RightParen, Literal: ")", Pos: start}, nil

	default:
		return token.Token{}, shyerr.Newf(shyerr.LexError, start, "unexpected character %q", ch)
	}
}

func (l *Lexer) readMaybeCompoundAssign(plain, compound token.Type, plainLit, compoundLit string) (token.Token, error) {
	start := l.pos
	if l.nextChar == '=' {
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		if err := l.readNextChar(); err != nil {
			return token.Token{}, err
		}
		l.lastWasValue = false
		return token.Token{Type: compound, Literal: compoundLit, Pos: start}, nil
	}
	if err := l.readNextChar(); err != nil {
		return token.Token{}, err
	}
	l.lastWasValue = false
	return token.Token{Type: plain, Literal: plainLit, Pos: start}, nil
}

// readNextChar shifts nextChar into currChar (updating pos to match) and reads
// one more rune from the reader into nextChar. Called twice during
// initialization to prime both currChar and nextChar before any token is read.
func (l *Lexer) readNextChar() error {
	if l.currEOF {
		return nil
	}

	if l.nextEOF {
		l.currChar = l.nextChar
		l.currEOF = true
		l.pos = l.nextPos
		return nil
	}

	l.currChar = l.nextChar
	l.pos = l.nextPos

	offset := l.bytesConsumed
	r, size, err := l.b.ReadRune()
	if err != nil {
		l.nextEOF = true
		return nil
	}

	l.nextChar = r
	l.nextPos = offset
	l.bytesConsumed = offset + size
	return nil
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\v' || r == '\f'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentFirstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentChar(r rune) bool {
	return isIdentFirstChar(r) || isDigit(r)
}
