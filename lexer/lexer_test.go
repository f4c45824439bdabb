package lexer

import (
	"strconv"
	"testing"

	"github.com/shy-lang/shy/token"
)

type expectedToken struct {
	typ     token.Type
	literal string
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []expectedToken
	}{
		{
			``,
			[]expectedToken{
				{token.EOF, ""},
			},
		},
		{
			`42`,
			[]expectedToken{
				{token.Number, "42"},
				{token.EOF, ""},
			},
		},
		{
			`3.14`,
			[]expectedToken{
				{token.Number, "3.14"},
				{token.EOF, ""},
			},
		},
		{
			`1e10`,
			[]expectedToken{
				{token.Number, "1e10"},
				{token.EOF, ""},
			},
		},
		{
			`1.5e-3`,
			[]expectedToken{
				{token.Number, "1.5e-3"},
				{token.EOF, ""},
			},
		},
		{
			`""`,
			[]expectedToken{
				{token.String, ""},
				{token.EOF, ""},
			},
		},
		{
			`"x\ny"`,
			[]expectedToken{
				{token.String, "x\ny"},
				{token.EOF, ""},
			},
		},
		{
			`"x\"y"`,
			[]expectedToken{
				{token.String, `x"y`},
				{token.EOF, ""},
			},
		},
		{
			`true`,
			[]expectedToken{
				{token.True, "true"},
				{token.EOF, ""},
			},
		},
		{
			`false`,
			[]expectedToken{
				{token.False, "false"},
				{token.EOF, ""},
			},
		},
		{
			`null`,
			[]expectedToken{
				{token.Null, "null"},
				{token.EOF, ""},
			},
		},
		{
			`well.depth`,
			[]expectedToken{
				{token.Property, "well.depth"},
				{token.EOF, ""},
			},
		},
		{
			`foo()`,
			[]expectedToken{
				{token.FuncName, "foo"},
				{token.LeftParen, "("},
				{token.RightParen, ")"},
				{token.EOF, ""},
			},
		},
		{
			`foo().bar`,
			[]expectedToken{
				{token.FuncName, "foo"},
				{token.LeftParen, "("},
				{token.RightParen, ")"},
				{token.Dot, "."},
				{token.Ident, "bar"},
				{token.EOF, ""},
			},
		},
		{
			`r = 5; area = π * r²`,
			[]expectedToken{
				{token.Ident, "r"},
				{token.Assign, "="},
				{token.Number, "5"},
				{token.Semicolon, ";"},
				{token.Ident, "area"},
				{token.Assign, "="},
				{token.Ident, "π"},
				{token.Asterisk, "*"},
				{token.Ident, "r"},
				{token.SuperscriptPow, "2"},
				{token.EOF, ""},
			},
		},
		{
			"a = 1\nb = 2",
			[]expectedToken{
				{token.Ident, "a"},
				{token.Assign, "="},
				{token.Number, "1"},
				{token.Semicolon, "\n"},
				{token.Ident, "b"},
				{token.Assign, "="},
				{token.Number, "2"},
				{token.EOF, ""},
			},
		},
		{
			"f(1,\n2)",
			[]expectedToken{
				{token.FuncName, "f"},
				{token.LeftParen, "("},
				{token.Number, "1"},
				{token.Comma, ","},
				{token.Number, "2"},
				{token.RightParen, ")"},
				{token.EOF, ""},
			},
		},
		{
			`!x`,
			[]expectedToken{
				{token.Bang, "!"},
				{token.Ident, "x"},
				{token.EOF, ""},
			},
		},
		{
			`x!`,
			[]expectedToken{
				{token.Ident, "x"},
				{token.Bang, "!"},
				{token.EOF, ""},
			},
		},
		{
			`x != y`,
			[]expectedToken{
				{token.Ident, "x"},
				{token.NotEqual, "!="},
				{token.Ident, "y"},
				{token.EOF, ""},
			},
		},
		{
			`x += 1`,
			[]expectedToken{
				{token.Ident, "x"},
				{token.PlusEq, "+="},
				{token.Number, "1"},
				{token.EOF, ""},
			},
		},
		{
			`x &&= y`,
			[]expectedToken{
				{token.Ident, "x"},
				{token.AndEq, "&&="},
				{token.Ident, "y"},
				{token.EOF, ""},
			},
		},
		{
			`a ~ "b.*"`,
			[]expectedToken{
				{token.Ident, "a"},
				{token.Tilde, "~"},
				{token.String, "b.*"},
				{token.EOF, ""},
			},
		},
		{
			`applicable = false?; side = 1`,
			[]expectedToken{
				{token.Ident, "applicable"},
				{token.Assign, "="},
				{token.False, "false"},
				{token.QuitIfFalse, "?"},
				{token.Semicolon, ";"},
				{token.Ident, "side"},
				{token.Assign, "="},
				{token.Number, "1"},
				{token.EOF, ""},
			},
		},
	}

	for i, test := range tests {
		test := test
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			testTokenString(test.input, test.expected, t)
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []string{
		`"unterminated`,
		`@`,
		`"bad \z escape"`,
		`1e`,
		`1e+`,
		`1.5e`,
	}

	for i, input := range tests {
		input := input
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			l := New(input)
			tCh, doneCh := l.Tokens()
			defer close(doneCh)

			sawErr := false
			for tok := range tCh {
				if tok.Err != nil {
					sawErr = true
					break
				}
			}
			if !sawErr {
				t.Fatalf("expected a lex error for %q, got none", input)
			}
		})
	}
}

func testTokenString(input string, expectedTokens []expectedToken, t *testing.T) {
	t.Helper()

	l := New(input)
	tCh, doneCh := l.Tokens()
	defer close(doneCh)

	expectedIdx := 0
	numTokens := 0

loop:
	for tok := range tCh {
		numTokens++

		if tok.Err != nil {
			t.Fatalf("error reading next token: %v", tok.Err)
		}

		if expectedIdx >= len(expectedTokens) {
			t.Fatalf("unexpected extra token: %s", tok)
		}

		expected := expectedTokens[expectedIdx]
		expectedIdx++

		if tok.Type != expected.typ || tok.Literal != expected.literal {
			t.Fatalf("wrong token, expected={%s %q}, got=%s", expected.typ, expected.literal, tok)
		}

		if tok.Type == token.EOF {
			break loop
		}
	}

	if numTokens != len(expectedTokens) {
		t.Fatalf("wrong number of tokens, expected=%d, got=%d", len(expectedTokens), numTokens)
	}
}
