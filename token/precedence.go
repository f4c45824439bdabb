package token

// Assoc is an operator's associativity.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// Fixity is the position an operator occupies relative to its operand(s).
type Fixity int

const (
	Prefix Fixity = iota
	Infix
	Postfix
)

// OpInfo is the Shunting-Yard metadata for one operator token in one fixity.
// Grounded on the opdata{precedence, children, leftAssociative, symbol} table
// technique used to drive shunting-yard collapse decisions in
// beevik-go6502's expr.go, generalized to carry fixity as well since Shy's
// grammar reuses the same token (-, +, !) across more than one role.
type OpInfo struct {
	Precedence int
	Assoc      Assoc
	Arity      int
	Fixity     Fixity
}

type opKey struct {
	typ    Type
	fixity Fixity
}

// Precedence levels, highest first.
const (
	PrecField       = 10
	PrecUnary       = 9
	PrecPower       = 8
	PrecMultiplic   = 7
	PrecAdditive    = 6
	PrecRegex       = 5
	PrecRelational  = 4
	PrecEquality    = 3
	PrecAnd         = 2
	PrecOr          = 1
	PrecAssign      = 0
	PrecQuitIfFalse = -1
	PrecComma       = -2
	PrecStatement   = -3
)

// Function calls occupy the same precedence level as Dot but are not driven
// by an OpInfo entry: a call always starts at a FuncName token (an
// identifier the lexer has already determined is immediately followed by
// "(" with no space), so the parser recognizes and closes a call using its
// own marker bookkeeping rather than generic operator-stack collapsing.
var opTable = map[opKey]OpInfo{
	{Dot, Infix}: {PrecField, Left, 2, Infix},

	{Minus, Prefix}: {PrecUnary, Right, 1, Prefix},
	{Plus, Prefix}:  {PrecUnary, Right, 1, Prefix},
	{Bang, Prefix}:  {PrecUnary, Right, 1, Prefix},
	{Sqrt, Prefix}:  {PrecUnary, Right, 1, Prefix},
	{Bang, Postfix}: {PrecUnary, Right, 1, Postfix},
	{SuperscriptPow, Postfix}: {PrecUnary, Right, 1, Postfix},

	{Power, Infix}: {PrecPower, Right, 2, Infix},

	{Asterisk, Infix}: {PrecMultiplic, Left, 2, Infix},
	{Slash, Infix}:    {PrecMultiplic, Left, 2, Infix},
	{Percent, Infix}:  {PrecMultiplic, Left, 2, Infix},

	{Plus, Infix}:  {PrecAdditive, Left, 2, Infix},
	{Minus, Infix}: {PrecAdditive, Left, 2, Infix},

	{Tilde, Infix}: {PrecRegex, Left, 2, Infix},

	{LessThan, Infix}:       {PrecRelational, Left, 2, Infix},
	{LessOrEqual, Infix}:    {PrecRelational, Left, 2, Infix},
	{GreaterThan, Infix}:    {PrecRelational, Left, 2, Infix},
	{GreaterOrEqual, Infix}: {PrecRelational, Left, 2, Infix},

	{Equal, Infix}:    {PrecEquality, Left, 2, Infix},
	{NotEqual, Infix}: {PrecEquality, Left, 2, Infix},

	{And, Infix}: {PrecAnd, Left, 2, Infix},
	{Or, Infix}:  {PrecOr, Left, 2, Infix},

	{Assign, Infix}:     {PrecAssign, Right, 2, Infix},
	{PlusEq, Infix}:     {PrecAssign, Right, 2, Infix},
	{MinusEq, Infix}:    {PrecAssign, Right, 2, Infix},
	{AsteriskEq, Infix}: {PrecAssign, Right, 2, Infix},
	{SlashEq, Infix}:    {PrecAssign, Right, 2, Infix},
	{PercentEq, Infix}:  {PrecAssign, Right, 2, Infix},
	{AndEq, Infix}:      {PrecAssign, Right, 2, Infix},
	{OrEq, Infix}:       {PrecAssign, Right, 2, Infix},

	{QuitIfFalse, Postfix}: {PrecQuitIfFalse, Left, 1, Postfix},

	{Comma, Infix}:     {PrecComma, Left, 2, Infix},
	{Semicolon, Infix}: {PrecStatement, Left, 2, Infix},
}

// Lookup returns the OpInfo for t in fixity, and whether one is registered.
func Lookup(t Type, fixity Fixity) (OpInfo, bool) {
	info, ok := opTable[opKey{t, fixity}]
	return info, ok
}

// IsPrefixOperator reports whether t can start a prefix expression.
func IsPrefixOperator(t Type) bool {
	_, ok := opTable[opKey{t, Prefix}]
	return ok
}

// IsInfixOperator reports whether t can continue an expression as an infix operator.
func IsInfixOperator(t Type) bool {
	_, ok := opTable[opKey{t, Infix}]
	return ok
}

// IsPostfixOperator reports whether t can follow an expression as a postfix operator.
func IsPostfixOperator(t Type) bool {
	_, ok := opTable[opKey{t, Postfix}]
	return ok
}

// collapses reports whether, per Shunting-Yard, an operator stack top with info
// other should be popped to the output before pushing an operator with info op.
func (op OpInfo) collapses(other OpInfo) bool {
	if op.Assoc == Left {
		return other.Precedence >= op.Precedence
	}
	return other.Precedence > op.Precedence
}

// Collapses is the exported form of collapses, used by the parser's main loop.
func Collapses(incoming, stackTop OpInfo) bool {
	return incoming.collapses(stackTop)
}
