package ast

import "mercator-hq/callisto/pkg/sexpr/token"

// Node is the interface implemented by every source AST node. The
// unexported marker method seals the union to this package.
type Node interface {
	// Pos returns the position of the node's first character.
	Pos() token.Position

	sourceNode()
}

// Program is the root of a source AST. Body holds the top-level
// expressions in source order; it is empty for empty input.
type Program struct {
	Body []Node
}

// Pos returns the position of the first expression, or an invalid
// position for an empty program.
func (p *Program) Pos() token.Position {
	if len(p.Body) == 0 {
		return token.Position{}
	}
	return p.Body[0].Pos()
}

// CallExpression is a parenthesized call: an operator name followed by
// zero or more parameter expressions.
type CallExpression struct {
	Name    string         // operator name
	NamePos token.Position // position of the name token
	Lparen  token.Position // position of "("
	Rparen  token.Position // position of ")"
	Params  []Node
}

// Pos returns the position of the opening parenthesis.
func (c *CallExpression) Pos() token.Position { return c.Lparen }

// NumberLiteral is an unsigned integer literal. Value holds the raw digit
// run; the compiler never converts it to a machine number.
type NumberLiteral struct {
	Value    string
	ValuePos token.Position
}

// Pos returns the position of the first digit.
func (n *NumberLiteral) Pos() token.Position { return n.ValuePos }

// StringLiteral is a double-quoted string literal. Value holds the
// contents without the quotes.
type StringLiteral struct {
	Value    string
	ValuePos token.Position // position of the opening quote
}

// Pos returns the position of the opening quote.
func (s *StringLiteral) Pos() token.Position { return s.ValuePos }

func (*Program) sourceNode()        {}
func (*CallExpression) sourceNode() {}
func (*NumberLiteral) sourceNode()  {}
func (*StringLiteral) sourceNode()  {}
