// Package ctree defines the Abstract Syntax Tree for the Callisto target
// language, a C-style expression language.
//
// The target tree is deliberately a separate type universe from the
// source tree in package ast: the two languages are isomorphic for this
// compiler, but keeping them apart means a source node can never leak
// into generated output (or vice versa) without the compiler noticing.
//
// Node is a closed union over six concrete types: Program,
// ExpressionStatement, CallExpression, Identifier, NumberLiteral and
// StringLiteral. ExpressionStatement exists so the code generator knows
// where a statement ends and a ";" belongs; only top-level expressions
// are wrapped in one.
package ctree

// Node is the interface implemented by every target AST node. The
// unexported marker method seals the union to this package.
type Node interface {
	targetNode()
}

// Program is the root of a target AST. Body holds one node per
// top-level source expression, in source order.
type Program struct {
	Body []Node
}

// ExpressionStatement wraps a top-level expression so it can be emitted
// as a statement, terminated by ";". Nested expressions are never
// wrapped.
type ExpressionStatement struct {
	Expression Node
}

// CallExpression is a C-style call: callee followed by a parenthesized,
// comma-separated argument list.
type CallExpression struct {
	Callee    *Identifier
	Arguments []Node
}

// Identifier is a bare name, used as a call's callee.
type Identifier struct {
	Name string
}

// NumberLiteral is an integer literal carried as its raw digit string.
type NumberLiteral struct {
	Value string
}

// StringLiteral is a string literal. Value holds the contents without
// quotes; the generator adds them back.
type StringLiteral struct {
	Value string
}

func (*Program) targetNode()             {}
func (*ExpressionStatement) targetNode() {}
func (*CallExpression) targetNode()      {}
func (*Identifier) targetNode()          {}
func (*NumberLiteral) targetNode()       {}
func (*StringLiteral) targetNode()       {}
