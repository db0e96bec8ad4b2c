// Package ast defines the Abstract Syntax Tree for the Callisto source
// language and the visitor used to traverse it.
//
// The source language is lisp-shaped: a program is a list of expressions,
// and an expression is a number literal, a string literal, or a call
// written as a parenthesized name followed by its parameters. All nodes
// preserve source positions for precise error reporting.
//
// # Node Union
//
// Node is a closed union over exactly four concrete types:
//
//	Program: root node, the top-level expressions in source order
//
//	CallExpression: named call with zero or more parameters
//
//	NumberLiteral: unsigned integer kept as its raw digit string
//
//	StringLiteral: string contents without the surrounding quotes
//
// The union is sealed by an unexported marker method, so consumers can
// switch over the concrete types exhaustively. Code that still meets an
// unknown type reports it instead of guessing (see UnknownNodeError).
//
// # Traversal
//
// Walk performs a depth-first traversal, announcing each node twice:
//
//	v := ast.VisitorFuncs{
//	    OnEnter: func(n, parent ast.Node) error {
//	        fmt.Printf("enter %T\n", n)
//	        return nil
//	    },
//	    OnExit: func(n, parent ast.Node) error {
//	        fmt.Printf("exit %T\n", n)
//	        return nil
//	    },
//	}
//	if err := ast.Walk(program, v); err != nil {
//	    log.Fatal(err)
//	}
//
// Enter runs before a node's children, Exit after; children are visited
// in source order. The parent argument is nil for the root. The first
// error returned by a visitor aborts the walk and propagates unchanged.
//
// # Immutability
//
// Trees should be treated as immutable after construction. The parser
// builds the tree once; later stages inspect it without modification.
package ast
