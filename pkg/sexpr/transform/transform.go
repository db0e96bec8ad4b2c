// Package transform converts source ASTs into target ASTs.
//
// The transformer is one concrete visitor over the generic traversal in
// package ast. It threads an explicit stack of output sinks through the
// walk instead of annotating source nodes: the source tree stays
// untouched, and the current sink is always the argument list the next
// produced node belongs in.
package transform

import (
	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/ctree"
)

// Transform builds a target AST from a source AST in a single
// depth-first pass. The source tree is not modified.
//
// Every source node maps to its target counterpart; a call whose source
// parent is not itself a call is additionally wrapped in an
// ExpressionStatement so the generator can terminate it with ";".
// Transform only fails on malformed trees (see ast.UnknownNodeError);
// any tree produced by the parser converts cleanly.
func Transform(src *ast.Program) (*ctree.Program, error) {
	target := &ctree.Program{}
	tr := &transformer{sinks: []*[]ctree.Node{&target.Body}}
	if err := ast.Walk(src, tr); err != nil {
		return nil, err
	}
	return target, nil
}

// transformer carries the sink stack for one transformation pass.
type transformer struct {
	// sinks is a stack of destination collections. The top is where the
	// next produced node is appended; the bottom is the target program
	// body and stays for the whole pass.
	sinks []*[]ctree.Node
}

func (t *transformer) Enter(n, parent ast.Node) error {
	switch node := n.(type) {
	case *ast.Program:
		// The root sink is in place before the walk starts.

	case *ast.NumberLiteral:
		t.emit(&ctree.NumberLiteral{Value: node.Value})

	case *ast.StringLiteral:
		t.emit(&ctree.StringLiteral{Value: node.Value})

	case *ast.CallExpression:
		call := &ctree.CallExpression{Callee: &ctree.Identifier{Name: node.Name}}

		// The statement decision reads the SOURCE parent: the target
		// parent is still being built while its children are visited.
		if _, nested := parent.(*ast.CallExpression); nested {
			t.emit(call)
		} else {
			t.emit(&ctree.ExpressionStatement{Expression: call})
		}

		// The call's own children land in its argument list.
		t.push(&call.Arguments)
	}
	return nil
}

func (t *transformer) Exit(n, parent ast.Node) error {
	if _, ok := n.(*ast.CallExpression); ok {
		t.pop()
	}
	return nil
}

// emit appends a finished target node to the current sink.
func (t *transformer) emit(n ctree.Node) {
	sink := t.sinks[len(t.sinks)-1]
	*sink = append(*sink, n)
}

func (t *transformer) push(sink *[]ctree.Node) {
	t.sinks = append(t.sinks, sink)
}

func (t *transformer) pop() {
	t.sinks = t.sinks[:len(t.sinks)-1]
}
