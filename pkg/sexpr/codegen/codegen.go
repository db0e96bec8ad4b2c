// Package codegen renders target ASTs as C-style source text.
//
// Generation is a pure recursive walk over the target tree: no state, no
// formatting options, no I/O. Given the grammar the transformer emits,
// generation cannot fail; the error return guards against malformed
// trees reaching the generator from elsewhere.
package codegen

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/sexpr/ctree"
)

// Generate renders a target node and everything beneath it.
//
// A Program renders one line per body node, joined by "\n". An
// ExpressionStatement renders its expression followed by ";". A call
// renders as "callee(arg, arg)". String literals get their quotes back
// verbatim; there is no escaping, mirroring the lexer's no-escape
// policy.
func Generate(node ctree.Node) (string, error) {
	switch n := node.(type) {
	case *ctree.Program:
		lines := make([]string, len(n.Body))
		for i, child := range n.Body {
			line, err := Generate(child)
			if err != nil {
				return "", err
			}
			lines[i] = line
		}
		return strings.Join(lines, "\n"), nil

	case *ctree.ExpressionStatement:
		expr, err := Generate(n.Expression)
		if err != nil {
			return "", err
		}
		return expr + ";", nil

	case *ctree.CallExpression:
		args := make([]string, len(n.Arguments))
		for i, arg := range n.Arguments {
			rendered, err := Generate(arg)
			if err != nil {
				return "", err
			}
			args[i] = rendered
		}
		return n.Callee.Name + "(" + strings.Join(args, ", ") + ")", nil

	case *ctree.Identifier:
		return n.Name, nil

	case *ctree.NumberLiteral:
		return n.Value, nil

	case *ctree.StringLiteral:
		return "\"" + n.Value + "\"", nil

	default:
		return "", &GenerationError{Node: node}
	}
}

// GenerationError reports a node whose concrete type is outside the
// target node union. Like ast.UnknownNodeError, seeing one means a bug
// in tree construction, not bad input.
type GenerationError struct {
	Node ctree.Node
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("codegen: unknown node type %T", e.Node)
}
