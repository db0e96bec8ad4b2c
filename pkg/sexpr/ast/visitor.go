package ast

import "fmt"

// Visitor receives nodes during a Walk. Enter is called before a node's
// children, Exit after. The parent argument is the node's direct parent,
// or nil for the root.
type Visitor interface {
	Enter(n, parent Node) error
	Exit(n, parent Node) error
}

// VisitorFuncs adapts plain functions to the Visitor interface. A nil
// field is a no-op, so callers can hook only the phase they need.
type VisitorFuncs struct {
	OnEnter func(n, parent Node) error
	OnExit  func(n, parent Node) error
}

// Enter calls OnEnter if set.
func (v VisitorFuncs) Enter(n, parent Node) error {
	if v.OnEnter == nil {
		return nil
	}
	return v.OnEnter(n, parent)
}

// Exit calls OnExit if set.
func (v VisitorFuncs) Exit(n, parent Node) error {
	if v.OnExit == nil {
		return nil
	}
	return v.OnExit(n, parent)
}

// Walk traverses the tree rooted at root in depth-first order, calling
// visitor.Enter before each node's children and visitor.Exit after.
// Children are visited in source order. It returns the first error a
// visitor returns, unchanged, or an *UnknownNodeError if the tree
// contains a concrete type outside the node union.
func Walk(root Node, visitor Visitor) error {
	return walk(root, nil, visitor)
}

func walk(n, parent Node, visitor Visitor) error {
	if err := visitor.Enter(n, parent); err != nil {
		return err
	}

	switch node := n.(type) {
	case *Program:
		for _, child := range node.Body {
			if err := walk(child, node, visitor); err != nil {
				return err
			}
		}

	case *CallExpression:
		for _, param := range node.Params {
			if err := walk(param, node, visitor); err != nil {
				return err
			}
		}

	case *NumberLiteral, *StringLiteral:
		// Leaves have no children.

	default:
		return &UnknownNodeError{Node: n}
	}

	return visitor.Exit(n, parent)
}

// UnknownNodeError reports a node whose concrete type is outside the
// source node union. Seeing one means a bug, not bad input: the parser
// only ever produces union members.
type UnknownNodeError struct {
	Node Node
}

// Error implements the error interface.
func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown node type %T at %s", e.Node, e.Node.Pos())
}
