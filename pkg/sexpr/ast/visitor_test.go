package ast

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/sexpr/token"
)

// nestedCall builds the tree for (add 2 (subtract 4 3)) by hand.
func nestedCall() *Program {
	return &Program{
		Body: []Node{
			&CallExpression{
				Name: "add",
				Params: []Node{
					&NumberLiteral{Value: "2"},
					&CallExpression{
						Name: "subtract",
						Params: []Node{
							&NumberLiteral{Value: "4"},
							&NumberLiteral{Value: "3"},
						},
					},
				},
			},
		},
	}
}

func describe(n Node) string {
	switch node := n.(type) {
	case nil:
		return "none"
	case *Program:
		return "program"
	case *CallExpression:
		return "call " + node.Name
	case *NumberLiteral:
		return "number " + node.Value
	case *StringLiteral:
		return "string " + node.Value
	default:
		return fmt.Sprintf("%T", n)
	}
}

func TestWalkOrder(t *testing.T) {
	var trace []string
	v := VisitorFuncs{
		OnEnter: func(n, parent Node) error {
			trace = append(trace, "enter "+describe(n)+" < "+describe(parent))
			return nil
		},
		OnExit: func(n, parent Node) error {
			trace = append(trace, "exit "+describe(n))
			return nil
		},
	}

	if err := Walk(nestedCall(), v); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{
		"enter program < none",
		"enter call add < program",
		"enter number 2 < call add",
		"exit number 2",
		"enter call subtract < call add",
		"enter number 4 < call subtract",
		"exit number 4",
		"enter number 3 < call subtract",
		"exit number 3",
		"exit call subtract",
		"exit call add",
		"exit program",
	}
	if len(trace) != len(want) {
		t.Fatalf("Walk() produced %d events, want %d:\n%s", len(trace), len(want), strings.Join(trace, "\n"))
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, trace[i], want[i])
		}
	}
}

func TestWalkSiblingOrder(t *testing.T) {
	program := &Program{
		Body: []Node{
			&NumberLiteral{Value: "1"},
			&StringLiteral{Value: "two"},
			&NumberLiteral{Value: "3"},
		},
	}

	var entered []string
	v := VisitorFuncs{
		OnEnter: func(n, parent Node) error {
			if _, ok := n.(*Program); !ok {
				entered = append(entered, describe(n))
			}
			return nil
		},
	}
	if err := Walk(program, v); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	want := []string{"number 1", "string two", "number 3"}
	if len(entered) != len(want) {
		t.Fatalf("entered %d nodes, want %d", len(entered), len(want))
	}
	for i := range want {
		if entered[i] != want[i] {
			t.Errorf("entered[%d] = %q, want %q", i, entered[i], want[i])
		}
	}
}

func TestWalkAbortsOnEnterError(t *testing.T) {
	sentinel := errors.New("stop here")
	events := 0
	v := VisitorFuncs{
		OnEnter: func(n, parent Node) error {
			events++
			if num, ok := n.(*NumberLiteral); ok && num.Value == "4" {
				return sentinel
			}
			return nil
		},
		OnExit: func(n, parent Node) error {
			events++
			return nil
		},
	}

	err := Walk(nestedCall(), v)
	if !errors.Is(err, sentinel) {
		t.Fatalf("Walk() error = %v, want %v unchanged", err, sentinel)
	}
	// program, add, 2 entered; 2 exited; subtract entered; 4 entered (fails).
	if events != 6 {
		t.Errorf("visitor saw %d events before abort, want 6", events)
	}
}

func TestWalkAbortsOnExitError(t *testing.T) {
	sentinel := errors.New("stop on exit")
	var exited []string
	v := VisitorFuncs{
		OnExit: func(n, parent Node) error {
			exited = append(exited, describe(n))
			if call, ok := n.(*CallExpression); ok && call.Name == "subtract" {
				return sentinel
			}
			return nil
		},
	}

	err := Walk(nestedCall(), v)
	if !errors.Is(err, sentinel) {
		t.Fatalf("Walk() error = %v, want %v unchanged", err, sentinel)
	}
	wantLast := "call subtract"
	if len(exited) == 0 || exited[len(exited)-1] != wantLast {
		t.Errorf("last exited node = %v, want %q", exited, wantLast)
	}
}

func TestWalkNilVisitorFuncs(t *testing.T) {
	if err := Walk(nestedCall(), VisitorFuncs{}); err != nil {
		t.Errorf("Walk() with no-op visitor error = %v, want nil", err)
	}
}

// bogusNode satisfies Node but is not part of the union.
type bogusNode struct{}

func (bogusNode) Pos() token.Position { return token.Position{Line: 1, Column: 1} }
func (bogusNode) sourceNode()         {}

func TestWalkUnknownNode(t *testing.T) {
	program := &Program{Body: []Node{bogusNode{}}}

	err := Walk(program, VisitorFuncs{})
	var unknownErr *UnknownNodeError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("Walk() error = %v, want *UnknownNodeError", err)
	}
	if _, ok := unknownErr.Node.(bogusNode); !ok {
		t.Errorf("UnknownNodeError.Node type = %T, want bogusNode", unknownErr.Node)
	}
}

func TestProgramPos(t *testing.T) {
	empty := &Program{}
	if empty.Pos().IsValid() {
		t.Error("empty Program.Pos().IsValid() = true, want false")
	}

	pos := token.Position{Offset: 0, Line: 1, Column: 1}
	program := &Program{Body: []Node{&NumberLiteral{Value: "7", ValuePos: pos}}}
	if got := program.Pos(); got != pos {
		t.Errorf("Program.Pos() = %v, want %v", got, pos)
	}
}
