package transform

import (
	"reflect"
	"testing"

	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/ctree"
	"mercator-hq/callisto/pkg/sexpr/lexer"
	"mercator-hq/callisto/pkg/sexpr/parser"
)

// parse is a test helper; the inputs are all valid programs.
func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", source, err)
	}
	program, err := parser.Parse(tokens)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", source, err)
	}
	return program
}

func TestTransform_NestedCall(t *testing.T) {
	target, err := Transform(parse(t, "(add 2 (subtract 4 3))"))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	want := &ctree.Program{
		Body: []ctree.Node{
			&ctree.ExpressionStatement{
				Expression: &ctree.CallExpression{
					Callee: &ctree.Identifier{Name: "add"},
					Arguments: []ctree.Node{
						&ctree.NumberLiteral{Value: "2"},
						&ctree.CallExpression{
							Callee: &ctree.Identifier{Name: "subtract"},
							Arguments: []ctree.Node{
								&ctree.NumberLiteral{Value: "4"},
								&ctree.NumberLiteral{Value: "3"},
							},
						},
					},
				},
			},
		},
	}

	if !reflect.DeepEqual(target, want) {
		t.Errorf("Transform() = %#v, want %#v", target, want)
	}
}

func TestTransform_WrapsOnlyTopLevelCalls(t *testing.T) {
	target, err := Transform(parse(t, "(outer (inner 1))"))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	stmt, ok := target.Body[0].(*ctree.ExpressionStatement)
	if !ok {
		t.Fatalf("Body[0] type = %T, want *ctree.ExpressionStatement", target.Body[0])
	}
	outer, ok := stmt.Expression.(*ctree.CallExpression)
	if !ok {
		t.Fatalf("statement expression type = %T, want *ctree.CallExpression", stmt.Expression)
	}
	if _, doubleWrapped := outer.Arguments[0].(*ctree.ExpressionStatement); doubleWrapped {
		t.Fatal("nested call was wrapped in ExpressionStatement; only top-level calls are statements")
	}
	inner, ok := outer.Arguments[0].(*ctree.CallExpression)
	if !ok {
		t.Fatalf("Arguments[0] type = %T, want *ctree.CallExpression", outer.Arguments[0])
	}
	if inner.Callee.Name != "inner" {
		t.Errorf("nested callee = %q, want %q", inner.Callee.Name, "inner")
	}
}

func TestTransform_TopLevelLiteralsStayBare(t *testing.T) {
	target, err := Transform(parse(t, `42 "hi"`))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	if len(target.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(target.Body))
	}
	if num, ok := target.Body[0].(*ctree.NumberLiteral); !ok || num.Value != "42" {
		t.Errorf("Body[0] = %#v, want bare NumberLiteral %q", target.Body[0], "42")
	}
	if str, ok := target.Body[1].(*ctree.StringLiteral); !ok || str.Value != "hi" {
		t.Errorf("Body[1] = %#v, want bare StringLiteral %q", target.Body[1], "hi")
	}
}

func TestTransform_MultipleStatements(t *testing.T) {
	target, err := Transform(parse(t, "(a 1) (b 2)"))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	if len(target.Body) != 2 {
		t.Fatalf("len(Body) = %d, want 2", len(target.Body))
	}
	for i, wantName := range []string{"a", "b"} {
		stmt, ok := target.Body[i].(*ctree.ExpressionStatement)
		if !ok {
			t.Fatalf("Body[%d] type = %T, want *ctree.ExpressionStatement", i, target.Body[i])
		}
		call := stmt.Expression.(*ctree.CallExpression)
		if call.Callee.Name != wantName {
			t.Errorf("statement %d callee = %q, want %q", i, call.Callee.Name, wantName)
		}
	}
}

func TestTransform_EmptyProgram(t *testing.T) {
	target, err := Transform(&ast.Program{})
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	if len(target.Body) != 0 {
		t.Errorf("len(Body) = %d, want 0", len(target.Body))
	}
}

func TestTransform_SourceTreeUntouched(t *testing.T) {
	const source = "(add 2 (subtract 4 3))"
	src := parse(t, source)
	pristine := parse(t, source) // independent tree for comparison

	if _, err := Transform(src); err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	if !reflect.DeepEqual(src, pristine) {
		t.Error("Transform() modified the source tree")
	}
}

func TestTransform_DeepNesting(t *testing.T) {
	target, err := Transform(parse(t, "(a (b (c (d 1))))"))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	node := target.Body[0].(*ctree.ExpressionStatement).Expression
	for _, wantName := range []string{"a", "b", "c", "d"} {
		call, ok := node.(*ctree.CallExpression)
		if !ok {
			t.Fatalf("node type = %T, want *ctree.CallExpression %q", node, wantName)
		}
		if call.Callee.Name != wantName {
			t.Fatalf("callee = %q, want %q", call.Callee.Name, wantName)
		}
		if len(call.Arguments) != 1 {
			t.Fatalf("call %q has %d arguments, want 1", wantName, len(call.Arguments))
		}
		node = call.Arguments[0]
	}
	if num, ok := node.(*ctree.NumberLiteral); !ok || num.Value != "1" {
		t.Errorf("innermost node = %#v, want NumberLiteral %q", node, "1")
	}
}
