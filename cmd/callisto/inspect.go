package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/callisto/pkg/cli"
	"mercator-hq/callisto/pkg/sexpr"
	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/ctree"
	"mercator-hq/callisto/pkg/sexpr/token"
)

var inspectFlags struct {
	tokens bool
	ast    bool
	target bool
	output string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Dump compiler stages for a source file",
	Long: `Dump the intermediate representations the compiler produces for a
source file: the token stream, the source AST, and the target AST.

With no stage flags all three stages are dumped. Output is JSON.

Examples:
  # Dump every stage
  callisto inspect program.lisp

  # Token stream only
  callisto inspect program.lisp --tokens

  # Source and target trees
  callisto inspect program.lisp --ast --target`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolVar(&inspectFlags.tokens, "tokens", false, "dump the token stream")
	inspectCmd.Flags().BoolVar(&inspectFlags.ast, "ast", false, "dump the source AST")
	inspectCmd.Flags().BoolVar(&inspectFlags.target, "target", false, "dump the target AST")
	inspectCmd.Flags().StringVarP(&inspectFlags.output, "output", "o", "", "output file (default: stdout)")
}

// tokenDump is one token in inspect output.
type tokenDump struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// nodeDump is a source or target AST node in inspect output. Kind names
// the node type; the remaining fields are populated per kind.
type nodeDump struct {
	Kind       string      `json:"kind"`
	Name       string      `json:"name,omitempty"`
	Value      string      `json:"value,omitempty"`
	Line       int         `json:"line,omitempty"`
	Column     int         `json:"column,omitempty"`
	Body       []*nodeDump `json:"body,omitempty"`
	Params     []*nodeDump `json:"params,omitempty"`
	Expression *nodeDump   `json:"expression,omitempty"`
	Callee     *nodeDump   `json:"callee,omitempty"`
	Arguments  []*nodeDump `json:"arguments,omitempty"`
}

// inspectResult is the inspect command's JSON payload. Only requested
// stages are present.
type inspectResult struct {
	File   string       `json:"file"`
	Tokens []*tokenDump `json:"tokens,omitempty"`
	AST    *nodeDump    `json:"ast,omitempty"`
	Target *nodeDump    `json:"target,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	// No stage flags means every stage.
	all := !inspectFlags.tokens && !inspectFlags.ast && !inspectFlags.target

	file := args[0]
	data, err := os.ReadFile(file)
	if err != nil {
		return cli.NewCommandError("inspect", fmt.Errorf("cannot read %s: %w", file, err))
	}

	tokens, err := sexpr.Tokenize(string(data))
	if err != nil {
		return cli.NewCommandError("inspect", fmt.Errorf("%s: %w", file, err))
	}

	result := &inspectResult{File: file}
	if all || inspectFlags.tokens {
		result.Tokens = dumpTokens(tokens)
	}

	if all || inspectFlags.ast || inspectFlags.target {
		program, err := sexpr.Parse(tokens)
		if err != nil {
			return cli.NewCommandError("inspect", fmt.Errorf("%s: %w", file, err))
		}
		if all || inspectFlags.ast {
			result.AST = dumpSourceNode(program)
		}
		if all || inspectFlags.target {
			target, err := sexpr.Transform(program)
			if err != nil {
				return cli.NewCommandError("inspect", fmt.Errorf("%s: %w", file, err))
			}
			result.Target = dumpTargetNode(target)
		}
	}

	var out io.Writer = os.Stdout
	if inspectFlags.output != "" {
		f, err := os.Create(inspectFlags.output)
		if err != nil {
			return cli.NewCommandError("inspect", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(out, result)
}

func dumpTokens(tokens []token.Token) []*tokenDump {
	dumps := make([]*tokenDump, len(tokens))
	for i, tok := range tokens {
		dumps[i] = &tokenDump{
			Kind:   tok.Kind.String(),
			Value:  tok.Value,
			Line:   tok.Pos.Line,
			Column: tok.Pos.Column,
		}
	}
	return dumps
}

func dumpSourceNode(node ast.Node) *nodeDump {
	switch n := node.(type) {
	case *ast.Program:
		dump := &nodeDump{Kind: "Program"}
		for _, child := range n.Body {
			dump.Body = append(dump.Body, dumpSourceNode(child))
		}
		return dump
	case *ast.CallExpression:
		dump := &nodeDump{
			Kind:   "CallExpression",
			Name:   n.Name,
			Line:   n.NamePos.Line,
			Column: n.NamePos.Column,
		}
		for _, param := range n.Params {
			dump.Params = append(dump.Params, dumpSourceNode(param))
		}
		return dump
	case *ast.NumberLiteral:
		return &nodeDump{
			Kind:   "NumberLiteral",
			Value:  n.Value,
			Line:   n.ValuePos.Line,
			Column: n.ValuePos.Column,
		}
	case *ast.StringLiteral:
		return &nodeDump{
			Kind:   "StringLiteral",
			Value:  n.Value,
			Line:   n.ValuePos.Line,
			Column: n.ValuePos.Column,
		}
	default:
		return &nodeDump{Kind: fmt.Sprintf("%T", node)}
	}
}

func dumpTargetNode(node ctree.Node) *nodeDump {
	switch n := node.(type) {
	case *ctree.Program:
		dump := &nodeDump{Kind: "Program"}
		for _, child := range n.Body {
			dump.Body = append(dump.Body, dumpTargetNode(child))
		}
		return dump
	case *ctree.ExpressionStatement:
		return &nodeDump{
			Kind:       "ExpressionStatement",
			Expression: dumpTargetNode(n.Expression),
		}
	case *ctree.CallExpression:
		dump := &nodeDump{
			Kind:   "CallExpression",
			Callee: dumpTargetNode(n.Callee),
		}
		for _, arg := range n.Arguments {
			dump.Arguments = append(dump.Arguments, dumpTargetNode(arg))
		}
		return dump
	case *ctree.Identifier:
		return &nodeDump{Kind: "Identifier", Name: n.Name}
	case *ctree.NumberLiteral:
		return &nodeDump{Kind: "NumberLiteral", Value: n.Value}
	case *ctree.StringLiteral:
		return &nodeDump{Kind: "StringLiteral", Value: n.Value}
	default:
		return &nodeDump{Kind: fmt.Sprintf("%T", node)}
	}
}
