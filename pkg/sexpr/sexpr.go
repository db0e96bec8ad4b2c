package sexpr

import (
	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/codegen"
	"mercator-hq/callisto/pkg/sexpr/ctree"
	"mercator-hq/callisto/pkg/sexpr/lexer"
	"mercator-hq/callisto/pkg/sexpr/parser"
	"mercator-hq/callisto/pkg/sexpr/token"
	"mercator-hq/callisto/pkg/sexpr/transform"
)

// Compile translates source text to target text in one call:
// tokenize, parse, transform, generate. The first failing stage aborts
// the pipeline and its error is returned unchanged, so callers can
// inspect it with errors.As against the stage error types
// (*lexer.LexError, *parser.ParseError, *codegen.GenerationError).
func Compile(source string) (string, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return "", err
	}

	program, err := Parse(tokens)
	if err != nil {
		return "", err
	}

	target, err := Transform(program)
	if err != nil {
		return "", err
	}

	return Generate(target)
}

// Tokenize scans source text into tokens.
// Use this to inspect the token stream before parsing.
func Tokenize(source string) ([]token.Token, error) {
	return lexer.Tokenize(source)
}

// Parse builds a source AST from tokens.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return parser.Parse(tokens)
}

// Transform converts a source AST into a target AST.
func Transform(program *ast.Program) (*ctree.Program, error) {
	return transform.Transform(program)
}

// Generate renders a target AST as target-language text.
func Generate(node ctree.Node) (string, error) {
	return codegen.Generate(node)
}
