// Package sexpr compiles a tiny lisp-like expression language into
// C-style call expressions.
//
// The source language has three forms: unsigned integer literals,
// double-quoted string literals, and parenthesized calls whose first
// element is the operator name. The compiler turns
//
//	(add 2 (subtract 4 3))
//
// into
//
//	add(2, subtract(4, 3));
//
// # Architecture
//
// The package is organized into subpackages, one per pipeline stage:
//
// - token: lexical tokens and source positions
// - lexer: source text to token stream
// - ast: source AST and the generic enter/exit tree walker
// - parser: token stream to source AST
// - ctree: target (C-shaped) AST
// - transform: source AST to target AST
// - codegen: target AST to output text
//
// # Basic Usage
//
// Compile source text in one call:
//
//	out, err := sexpr.Compile(`(add 2 (subtract 4 3))`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out) // add(2, subtract(4, 3));
//
// Or run the stages individually to inspect intermediate results:
//
//	tokens, err := sexpr.Tokenize(source)
//	program, err := sexpr.Parse(tokens)
//	target, err := sexpr.Transform(program)
//	out, err := sexpr.Generate(target)
//
// # Error Handling
//
// Each stage fails fast with a typed error carrying a source position:
// *lexer.LexError for characters outside the language,
// *parser.ParseError for token streams that do not reduce to the
// grammar, and *codegen.GenerationError for malformed target trees
// (defensive; unreachable through this pipeline). Compile returns stage
// errors unchanged, so errors.As sees through the facade.
//
// # Concurrency
//
// The pipeline keeps no state between calls. Distinct compilations may
// run concurrently from any number of goroutines. Recursion depth
// follows source nesting depth; pathologically nested input is bounded
// by the goroutine stack, not by the compiler.
package sexpr
