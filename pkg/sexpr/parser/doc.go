// Package parser builds source ASTs from token streams.
//
// The parser is a hand-written recursive descent over the token slice
// produced by package lexer. It never inspects source text, only token
// kinds and values. Nesting depth is bounded only by the call stack,
// which comfortably covers any program a human writes in this language.
//
// Errors are *ParseError values identifying the offending token's kind
// and position. A stream that ends inside an unclosed call yields a
// ParseError with EOF set. Parsing is fail-fast: nothing after the first
// error is examined.
package parser
