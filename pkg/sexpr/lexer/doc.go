// Package lexer turns Callisto source text into a token stream.
//
// The scanner is a single forward pass with one rune of lookahead. It
// fails fast: the first character that cannot begin or continue a token
// aborts the scan with a *LexError carrying the rune and its position.
// Digit-letter adjacency ("1a", "a1") is rejected rather than split into
// two tokens.
package lexer
