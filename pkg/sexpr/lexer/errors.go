package lexer

import (
	"fmt"

	"mercator-hq/callisto/pkg/sexpr/token"
)

// LexError reports a character the lexer could not accept. It carries the
// offending rune and its source position so callers can point at the exact
// spot in the input.
type LexError struct {
	// Ch is the rune that caused the failure. For an unterminated string
	// this is the opening quote.
	Ch rune

	// Pos is the position of Ch in the source.
	Pos token.Position

	// Msg describes the failure.
	Msg string
}

// Error implements the error interface.
// Format: "lex error at line:column: message"
func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at %s: %s", e.Pos, e.Msg)
}

// errorAt builds a LexError for the given rune and position.
func errorAt(ch rune, pos token.Position, format string, args ...interface{}) *LexError {
	return &LexError{
		Ch:  ch,
		Pos: pos,
		Msg: fmt.Sprintf(format, args...),
	}
}
