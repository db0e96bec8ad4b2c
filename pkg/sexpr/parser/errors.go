package parser

import (
	"fmt"

	"mercator-hq/callisto/pkg/sexpr/token"
)

// ParseError reports a token stream the parser could not accept.
type ParseError struct {
	// Tok is the offending token. For errors raised at the end of the
	// input it is the last token consumed.
	Tok token.Token

	// EOF is true when the stream ended before the current form was
	// complete, e.g. a call missing its closing parenthesis.
	EOF bool

	// Msg describes the failure, including what was expected.
	Msg string
}

// Error implements the error interface.
// Format: "parse error at line:column: message", or
// "parse error at end of input: message" for truncated streams.
func (e *ParseError) Error() string {
	if e.EOF {
		return fmt.Sprintf("parse error at end of input: %s", e.Msg)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Tok.Pos, e.Msg)
}
