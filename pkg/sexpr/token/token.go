package token

// Kind identifies the lexical class of a token.
type Kind int

const (
	// Illegal is the zero Kind. The lexer never emits it; a token with
	// Kind Illegal indicates an uninitialized or corrupted stream.
	Illegal Kind = iota

	// LParen is an opening parenthesis "(".
	LParen
	// RParen is a closing parenthesis ")".
	RParen
	// Number is an unsigned integer literal, one or more ASCII digits.
	Number
	// String is a double-quoted string literal. The token value holds
	// the contents without the surrounding quotes.
	String
	// Name is an identifier, one or more ASCII letters.
	Name
)

var kindNames = [...]string{
	Illegal: "illegal",
	LParen:  "paren '('",
	RParen:  "paren ')'",
	Number:  "number",
	String:  "string",
	Name:    "name",
}

// String returns a human-readable name for the kind, suitable for error
// messages.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Token is a single lexical unit of a source program.
type Token struct {
	// Kind classifies the token.
	Kind Kind

	// Value is the raw lexeme: "(" or ")" for parens, the digit run for
	// numbers, the letter run for names, and the unquoted contents for
	// strings. Numbers are kept as text; nothing downstream needs their
	// machine value.
	Value string

	// Pos is the position of the token's first character. For strings
	// this is the opening quote, not the first content character.
	Pos Position
}

// String returns a compact representation for diagnostics, e.g.
// `number "42" at 1:7`.
func (t Token) String() string {
	return t.Kind.String() + " \"" + t.Value + "\" at " + t.Pos.String()
}
