package lexer

import (
	"mercator-hq/callisto/pkg/sexpr/token"
)

// Tokenize scans source text into a flat token stream.
//
// It makes a single forward pass, skipping whitespace and emitting one
// token per lexeme. The returned slice carries no end-of-input sentinel.
// The first unacceptable character aborts the scan with a *LexError; on
// error the token slice is nil.
func Tokenize(source string) ([]token.Token, error) {
	l := &lexer{
		src:  []rune(source),
		line: 1,
		col:  1,
	}
	return l.run()
}

// lexer holds the scan state for a single pass over the source.
type lexer struct {
	src  []rune
	off  int // rune offset of the next unread rune
	line int
	col  int
}

// run drives the scan loop until the source is exhausted.
func (l *lexer) run() ([]token.Token, error) {
	var tokens []token.Token

	for l.off < len(l.src) {
		ch := l.peek()

		switch {
		case ch == '(':
			tokens = append(tokens, token.Token{Kind: token.LParen, Value: "(", Pos: l.pos()})
			l.advance()

		case ch == ')':
			tokens = append(tokens, token.Token{Kind: token.RParen, Value: ")", Pos: l.pos()})
			l.advance()

		case isWhitespace(ch):
			l.advance()

		case isDigit(ch):
			tok, err := l.scanNumber()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case ch == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case isLetter(ch):
			tok, err := l.scanName()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		default:
			return nil, errorAt(ch, l.pos(), "unexpected character %q", ch)
		}
	}

	return tokens, nil
}

// scanNumber consumes a run of ASCII digits. A letter immediately after
// the run is rejected: "1a" is not a number followed by a name, it is a
// mistake the author should hear about.
func (l *lexer) scanNumber() (token.Token, error) {
	start := l.pos()
	from := l.off
	for l.off < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	if l.off < len(l.src) && isLetter(l.peek()) {
		return token.Token{}, errorAt(l.peek(), l.pos(), "letter %q immediately follows a number", l.peek())
	}
	return token.Token{Kind: token.Number, Value: string(l.src[from:l.off]), Pos: start}, nil
}

// scanName consumes a run of ASCII letters. A digit immediately after the
// run is rejected, mirroring scanNumber.
func (l *lexer) scanName() (token.Token, error) {
	start := l.pos()
	from := l.off
	for l.off < len(l.src) && isLetter(l.peek()) {
		l.advance()
	}
	if l.off < len(l.src) && isDigit(l.peek()) {
		return token.Token{}, errorAt(l.peek(), l.pos(), "digit %q immediately follows a name", l.peek())
	}
	return token.Token{Kind: token.Name, Value: string(l.src[from:l.off]), Pos: start}, nil
}

// scanString consumes a double-quoted string. The token value excludes the
// quotes. There are no escape sequences; any rune other than '"' may
// appear inside, including newlines. An unterminated string is reported at
// the opening quote.
func (l *lexer) scanString() (token.Token, error) {
	start := l.pos()
	l.advance() // opening quote
	from := l.off
	for l.off < len(l.src) && l.peek() != '"' {
		l.advance()
	}
	if l.off >= len(l.src) {
		return token.Token{}, errorAt('"', start, "unterminated string")
	}
	value := string(l.src[from:l.off])
	l.advance() // closing quote
	return token.Token{Kind: token.String, Value: value, Pos: start}, nil
}

// peek returns the next unread rune without consuming it. The caller must
// ensure the source is not exhausted.
func (l *lexer) peek() rune {
	return l.src[l.off]
}

// advance consumes one rune, tracking line and column.
func (l *lexer) advance() {
	if l.src[l.off] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.off++
}

// pos returns the position of the next unread rune.
func (l *lexer) pos() token.Position {
	return token.Position{Offset: l.off, Line: l.line, Column: l.col}
}

func isWhitespace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
