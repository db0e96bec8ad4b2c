package parser

import (
	"fmt"

	"mercator-hq/callisto/pkg/sexpr/ast"
	"mercator-hq/callisto/pkg/sexpr/token"
)

// Parse builds a source AST from a token stream.
//
// The grammar is small: a program is a sequence of expressions, and an
// expression is a number literal, a string literal, or a parenthesized
// call whose first element must be a name. An empty stream parses to an
// empty program. The first unacceptable token aborts the parse with a
// *ParseError; the parser never recovers.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := &parser{tokens: tokens}

	program := &ast.Program{}
	for !p.eof() {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		program.Body = append(program.Body, expr)
	}
	return program, nil
}

// parser holds the cursor over the token stream. It only ever moves
// forward; the lexer has already validated every lexeme.
type parser struct {
	tokens []token.Token
	pos    int
}

// parseExpression parses a single expression at the cursor. The caller
// guarantees the stream is not exhausted.
func (p *parser) parseExpression() (ast.Node, error) {
	tok := p.peek()

	switch tok.Kind {
	case token.Number:
		p.advance()
		return &ast.NumberLiteral{Value: tok.Value, ValuePos: tok.Pos}, nil

	case token.String:
		p.advance()
		return &ast.StringLiteral{Value: tok.Value, ValuePos: tok.Pos}, nil

	case token.LParen:
		return p.parseCall()

	case token.RParen:
		return nil, p.errorAt(tok, "unexpected %s: no open call to close", tok.Kind)

	default:
		// A bare name is only legal directly after "(", where parseCall
		// consumes it.
		return nil, p.errorAt(tok, "unexpected %s %q: an expression starts with a number, a string, or \"(\"", tok.Kind, tok.Value)
	}
}

// parseCall parses "(" Name expression* ")". The cursor sits on the
// opening parenthesis.
func (p *parser) parseCall() (ast.Node, error) {
	lparen := p.peek()
	p.advance()

	if p.eof() {
		return nil, p.eofError("input ended after %q: expected a name", "(")
	}
	nameTok := p.peek()
	if nameTok.Kind != token.Name {
		return nil, p.errorAt(nameTok, "expected a name after \"(\", found %s %q", nameTok.Kind, nameTok.Value)
	}
	p.advance()

	call := &ast.CallExpression{
		Name:    nameTok.Value,
		NamePos: nameTok.Pos,
		Lparen:  lparen.Pos,
	}

	for {
		if p.eof() {
			return nil, p.eofError("call %q is missing \")\" for \"(\" at %s", call.Name, call.Lparen)
		}
		if p.peek().Kind == token.RParen {
			call.Rparen = p.peek().Pos
			p.advance()
			return call, nil
		}

		param, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Params = append(call.Params, param)
	}
}

// peek returns the token at the cursor. The caller must ensure the
// stream is not exhausted.
func (p *parser) peek() token.Token {
	return p.tokens[p.pos]
}

// advance moves the cursor past the current token.
func (p *parser) advance() {
	p.pos++
}

// eof reports whether the cursor has consumed every token.
func (p *parser) eof() bool {
	return p.pos >= len(p.tokens)
}

// errorAt builds a ParseError for the given offending token.
func (p *parser) errorAt(tok token.Token, format string, args ...interface{}) *ParseError {
	return &ParseError{
		Tok: tok,
		Msg: fmt.Sprintf(format, args...),
	}
}

// eofError builds a ParseError for a stream that ended mid-form. The
// error carries the last consumed token so callers still get a position.
func (p *parser) eofError(format string, args ...interface{}) *ParseError {
	e := &ParseError{
		EOF: true,
		Msg: fmt.Sprintf(format, args...),
	}
	if len(p.tokens) > 0 {
		e.Tok = p.tokens[len(p.tokens)-1]
	}
	return e
}
