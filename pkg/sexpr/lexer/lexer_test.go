package lexer

import (
	"errors"
	"testing"

	"mercator-hq/callisto/pkg/sexpr/token"
)

func TestTokenizeCallExpression(t *testing.T) {
	tokens, err := Tokenize("(add 2 (subtract 4 3))")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []token.Token{
		{Kind: token.LParen, Value: "(", Pos: token.Position{Offset: 0, Line: 1, Column: 1}},
		{Kind: token.Name, Value: "add", Pos: token.Position{Offset: 1, Line: 1, Column: 2}},
		{Kind: token.Number, Value: "2", Pos: token.Position{Offset: 5, Line: 1, Column: 6}},
		{Kind: token.LParen, Value: "(", Pos: token.Position{Offset: 7, Line: 1, Column: 8}},
		{Kind: token.Name, Value: "subtract", Pos: token.Position{Offset: 8, Line: 1, Column: 9}},
		{Kind: token.Number, Value: "4", Pos: token.Position{Offset: 17, Line: 1, Column: 18}},
		{Kind: token.Number, Value: "3", Pos: token.Position{Offset: 19, Line: 1, Column: 20}},
		{Kind: token.RParen, Value: ")", Pos: token.Position{Offset: 20, Line: 1, Column: 21}},
		{Kind: token.RParen, Value: ")", Pos: token.Position{Offset: 21, Line: 1, Column: 22}},
	}

	if len(tokens) != len(want) {
		t.Fatalf("Tokenize() produced %d tokens, want %d", len(tokens), len(want))
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i], want[i])
		}
	}
}

func TestTokenizeKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []token.Kind
	}{
		{"empty input", "", nil},
		{"whitespace only", "  \t\n\r ", nil},
		{"bare number", "42", []token.Kind{token.Number}},
		{"bare name", "foo", []token.Kind{token.Name}},
		{"empty call", "(foo)", []token.Kind{token.LParen, token.Name, token.RParen}},
		{"string argument", `(greet "hi")`, []token.Kind{token.LParen, token.Name, token.String, token.RParen}},
		{"empty string", `""`, []token.Kind{token.String}},
		{"adjacent parens", "(())", []token.Kind{token.LParen, token.LParen, token.RParen, token.RParen}},
		{
			"multiple expressions",
			"(a 1) (b 2)",
			[]token.Kind{token.LParen, token.Name, token.Number, token.RParen, token.LParen, token.Name, token.Number, token.RParen},
		},
		{
			"newline separated",
			"(a 1)\n(b 2)",
			[]token.Kind{token.LParen, token.Name, token.Number, token.RParen, token.LParen, token.Name, token.Number, token.RParen},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.source, err)
			}
			if len(tokens) != len(tt.want) {
				t.Fatalf("Tokenize(%q) produced %d tokens, want %d", tt.source, len(tokens), len(tt.want))
			}
			for i, k := range tt.want {
				if tokens[i].Kind != k {
					t.Errorf("token[%d].Kind = %v, want %v", i, tokens[i].Kind, k)
				}
			}
		})
	}
}

func TestTokenizeStringValues(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`"hi"`, "hi"},
		{`""`, ""},
		{`"hello world"`, "hello world"},
		{`"tabs	and (parens)"`, "tabs\tand (parens)"},
	}

	for _, tt := range tests {
		tokens, err := Tokenize(tt.source)
		if err != nil {
			t.Fatalf("Tokenize(%q) error = %v", tt.source, err)
		}
		if len(tokens) != 1 {
			t.Fatalf("Tokenize(%q) produced %d tokens, want 1", tt.source, len(tokens))
		}
		if tokens[0].Value != tt.want {
			t.Errorf("Tokenize(%q) value = %q, want %q (quotes must be stripped)", tt.source, tokens[0].Value, tt.want)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantCh  rune
		wantPos token.Position
	}{
		{"unknown character", "$", '$', token.Position{Offset: 0, Line: 1, Column: 1}},
		{"unknown mid-stream", "(add 2 #)", '#', token.Position{Offset: 7, Line: 1, Column: 8}},
		{"letter after number", "1a", 'a', token.Position{Offset: 1, Line: 1, Column: 2}},
		{"digit after name", "a1", '1', token.Position{Offset: 1, Line: 1, Column: 2}},
		{"mixed inside call", "(add 12x 3)", 'x', token.Position{Offset: 7, Line: 1, Column: 8}},
		{"unterminated string", `(greet "oops`, '"', token.Position{Offset: 7, Line: 1, Column: 8}},
		{"unknown on later line", "(a 1)\n(b @)", '@', token.Position{Offset: 9, Line: 2, Column: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.source)
			if err == nil {
				t.Fatalf("Tokenize(%q) = %v, want error", tt.source, tokens)
			}
			if tokens != nil {
				t.Errorf("Tokenize(%q) returned tokens alongside error", tt.source)
			}

			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("Tokenize(%q) error type = %T, want *LexError", tt.source, err)
			}
			if lexErr.Ch != tt.wantCh {
				t.Errorf("LexError.Ch = %q, want %q", lexErr.Ch, tt.wantCh)
			}
			if lexErr.Pos != tt.wantPos {
				t.Errorf("LexError.Pos = %v, want %v", lexErr.Pos, tt.wantPos)
			}
		})
	}
}

func TestLexErrorMessage(t *testing.T) {
	_, err := Tokenize("(add 2 $)")
	if err == nil {
		t.Fatal("Tokenize() error = nil, want *LexError")
	}
	want := `lex error at 1:8: unexpected character '$'`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestTokenizeMultilinePositions(t *testing.T) {
	tokens, err := Tokenize("(add\n  2\n  3)")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	wantPos := []token.Position{
		{Offset: 0, Line: 1, Column: 1},  // (
		{Offset: 1, Line: 1, Column: 2},  // add
		{Offset: 7, Line: 2, Column: 3},  // 2
		{Offset: 11, Line: 3, Column: 3}, // 3
		{Offset: 12, Line: 3, Column: 4}, // )
	}
	if len(tokens) != len(wantPos) {
		t.Fatalf("Tokenize() produced %d tokens, want %d", len(tokens), len(wantPos))
	}
	for i, want := range wantPos {
		if tokens[i].Pos != want {
			t.Errorf("token[%d].Pos = %v, want %v", i, tokens[i].Pos, want)
		}
	}
}
