package sexpr

import (
	"errors"
	"testing"

	"mercator-hq/callisto/pkg/sexpr/lexer"
	"mercator-hq/callisto/pkg/sexpr/parser"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"nested call", "(add 2 (subtract 4 3))", "add(2, subtract(4, 3));"},
		{"flat call", "(cry 10 5)", "cry(10, 5);"},
		{"zero-argument call", "(foo)", "foo();"},
		{"string argument", `(greet "hi")`, `greet("hi");`},
		{"string with spaces", `(print "hello world")`, `print("hello world");`},
		{"deep nesting", "(a (b (c 1)))", "a(b(c(1)));"},
		{"multiple statements", "(a 1) (b 2)", "a(1);\nb(2);"},
		{"statements across lines", "(a 1)\n(b 2)", "a(1);\nb(2);"},
		{"bare number", "42", "42"},
		{"bare string", `"lonely"`, `"lonely"`},
		{"empty input", "", ""},
		{"whitespace only", " \t\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.source)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.source, err)
			}
			if got != tt.want {
				t.Errorf("Compile(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func TestCompilePropagatesLexError(t *testing.T) {
	_, err := Compile("(add 2 $)")
	if err == nil {
		t.Fatal("Compile() error = nil, want *lexer.LexError")
	}

	var lexErr *lexer.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("Compile() error type = %T, want *lexer.LexError", err)
	}
	if lexErr.Ch != '$' {
		t.Errorf("LexError.Ch = %q, want '$'", lexErr.Ch)
	}
	if got := lexErr.Pos.String(); got != "1:8" {
		t.Errorf("LexError.Pos = %s, want 1:8", got)
	}
}

func TestCompilePropagatesParseError(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantEOF bool
	}{
		{"unclosed call", "(add 2", true},
		{"stray close", "(add 2))", false},
		{"missing callee", "(2 3)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			if err == nil {
				t.Fatal("Compile() error = nil, want *parser.ParseError")
			}

			var parseErr *parser.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Compile() error type = %T, want *parser.ParseError", err)
			}
			if parseErr.EOF != tt.wantEOF {
				t.Errorf("ParseError.EOF = %v, want %v", parseErr.EOF, tt.wantEOF)
			}
		})
	}
}

func TestStagesComposeLikeCompile(t *testing.T) {
	const source = "(add 2 (subtract 4 3))"

	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize() failed: %v", err)
	}
	if len(tokens) != 9 {
		t.Fatalf("len(tokens) = %d, want 9", len(tokens))
	}

	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	target, err := Transform(program)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	staged, err := Generate(target)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	direct, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if staged != direct {
		t.Errorf("staged pipeline = %q, Compile = %q; they must agree", staged, direct)
	}
}

func TestCompileConcurrent(t *testing.T) {
	const goroutines = 16
	errCh := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				got, err := Compile("(add 2 (subtract 4 3))")
				if err != nil {
					errCh <- err
					return
				}
				if got != "add(2, subtract(4, 3));" {
					errCh <- errors.New("unexpected output: " + got)
					return
				}
			}
			errCh <- nil
		}()
	}

	for i := 0; i < goroutines; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("concurrent Compile failed: %v", err)
		}
	}
}
