package token

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Illegal, "illegal"},
		{LParen, "paren '('"},
		{RParen, "paren ')'"},
		{Number, "number"},
		{String, "string"},
		{Name, "name"},
		{Kind(99), "unknown"},
		{Kind(-1), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"valid", Position{Offset: 6, Line: 1, Column: 7}, "1:7"},
		{"multiline", Position{Offset: 40, Line: 3, Column: 2}, "3:2"},
		{"zero value", Position{}, "<unknown>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.String(); got != tt.want {
				t.Errorf("Position.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPositionIsValid(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("zero Position.IsValid() = true, want false")
	}
	if !(Position{Line: 1, Column: 1}).IsValid() {
		t.Error("Position{1,1}.IsValid() = false, want true")
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Number, Value: "42", Pos: Position{Offset: 5, Line: 1, Column: 6}}
	want := `number "42" at 1:6`
	if got := tok.String(); got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}
