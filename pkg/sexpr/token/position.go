package token

import "fmt"

// Position is a location in source text. It enables precise error
// reporting for every stage of the pipeline.
type Position struct {
	Offset int // rune offset from the start of the source, 0-based
	Line   int // line number, 1-based
	Column int // column number in runes, 1-based
}

// String returns a human-readable representation of the position.
// Format: "line:column"
func (p Position) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid returns true if the position carries real line information.
func (p Position) IsValid() bool {
	return p.Line > 0
}
