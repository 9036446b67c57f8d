package token

import "fmt"

type TokenType string

// Token types that survive into the AST. The checker never sees raw lexer
// output, only the tokens the parser attached to nodes for error reporting.
const (
	ILLEGAL  TokenType = "ILLEGAL"
	IDENT    TokenType = "IDENT"
	INT      TokenType = "INT"
	FLOAT    TokenType = "FLOAT"
	STRING   TokenType = "STRING"
	KEYWORD  TokenType = "KEYWORD"
	OPERATOR TokenType = "OPERATOR"
)

// Token is the primary token of an AST node together with its source span.
// Lines and columns are 1-based; End* are inclusive and may be zero when the
// producer only knows the start position.
type Token struct {
	Type      TokenType
	Lexeme    string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// At builds a token positioned at line:col. Used by AST builders and decoders.
func At(typ TokenType, lexeme string, line, col int) Token {
	return Token{
		Type:      typ,
		Lexeme:    lexeme,
		Line:      line,
		Column:    col,
		EndLine:   line,
		EndColumn: col + len(lexeme),
	}
}

// Before reports whether t starts before other in source order.
func (t Token) Before(other Token) bool {
	if t.Line != other.Line {
		return t.Line < other.Line
	}
	return t.Column < other.Column
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d", t.Line, t.Column)
}
