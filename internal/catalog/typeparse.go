package catalog

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/token"
)

// ParseType parses an annotation string such as "Optional[list[T]]",
// "int | str" or "Callable[[int, str], bool]" into a type expression.
func ParseType(src string) (ast.TypeExpr, error) {
	p := &typeParser{src: src}
	p.next()
	t, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, fmt.Errorf("type %q: unexpected %q", src, p.tok)
	}
	return t, nil
}

type typeParser struct {
	src string
	pos int
	tok string // Current token, "" at end of input
	col int    // Column of the current token, 1-based
}

func (p *typeParser) next() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
	p.col = p.pos + 1
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	c := rune(p.src[p.pos])
	if strings.ContainsRune("[],|", c) {
		p.tok = string(c)
		p.pos++
		return
	}
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.') {
			break
		}
		p.pos++
	}
	if p.pos == start {
		p.tok = string(c)
		p.pos++
		return
	}
	p.tok = p.src[start:p.pos]
}

func (p *typeParser) expect(tok string) error {
	if p.tok != tok {
		if p.tok == "" {
			return fmt.Errorf("type %q: expected %q at end of input", p.src, tok)
		}
		return fmt.Errorf("type %q: expected %q, got %q", p.src, tok, p.tok)
	}
	p.next()
	return nil
}

func (p *typeParser) parseUnion() (ast.TypeExpr, error) {
	first, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok != "|" {
		return first, nil
	}
	u := &ast.UnionType{Token: token.Token{Lexeme: "|", Line: 1, Column: p.col}, Types: []ast.TypeExpr{first}}
	for p.tok == "|" {
		p.next()
		t, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		u.Types = append(u.Types, t)
	}
	return u, nil
}

func (p *typeParser) parsePrimary() (ast.TypeExpr, error) {
	name := p.tok
	if name == "" || strings.ContainsRune("[],|", rune(name[0])) {
		return nil, fmt.Errorf("type %q: expected a type name, got %q", p.src, name)
	}
	tok := token.Token{Type: token.IDENT, Lexeme: name, Line: 1, Column: p.col}
	p.next()

	if name == config.CallableFormName && p.tok == "[" {
		return p.parseCallable(tok)
	}

	nt := &ast.NamedType{Token: tok, Name: &ast.Identifier{Token: tok, Value: name}}
	if p.tok != "[" {
		return nt, nil
	}
	p.next()
	for {
		arg, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		nt.Args = append(nt.Args, arg)
		if p.tok != "," {
			break
		}
		p.next()
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return nt, nil
}

// parseCallable handles Callable[[P1, P2], R]; the current token is the
// outer '['.
func (p *typeParser) parseCallable(tok token.Token) (ast.TypeExpr, error) {
	p.next()
	if err := p.expect("["); err != nil {
		return nil, err
	}
	ct := &ast.CallableType{Token: tok}
	for p.tok != "]" {
		param, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		ct.Params = append(ct.Params, param)
		if p.tok != "," {
			break
		}
		p.next()
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	if err := p.expect(","); err != nil {
		return nil, err
	}
	ret, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	ct.Return = ret
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return ct, nil
}
