// Package astio reads syntax trees produced by the external parser. A tree is
// a JSON document:
//
//	{"file": "shapes.mamba", "module": "shapes", "body": [<stmt>...]}
//
// Every node is an object with a "kind" and an optional "pos" of the form
// [line, column] or [line, column, endLine, endColumn]. Type annotations are
// either annotation strings ("Optional[list[int]]") or objects of kind
// Named, Callable or Union. Nodes without a position are numbered the way
// ast.NewProgram does it.
package astio

import (
	"bytes"
	"fmt"
	"os"

	"github.com/segmentio/encoding/json"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/token"
)

type rawProgram struct {
	File   string            `json:"file"`
	Module string            `json:"module"`
	Body   []json.RawMessage `json:"body"`
}

// rawNode is the union of all node shapes. Fields whose meaning depends on
// the kind (body, then, else, value) stay raw until the kind is known.
type rawNode struct {
	Kind     string          `json:"kind"`
	Pos      []int           `json:"pos"`
	Name     string          `json:"name"`
	Op       string          `json:"op"`
	Module   string          `json:"module"`
	Comp     string          `json:"comp"`
	Abstract bool            `json:"abstract"`
	Variadic bool            `json:"variadic"`
	Generic  []string        `json:"generic"`
	Alias    string          `json:"alias"`
	Class    string          `json:"class"`
	Value    json.RawMessage `json:"value"`

	Left       json.RawMessage   `json:"left"`
	Right      json.RawMessage   `json:"right"`
	Operand    json.RawMessage   `json:"operand"`
	Callee     json.RawMessage   `json:"callee"`
	Object     json.RawMessage   `json:"object"`
	Target     json.RawMessage   `json:"target"`
	Iter       json.RawMessage   `json:"iter"`
	Subject    json.RawMessage   `json:"subject"`
	Condition  json.RawMessage   `json:"condition"`
	Guard      json.RawMessage   `json:"guard"`
	Key        json.RawMessage   `json:"key"`
	Element    json.RawMessage   `json:"element"`
	Exception  json.RawMessage   `json:"exception"`
	Pattern    json.RawMessage   `json:"pattern"`
	Default    json.RawMessage   `json:"default"`
	Type       json.RawMessage   `json:"type"`
	Annotation json.RawMessage   `json:"annotation"`
	Returns    json.RawMessage   `json:"returns"`
	Body       json.RawMessage   `json:"body"`
	Then       json.RawMessage   `json:"then"`
	Else       json.RawMessage   `json:"else"`
	Finally    []json.RawMessage `json:"finally"`
	Args       []json.RawMessage `json:"args"`
	Index      []json.RawMessage `json:"index"`
	Elements   []json.RawMessage `json:"elements"`
	Entries    []json.RawMessage `json:"entries"`
	Params     []json.RawMessage `json:"params"`
	Bases      []json.RawMessage `json:"bases"`
	Types      []json.RawMessage `json:"types"`
	Arms       []json.RawMessage `json:"arms"`
	Cases      []json.RawMessage `json:"cases"`
	Clauses    []json.RawMessage `json:"clauses"`
	Conditions []json.RawMessage `json:"conditions"`
	Handlers   []json.RawMessage `json:"handlers"`
	Fields     []json.RawMessage `json:"fields"`
	Names      []json.RawMessage `json:"names"`
}

// Decode reads one program. file is used when the document does not name
// its source file.
func Decode(data []byte, file string) (*ast.Program, error) {
	var raw rawProgram
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if raw.File == "" {
		raw.File = file
	}
	d := &decoder{}
	prog := &ast.Program{File: raw.File, Module: raw.Module}
	for i, s := range raw.Body {
		stmt, err := d.stmt(s)
		if err != nil {
			return nil, fmt.Errorf("%s: statement %d: %w", raw.File, i+1, err)
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	ast.Position(prog)
	return prog, nil
}

// DecodeFile reads and decodes the tree stored at path.
func DecodeFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading syntax tree: %w", err)
	}
	return Decode(data, path)
}

type decoder struct {
	// line and col are the position of the last node that carried one.
	line, col int
}

func (d *decoder) node(data json.RawMessage) (*rawNode, error) {
	var n rawNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	switch len(n.Pos) {
	case 0, 2, 4:
	default:
		return nil, fmt.Errorf("%s: pos must have 2 or 4 elements, got %d", n.Kind, len(n.Pos))
	}
	if len(n.Pos) >= 2 {
		d.line, d.col = n.Pos[0], n.Pos[1]
	}
	return &n, nil
}

// present reports whether an optional raw field was given and is not null.
func present(data json.RawMessage) bool {
	return len(data) > 0 && !bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

func (n *rawNode) tok(typ token.TokenType, lexeme string) token.Token {
	t := token.Token{Type: typ, Lexeme: lexeme}
	if len(n.Pos) >= 2 {
		t.Line, t.Column = n.Pos[0], n.Pos[1]
		t.EndLine, t.EndColumn = n.Pos[0], n.Pos[1]+len(lexeme)
	}
	if len(n.Pos) == 4 {
		t.EndLine, t.EndColumn = n.Pos[2], n.Pos[3]
	}
	return t
}

func (n *rawNode) ident(typ token.TokenType) *ast.Identifier {
	return &ast.Identifier{Token: n.tok(typ, n.Name), Value: n.Name}
}

func (n *rawNode) need(field, value string) error {
	if value == "" {
		return fmt.Errorf("%s at %v: missing %q", n.Kind, n.Pos, field)
	}
	return nil
}

func (d *decoder) stmts(data json.RawMessage) ([]ast.Statement, error) {
	if !present(data) {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("expected a statement list: %w", err)
	}
	return d.stmtList(items)
}

func (d *decoder) stmtList(items []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(items))
	for _, item := range items {
		s, err := d.stmt(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) exprs(items []json.RawMessage) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(items))
	for _, item := range items {
		e, err := d.expr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// optExpr decodes an expression that may be absent.
func (d *decoder) optExpr(data json.RawMessage) (ast.Expression, error) {
	if !present(data) {
		return nil, nil
	}
	return d.expr(data)
}

func (d *decoder) optType(data json.RawMessage) (ast.TypeExpr, error) {
	if !present(data) {
		return nil, nil
	}
	return d.typ(data)
}

func (d *decoder) types(items []json.RawMessage) ([]ast.TypeExpr, error) {
	out := make([]ast.TypeExpr, 0, len(items))
	for _, item := range items {
		t, err := d.typ(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func identifiers(names []string, n *rawNode) []*ast.Identifier {
	out := make([]*ast.Identifier, len(names))
	for i, name := range names {
		out[i] = &ast.Identifier{Token: n.tok(token.IDENT, name), Value: name}
	}
	return out
}

// typ decodes an annotation: a string in the catalog annotation syntax or
// a structured type node.
func (d *decoder) typ(data json.RawMessage) (ast.TypeExpr, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var src string
		if err := json.Unmarshal(trimmed, &src); err != nil {
			return nil, err
		}
		t, err := catalog.ParseType(src)
		if err != nil {
			return nil, err
		}
		d.place(t)
		return t, nil
	}
	n, err := d.node(data)
	if err != nil {
		return nil, err
	}
	switch n.Kind {
	case "Named":
		if err := n.need("name", n.Name); err != nil {
			return nil, err
		}
		args, err := d.types(n.Args)
		if err != nil {
			return nil, err
		}
		tok := n.tok(token.IDENT, n.Name)
		return &ast.NamedType{Token: tok, Name: &ast.Identifier{Token: tok, Value: n.Name}, Args: args}, nil
	case "Callable":
		params, err := d.types(n.Params)
		if err != nil {
			return nil, err
		}
		ret, err := d.optType(n.Returns)
		if err != nil {
			return nil, err
		}
		if ret == nil {
			return nil, fmt.Errorf("Callable at %v: missing \"returns\"", n.Pos)
		}
		return &ast.CallableType{Token: n.tok(token.IDENT, "Callable"), Params: params, Return: ret}, nil
	case "Union":
		types, err := d.types(n.Types)
		if err != nil {
			return nil, err
		}
		if len(types) < 2 {
			return nil, fmt.Errorf("Union at %v: needs at least two members", n.Pos)
		}
		return &ast.UnionType{Token: n.tok(token.OPERATOR, "|"), Types: types}, nil
	}
	return nil, fmt.Errorf("unknown type kind %q", n.Kind)
}

// place moves a parsed annotation, whose positions are relative to its own
// string, to the last decoded position. Without one the positions are
// cleared and ast.Position numbers them with their statement.
func (d *decoder) place(t ast.TypeExpr) {
	move := func(tok *token.Token) {
		if d.line == 0 {
			tok.Line, tok.EndLine = 0, 0
			return
		}
		width := len(tok.Lexeme)
		tok.Line, tok.EndLine = d.line, d.line
		tok.Column = d.col + tok.Column - 1
		tok.EndColumn = tok.Column + width
	}
	switch x := t.(type) {
	case *ast.NamedType:
		move(&x.Token)
		if x.Name != nil {
			move(&x.Name.Token)
		}
		for _, a := range x.Args {
			d.place(a)
		}
	case *ast.CallableType:
		move(&x.Token)
		for _, p := range x.Params {
			d.place(p)
		}
		d.place(x.Return)
	case *ast.UnionType:
		move(&x.Token)
		for _, m := range x.Types {
			d.place(m)
		}
	}
}
