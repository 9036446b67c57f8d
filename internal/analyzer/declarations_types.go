package analyzer

import (
	"strings"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// resolveType converts an annotation into a type in the current scope.
// Unknown names and arity errors are reported and yield Unknown.
func (w *walker) resolveType(expr ast.TypeExpr) typesystem.Type {
	switch t := expr.(type) {
	case nil:
		return typesystem.Unknown
	case *ast.NamedType:
		return w.resolveNamedType(t)
	case *ast.CallableType:
		fn := typesystem.TFunc{Params: make([]typesystem.Type, len(t.Params)), ReturnType: typesystem.None}
		for i, p := range t.Params {
			fn.Params[i] = w.resolveType(p)
		}
		if t.Return != nil {
			fn.ReturnType = w.resolveType(t.Return)
		}
		return fn
	case *ast.UnionType:
		members := make([]typesystem.Type, len(t.Types))
		for i, m := range t.Types {
			members[i] = w.resolveType(m)
		}
		return typesystem.NormalizeUnion(members)
	}
	return typesystem.Unknown
}

func (w *walker) resolveNamedType(t *ast.NamedType) typesystem.Type {
	name := t.Name.Value
	tok := t.GetToken()
	args := make([]typesystem.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = w.resolveType(a)
	}

	switch name {
	case config.NoneTypeName:
		if len(args) > 0 {
			w.errorf(diagnostics.ErrInvalidGenericArity, tok, "'None' expects 0 type arguments, got %d", len(args))
		}
		return typesystem.None
	case config.OptionalFormName:
		if len(args) != 1 {
			w.errorf(diagnostics.ErrInvalidGenericArity, tok, "'Optional' expects 1 type argument, got %d", len(args))
			return typesystem.Unknown
		}
		return typesystem.MakeOptional(args[0])
	case config.UnionFormName:
		if len(args) == 0 {
			w.errorf(diagnostics.ErrInvalidGenericArity, tok, "'Union' expects at least 1 type argument, got 0")
			return typesystem.Unknown
		}
		return typesystem.NormalizeUnion(args)
	case config.TupleFormName:
		return typesystem.TTuple{Elements: args}
	case config.ListFormName:
		name = config.ListTypeName
	case config.SetFormName:
		name = config.SetTypeName
	case config.DictFormName:
		name = config.DictTypeName
	}

	sym, ok := w.lookupTypeSymbol(name)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, tok, "undefined type '%s'", name)
		return typesystem.Unknown
	}

	switch sym.Kind {
	case symbols.ClassSymbol:
		desc, ok := w.classOfSymbol(sym)
		if !ok {
			return typesystem.Unknown
		}
		return w.instantiate(desc, args, tok)

	case symbols.AliasSymbol:
		target := w.an.aliasTarget(sym)
		if len(args) > 0 {
			w.errorf(diagnostics.ErrInvalidGenericArity, tok, "type alias '%s' expects 0 type arguments, got %d", name, len(args))
			return typesystem.Unknown
		}
		return target

	case symbols.TypeParamSymbol:
		if len(args) > 0 {
			w.errorf(diagnostics.ErrInvalidGenericArity, tok, "type parameter '%s' expects 0 type arguments, got %d", name, len(args))
		}
		p, _ := sym.Type.(typesystem.TParam)
		if p.Owner != "" {
			return p
		}
		// A module-level TypeVar. Signatures adopt it as their own type
		// parameter; anywhere else it is unbound.
		if w.implicit != nil {
			return w.implicit.bind(p.Name)
		}
		w.errorf(diagnostics.ErrTypeMismatch, tok, "type variable '%s' is unbound here", name)
		return typesystem.Unknown
	}

	w.errorf(diagnostics.ErrTypeMismatch, tok, "'%s' is not a type", name)
	return typesystem.Unknown
}

// lookupTypeSymbol finds a name in scope. Dotted names are looked up in the
// named module's top-level scope.
func (w *walker) lookupTypeSymbol(name string) (symbols.Symbol, bool) {
	if i := strings.LastIndex(name, "."); i > 0 {
		m, ok := w.an.moduleByName(name[:i])
		if !ok {
			return symbols.Symbol{}, false
		}
		return m.Globals.FindLocal(name[i+1:])
	}
	return w.symbolTable.Find(name)
}

// classOfSymbol returns the descriptor a class symbol refers to. Imported
// classes may be bound under another name.
func (w *walker) classOfSymbol(sym symbols.Symbol) (*symbols.ClassDescriptor, bool) {
	tt, ok := sym.Type.(typesystem.TType)
	if !ok {
		return nil, false
	}
	return w.an.table.ClassOf(tt.Type)
}

// aliasTarget resolves a type alias on first use, so an alias may name a
// class declared later in the file or in another module. Errors in the
// alias are reported in the module that declares it.
func (a *Analyzer) aliasTarget(sym symbols.Symbol) typesystem.Type {
	node, ok := sym.DefinitionNode.(*ast.TypeAliasStmt)
	if !ok {
		return typesystem.Unknown
	}
	m, ok := a.moduleByName(sym.OriginModule)
	if !ok {
		return typesystem.Unknown
	}
	info, ok := m.Aliases[node.Name.Value]
	if !ok {
		return typesystem.Unknown
	}
	if info.Target != nil {
		return info.Target
	}
	if a.sealed {
		return typesystem.Unknown
	}
	aw := a.newWalker(m, a.collector(m), a.typeMap(m), ModeHeaders)
	if info.Resolving {
		aw.errorf(diagnostics.ErrTypeMismatch, node.Name.GetToken(), "type alias '%s' is defined in terms of itself", info.Name)
		info.Target = typesystem.Unknown
		return info.Target
	}
	info.Resolving = true
	target := aw.resolveType(node.Value)
	info.Resolving = false
	if info.Target == nil {
		info.Target = target
	}
	return info.Target
}

// typeFromExpr reads a type written in expression position, as in
// `Box[int]()` or `isinstance(x, Box)`.
func typeFromExpr(e ast.Expression) (ast.TypeExpr, bool) {
	switch x := e.(type) {
	case *ast.Identifier:
		return &ast.NamedType{Token: x.Token, Name: x}, true
	case *ast.NoneLiteral:
		id := &ast.Identifier{Token: x.Token, Value: config.NoneTypeName}
		return &ast.NamedType{Token: x.Token, Name: id}, true
	case *ast.AttributeExpr:
		path, ok := exprPath(x)
		if !ok {
			return nil, false
		}
		id := &ast.Identifier{Token: x.Name.Token, Value: path}
		return &ast.NamedType{Token: x.Name.Token, Name: id}, true
	case *ast.SubscriptExpr:
		base, ok := typeFromExpr(x.Object)
		if !ok {
			return nil, false
		}
		nt, ok := base.(*ast.NamedType)
		if !ok {
			return nil, false
		}
		out := &ast.NamedType{Token: nt.Token, Name: nt.Name}
		for _, idx := range x.Index {
			arg, ok := typeFromExpr(idx)
			if !ok {
				return nil, false
			}
			out.Args = append(out.Args, arg)
		}
		return out, true
	}
	return nil, false
}

// exprPath renders identifier chains such as `self.head.next` as a dotted
// path. Narrowing is keyed by these paths.
func exprPath(e ast.Expression) (string, bool) {
	switch x := e.(type) {
	case *ast.Identifier:
		return x.Value, true
	case *ast.AttributeExpr:
		base, ok := exprPath(x.Object)
		if !ok || x.Name == nil {
			return "", false
		}
		return base + "." + x.Name.Value, true
	}
	return "", false
}

// implicitParams turns module-level TypeVars used in a signature into
// parameters owned by that signature.
type implicitParams struct {
	owner  string
	params []typesystem.TParam
}

func (ip *implicitParams) bind(name string) typesystem.TParam {
	for _, p := range ip.params {
		if p.Name == name {
			return p
		}
	}
	p := typesystem.TParam{Name: name, Owner: ip.owner}
	ip.params = append(ip.params, p)
	return p
}

// typeToken picks a position for diagnostics about a type expression.
func typeToken(t ast.TypeExpr, fallback token.Token) token.Token {
	if t != nil && t.GetToken().Line != 0 {
		return t.GetToken()
	}
	return fallback
}
