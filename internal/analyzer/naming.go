package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// nameProgram runs the naming pass over one module: every top-level class,
// function, alias and module variable is declared without looking at
// annotations or bodies. It only writes to the module's own scope, so
// modules are named in parallel.
func (w *walker) nameProgram(program *ast.Program) {
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.ClassDef:
			w.nameClass(s)
		case *ast.FunctionDef:
			w.nameFunction(s)
		case *ast.TypeAliasStmt:
			w.nameAlias(s)
		case *ast.AssignStmt:
			w.nameGlobal(s)
		}
	}
}

// redefinesBuiltinClass reports a top-level declaration that reuses the
// name of a catalog class. The module's table is unsound afterwards.
func (w *walker) redefinesBuiltinClass(name *ast.Identifier) bool {
	if w.module == w.an.builtins {
		return false
	}
	sym, ok := w.an.table.Builtins().FindLocal(name.Value)
	if !ok || sym.Kind != symbols.ClassSymbol {
		return false
	}
	w.errorf(diagnostics.ErrDuplicateDefinition, name.GetToken(), "cannot redefine built-in class '%s'", name.Value)
	w.module.Fatal = true
	return true
}

func (w *walker) define(sym symbols.Symbol) bool {
	sym.OriginModule = w.module.Name
	sym.DefinitionFile = w.module.File
	prev, ok := w.symbolTable.Define(sym)
	if !ok {
		w.errorf(diagnostics.ErrDuplicateDefinition, sym.Token,
			"'%s' is already defined at line %d", sym.Name, prev.Token.Line)
	}
	return ok
}

func (w *walker) nameClass(s *ast.ClassDef) {
	if s.Name == nil || w.redefinesBuiltinClass(s.Name) {
		return
	}
	name := s.Name.Value
	desc := symbols.NewClassDescriptor(name, w.module.Name)
	desc.File = w.module.File
	desc.Token = s.Name.GetToken()
	desc.Node = s
	desc.IsBuiltin = w.module == w.an.builtins
	if meta, ok := w.an.meta[name]; ok && desc.IsBuiltin {
		desc.IsPrimitive = meta.primitive
		desc.Promotes = meta.promotes
	}

	seen := make(map[string]bool)
	params := s.TypeParams
	for _, b := range s.Bases {
		params = append(params, genericBaseParams(b)...)
	}
	for _, tp := range params {
		if seen[tp.Value] {
			w.errorf(diagnostics.ErrDuplicateDefinition, tp.GetToken(),
				"type parameter '%s' is listed twice in class '%s'", tp.Value, name)
			continue
		}
		seen[tp.Value] = true
		desc.TypeParams = append(desc.TypeParams, typesystem.TParam{Name: tp.Value, Owner: name})
	}

	if !w.define(symbols.Symbol{
		Name:           name,
		Type:           typesystem.TType{Type: desc.SelfType()},
		Kind:           symbols.ClassSymbol,
		DefinitionNode: s,
		Token:          s.Name.GetToken(),
	}) {
		return
	}
	w.module.Classes = append(w.module.Classes, desc)
}

func (w *walker) nameFunction(s *ast.FunctionDef) {
	if s.Name == nil || w.redefinesBuiltinClass(s.Name) {
		return
	}
	w.define(symbols.Symbol{
		Name:           s.Name.Value,
		Kind:           symbols.FunctionSymbol,
		DefinitionNode: s,
		Token:          s.Name.GetToken(),
	})
}

func (w *walker) nameAlias(s *ast.TypeAliasStmt) {
	if s.Name == nil || w.redefinesBuiltinClass(s.Name) {
		return
	}
	if !w.define(symbols.Symbol{
		Name:           s.Name.Value,
		Kind:           symbols.AliasSymbol,
		DefinitionNode: s,
		Token:          s.Name.GetToken(),
	}) {
		return
	}
	w.module.Aliases[s.Name.Value] = &symbols.AliasInfo{Name: s.Name.Value, Node: s, Module: w.module}
}

// nameGlobal declares the names bound by a module-level assignment. Their
// types are filled in by the header pass (annotations) or when the module's
// statements are checked.
func (w *walker) nameGlobal(s *ast.AssignStmt) {
	if id, ok := s.Target.(*ast.Identifier); ok {
		if tv, ok := typeVarDecl(s); ok {
			w.define(symbols.Symbol{
				Name:           id.Value,
				Type:           typesystem.TParam{Name: tv},
				Kind:           symbols.TypeParamSymbol,
				DefinitionNode: s,
				Token:          id.GetToken(),
			})
			return
		}
	}
	for _, id := range targetNames(s.Target) {
		if w.symbolTable.IsDefinedLocally(id.Value) {
			continue
		}
		w.symbolTable.Define(symbols.Symbol{
			Name:           id.Value,
			Kind:           symbols.VariableSymbol,
			IsMutable:      true,
			OriginModule:   w.module.Name,
			DefinitionNode: s,
			DefinitionFile: w.module.File,
			Token:          id.GetToken(),
		})
	}
}

// genericBaseParams returns the type parameters listed by a
// `Generic[T, U]` base, or nil for any other base.
func genericBaseParams(b ast.TypeExpr) []*ast.Identifier {
	nt, ok := b.(*ast.NamedType)
	if !ok || nt.Name == nil || nt.Name.Value != config.GenericFormName {
		return nil
	}
	out := make([]*ast.Identifier, 0, len(nt.Args))
	for _, a := range nt.Args {
		if arg, ok := a.(*ast.NamedType); ok && arg.Name != nil && len(arg.Args) == 0 {
			out = append(out, arg.Name)
		}
	}
	return out
}

// typeVarDecl recognises `T = TypeVar("T")`.
func typeVarDecl(s *ast.AssignStmt) (string, bool) {
	call, ok := s.Value.(*ast.CallExpr)
	if !ok {
		return "", false
	}
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Value != config.TypeVarFuncName {
		return "", false
	}
	if len(call.Args) > 0 {
		if lit, ok := call.Args[0].(*ast.StringLiteral); ok {
			return lit.Value, true
		}
	}
	if id, ok := s.Target.(*ast.Identifier); ok {
		return id.Value, true
	}
	return "", false
}

// targetNames lists the identifiers bound by an assignment target.
func targetNames(target ast.Expression) []*ast.Identifier {
	switch t := target.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{t}
	case *ast.TupleLiteral:
		var out []*ast.Identifier
		for _, e := range t.Elements {
			out = append(out, targetNames(e)...)
		}
		return out
	case *ast.ListLiteral:
		var out []*ast.Identifier
		for _, e := range t.Elements {
			out = append(out, targetNames(e)...)
		}
		return out
	}
	return nil
}
