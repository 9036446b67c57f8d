package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
)

// bindImports binds the names of every `from m import x` statement into the
// module scope. It runs after all modules are named, so the order of files
// does not matter, and it may run again once the source module's variables
// have their types.
func (w *walker) bindImports() {
	for _, stmt := range w.module.Program.Statements {
		if imp, ok := stmt.(*ast.ImportFromStmt); ok {
			w.bindImport(imp)
		}
	}
}

func (w *walker) bindImport(imp *ast.ImportFromStmt) {
	src, ok := w.an.moduleByName(imp.Module)
	if !ok {
		w.errorf(diagnostics.ErrUndefinedSymbol, imp.GetToken(), "no module named '%s'", imp.Module)
		return
	}
	if src == w.module {
		w.errorf(diagnostics.ErrUndefinedSymbol, imp.GetToken(), "module '%s' imports itself", imp.Module)
		return
	}
	for _, in := range imp.Names {
		if in.Name == nil {
			continue
		}
		sym, ok := src.Globals.FindLocal(in.Name.Value)
		if !ok {
			w.errorf(diagnostics.ErrUndefinedSymbol, in.Name.GetToken(),
				"cannot import name '%s' from '%s'", in.Name.Value, imp.Module)
			continue
		}
		local := in.Name
		if in.Alias != nil {
			local = in.Alias
		}
		if prev, ok := w.module.Globals.FindLocal(local.Value); ok && prev.DefinitionFile == w.module.File {
			w.errorf(diagnostics.ErrDuplicateDefinition, local.GetToken(),
				"'%s' is already defined at line %d", local.Value, prev.Token.Line)
			continue
		}
		sym.Name = local.Value
		w.module.Globals.Replace(sym)
	}
}

// importOrder sorts modules so that a module comes after the modules it
// imports from. Import cycles keep file order.
func importOrder(modules []*symbols.Module) []*symbols.Module {
	byName := make(map[string]*symbols.Module, len(modules))
	for _, m := range modules {
		byName[m.Name] = m
	}
	state := make(map[*symbols.Module]int) // 1 visiting, 2 done
	out := make([]*symbols.Module, 0, len(modules))
	var visit func(m *symbols.Module)
	visit = func(m *symbols.Module) {
		if state[m] != 0 {
			return
		}
		state[m] = 1
		for _, stmt := range m.Program.Statements {
			if imp, ok := stmt.(*ast.ImportFromStmt); ok {
				if dep, ok := byName[imp.Module]; ok {
					visit(dep)
				}
			}
		}
		state[m] = 2
		out = append(out, m)
	}
	for _, m := range modules {
		visit(m)
	}
	return out
}
