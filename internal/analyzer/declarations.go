package analyzer

import (
	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// declareHeaders is the sequential half of pass 1. Every module has been
// named; now classes enter the shared index, imports are bound and all
// annotations are resolved, so forward references across the whole session
// work. Classes are linked at the end.
func (a *Analyzer) declareHeaders(mods []*symbols.Module) {
	for _, m := range mods {
		a.registerClasses(m)
	}
	walkers := make([]*walker, len(mods))
	for i, m := range mods {
		walkers[i] = a.newWalker(m, a.collector(m), a.typeMap(m), ModeHeaders)
		walkers[i].bindImports()
	}
	for _, w := range walkers {
		for _, desc := range w.module.Classes {
			w.resolveBases(desc)
		}
	}
	for _, w := range walkers {
		for _, desc := range w.module.Classes {
			w.declareMembers(desc)
		}
		w.declareFunctions()
		w.declareVariables()
	}
	for _, w := range walkers {
		w.resolveAliases()
	}

	var classes []*symbols.ClassDescriptor
	for _, m := range mods {
		classes = append(classes, m.Classes...)
	}
	a.linkAll(classes)
	a.harvestFields(walkers, classes)
	a.logger.Debug("declarations resolved", zap.Int("modules", len(mods)), zap.Int("classes", len(classes)))
}

// registerClasses adds a module's classes to the session-wide class index.
// Class names are global across modules; a clash leaves the later module
// without a sound table.
func (a *Analyzer) registerClasses(m *symbols.Module) {
	kept := m.Classes[:0]
	for _, desc := range m.Classes {
		prev, ok := a.table.RegisterClass(desc)
		if !ok {
			a.collector(m).Add(diagnostics.NewErrorf(diagnostics.ErrDuplicateDefinition, desc.Token,
				"class '%s' is already defined in module '%s'", desc.Name, prev.Module))
			m.Fatal = true
			continue
		}
		kept = append(kept, desc)
	}
	m.Classes = kept
}

// resolveBases resolves the written base list. A class without bases
// derives from object.
func (w *walker) resolveBases(desc *symbols.ClassDescriptor) {
	if desc.Node != nil {
		w.inScope(w.classScope(desc), func() {
			seen := make(map[string]bool)
			for _, b := range desc.Node.Bases {
				tok := b.GetToken()
				if nt, ok := b.(*ast.NamedType); ok && nt.Name != nil && nt.Name.Value == config.GenericFormName {
					if len(genericBaseParams(b)) != len(nt.Args) || len(nt.Args) == 0 {
						w.errorf(diagnostics.ErrTypeMismatch, tok, "'Generic' takes type variables only")
					}
					continue
				}
				var base typesystem.TClass
				switch t := w.resolveType(b).(type) {
				case typesystem.TClass:
					base = t
				case typesystem.TPrim:
					if typesystem.IsNone(t) {
						w.errorf(diagnostics.ErrTypeMismatch, tok, "class '%s' cannot derive from None", desc.Name)
						continue
					}
					base = typesystem.TClass{Name: t.Name}
				case typesystem.TUnknown:
					continue
				default:
					w.errorf(diagnostics.ErrTypeMismatch, tok, "base of class '%s' must be a class, got %s", desc.Name, t)
					continue
				}
				if base.Name == desc.Name {
					w.errorf(diagnostics.ErrCyclicInheritance, tok, "cyclic inheritance: %s -> %s", desc.Name, desc.Name)
					desc.Cyclic = true
					continue
				}
				if seen[base.Name] {
					w.errorf(diagnostics.ErrDuplicateDefinition, tok, "duplicate base class '%s'", base.Name)
					continue
				}
				seen[base.Name] = true
				desc.Bases = append(desc.Bases, base)
			}
		})
	}
	if len(desc.Bases) == 0 && desc.Name != config.ObjectTypeName && !desc.Cyclic {
		desc.Bases = append(desc.Bases, typesystem.TClass{Name: config.ObjectTypeName})
	}
}

// lateField is a class attribute whose initializer is not a literal. Its
// type is inferred once classes are linked.
type lateField struct {
	desc  *symbols.ClassDescriptor
	field *symbols.FieldInfo
	value ast.Expression
}

// declareMembers resolves method signatures and class-level attributes.
func (w *walker) declareMembers(desc *symbols.ClassDescriptor) {
	if desc.Node == nil {
		return
	}
	w.inScope(w.classScope(desc), func() {
		for _, stmt := range desc.Node.Body {
			switch s := stmt.(type) {
			case *ast.FunctionDef:
				if s.Name == nil {
					continue
				}
				sig := w.buildSignature(s, desc)
				w.an.sigs[s] = sig
				if !desc.AddMethod(sig) {
					w.errorf(diagnostics.ErrDuplicateDefinition, s.Name.GetToken(),
						"method '%s' is already defined in class '%s'", s.Name.Value, desc.Name)
				}
			case *ast.AssignStmt:
				w.declareClassField(desc, s)
			}
		}
	})
}

func (w *walker) declareClassField(desc *symbols.ClassDescriptor, s *ast.AssignStmt) {
	id, ok := s.Target.(*ast.Identifier)
	if !ok {
		return
	}
	f := &symbols.FieldInfo{Name: id.Value, Token: id.GetToken()}
	_, isNone := s.Value.(*ast.NoneLiteral)
	switch {
	case s.Annotation != nil:
		f.Type = w.resolveType(s.Annotation)
		if isNone {
			f.Type = typesystem.MakeOptional(f.Type)
		}
	case isNone:
		f.Type = typesystem.None
		f.Sentinel = true
	case s.Value != nil:
		f.Type = literalType(s.Value)
	default:
		f.Type = typesystem.Unknown
	}
	if _, exists := desc.Methods[f.Name]; exists || !desc.AddField(f) {
		w.errorf(diagnostics.ErrDuplicateDefinition, id.GetToken(),
			"attribute '%s' is already defined in class '%s'", f.Name, desc.Name)
		return
	}
	if s.Annotation == nil && !isNone && s.Value != nil && typesystem.IsUnknown(f.Type) {
		w.an.lateFields = append(w.an.lateFields, lateField{desc: desc, field: f, value: s.Value})
	}
}

// declareFunctions resolves the signatures of top-level functions.
func (w *walker) declareFunctions() {
	for _, stmt := range w.module.Program.Statements {
		fd, ok := stmt.(*ast.FunctionDef)
		if !ok || fd.Name == nil {
			continue
		}
		sym, ok := w.module.Globals.FindLocal(fd.Name.Value)
		if !ok || sym.DefinitionNode != fd {
			continue
		}
		sig := w.buildSignature(fd, nil)
		w.an.sigs[fd] = sig
		w.module.Functions = append(w.module.Functions, sig)
		if w.module == w.an.builtins {
			w.an.table.RegisterFunction(sig)
		}
	}
}

// declareVariables gives annotated module variables their declared type.
// Unannotated ones are typed by their first assignment in pass 2.
func (w *walker) declareVariables() {
	for _, stmt := range w.module.Program.Statements {
		s, ok := stmt.(*ast.AssignStmt)
		if !ok || s.Annotation == nil {
			continue
		}
		id, ok := s.Target.(*ast.Identifier)
		if !ok {
			continue
		}
		sym, ok := w.module.Globals.FindLocal(id.Value)
		if !ok || sym.Kind != symbols.VariableSymbol || sym.DefinitionFile != w.module.File {
			continue
		}
		if sym.Type != nil {
			// A second annotation of the same variable.
			if sym.DefinitionNode != s {
				w.errorf(diagnostics.ErrDuplicateDefinition, id.GetToken(),
					"'%s' is already declared at line %d", id.Value, sym.Token.Line)
			}
			continue
		}
		sym.Type = w.resolveType(s.Annotation)
		if _, isNone := s.Value.(*ast.NoneLiteral); isNone {
			sym.Type = typesystem.MakeOptional(sym.Type)
		}
		sym.DefinitionNode = s
		sym.Token = id.GetToken()
		w.module.Globals.Replace(sym)
	}
}

// resolveAliases resolves every alias of the module, so errors in unused
// aliases are still reported.
func (w *walker) resolveAliases() {
	for _, stmt := range w.module.Program.Statements {
		s, ok := stmt.(*ast.TypeAliasStmt)
		if !ok || s.Name == nil {
			continue
		}
		if sym, ok := w.module.Globals.FindLocal(s.Name.Value); ok && sym.DefinitionNode == s {
			w.an.aliasTarget(sym)
		}
	}
}
