package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// harvestRounds is how often method bodies are scanned for attributes. The
// second round sees the attributes of every class, so an attribute copied
// from another class's attribute gets a type too.
const harvestRounds = 2

// harvestFields declares instance attributes assigned through `self` in
// method bodies, `__init__` first. Bodies are checked silently; only the
// attribute assignments have an effect.
func (a *Analyzer) harvestFields(walkers []*walker, classes []*symbols.ClassDescriptor) {
	a.harvesting = true
	defer func() { a.harvesting = false }()

	for round := 0; round < harvestRounds; round++ {
		for _, w := range walkers {
			hw := a.newWalker(w.module, w.errors, nil, ModeInfer)
			for _, desc := range w.module.Classes {
				if desc.Node == nil {
					continue
				}
				hw.harvest = desc
				for _, fd := range initFirst(desc.Node.Methods()) {
					if sig, ok := a.sigs[fd]; ok && !sig.Abstract {
						hw.checkFunctionBody(sig, desc)
					}
				}
				hw.harvest = nil
			}
		}
		for _, lf := range a.lateFields {
			if !typesystem.ContainsUnknown(lf.field.Type) {
				continue
			}
			m, ok := a.moduleByName(lf.desc.Module)
			if !ok {
				continue
			}
			hw := a.newWalker(m, a.collector(m), nil, ModeInfer)
			hw.inScope(hw.classScope(lf.desc), func() {
				lf.field.Type = hw.inferExpr(lf.value, nil)
			})
		}
		a.linkAll(classes)
	}

	for _, w := range walkers {
		for _, desc := range w.module.Classes {
			for _, name := range desc.FieldOrder {
				f := desc.Fields[name]
				if typesystem.ContainsUnknown(f.Type) && (a.harvested[f] || a.isLateField(f)) {
					w.warnf(diagnostics.ErrUninferredAttributeType, f.Token,
						"cannot infer the type of attribute '%s' of class '%s'; add an annotation", name, desc.Name)
				}
			}
		}
	}
}

func (a *Analyzer) isLateField(f *symbols.FieldInfo) bool {
	for _, lf := range a.lateFields {
		if lf.field == f {
			return true
		}
	}
	return false
}

func initFirst(methods []*ast.FunctionDef) []*ast.FunctionDef {
	out := make([]*ast.FunctionDef, 0, len(methods))
	for _, fd := range methods {
		if fd.Name != nil && fd.Name.Value == config.InitMethodName {
			out = append(out, fd)
		}
	}
	for _, fd := range methods {
		if fd.Name == nil || fd.Name.Value != config.InitMethodName {
			out = append(out, fd)
		}
	}
	return out
}

// selfAttribute returns the attribute name when target is `self.name` and
// self is the receiver of the method being checked.
func (w *walker) selfAttribute(target *ast.AttributeExpr) (string, bool) {
	id, ok := target.Object.(*ast.Identifier)
	if !ok || target.Name == nil {
		return "", false
	}
	fn := w.symbolTable.Function
	if fn == nil || !fn.IsMethod() || fn.Params[0].Name != id.Value {
		return "", false
	}
	sym, ok := w.symbolTable.Find(id.Value)
	if !ok || sym.Kind != symbols.ParameterSymbol {
		return "", false
	}
	return target.Name.Value, true
}

// harvestField records the type assigned to `self.name` while attributes
// are being collected. Declared attributes only change when they are
// sentinels: the first non-None value fixes them to Optional.
func (w *walker) harvestField(name string, t typesystem.Type, tok token.Token) {
	desc := w.harvest
	if fn := w.symbolTable.Function; fn == nil || fn.Owner != desc.Name {
		return
	}
	if f, ok := desc.Fields[name]; ok {
		switch {
		case f.Sentinel && typesystem.IsNone(f.Type) && !typesystem.IsNone(t) && !typesystem.ContainsUnknown(t):
			f.Type = typesystem.MakeOptional(t)
		case w.an.harvested[f] && !f.Sentinel && typesystem.ContainsUnknown(f.Type) && !typesystem.ContainsUnknown(t):
			f.Type = t
		}
		return
	}
	if _, ok := desc.Methods[name]; ok {
		return
	}
	if m, ok := desc.Lookup(name); ok && m.Owner != desc.Name {
		return
	}
	f := &symbols.FieldInfo{Name: name, Type: t, Token: tok, Sentinel: typesystem.IsNone(t)}
	if desc.AddField(f) {
		w.an.harvested[f] = true
	}
}
