package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// narrowCondition returns two block scopes below the current one: yes holds
// what is known when cond is true and no what is known when it is false.
// The condition must already have been inferred.
func (w *walker) narrowCondition(cond ast.Expression) (yes, no *symbols.SymbolTable) {
	yes, no = w.newBlock(), w.newBlock()
	w.narrowInto(cond, yes, no)
	return yes, no
}

func (w *walker) narrowInto(cond ast.Expression, yes, no *symbols.SymbolTable) {
	switch n := cond.(type) {
	case *ast.UnaryExpr:
		if n.Op == "not" {
			w.narrowInto(n.Operand, no, yes)
		}

	case *ast.BinaryExpr:
		switch n.Op {
		case "and":
			// Both sides hold on the true path; the false path is not narrowed.
			w.narrowInto(n.Left, yes, w.newBlock())
			w.inScope(yes, func() { w.narrowInto(n.Right, yes, w.newBlock()) })
		case "or":
			w.narrowInto(n.Left, w.newBlock(), no)
			w.inScope(no, func() { w.narrowInto(n.Right, w.newBlock(), no) })
		case "is", "==":
			w.narrowNone(n, yes, no)
		case "is not", "!=":
			w.narrowNone(n, no, yes)
		}

	case *ast.CallExpr:
		w.narrowIsInstance(n, yes, no)

	case *ast.Identifier, *ast.AttributeExpr:
		// Truthiness rules out None; a false value may still be 0 or "".
		path, t, ok := w.pathType(n)
		if ok && typesystem.IsOptional(t) {
			yes.Narrow(path, typesystem.RemoveNone(t))
		}
	}
}

// pathType returns the narrowing key of a name or attribute chain and its
// type at this point.
func (w *walker) pathType(e ast.Expression) (string, typesystem.Type, bool) {
	path, ok := exprPath(e)
	if !ok {
		return "", nil, false
	}
	if t, ok := w.symbolTable.TypeOf(path); ok && t != nil {
		return path, t, true
	}
	if t, ok := w.TypeMap[e]; ok {
		return path, t, true
	}
	return "", nil, false
}

// narrowNone handles `x is None` and `x == None`; isNone receives the
// narrowing for the path where x is None.
func (w *walker) narrowNone(n *ast.BinaryExpr, isNone, notNone *symbols.SymbolTable) {
	subject := n.Left
	if _, ok := n.Left.(*ast.NoneLiteral); ok {
		subject = n.Right
	} else if _, ok := n.Right.(*ast.NoneLiteral); !ok {
		return
	}
	path, t, ok := w.pathType(subject)
	if !ok || typesystem.IsUnknown(t) {
		return
	}
	if !typesystem.IsOptional(t) {
		if typesystem.IsNone(t) {
			return
		}
		// A value that cannot be None never takes the None path.
		isNone.Narrow(path, typesystem.None)
		return
	}
	isNone.Narrow(path, typesystem.None)
	notNone.Narrow(path, typesystem.RemoveNone(t))
}

// narrowIsInstance handles `isinstance(x, C)` and `isinstance(x, (C, D))`.
func (w *walker) narrowIsInstance(call *ast.CallExpr, yes, no *symbols.SymbolTable) {
	callee, ok := call.Callee.(*ast.Identifier)
	if !ok || callee.Value != config.IsInstanceFuncName || len(call.Args) != 2 {
		return
	}
	if sym, ok := w.symbolTable.Find(callee.Value); !ok || sym.Kind != symbols.FunctionSymbol {
		return
	}
	path, t, ok := w.pathType(call.Args[0])
	if !ok {
		return
	}
	classes := w.classArgs(call.Args[1])
	if len(classes) == 0 {
		return
	}
	matched, rest := w.splitByClass(t, classes)
	if len(matched) > 0 {
		yes.Narrow(path, typesystem.NormalizeUnion(matched))
	}
	if len(rest) > 0 && !typesystem.IsUnknown(t) {
		no.Narrow(path, typesystem.NormalizeUnion(rest))
	}
}

// classArgs returns the instance types named by the second argument of
// isinstance. Generic classes are taken with unknown arguments.
func (w *walker) classArgs(e ast.Expression) []typesystem.Type {
	var out []typesystem.Type
	add := func(t typesystem.Type) {
		tt, ok := t.(typesystem.TType)
		if !ok {
			return
		}
		inst := tt.Type
		if c, ok := inst.(typesystem.TClass); ok {
			if desc, ok := w.an.table.Class(c.Name); ok && typesystem.Equal(c, desc.SelfType()) && desc.Arity() > 0 {
				args := make([]typesystem.Type, desc.Arity())
				for i := range args {
					args[i] = typesystem.Unknown
				}
				inst = typesystem.TClass{Name: c.Name, Args: args}
			}
		}
		out = append(out, inst)
	}
	switch t := w.TypeMap[e].(type) {
	case typesystem.TType:
		add(t)
	case typesystem.TTuple:
		for _, el := range t.Elements {
			add(el)
		}
	}
	return out
}

// splitByClass divides the members of t into the part that is an instance
// of one of classes and the part that is not. A member that is a base of
// a class contributes that class to the matched side and stays on the other.
func (w *walker) splitByClass(t typesystem.Type, classes []typesystem.Type) (matched, rest []typesystem.Type) {
	if typesystem.IsUnknown(t) {
		return classes, nil
	}
	for _, m := range typesystem.Members(t) {
		if _, ok := m.(typesystem.TParam); ok {
			matched = append(matched, classes...)
			rest = append(rest, m)
			continue
		}
		covered := false
		for _, c := range classes {
			if w.isInstanceOf(m, c) {
				matched = append(matched, m)
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		for _, c := range classes {
			if w.isInstanceOf(c, m) {
				matched = append(matched, c)
			}
		}
		rest = append(rest, m)
	}
	return matched, rest
}

// isInstanceOf is assignability without numeric promotion: an int is not
// an instance of float.
func (w *walker) isInstanceOf(t, class typesystem.Type) bool {
	tp, ok1 := t.(typesystem.TPrim)
	cp, ok2 := class.(typesystem.TPrim)
	if ok1 && ok2 {
		return tp.Name == cp.Name || w.an.table.IsSubclass(tp.Name, cp.Name)
	}
	return w.isAssignable(class, t)
}
