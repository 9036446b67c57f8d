package analyzer

import (
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

const maxAssignDepth = 32

// isAssignable reports whether a value of type actual may be stored where
// expected is declared. Unknown is compatible both ways.
func (w *walker) isAssignable(expected, actual typesystem.Type) bool {
	return w.an.assignable(expected, actual, 0)
}

func (a *Analyzer) assignable(expected, actual typesystem.Type, depth int) bool {
	if depth > maxAssignDepth || typesystem.IsUnknown(expected) || typesystem.IsUnknown(actual) {
		return true
	}
	if typesystem.Equal(expected, actual) || isObject(expected) {
		return true
	}
	switch actual.(type) {
	case typesystem.TUnion, typesystem.TOptional:
		for _, m := range typesystem.Members(actual) {
			if !a.assignable(expected, m, depth+1) {
				return false
			}
		}
		return true
	}

	switch e := expected.(type) {
	case typesystem.TOptional:
		return typesystem.IsNone(actual) || a.assignable(e.Inner, actual, depth+1)

	case typesystem.TUnion:
		for _, m := range e.Types {
			if a.assignable(m, actual, depth+1) {
				return true
			}
		}
		return false

	case typesystem.TPrim:
		if p, ok := actual.(typesystem.TPrim); ok {
			return a.promotes(p.Name, e.Name)
		}
		_, ok := a.table.AsInstanceOf(actual, e.Name)
		return ok

	case typesystem.TClass:
		if tt, ok := actual.(typesystem.TTuple); ok {
			return a.tupleAssignable(e, tt, depth)
		}
		inst, ok := a.table.AsInstanceOf(actual, e.Name)
		if !ok || len(inst.Args) != len(e.Args) {
			return false
		}
		for i := range e.Args {
			if !sameType(e.Args[i], inst.Args[i]) {
				return false
			}
		}
		return true

	case typesystem.TTuple:
		at, ok := actual.(typesystem.TTuple)
		if !ok || len(at.Elements) != len(e.Elements) {
			return false
		}
		for i := range e.Elements {
			if !a.assignable(e.Elements[i], at.Elements[i], depth+1) {
				return false
			}
		}
		return true

	case typesystem.TFunc:
		af, ok := actual.(typesystem.TFunc)
		if !ok {
			return false
		}
		return a.funcAssignable(e, af, depth)

	case typesystem.TType:
		at, ok := actual.(typesystem.TType)
		return ok && a.assignable(e.Type, at.Type, depth+1)
	}
	return false
}

// tupleAssignable views a fixed tuple as tuple[U], U the union of its
// elements. Tuples are immutable, so element types are covariant.
func (a *Analyzer) tupleAssignable(expected typesystem.TClass, actual typesystem.TTuple, depth int) bool {
	view := tupleClass(actual)
	inst, ok := a.table.AsInstanceOf(view, expected.Name)
	if !ok || len(inst.Args) != len(expected.Args) {
		return false
	}
	for i := range expected.Args {
		if !a.assignable(expected.Args[i], inst.Args[i], depth+1) {
			return false
		}
	}
	return true
}

// funcAssignable checks a callable against an expected callable type:
// parameters contravariant, return covariant. An expected None return
// accepts any result, which is how callbacks that ignore results are typed.
func (a *Analyzer) funcAssignable(expected, actual typesystem.TFunc, depth int) bool {
	n := len(expected.Params)
	if actual.MinArgs() > n {
		return false
	}
	if !actual.IsVariadic && len(actual.Params) < n {
		return false
	}
	for i := 0; i < n; i++ {
		p, ok := actual.ParamAt(i)
		if !ok {
			return false
		}
		if !a.assignable(p, expected.Params[i], depth+1) {
			return false
		}
	}
	if expected.ReturnType == nil || typesystem.IsNone(expected.ReturnType) {
		return true
	}
	return a.assignable(expected.ReturnType, actual.ReturnType, depth+1)
}

// promotes reports whether primitive from widens to primitive to, as int
// does to float.
func (a *Analyzer) promotes(from, to string) bool {
	if from == to {
		return true
	}
	desc, ok := a.table.Class(from)
	if !ok {
		return false
	}
	for _, p := range desc.Promotes {
		if p == to {
			return true
		}
	}
	return false
}

// sameType compares type arguments of invariant positions. Unknown matches
// anything, so `[]` fits any list type.
func sameType(x, y typesystem.Type) bool {
	if typesystem.IsUnknown(x) || typesystem.IsUnknown(y) || typesystem.Equal(x, y) {
		return true
	}
	switch a := x.(type) {
	case typesystem.TClass:
		b, ok := y.(typesystem.TClass)
		if !ok || a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !sameType(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case typesystem.TOptional:
		b, ok := y.(typesystem.TOptional)
		return ok && sameType(a.Inner, b.Inner)
	case typesystem.TTuple:
		b, ok := y.(typesystem.TTuple)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !sameType(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case typesystem.TUnion:
		b, ok := y.(typesystem.TUnion)
		if !ok || len(a.Types) != len(b.Types) {
			return false
		}
		for i := range a.Types {
			if !sameType(a.Types[i], b.Types[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// widen joins two types for inferred collections and branches: the more
// general one when either accepts the other, otherwise their union.
func (w *walker) widen(x, y typesystem.Type) typesystem.Type {
	switch {
	case x == nil:
		return y
	case y == nil:
		return x
	case typesystem.IsUnknown(x) || typesystem.IsUnknown(y):
		return typesystem.Unknown
	case typesystem.IsNone(x) || typesystem.IsNone(y):
		return typesystem.NormalizeUnion([]typesystem.Type{x, y})
	case w.isAssignable(x, y):
		return x
	case w.isAssignable(y, x):
		return y
	}
	return typesystem.NormalizeUnion([]typesystem.Type{x, y})
}

func (w *walker) widenAll(types []typesystem.Type) typesystem.Type {
	var out typesystem.Type
	for _, t := range types {
		out = w.widen(out, t)
	}
	return out
}

func isObject(t typesystem.Type) bool {
	c, ok := t.(typesystem.TClass)
	return ok && c.Name == config.ObjectTypeName
}

// tupleClass views a fixed tuple as an instance of the tuple class.
func tupleClass(t typesystem.TTuple) typesystem.TClass {
	elem := typesystem.Type(typesystem.Unknown)
	if len(t.Elements) > 0 {
		elem = typesystem.NormalizeUnion(t.Elements)
	}
	return typesystem.TClass{Name: config.TupleTypeName, Args: []typesystem.Type{elem}}
}

// classView returns the descriptor and instance type used for member
// lookup on t. Tuples are looked up through the tuple class.
func (w *walker) classView(t typesystem.Type) (*symbols.ClassDescriptor, typesystem.Type, bool) {
	if tt, ok := t.(typesystem.TTuple); ok {
		t = tupleClass(tt)
	}
	desc, ok := w.an.table.ClassOf(t)
	return desc, t, ok
}

// instanceSubst maps a class's parameters to the arguments of an instance.
func instanceSubst(desc *symbols.ClassDescriptor, t typesystem.Type) typesystem.Subst {
	if c, ok := t.(typesystem.TClass); ok {
		return typesystem.NewSubst(desc.TypeParams, c.Args)
	}
	return typesystem.Subst{}
}

// isExceptionType reports whether t is an exception instance.
func (w *walker) isExceptionType(t typesystem.Type) bool {
	c, ok := t.(typesystem.TClass)
	return ok && w.an.isExceptionClass(c.Name)
}
