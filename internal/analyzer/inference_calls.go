package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

func (w *walker) inferCall(n *ast.CallExpr, expected typesystem.Type) typesystem.Type {
	if id, ok := n.Callee.(*ast.Identifier); ok && id.Value == config.SuperFuncName {
		if _, defined := w.symbolTable.Find(id.Value); !defined {
			return w.inferSuper(n)
		}
	}
	if attr, ok := n.Callee.(*ast.AttributeExpr); ok {
		w.checkBaseDispatch(attr, n)
	}
	callee := w.inferExpr(n.Callee, nil)
	t := w.applyCall(callee, n.Args, n.GetToken(), expected, calleeName(n.Callee))
	if id, ok := n.Callee.(*ast.Identifier); ok && id.Value == config.IsInstanceFuncName && len(n.Args) == 2 {
		w.checkIsInstance(n)
	}
	return t
}

func calleeName(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.Identifier:
		return x.Value
	case *ast.AttributeExpr:
		if x.Name != nil {
			return x.Name.Value
		}
	}
	return "function"
}

// inferSuper types `super()` as the first base of the enclosing class, seen
// from the class's own type parameters.
func (w *walker) inferSuper(n *ast.CallExpr) typesystem.Type {
	w.record(n.Callee, typesystem.Unknown)
	w.inferArgs(n.Args)
	desc, fn := w.symbolTable.Class, w.symbolTable.Function
	if desc == nil || fn == nil || !fn.IsMethod() {
		w.errorf(diagnostics.ErrUndefinedSymbol, n.GetToken(), "super() is only valid inside a method")
		return typesystem.Unknown
	}
	if len(desc.Bases) == 0 {
		w.errorf(diagnostics.ErrUndefinedSymbol, n.GetToken(), "class '%s' has no base class", desc.Name)
		return typesystem.Unknown
	}
	base := desc.Bases[0]
	if bd, ok := w.an.table.Class(base.Name); ok && bd.IsPrimitive {
		return typesystem.TPrim{Name: base.Name}
	}
	return base
}

// checkBaseDispatch reports `C.method(self, ...)` inside a method when C is
// not one of the immediate bases of the enclosing class.
func (w *walker) checkBaseDispatch(attr *ast.AttributeExpr, call *ast.CallExpr) {
	cls, ok := attr.Object.(*ast.Identifier)
	if !ok || attr.Name == nil || len(call.Args) == 0 {
		return
	}
	desc, fn := w.symbolTable.Class, w.symbolTable.Function
	if desc == nil || fn == nil || !fn.IsMethod() {
		return
	}
	self, ok := call.Args[0].(*ast.Identifier)
	if !ok || self.Value != fn.Params[0].Name {
		return
	}
	sym, ok := w.symbolTable.Find(cls.Value)
	if !ok || sym.Kind != symbols.ClassSymbol {
		return
	}
	target, ok := w.classOfSymbol(sym)
	if !ok || target == desc {
		return
	}
	for _, b := range desc.Bases {
		if b.Name == target.Name {
			return
		}
	}
	w.errorf(diagnostics.ErrInvalidBaseDispatch, attr.Name.GetToken(),
		"'%s' is not an immediate base of '%s'; '%s.%s' cannot be called on self",
		target.Name, desc.Name, target.Name, attr.Name.Value)
}

// checkIsInstance requires the second argument of isinstance to name
// classes.
func (w *walker) checkIsInstance(n *ast.CallExpr) {
	arg := n.Args[1]
	isClass := func(t typesystem.Type) bool {
		_, ok := t.(typesystem.TType)
		return ok || typesystem.IsUnknown(t)
	}
	t := w.TypeMap[arg]
	ok := isClass(t)
	if tt, isTuple := t.(typesystem.TTuple); isTuple {
		ok = true
		for _, el := range tt.Elements {
			ok = ok && isClass(el)
		}
	}
	if !ok {
		w.errorf(diagnostics.ErrTypeMismatch, arg.GetToken(),
			"isinstance() arg 2 must be a class or a tuple of classes, got %s", t)
	}
}

func (w *walker) inferArgs(args []ast.Expression) {
	for _, a := range args {
		w.inferExpr(a, nil)
	}
}

// applyCall types a call of a value of type callee.
func (w *walker) applyCall(callee typesystem.Type, args []ast.Expression, tok token.Token, expected typesystem.Type, name string) typesystem.Type {
	if typesystem.IsUnknown(callee) {
		w.inferArgs(args)
		return typesystem.Unknown
	}
	switch c := callee.(type) {
	case typesystem.TFunc:
		t, _ := w.callWith(c, args, tok, expected, name)
		return t
	case typesystem.TType:
		return w.construct(c, args, tok, expected)
	case typesystem.TOptional:
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, tok, "'%s' may be None and cannot be called", name)
		}
		return w.applyCall(c.Inner, args, tok, expected, name)
	case typesystem.TUnion:
		var results []typesystem.Type
		for _, m := range c.Types {
			results = append(results, w.applyCall(m, args, tok, expected, name))
		}
		return typesystem.NormalizeUnion(results)
	}
	if fn, ok := w.lookupMethod(callee, "__call__"); ok {
		t, _ := w.callWith(fn, args, tok, expected, name)
		return t
	}
	w.inferArgs(args)
	w.errorf(diagnostics.ErrTypeMismatch, tok, "'%s' object is not callable", callee)
	return typesystem.Unknown
}

// checkArity reports a call whose argument count the callee cannot take.
func (w *walker) checkArity(fn typesystem.TFunc, n int, tok token.Token, name string) bool {
	min, max := fn.MinArgs(), len(fn.Params)
	if n >= min && (fn.IsVariadic || n <= max) {
		return true
	}
	var want string
	switch {
	case fn.IsVariadic:
		want = fmt.Sprintf("at least %d", min)
	case min == max:
		want = fmt.Sprintf("%d", max)
	default:
		want = fmt.Sprintf("%d to %d", min, max)
	}
	w.errorf(diagnostics.ErrArityMismatch, tok, "'%s' expects %s argument(s), got %d", name, want, n)
	return false
}

// callWith checks arguments against a callable and returns the result
// type. Type parameters are bound in two passes: first from the arguments
// that need no context, then lambdas are typed against what is known. The
// expected type fills parameters only the result mentions. The returned
// substitution still has unbound parameters missing.
func (w *walker) callWith(fn typesystem.TFunc, args []ast.Expression, tok token.Token, expected typesystem.Type, name string) (typesystem.Type, typesystem.Subst) {
	if !w.checkArity(fn, len(args), tok, name) {
		w.inferArgs(args)
		s := typesystem.Subst{}
		defaultUnbound(fn.TypeParams, s)
		return fn.ReturnType.Apply(s), nil
	}

	s := typesystem.Subst{}
	argTypes := make([]typesystem.Type, len(args))
	if len(fn.TypeParams) == 0 {
		for i, a := range args {
			p, _ := fn.ParamAt(i)
			argTypes[i] = w.checkArg(a, p, i, name)
		}
		return fn.ReturnType, s
	}

	for i, a := range args {
		if _, ok := a.(*ast.LambdaExpr); ok {
			continue
		}
		p, _ := fn.ParamAt(i)
		var hint typesystem.Type
		if len(p.FreeTypeParams()) == 0 {
			hint = p
		}
		argTypes[i] = w.inferExpr(a, hint)
		w.bindArg(s, p, argTypes[i])
	}
	for i, a := range args {
		lam, ok := a.(*ast.LambdaExpr)
		if !ok {
			continue
		}
		p, _ := fn.ParamAt(i)
		argTypes[i] = w.inferExpr(lam, p.Apply(s))
		w.bindArg(s, p, argTypes[i])
	}
	if expected != nil && len(unboundParams(fn.TypeParams, s)) > 0 {
		own := make(map[string]bool)
		for _, tp := range fn.TypeParams {
			own[tp.Key()] = true
		}
		for k, v := range typesystem.Unify(fn.ReturnType, expected, w.an.table) {
			if _, bound := s[k]; !bound && own[k] {
				s[k] = v
			}
		}
	}
	// A parameter bound to several types takes the most general one.
	for _, tp := range fn.TypeParams {
		if u, ok := s[tp.Key()].(typesystem.TUnion); ok {
			s[tp.Key()] = w.widenAll(u.Types)
		}
	}
	bound := s.Without(unboundParams(fn.TypeParams, s))
	defaultUnbound(fn.TypeParams, s)
	for i, a := range args {
		p, _ := fn.ParamAt(i)
		want := p.Apply(s)
		if !w.isAssignable(want, argTypes[i]) {
			w.errorf(diagnostics.ErrTypeMismatch, a.GetToken(),
				"argument %d to '%s': expected %s, got %s", i+1, name, want, argTypes[i])
		}
	}
	return fn.ReturnType.Apply(s), bound
}

// bindArg unifies a parameter with an argument. An unknown argument binds
// the parameters it would have fixed to Unknown, so they do not count as
// uninferable.
func (w *walker) bindArg(s typesystem.Subst, param, arg typesystem.Type) {
	typesystem.UnifyInto(s, param, arg, w.an.table)
	if !typesystem.ContainsUnknown(arg) {
		return
	}
	for _, tp := range param.FreeTypeParams() {
		if _, ok := s[tp.Key()]; !ok {
			s[tp.Key()] = typesystem.Unknown
		}
	}
}

func (w *walker) checkArg(a ast.Expression, p typesystem.Type, i int, name string) typesystem.Type {
	t := w.inferExpr(a, p)
	if !w.isAssignable(p, t) {
		w.errorf(diagnostics.ErrTypeMismatch, a.GetToken(),
			"argument %d to '%s': expected %s, got %s", i+1, name, p, t)
	}
	return t
}

// construct types a call of a class object. Abstract classes cannot be
// instantiated. A generic class named without arguments has them inferred
// from the constructor arguments, or from the expected type.
func (w *walker) construct(c typesystem.TType, args []ast.Expression, tok token.Token, expected typesystem.Type) typesystem.Type {
	if typesystem.IsUnknown(c.Type) {
		w.inferArgs(args)
		return typesystem.Unknown
	}
	desc, self, ok := w.classView(c.Type)
	if !ok {
		w.inferArgs(args)
		w.errorf(diagnostics.ErrTypeMismatch, tok, "%s cannot be instantiated", c.Type)
		return typesystem.Unknown
	}
	if desc.IsAbstract() {
		missing := desc.MissingAbstract()
		sort.Strings(missing)
		quoted := make([]string, len(missing))
		for i, m := range missing {
			quoted[i] = "'" + m + "'"
		}
		w.errorf(diagnostics.ErrAbstractNotImplemented, tok,
			"cannot instantiate abstract class '%s' with abstract method(s) %s", desc.Name, strings.Join(quoted, ", "))
	}
	init, ok := desc.Lookup(config.InitMethodName)
	if !ok || init.Method == nil {
		if len(args) > 0 {
			w.inferArgs(args)
			w.errorf(diagnostics.ErrArityMismatch, tok, "'%s' expects 0 argument(s), got %d", desc.Name, len(args))
		}
		return self
	}
	fn, ok := w.memberType(desc, init, self, true).(typesystem.TFunc)
	if !ok {
		w.inferArgs(args)
		return self
	}

	if desc.Arity() == 0 || !typesystem.Equal(self, desc.SelfType()) || w.insideClass(desc) {
		w.callWith(fn, args, tok, nil, desc.Name)
		return self
	}

	fn.TypeParams = append(append([]typesystem.TParam{}, desc.TypeParams...), fn.TypeParams...)
	fn.ReturnType = self
	t, s := w.callWith(fn, args, tok, expected, desc.Name)
	if s == nil {
		return t
	}
	if missing := unboundParams(desc.TypeParams, s); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, p := range missing {
			names[i] = p.Name
		}
		w.errorf(diagnostics.ErrInvalidGenericArity, tok,
			"cannot infer type argument(s) %s of '%s': expects %d type argument(s), got 0",
			strings.Join(names, ", "), desc.Name, desc.Arity())
	}
	return t
}

// insideClass reports whether the walker is in a body of desc, where the
// class's own parameters are in scope.
func (w *walker) insideClass(desc *symbols.ClassDescriptor) bool {
	return w.symbolTable.Class == desc
}

func (w *walker) inferSubscript(n *ast.SubscriptExpr) typesystem.Type {
	if w.namesType(n.Object) {
		if te, ok := typeFromExpr(n); ok {
			t := w.resolveType(te)
			if typesystem.IsUnknown(t) {
				return typesystem.Unknown
			}
			return typesystem.TType{Type: t}
		}
	}
	obj := w.inferExpr(n.Object, nil)
	if fn, ok := obj.(typesystem.TFunc); ok && len(fn.TypeParams) > 0 {
		args := make([]typesystem.Type, 0, len(n.Index))
		for _, ix := range n.Index {
			te, ok := typeFromExpr(ix)
			if !ok {
				w.errorf(diagnostics.ErrTypeMismatch, ix.GetToken(), "expected a type argument")
				return typesystem.Unknown
			}
			args = append(args, w.resolveType(te))
		}
		return w.instantiateSignature(fn, args, calleeName(n.Object), n.GetToken())
	}
	return w.indexType(obj, n)
}

// namesType reports whether e names a class, an alias or a special form,
// so `e[...]` is a type application rather than an index.
func (w *walker) namesType(e ast.Expression) bool {
	path, ok := exprPath(e)
	if !ok {
		return false
	}
	sym, ok := w.lookupTypeSymbol(path)
	if !ok {
		switch path {
		case config.OptionalFormName, config.UnionFormName, config.TupleFormName, config.CallableFormName,
			config.ListFormName, config.SetFormName, config.DictFormName:
			return true
		}
		return false
	}
	return sym.Kind == symbols.ClassSymbol || sym.Kind == symbols.AliasSymbol
}

// indexType types `obj[key]` through __getitem__. Tuples indexed by a
// literal give the element at that position.
func (w *walker) indexType(obj typesystem.Type, n *ast.SubscriptExpr) typesystem.Type {
	key := indexExpr(n)
	if typesystem.IsUnknown(obj) {
		w.inferExpr(key, nil)
		return typesystem.Unknown
	}
	if typesystem.IsOptional(obj) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, n.GetToken(),
				"value of type %s that may be None is not subscriptable", obj)
		}
		obj = typesystem.RemoveNone(obj)
	}
	switch t := obj.(type) {
	case typesystem.TTuple:
		if i, ok := intLiteral(key); ok {
			w.inferExpr(key, nil)
			if i < 0 {
				i += int64(len(t.Elements))
			}
			if i < 0 || i >= int64(len(t.Elements)) {
				w.errorf(diagnostics.ErrTypeMismatch, n.GetToken(), "tuple index out of range for %s", t)
				return typesystem.Unknown
			}
			return t.Elements[i]
		}
	case typesystem.TUnion:
		var out []typesystem.Type
		for _, m := range t.Types {
			out = append(out, w.indexType(m, n))
		}
		return typesystem.NormalizeUnion(out)
	}
	fn, ok := w.lookupMethod(obj, config.GetItemMethodName)
	if !ok {
		w.inferExpr(key, nil)
		w.errorf(diagnostics.ErrTypeMismatch, n.GetToken(), "'%s' object is not subscriptable", obj)
		return typesystem.Unknown
	}
	t, _ := w.callWith(fn, []ast.Expression{key}, n.GetToken(), nil, config.GetItemMethodName)
	return t
}

func intLiteral(e ast.Expression) (int64, bool) {
	switch x := e.(type) {
	case *ast.IntegerLiteral:
		return x.Value, true
	case *ast.UnaryExpr:
		if v, ok := intLiteral(x.Operand); ok && x.Op == "-" {
			return -v, true
		}
	}
	return 0, false
}
