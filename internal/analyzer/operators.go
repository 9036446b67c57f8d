package analyzer

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// Operator methods: `a + b` calls a.__add__(b), then b.__radd__(a).
var binaryMethods = map[string]string{
	"+":  "__add__",
	"-":  "__sub__",
	"*":  "__mul__",
	"/":  "__truediv__",
	"//": "__floordiv__",
	"%":  "__mod__",
	"**": "__pow__",
	"@":  "__matmul__",
	"&":  "__and__",
	"|":  "__or__",
	"^":  "__xor__",
	"<<": "__lshift__",
	">>": "__rshift__",
	"<":  "__lt__",
	"<=": "__le__",
	">":  "__gt__",
	">=": "__ge__",
	"==": config.EqMethodName,
	"!=": config.NeMethodName,
}

var reflectedMethods = map[string]string{
	"+":  "__radd__",
	"-":  "__rsub__",
	"*":  "__rmul__",
	"/":  "__rtruediv__",
	"//": "__rfloordiv__",
	"%":  "__rmod__",
	"**": "__rpow__",
	"@":  "__rmatmul__",
	"&":  "__rand__",
	"|":  "__ror__",
	"^":  "__rxor__",
	"<<": "__rlshift__",
	">>": "__rrshift__",
	"<":  "__gt__",
	"<=": "__ge__",
	">":  "__lt__",
	">=": "__le__",
	"==": config.EqMethodName,
	"!=": config.NeMethodName,
}

var inplaceMethods = map[string]string{
	"+":  "__iadd__",
	"-":  "__isub__",
	"*":  "__imul__",
	"/":  "__itruediv__",
	"//": "__ifloordiv__",
	"%":  "__imod__",
	"**": "__ipow__",
	"&":  "__iand__",
	"|":  "__ior__",
	"^":  "__ixor__",
	"<<": "__ilshift__",
	">>": "__irshift__",
}

var unaryMethods = map[string]string{
	"-": config.NegMethodName,
	"+": config.PosMethodName,
	"~": config.InvertMethodName,
}

func (w *walker) inferBinary(n *ast.BinaryExpr) typesystem.Type {
	switch n.Op {
	case "and", "or":
		return w.inferBoolOp(n)
	case "is", "is not":
		w.inferExpr(n.Left, nil)
		w.inferExpr(n.Right, nil)
		return typesystem.Bool
	case "in", "not in":
		return w.inferMembership(n)
	}
	left := w.inferExpr(n.Left, nil)
	right := w.inferExpr(n.Right, nil)
	return w.resolveOperator(n.Op, left, right, n.GetToken())
}

// inferBoolOp types `and` and `or`. The right operand is checked knowing
// the left one decided the result: true for `and`, false for `or`.
func (w *walker) inferBoolOp(n *ast.BinaryExpr) typesystem.Type {
	left := w.inferExpr(n.Left, nil)
	yes, no := w.narrowCondition(n.Left)
	scope := yes
	if n.Op == "or" {
		scope = no
	}
	var right typesystem.Type
	w.inScope(scope, func() { right = w.inferExpr(n.Right, nil) })
	if n.Op == "or" && typesystem.IsOptional(left) {
		left = typesystem.RemoveNone(left)
	}
	return w.widen(left, right)
}

func (w *walker) inferMembership(n *ast.BinaryExpr) typesystem.Type {
	item := w.inferExpr(n.Left, nil)
	container := w.inferExpr(n.Right, nil)
	if typesystem.IsUnknown(container) {
		return typesystem.Bool
	}
	if typesystem.IsOptional(container) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, n.GetToken(),
				"'%s' applied to a value of type %s that may be None", n.Op, container)
		}
		container = typesystem.RemoveNone(container)
	}
	for _, m := range typesystem.Members(container) {
		var elem typesystem.Type
		if fn, ok := w.lookupMethod(m, config.ContainsMethodName); ok && len(fn.Params) == 1 {
			elem = fn.Params[0]
		} else if el, ok := w.elementOf(m); ok {
			elem = el
		} else {
			w.errorf(diagnostics.ErrUnresolvedOverload, n.GetToken(),
				"unsupported operand types for %s: %s and %s", n.Op, item, m)
			continue
		}
		if !w.isAssignable(elem, item) && !w.isAssignable(item, elem) {
			w.errorf(diagnostics.ErrTypeMismatch, n.Left.GetToken(),
				"%s can never contain a value of type %s", m, item)
		}
	}
	return typesystem.Bool
}

// resolveOperator finds the method implementing `left op right`: the left
// operand's method, the same method after promoting the left operand to
// the right one's type, then the right operand's reflected method.
// Unions are resolved member by member.
func (w *walker) resolveOperator(op string, left, right typesystem.Type, tok token.Token) typesystem.Type {
	if typesystem.IsUnknown(left) || typesystem.IsUnknown(right) {
		return typesystem.Unknown
	}
	if op != "==" && op != "!=" {
		for _, t := range []*typesystem.Type{&left, &right} {
			if typesystem.IsOptional(*t) {
				if w.an.opts.StrictOptional {
					w.errorf(diagnostics.ErrOptionalAccess, tok,
						"operator '%s' applied to a value of type %s that may be None", op, *t)
				}
				*t = typesystem.RemoveNone(*t)
			}
		}
	}
	lm, rm := typesystem.Members(left), typesystem.Members(right)
	if len(lm) > 1 || len(rm) > 1 {
		var out []typesystem.Type
		for _, l := range lm {
			for _, r := range rm {
				out = append(out, w.resolveSingle(op, l, r, tok))
			}
		}
		return typesystem.NormalizeUnion(out)
	}
	return w.resolveSingle(op, left, right, tok)
}

func (w *walker) resolveSingle(op string, left, right typesystem.Type, tok token.Token) typesystem.Type {
	name, ok := binaryMethods[op]
	if !ok {
		w.errorf(diagnostics.ErrUnresolvedOverload, tok, "unknown operator '%s'", op)
		return typesystem.Unknown
	}
	if t, ok := w.tryOperator(left, name, right); ok {
		return t
	}
	// Still the left step: a primitive retries once widened to the right type.
	lp, lok := left.(typesystem.TPrim)
	rp, rok := right.(typesystem.TPrim)
	if lok && rok && lp.Name != rp.Name && w.an.promotes(lp.Name, rp.Name) {
		if t, ok := w.tryOperator(right, name, right); ok {
			return t
		}
	}
	if t, ok := w.tryOperator(right, reflectedMethods[op], left); ok {
		return t
	}
	w.errorf(diagnostics.ErrUnresolvedOverload, tok,
		"unsupported operand types for %s: %s and %s", op, left, right)
	return typesystem.Unknown
}

// tryOperator calls a one-argument operator method of recv with an
// argument of type arg, without reporting.
func (w *walker) tryOperator(recv typesystem.Type, method string, arg typesystem.Type) (typesystem.Type, bool) {
	fn, ok := w.lookupMethod(recv, method)
	if !ok || len(fn.Params) < 1 || fn.MinArgs() > 1 {
		return nil, false
	}
	param, _ := fn.ParamAt(0)
	ret := fn.ReturnType
	if len(fn.TypeParams) > 0 {
		s := typesystem.Unify(param, arg, w.an.table)
		for _, tp := range fn.TypeParams {
			if u, ok := s[tp.Key()].(typesystem.TUnion); ok {
				s[tp.Key()] = w.widenAll(u.Types)
			}
		}
		defaultUnbound(fn.TypeParams, s)
		param, ret = param.Apply(s), ret.Apply(s)
	}
	if !w.isAssignable(param, arg) {
		return nil, false
	}
	return ret, true
}

// resolveAugmented types `target op= value`: the in-place method when the
// target has one, else the binary operator.
func (w *walker) resolveAugmented(op string, left, right typesystem.Type, tok token.Token) typesystem.Type {
	if typesystem.IsUnknown(left) || typesystem.IsUnknown(right) {
		return typesystem.Unknown
	}
	if name, ok := inplaceMethods[op]; ok && !typesystem.IsOptional(left) {
		if t, ok := w.tryOperator(left, name, right); ok {
			return t
		}
	}
	return w.resolveOperator(op, left, right, tok)
}

func (w *walker) inferUnary(n *ast.UnaryExpr) typesystem.Type {
	operand := w.inferExpr(n.Operand, nil)
	if n.Op == "not" {
		return typesystem.Bool
	}
	name, ok := unaryMethods[n.Op]
	if !ok {
		w.errorf(diagnostics.ErrUnresolvedOverload, n.GetToken(), "unknown operator '%s'", n.Op)
		return typesystem.Unknown
	}
	if typesystem.IsUnknown(operand) {
		return typesystem.Unknown
	}
	if typesystem.IsOptional(operand) {
		if w.an.opts.StrictOptional {
			w.errorf(diagnostics.ErrOptionalAccess, n.GetToken(),
				"operator '%s' applied to a value of type %s that may be None", n.Op, operand)
		}
		operand = typesystem.RemoveNone(operand)
	}
	var out []typesystem.Type
	for _, m := range typesystem.Members(operand) {
		fn, ok := w.lookupMethod(m, name)
		if !ok || fn.MinArgs() > 0 {
			w.errorf(diagnostics.ErrUnresolvedOverload, n.GetToken(), "bad operand type for unary %s: %s", n.Op, m)
			out = append(out, typesystem.Unknown)
			continue
		}
		out = append(out, fn.ReturnType)
	}
	return typesystem.NormalizeUnion(out)
}
