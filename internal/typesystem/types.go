package typesystem

import (
	"strings"

	"github.com/funvibe/mambacheck/internal/config"
)

// Type is the interface for all types in our system. Types are immutable
// values and may be shared freely between scopes, signatures and workers.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeParams() []TParam
}

// TPrim is a built-in primitive (int, float, complex, str, bool, None).
// Member lookup goes through the catalog class of the same name.
type TPrim struct {
	Name string
}

func (t TPrim) String() string            { return t.Name }
func (t TPrim) Apply(Subst) Type          { return t }
func (t TPrim) FreeTypeParams() []TParam { return nil }

var (
	Int     = TPrim{Name: config.IntTypeName}
	Float   = TPrim{Name: config.FloatTypeName}
	Complex = TPrim{Name: config.ComplexTypeName}
	Str     = TPrim{Name: config.StrTypeName}
	Bool    = TPrim{Name: config.BoolTypeName}
	None    = TPrim{Name: config.NoneTypeName}
	Unknown = TUnknown{}
)

// IsNone reports whether t is the None primitive.
func IsNone(t Type) bool {
	p, ok := t.(TPrim)
	return ok && p.Name == config.NoneTypeName
}

// TClass is an instance of a declared class, with type arguments for
// generic classes. Name is the key of the class descriptor.
type TClass struct {
	Name string
	Args []Type
}

func (t TClass) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	return t.Name + "[" + joinTypes(t.Args) + "]"
}

func (t TClass) Apply(s Subst) Type {
	if len(t.Args) == 0 {
		return t
	}
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TClass{Name: t.Name, Args: args}
}

func (t TClass) FreeTypeParams() []TParam {
	var out []TParam
	for _, a := range t.Args {
		out = append(out, a.FreeTypeParams()...)
	}
	return uniqueParams(out)
}

// TType is the type of a class object itself, e.g. the value `Box` in
// `Box(1)` or `isinstance(x, Box)`.
type TType struct {
	Type Type
}

func (t TType) String() string { return "type[" + t.Type.String() + "]" }
func (t TType) Apply(s Subst) Type {
	return TType{Type: t.Type.Apply(s)}
}
func (t TType) FreeTypeParams() []TParam { return t.Type.FreeTypeParams() }

// TFunc is a function or method type. DefaultCount counts trailing
// parameters that have defaults. When IsVariadic is set the last entry of
// Params is the element type of the *args parameter.
type TFunc struct {
	Params       []Type
	ReturnType   Type
	IsVariadic   bool
	DefaultCount int
	TypeParams   []TParam // Type parameters declared by the function itself
}

func (t TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
		if t.IsVariadic && i == len(t.Params)-1 {
			params[i] = "*" + params[i]
		}
	}
	ret := "None"
	if t.ReturnType != nil {
		ret = t.ReturnType.String()
	}
	return "Callable[[" + strings.Join(params, ", ") + "], " + ret + "]"
}

// Apply substitutes into the signature. The function's own type parameters
// are bound here, so they are removed from the outer substitution first.
func (t TFunc) Apply(s Subst) Type {
	inner := s.Without(t.TypeParams)
	params := make([]Type, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Apply(inner)
	}
	var ret Type
	if t.ReturnType != nil {
		ret = t.ReturnType.Apply(inner)
	}
	return TFunc{
		Params:       params,
		ReturnType:   ret,
		IsVariadic:   t.IsVariadic,
		DefaultCount: t.DefaultCount,
		TypeParams:   t.TypeParams,
	}
}

func (t TFunc) FreeTypeParams() []TParam {
	var out []TParam
	for _, p := range t.Params {
		out = append(out, p.FreeTypeParams()...)
	}
	if t.ReturnType != nil {
		out = append(out, t.ReturnType.FreeTypeParams()...)
	}
	bound := make(map[string]bool)
	for _, tp := range t.TypeParams {
		bound[tp.Key()] = true
	}
	var free []TParam
	for _, p := range uniqueParams(out) {
		if !bound[p.Key()] {
			free = append(free, p)
		}
	}
	return free
}

// MinArgs is the number of positional arguments a call must supply.
func (t TFunc) MinArgs() int {
	n := len(t.Params) - t.DefaultCount
	if t.IsVariadic {
		n--
	}
	if n < 0 {
		return 0
	}
	return n
}

// ParamAt returns the declared type for the i-th positional argument.
func (t TFunc) ParamAt(i int) (Type, bool) {
	if i < len(t.Params) && !(t.IsVariadic && i == len(t.Params)-1) {
		return t.Params[i], true
	}
	if t.IsVariadic && len(t.Params) > 0 {
		return t.Params[len(t.Params)-1], true
	}
	return nil, false
}

// TTuple is a fixed-length heterogeneous tuple.
type TTuple struct {
	Elements []Type
}

func (t TTuple) String() string { return "Tuple[" + joinTypes(t.Elements) + "]" }
func (t TTuple) Apply(s Subst) Type {
	elems := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.Apply(s)
	}
	return TTuple{Elements: elems}
}
func (t TTuple) FreeTypeParams() []TParam {
	var out []TParam
	for _, e := range t.Elements {
		out = append(out, e.FreeTypeParams()...)
	}
	return uniqueParams(out)
}

// TUnion is a normalized union of two or more types. Build it with
// NormalizeUnion rather than directly.
type TUnion struct {
	Types []Type
}

func (t TUnion) String() string { return "Union[" + joinTypes(t.Types) + "]" }
func (t TUnion) Apply(s Subst) Type {
	types := make([]Type, len(t.Types))
	for i, m := range t.Types {
		types[i] = m.Apply(s)
	}
	return NormalizeUnion(types)
}
func (t TUnion) FreeTypeParams() []TParam {
	var out []TParam
	for _, m := range t.Types {
		out = append(out, m.FreeTypeParams()...)
	}
	return uniqueParams(out)
}

// TOptional is Inner or None. Inner is never None or another Optional.
type TOptional struct {
	Inner Type
}

func (t TOptional) String() string { return "Optional[" + t.Inner.String() + "]" }
func (t TOptional) Apply(s Subst) Type {
	return MakeOptional(t.Inner.Apply(s))
}
func (t TOptional) FreeTypeParams() []TParam { return t.Inner.FreeTypeParams() }

// TParam is a declared type parameter. Owner is the declaring class or
// function, which keeps same-named parameters of nested generics apart.
type TParam struct {
	Name  string
	Owner string
}

// Key is the substitution key for the parameter.
func (t TParam) Key() string { return t.Owner + "." + t.Name }

func (t TParam) String() string { return t.Name }
func (t TParam) Apply(s Subst) Type {
	if r, ok := s[t.Key()]; ok {
		return r
	}
	return t
}
func (t TParam) FreeTypeParams() []TParam { return []TParam{t} }

// TUnknown stands in for a type that could not be determined. It is
// compatible with everything and is only produced alongside a diagnostic.
type TUnknown struct{}

func (TUnknown) String() string            { return "Unknown" }
func (t TUnknown) Apply(Subst) Type         { return t }
func (TUnknown) FreeTypeParams() []TParam { return nil }

func IsUnknown(t Type) bool {
	_, ok := t.(TUnknown)
	return ok || t == nil
}

func joinTypes(ts []Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func uniqueParams(ps []TParam) []TParam {
	seen := make(map[string]bool)
	var out []TParam
	for _, p := range ps {
		if !seen[p.Key()] {
			seen[p.Key()] = true
			out = append(out, p)
		}
	}
	return out
}
