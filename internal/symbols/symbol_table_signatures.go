package symbols

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// ParamInfo is one declared parameter of a function or method.
type ParamInfo struct {
	Name       string
	Type       typesystem.Type
	HasDefault bool
	Variadic   bool
	IsSelf     bool
	Token      token.Token
}

// FunctionSignature is the resolved header of a function or method.
type FunctionSignature struct {
	Name       string
	Params     []ParamInfo
	Return     typesystem.Type
	TypeParams []typesystem.TParam
	Abstract   bool
	Owner      string // Declaring class, empty for free functions
	Module     string
	Node       *ast.FunctionDef // nil for catalog functions without a body
	Token      token.Token
}

// IsMethod reports whether the signature takes an explicit self.
func (f *FunctionSignature) IsMethod() bool {
	return len(f.Params) > 0 && f.Params[0].IsSelf
}

// Type returns the callable type. With bound set, a leading self parameter
// is dropped, which is how the method looks through an instance.
func (f *FunctionSignature) Type(bound bool) typesystem.TFunc {
	params := f.Params
	if bound && f.IsMethod() {
		params = params[1:]
	}
	fn := typesystem.TFunc{
		Params:     make([]typesystem.Type, len(params)),
		ReturnType: f.Return,
		TypeParams: f.TypeParams,
	}
	for i, p := range params {
		fn.Params[i] = p.Type
		if p.HasDefault {
			fn.DefaultCount++
		}
		if p.Variadic {
			fn.IsVariadic = true
		}
	}
	if fn.ReturnType == nil {
		fn.ReturnType = typesystem.None
	}
	return fn
}

// ParamNames returns the names of the parameters visible to callers.
func (f *FunctionSignature) ParamNames(bound bool) []string {
	params := f.Params
	if bound && f.IsMethod() {
		params = params[1:]
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}
