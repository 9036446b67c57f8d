package symbols

import (
	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

type SymbolKind int

type ScopeType int

const (
	ScopeBuiltin  ScopeType = iota // Catalog classes and functions
	ScopeGlobal                    // Module top-level
	ScopeClass                     // Class body
	ScopeFunction                  // Function or lambda body
	ScopeBlock                     // Branch, loop, handler or comprehension
)

func (s ScopeType) String() string {
	switch s {
	case ScopeBuiltin:
		return "builtin"
	case ScopeGlobal:
		return "global"
	case ScopeClass:
		return "class"
	case ScopeFunction:
		return "function"
	default:
		return "block"
	}
}

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FieldSymbol
	FunctionSymbol
	ClassSymbol
	AliasSymbol
	TypeParamSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VariableSymbol:
		return "variable"
	case ParameterSymbol:
		return "parameter"
	case FieldSymbol:
		return "field"
	case FunctionSymbol:
		return "function"
	case ClassSymbol:
		return "class"
	case AliasSymbol:
		return "alias"
	case TypeParamSymbol:
		return "type parameter"
	default:
		return "symbol"
	}
}

type Symbol struct {
	Name string
	Type typesystem.Type
	Kind SymbolKind

	// IsPending marks a local first bound to None. Its type is fixed at the
	// first non-None assignment.
	IsPending bool
	IsMutable bool

	OriginModule   string      // Module where the symbol was declared
	DefinitionNode ast.Node    // The AST node where this symbol was defined
	DefinitionFile string      // The file path where this symbol was defined
	Token          token.Token // Position of the defining name
}

// IsType reports whether the symbol names a type usable in annotations.
func (s Symbol) IsType() bool {
	return s.Kind == ClassSymbol || s.Kind == AliasSymbol || s.Kind == TypeParamSymbol
}
