package symbols

import (
	"sort"

	"github.com/funvibe/mambacheck/internal/typesystem"
)

// SymbolTable is one lexical scope. Lookup walks outward through outer
// links. Narrowed types live on the scope that established them, never on
// the Symbol itself.
type SymbolTable struct {
	store     map[string]Symbol
	order     []string // Insertion order, for deterministic iteration
	narrowed  map[string]typesystem.Type
	outer     *SymbolTable
	scopeType ScopeType

	// Class is the descriptor owning a class-body scope, and the enclosing
	// class of a method's function scope.
	Class *ClassDescriptor
	// Function is the signature whose body this scope belongs to.
	Function *FunctionSignature
}

func NewEmptySymbolTable() *SymbolTable {
	return &SymbolTable{
		store:     make(map[string]Symbol),
		narrowed:  make(map[string]typesystem.Type),
		scopeType: ScopeGlobal,
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, scopeType ScopeType) *SymbolTable {
	st := NewEmptySymbolTable()
	st.outer = outer
	st.scopeType = scopeType
	if outer != nil {
		st.Class = outer.Class
		st.Function = outer.Function
	}
	return st
}

// Outer returns the outer scope symbol table
func (s *SymbolTable) Outer() *SymbolTable {
	return s.outer
}

func (s *SymbolTable) ScopeType() ScopeType {
	return s.scopeType
}

// IsFunctionScope returns true if this symbol table corresponds to a function scope.
func (s *SymbolTable) IsFunctionScope() bool {
	return s.scopeType == ScopeFunction
}

// IsGlobalScope returns true if this symbol table is a module top level.
func (s *SymbolTable) IsGlobalScope() bool {
	return s.scopeType == ScopeGlobal
}

// Define adds sym to this scope. If the name is already defined here the
// existing symbol is kept and returned with ok=false.
func (s *SymbolTable) Define(sym Symbol) (Symbol, bool) {
	if prev, ok := s.store[sym.Name]; ok {
		return prev, false
	}
	s.store[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return sym, true
}

// Replace overwrites a symbol in this scope, used when a pass-1 placeholder
// receives its resolved type.
func (s *SymbolTable) Replace(sym Symbol) {
	if _, ok := s.store[sym.Name]; !ok {
		s.order = append(s.order, sym.Name)
	}
	s.store[sym.Name] = sym
}

// FindWithScope returns the symbol and the scope where it was defined.
func (s *SymbolTable) FindWithScope(name string) (Symbol, *SymbolTable, bool) {
	sym, ok := s.store[name]
	if ok {
		return sym, s, true
	}
	if s.outer != nil {
		return s.outer.FindWithScope(name)
	}
	return Symbol{}, nil, false
}

func (s *SymbolTable) Find(name string) (Symbol, bool) {
	sym, _, ok := s.FindWithScope(name)
	return sym, ok
}

// FindLocal looks only in this scope.
func (s *SymbolTable) FindLocal(name string) (Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

func (s *SymbolTable) IsDefined(name string) bool {
	_, ok := s.Find(name)
	return ok
}

// IsDefinedLocally checks if a symbol is defined in the current scope (shallow check)
func (s *SymbolTable) IsDefinedLocally(name string) bool {
	_, ok := s.store[name]
	return ok
}

// Narrow records a flow-sensitive type for name valid in this scope and
// the scopes nested in it.
func (s *SymbolTable) Narrow(name string, t typesystem.Type) {
	s.narrowed[name] = t
}

// TypeOf returns the type name has at this point: the innermost narrowing
// if one exists before the declaring scope, else the declared type. A nil
// narrowing hides the narrowings of outer scopes.
func (s *SymbolTable) TypeOf(name string) (typesystem.Type, bool) {
	reset := false
	for scope := s; scope != nil; scope = scope.outer {
		if t, ok := scope.narrowed[name]; ok && !reset {
			if t != nil {
				return t, true
			}
			reset = true
		}
		if sym, ok := scope.store[name]; ok {
			return sym.Type, true
		}
	}
	return nil, false
}

// NarrowedNames lists the names narrowed in this scope, sorted.
func (s *SymbolTable) NarrowedNames() []string {
	names := make([]string, 0, len(s.narrowed))
	for n := range s.narrowed {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ClearNarrowing drops every narrowing established in this scope.
func (s *SymbolTable) ClearNarrowing() {
	s.narrowed = make(map[string]typesystem.Type)
}

// Finalize fixes the type of a pending symbol in the scope that declares
// it. It is a no-op for symbols that are not pending.
func (s *SymbolTable) Finalize(name string, t typesystem.Type) bool {
	_, scope, ok := s.FindWithScope(name)
	if !ok {
		return false
	}
	sym := scope.store[name]
	if !sym.IsPending {
		return false
	}
	sym.Type = t
	sym.IsPending = false
	scope.store[name] = sym
	return true
}

// Names returns the names defined in this scope in declaration order.
func (s *SymbolTable) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// GetAllNames returns all symbol names in scope (for error suggestions)
func (s *SymbolTable) GetAllNames() []string {
	seen := make(map[string]bool)
	var names []string
	for scope := s; scope != nil; scope = scope.outer {
		for _, name := range scope.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
