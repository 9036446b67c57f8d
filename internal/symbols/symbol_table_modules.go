package symbols

import (
	"sort"
	"sync"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// Module is the declaration state of one source file.
type Module struct {
	Name    string
	File    string
	Program *ast.Program
	Globals *SymbolTable

	Classes   []*ClassDescriptor
	Functions []*FunctionSignature
	Aliases   map[string]*AliasInfo

	// Fatal is set when pass 1 could not build a sound declaration table;
	// bodies of this module are not checked.
	Fatal bool
}

// AliasInfo is a module-level type alias. Target is resolved on first use
// so aliases may refer to classes declared later, or in other modules.
type AliasInfo struct {
	Name      string
	Node      *ast.TypeAliasStmt
	Module    *Module
	Target    typesystem.Type
	Resolving bool
}

func NewModule(name, file string, builtins *SymbolTable) *Module {
	return &Module{
		Name:    name,
		File:    file,
		Globals: NewEnclosedSymbolTable(builtins, ScopeGlobal),
		Aliases: make(map[string]*AliasInfo),
	}
}

// Table is the session-wide declaration table: the builtin scope, every
// module, and the class index shared by all of them. It is written during
// pass 1 and linking and is read-only while bodies are checked.
type Table struct {
	mu       sync.RWMutex
	builtins *SymbolTable
	classes  map[string]*ClassDescriptor
	modules  map[string]*Module
	// Functions declared in the catalog, by name.
	functions map[string]*FunctionSignature
}

func NewTable() *Table {
	builtins := NewEmptySymbolTable()
	builtins.scopeType = ScopeBuiltin
	return &Table{
		builtins:  builtins,
		classes:   make(map[string]*ClassDescriptor),
		modules:   make(map[string]*Module),
		functions: make(map[string]*FunctionSignature),
	}
}

// Builtins is the outermost scope every module scope encloses.
func (t *Table) Builtins() *SymbolTable {
	return t.builtins
}

// RegisterClass adds a descriptor to the class index. It returns the
// existing descriptor and false when the name is taken.
func (t *Table) RegisterClass(c *ClassDescriptor) (*ClassDescriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.classes[c.Name]; ok {
		return prev, false
	}
	t.classes[c.Name] = c
	return c, true
}

func (t *Table) Class(name string) (*ClassDescriptor, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.classes[name]
	return c, ok
}

// ClassOf returns the descriptor behind an instance type: TClass by name,
// TPrim through the primitive's catalog class.
func (t *Table) ClassOf(typ typesystem.Type) (*ClassDescriptor, bool) {
	switch x := typ.(type) {
	case typesystem.TClass:
		return t.Class(x.Name)
	case typesystem.TPrim:
		return t.Class(x.Name)
	}
	return nil, false
}

// ClassNames returns all registered class names, sorted.
func (t *Table) ClassNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.classes))
	for n := range t.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *Table) RegisterFunction(f *FunctionSignature) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.functions[f.Name] = f
}

func (t *Table) Function(name string) (*FunctionSignature, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	f, ok := t.functions[name]
	return f, ok
}

func (t *Table) AddModule(m *Module) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modules[m.Name] = m
}

func (t *Table) Module(name string) (*Module, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.modules[name]
	return m, ok
}

// Modules returns all modules ordered by file path.
func (t *Table) Modules() []*Module {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Module, 0, len(t.modules))
	for _, m := range t.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// IsSubclass reports whether class sub equals sup or has it as a
// transitive base. Only meaningful after linking.
func (t *Table) IsSubclass(sub, sup string) bool {
	if sub == sup {
		return true
	}
	c, ok := t.Class(sub)
	if !ok {
		return false
	}
	for _, a := range c.Ancestors() {
		if a.Name == sup {
			return true
		}
	}
	return false
}

// AsInstanceOf views an instance type as an instance of one of its
// ancestors, carrying type arguments through the base list. It implements
// typesystem.Resolver.
func (t *Table) AsInstanceOf(typ typesystem.Type, class string) (typesystem.TClass, bool) {
	var name string
	var args []typesystem.Type
	switch x := typ.(type) {
	case typesystem.TClass:
		name, args = x.Name, x.Args
	case typesystem.TPrim:
		name = x.Name
	default:
		return typesystem.TClass{}, false
	}
	if name == class {
		return typesystem.TClass{Name: name, Args: args}, true
	}
	c, ok := t.Class(name)
	if !ok || len(args) != len(c.TypeParams) {
		return typesystem.TClass{}, false
	}
	s := typesystem.NewSubst(c.TypeParams, args)
	for _, a := range c.Ancestors() {
		if a.Name == class {
			return a.Apply(s).(typesystem.TClass), true
		}
	}
	return typesystem.TClass{}, false
}
