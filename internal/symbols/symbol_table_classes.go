package symbols

import (
	"sort"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// FieldInfo is an instance or class attribute.
type FieldInfo struct {
	Name  string
	Type  typesystem.Type
	Owner string
	Token token.Token
	// Sentinel marks a field first bound to None; its type is Optional.
	Sentinel bool
}

// Member is one entry of a class's effective member set. Subst maps the
// declaring class's type parameters to types expressed in the parameters
// of the class the set belongs to.
type Member struct {
	Name   string
	Owner  string
	Field  *FieldInfo
	Method *FunctionSignature
	Subst  typesystem.Subst
}

// IsAbstract reports whether the member is an unimplemented method.
func (m *Member) IsAbstract() bool {
	return m.Method != nil && m.Method.Abstract
}

// Type returns the member's type as seen through the class the member set
// belongs to. Methods are returned bound (without self).
func (m *Member) Type() typesystem.Type {
	if m.Field != nil {
		return m.Field.Type.Apply(m.Subst)
	}
	return m.Method.Type(true).Apply(m.Subst)
}

// ClassDescriptor describes a declared class, built-in or user defined.
type ClassDescriptor struct {
	Name   string
	Module string
	File   string
	Token  token.Token
	Node   *ast.ClassDef // nil for catalog classes

	TypeParams []typesystem.TParam
	// Bases in declaration order, resolved in the header pass. They may
	// mention this class's own type parameters.
	Bases []typesystem.TClass

	Fields      map[string]*FieldInfo
	FieldOrder  []string
	Methods     map[string]*FunctionSignature
	MethodOrder []string

	// Abstract holds the names of methods declared abstract in this class.
	Abstract *set.Set[string]

	IsException bool
	IsPrimitive bool // Instances are typesystem.TPrim
	IsBuiltin   bool
	// Promotes lists the primitive names this primitive widens to
	// (int promotes to float and complex).
	Promotes []string

	// Set by the inheritance resolver.
	Linked    bool
	Cyclic    bool
	effective map[string]*Member
	order     []string
	missing   *set.Set[string]
	ancestors []typesystem.TClass
}

func NewClassDescriptor(name, module string) *ClassDescriptor {
	return &ClassDescriptor{
		Name:     name,
		Module:   module,
		Fields:   make(map[string]*FieldInfo),
		Methods:  make(map[string]*FunctionSignature),
		Abstract: set.New[string](0),
	}
}

// Arity is the number of declared type parameters.
func (c *ClassDescriptor) Arity() int {
	return len(c.TypeParams)
}

// SelfType is the class instantiated with its own parameters, i.e. the
// type of `self` inside the class body.
func (c *ClassDescriptor) SelfType() typesystem.Type {
	if c.IsPrimitive {
		return typesystem.TPrim{Name: c.Name}
	}
	if len(c.TypeParams) == 0 {
		return typesystem.TClass{Name: c.Name}
	}
	args := make([]typesystem.Type, len(c.TypeParams))
	for i, p := range c.TypeParams {
		args[i] = p
	}
	return typesystem.TClass{Name: c.Name, Args: args}
}

// AddField registers a field. The first declaration wins.
func (c *ClassDescriptor) AddField(f *FieldInfo) bool {
	if _, ok := c.Fields[f.Name]; ok {
		return false
	}
	f.Owner = c.Name
	c.Fields[f.Name] = f
	c.FieldOrder = append(c.FieldOrder, f.Name)
	return true
}

// AddMethod registers a method. The first declaration wins.
func (c *ClassDescriptor) AddMethod(m *FunctionSignature) bool {
	if _, ok := c.Methods[m.Name]; ok {
		return false
	}
	m.Owner = c.Name
	c.Methods[m.Name] = m
	c.MethodOrder = append(c.MethodOrder, m.Name)
	if m.Abstract {
		c.Abstract.Insert(m.Name)
	}
	return true
}

// SetEffective stores the linked member set. order is the deterministic
// iteration order and missing holds the abstract methods with no concrete
// implementation anywhere in the hierarchy. ancestors lists every
// transitive base instantiated in terms of this class's parameters.
func (c *ClassDescriptor) SetEffective(members map[string]*Member, order []string, missing *set.Set[string], ancestors []typesystem.TClass) {
	c.effective = members
	c.order = order
	c.missing = missing
	c.ancestors = ancestors
	c.Linked = true
}

// Lookup finds a member in the effective member set. Before linking only
// the class's own members are visible.
func (c *ClassDescriptor) Lookup(name string) (*Member, bool) {
	if c.effective != nil {
		m, ok := c.effective[name]
		return m, ok
	}
	if f, ok := c.Fields[name]; ok {
		return &Member{Name: name, Owner: c.Name, Field: f}, true
	}
	if m, ok := c.Methods[name]; ok {
		return &Member{Name: name, Owner: c.Name, Method: m}, true
	}
	return nil, false
}

// MemberNames returns the effective member names in resolution order.
func (c *ClassDescriptor) MemberNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// MissingAbstract lists abstract methods the class does not implement, in
// member order.
func (c *ClassDescriptor) MissingAbstract() []string {
	if c.missing == nil {
		return nil
	}
	var out []string
	for _, name := range c.order {
		if c.missing.Contains(name) {
			out = append(out, name)
		}
	}
	return out
}

// Unimplemented returns a copy of the set behind MissingAbstract. Before
// linking it holds the class's own abstract methods.
func (c *ClassDescriptor) Unimplemented() *set.Set[string] {
	if c.missing == nil {
		return c.Abstract.Copy()
	}
	return c.missing.Copy()
}

// IsAbstract reports whether instantiating the class must be rejected.
func (c *ClassDescriptor) IsAbstract() bool {
	return c.missing != nil && !c.missing.Empty()
}

// Ancestors returns the transitive bases, nearest first.
func (c *ClassDescriptor) Ancestors() []typesystem.TClass {
	return c.ancestors
}

// AbstractNames returns this class's own abstract method names, sorted.
func (c *ClassDescriptor) AbstractNames() []string {
	names := c.Abstract.Slice()
	sort.Strings(names)
	return names
}
