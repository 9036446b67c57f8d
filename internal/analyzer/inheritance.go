package analyzer

import (
	"strings"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

const (
	linkVisiting = iota + 1
	linkDone
)

// linker walks class hierarchies depth first. A class found again while it
// is still being visited closes a cycle.
type linker struct {
	an    *Analyzer
	state map[*symbols.ClassDescriptor]int
	chain []string
}

// linkAll builds the effective member set of every class. It is safe to run
// again after fields have been added: a cycle is reported once and the
// offending base is dropped, so later runs see a DAG.
func (a *Analyzer) linkAll(classes []*symbols.ClassDescriptor) {
	l := &linker{an: a, state: make(map[*symbols.ClassDescriptor]int)}
	for _, c := range classes {
		l.link(c)
	}
}

func (l *linker) link(c *symbols.ClassDescriptor) {
	if l.state[c] != 0 {
		return
	}
	l.state[c] = linkVisiting
	l.chain = append(l.chain, c.Name)
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	kept := c.Bases[:0:0]
	for _, b := range c.Bases {
		bd, ok := l.an.table.Class(b.Name)
		if !ok {
			continue
		}
		if l.state[bd] == linkVisiting {
			l.reportCycle(c, bd)
			continue
		}
		l.link(bd)
		kept = append(kept, b)
	}
	c.Bases = kept
	l.an.resolveMembers(c)
	l.state[c] = linkDone
}

func (l *linker) reportCycle(c, base *symbols.ClassDescriptor) {
	c.Cyclic = true
	start := 0
	for i, name := range l.chain {
		if name == base.Name {
			start = i
			break
		}
	}
	path := append(append([]string(nil), l.chain[start:]...), base.Name)
	err := diagnostics.NewErrorf(diagnostics.ErrCyclicInheritance, c.Token,
		"cyclic inheritance: %s", strings.Join(path, " -> "))
	if m, ok := l.an.moduleByName(c.Module); ok {
		l.an.collector(m).Add(err)
	}
}

// resolveMembers computes the effective member set: own members first, then
// each base's members in base order. The first base that has a name wins,
// except that a concrete inherited method replaces an abstract one, so an
// interface combined with a mixin that implements it is complete.
func (a *Analyzer) resolveMembers(c *symbols.ClassDescriptor) {
	members := make(map[string]*symbols.Member)
	var order []string
	own := set.New[string](len(c.FieldOrder) + len(c.MethodOrder))

	for _, name := range c.FieldOrder {
		members[name] = &symbols.Member{Name: name, Owner: c.Name, Field: c.Fields[name]}
		order = append(order, name)
		own.Insert(name)
	}
	for _, name := range c.MethodOrder {
		if !own.Insert(name) {
			continue
		}
		members[name] = &symbols.Member{Name: name, Owner: c.Name, Method: c.Methods[name]}
		order = append(order, name)
	}

	// Candidates are the class's own abstract methods plus whatever each
	// base leaves unimplemented; the ones resolved concretely drop out below.
	missing := c.Abstract.Copy()
	var ancestors []typesystem.TClass
	seenAncestor := set.New[string](len(c.Bases))
	addAncestor := func(t typesystem.TClass) {
		if t.Name == c.Name || !seenAncestor.Insert(t.Name) {
			return
		}
		ancestors = append(ancestors, t)
	}

	for _, b := range c.Bases {
		bd, ok := a.table.Class(b.Name)
		if !ok {
			continue
		}
		s := typesystem.NewSubst(bd.TypeParams, b.Args)
		addAncestor(b)
		missing.InsertSet(bd.Unimplemented())
		for _, anc := range bd.Ancestors() {
			if inst, ok := anc.Apply(s).(typesystem.TClass); ok {
				addAncestor(inst)
			}
		}
		for _, name := range bd.MemberNames() {
			bm, _ := bd.Lookup(name)
			inherited := &symbols.Member{
				Name:   name,
				Owner:  bm.Owner,
				Field:  bm.Field,
				Method: bm.Method,
				Subst:  s.Compose(bm.Subst),
			}
			prev, exists := members[name]
			if !exists {
				members[name] = inherited
				order = append(order, name)
				continue
			}
			if !own.Contains(name) && prev.IsAbstract() && !inherited.IsAbstract() {
				members[name] = inherited
			}
		}
	}

	missing.RemoveFunc(func(name string) bool {
		m, ok := members[name]
		return !ok || !m.IsAbstract()
	})

	c.IsException = c.Name == config.BaseExceptionTypeName || seenAncestor.Contains(config.BaseExceptionTypeName)
	c.SetEffective(members, order, missing, ancestors)
}

// isExceptionClass reports whether a class derives from BaseException.
func (a *Analyzer) isExceptionClass(name string) bool {
	c, ok := a.table.Class(name)
	return ok && c.IsException
}
