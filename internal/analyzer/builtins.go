package analyzer

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/symbols"
)

// RegisterCatalog declares the catalog's classes, functions and aliases in
// the built-in scope. The catalog goes through the same naming and header
// passes as user code, so its stubs are checked like declarations.
func (a *Analyzer) RegisterCatalog(c *catalog.Catalog) error {
	if a.builtins != nil {
		return fmt.Errorf("analyzer: catalog is already registered")
	}
	prog, err := c.Program()
	if err != nil {
		return fmt.Errorf("building catalog declarations: %w", err)
	}
	for name, m := range c.Meta() {
		a.meta[name] = classMeta{primitive: m.Primitive, promotes: m.Promotes}
	}
	return a.registerBuiltins(prog)
}

func (a *Analyzer) registerBuiltins(prog *ast.Program) error {
	m := &symbols.Module{
		Name:    prog.Module,
		File:    prog.File,
		Program: prog,
		Globals: a.table.Builtins(),
		Aliases: make(map[string]*symbols.AliasInfo),
	}
	a.builtins = m
	w := a.newWalker(m, a.collector(m), a.typeMap(m), ModeNaming)
	w.nameProgram(prog)
	a.declareHeaders([]*symbols.Module{m})

	var errs error
	for _, d := range a.collector(m).Items() {
		if d.IsError() {
			errs = multierr.Append(errs, d)
		}
	}
	if errs != nil {
		return fmt.Errorf("invalid catalog: %w", errs)
	}
	a.logger.Debug("catalog registered",
		zap.Int("classes", len(m.Classes)),
		zap.Int("functions", len(m.Functions)))
	return nil
}
