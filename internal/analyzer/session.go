package analyzer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/typesystem"
	"github.com/funvibe/mambacheck/internal/utils"
)

// Result is the outcome of checking one module.
type Result struct {
	File        string
	Module      string
	Diagnostics []*diagnostics.DiagnosticError
	// TypeMap holds the inferred type of every expression that was checked.
	TypeMap  map[ast.Node]typesystem.Type
	Accepted bool
}

// Declare runs pass 1 over a set of modules: names are declared per module
// in parallel, then headers are resolved sequentially.
func (a *Analyzer) Declare(ctx context.Context, programs []*ast.Program) error {
	if a.builtins == nil {
		return errors.New("analyzer: catalog is not registered")
	}
	if a.modules != nil {
		return errors.New("analyzer: modules are already declared")
	}
	mods := make([]*symbols.Module, 0, len(programs))
	for _, p := range programs {
		name := p.Module
		if name == "" {
			name = utils.ExtractModuleName(p.File)
		}
		if _, dup := a.moduleByName(name); dup {
			return fmt.Errorf("module %s is declared twice", name)
		}
		m := symbols.NewModule(name, p.File, a.table.Builtins())
		m.Program = p
		a.table.AddModule(m)
		mods = append(mods, m)
	}
	a.modules = mods

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.EffectiveWorkers())
	for _, m := range mods {
		w := a.newWalker(m, a.collector(m), a.typeMap(m), ModeNaming)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w.nameProgram(w.module.Program)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.declareHeaders(mods)
	return ctx.Err()
}

// unit is one independently checked part of pass 2: a top-level function
// or a class.
type unit struct {
	module  *symbols.Module
	fn      *symbols.FunctionSignature
	class   *symbols.ClassDescriptor
	errors  *diagnostics.Collector
	typeMap map[ast.Node]typesystem.Type
}

// ResolveBodies runs pass 2. Module-level statements are checked in import
// order, so imported variables have their types. Return types are then
// fixed, and function and class bodies are checked in parallel with the
// declaration table frozen.
func (a *Analyzer) ResolveBodies(ctx context.Context) ([]*Result, error) {
	for _, m := range importOrder(a.modules) {
		if m.Fatal {
			continue
		}
		w := a.newWalker(m, a.collector(m), a.typeMap(m), ModeBodies)
		w.bindImports()
		w.checkBlock(m.Program.Statements)
		m.Globals.ClearNarrowing()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var units []*unit
	for _, m := range a.modules {
		if m.Fatal {
			continue
		}
		for _, sig := range m.Functions {
			a.ensureReturn(sig)
		}
		for _, desc := range m.Classes {
			for _, name := range desc.MethodOrder {
				a.ensureReturn(desc.Methods[name])
			}
		}
		units = append(units, a.units(m)...)
	}
	a.sealed = true
	a.logger.Debug("checking bodies", zap.Int("units", len(units)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.EffectiveWorkers())
	for _, u := range units {
		u := u
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := a.newWalker(u.module, u.errors, u.typeMap, ModeBodies)
			if u.class != nil {
				w.checkClassBody(u.class)
			} else {
				w.checkFunctionBody(u.fn, nil)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return a.results(units), nil
}

// units lists the top-level functions and classes of a module in source
// order.
func (a *Analyzer) units(m *symbols.Module) []*unit {
	classes := make(map[*ast.ClassDef]*symbols.ClassDescriptor, len(m.Classes))
	for _, desc := range m.Classes {
		classes[desc.Node] = desc
	}
	var out []*unit
	for _, stmt := range m.Program.Statements {
		u := &unit{
			module:  m,
			errors:  diagnostics.NewCollector(m.File),
			typeMap: make(map[ast.Node]typesystem.Type),
		}
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			sig, ok := a.sigs[s]
			if !ok {
				continue
			}
			u.fn = sig
		case *ast.ClassDef:
			desc, ok := classes[s]
			if !ok {
				continue
			}
			u.class = desc
		default:
			continue
		}
		out = append(out, u)
	}
	return out
}

// results merges the module-level and per-unit diagnostics and type maps,
// one result per module in declaration order.
func (a *Analyzer) results(units []*unit) []*Result {
	byModule := make(map[*symbols.Module][]*unit)
	for _, u := range units {
		byModule[u.module] = append(byModule[u.module], u)
	}
	out := make([]*Result, 0, len(a.modules))
	for _, m := range a.modules {
		parts := [][]*diagnostics.DiagnosticError{a.collector(m).Items()}
		typeMap := make(map[ast.Node]typesystem.Type)
		for n, t := range a.typeMap(m) {
			typeMap[n] = t
		}
		for _, u := range byModule[m] {
			parts = append(parts, u.errors.Items())
			for n, t := range u.typeMap {
				typeMap[n] = t
			}
		}
		diags := diagnostics.Merge(parts...)
		out = append(out, &Result{
			File:        m.File,
			Module:      m.Name,
			Diagnostics: diags,
			TypeMap:     typeMap,
			Accepted:    !diagnostics.HasErrors(diags),
		})
	}
	return out
}

// Session checks sets of modules against one catalog. Every Check starts
// from a fresh declaration table, so checking the same programs twice gives
// the same result.
type Session struct {
	catalog *catalog.Catalog
	opts    config.Options
	logger  *zap.Logger
}

func NewSession(c *catalog.Catalog, opts config.Options, logger *zap.Logger) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		var err error
		if c, err = catalog.Builtin(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{catalog: c, opts: opts, logger: logger}, nil
}

// Check runs both passes over programs and returns one result per program,
// in the same order.
func (s *Session) Check(ctx context.Context, programs []*ast.Program) ([]*Result, error) {
	a := New(s.opts, s.logger)
	if err := a.RegisterCatalog(s.catalog); err != nil {
		return nil, err
	}
	if err := a.Declare(ctx, programs); err != nil {
		return nil, err
	}
	results, err := a.ResolveBodies(ctx)
	if err != nil {
		return nil, err
	}
	accepted := 0
	for _, r := range results {
		if r.Accepted {
			accepted++
		}
	}
	s.logger.Info("check finished",
		zap.Int("modules", len(results)),
		zap.Int("accepted", accepted))
	return results, nil
}
