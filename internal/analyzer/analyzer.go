package analyzer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/symbols"
	"github.com/funvibe/mambacheck/internal/token"
	"github.com/funvibe/mambacheck/internal/typesystem"
)

// Analyzer owns the declaration table of one checking session and drives
// the passes over it. Declare and ResolveBodies must be called in that
// order; the table is read-only once bodies are being checked.
type Analyzer struct {
	table    *symbols.Table
	builtins *symbols.Module
	opts     config.Options
	logger   *zap.Logger

	// Catalog class properties applied while naming built-in classes.
	meta map[string]classMeta

	modules []*symbols.Module // User modules in file order
	sigs    map[*ast.FunctionDef]*symbols.FunctionSignature

	// Per-module state of the sequential passes.
	collectors map[string]*diagnostics.Collector
	typeMaps   map[string]map[ast.Node]typesystem.Type

	// Return types being inferred, for recursion detection.
	inferring map[*symbols.FunctionSignature]bool
	// harvesting is set while attribute types are collected from method
	// bodies. Inferred return types are not cached then, since the fields
	// they read may still be incomplete.
	harvesting bool
	harvested  map[*symbols.FieldInfo]bool
	lateFields []lateField
	// sealed is set before bodies are checked in parallel. From then on no
	// lazily computed header state may be written.
	sealed bool
}

type classMeta struct {
	primitive bool
	promotes  []string
}

// New creates an analyzer with an empty declaration table. Register the
// catalog with RegisterCatalog before declaring user modules.
func New(opts config.Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		table:      symbols.NewTable(),
		opts:       opts,
		logger:     logger,
		meta:       make(map[string]classMeta),
		sigs:       make(map[*ast.FunctionDef]*symbols.FunctionSignature),
		collectors: make(map[string]*diagnostics.Collector),
		typeMaps:   make(map[string]map[ast.Node]typesystem.Type),
		inferring:  make(map[*symbols.FunctionSignature]bool),
		harvested:  make(map[*symbols.FieldInfo]bool),
	}
}

// Table exposes the declaration table, mainly for tests and tools.
func (a *Analyzer) Table() *symbols.Table {
	return a.table
}

// moduleByName returns a user module or the built-in module.
func (a *Analyzer) moduleByName(name string) (*symbols.Module, bool) {
	if a.builtins != nil && name == a.builtins.Name {
		return a.builtins, true
	}
	return a.table.Module(name)
}

func (a *Analyzer) collector(m *symbols.Module) *diagnostics.Collector {
	c, ok := a.collectors[m.Name]
	if !ok {
		c = diagnostics.NewCollector(m.File)
		a.collectors[m.Name] = c
	}
	return c
}

func (a *Analyzer) typeMap(m *symbols.Module) map[ast.Node]typesystem.Type {
	tm, ok := a.typeMaps[m.Name]
	if !ok {
		tm = make(map[ast.Node]typesystem.Type)
		a.typeMaps[m.Name] = tm
	}
	return tm
}

type AnalysisMode int

const (
	ModeNaming  AnalysisMode = iota // Pass 1: declare top-level names
	ModeHeaders                     // Pass 1: resolve signatures, bases, fields, aliases
	ModeBodies                      // Pass 2: module statements and bodies
	ModeInfer                       // Return type inference; diagnostics are discarded
)

// walker carries the state of one traversal. Each worker of the parallel
// body pass owns its walker, collector and type map.
type walker struct {
	ast.BaseVisitor

	an          *Analyzer
	module      *symbols.Module
	symbolTable *symbols.SymbolTable
	errors      *diagnostics.Collector
	TypeMap     map[ast.Node]typesystem.Type
	mode        AnalysisMode

	inLoop bool
	// breaks is set when the innermost loop body contains a break.
	breaks bool
	// flow is how the statement just checked completes.
	flow flow
	// assigned collects the names and paths written in the current branch,
	// so their narrowings can be joined when the branches meet.
	assigned map[string]bool
	// returns collects the types of return statements while the return
	// type of the enclosing function is being inferred.
	returns *[]typesystem.Type
	// handlers holds the exception types caught by the enclosing try
	// statements of the current function, innermost last.
	handlers [][]typesystem.Type
	// Signatures of functions declared inside bodies.
	localSigs map[*ast.FunctionDef]*symbols.FunctionSignature
	// implicit collects module-level type variables that a signature
	// under construction uses; they become its own type parameters.
	implicit *implicitParams
	// harvest is the class whose attributes are being collected.
	harvest *symbols.ClassDescriptor
}

func (a *Analyzer) newWalker(m *symbols.Module, errs *diagnostics.Collector, typeMap map[ast.Node]typesystem.Type, mode AnalysisMode) *walker {
	if typeMap == nil {
		typeMap = make(map[ast.Node]typesystem.Type)
	}
	return &walker{
		an:          a,
		module:      m,
		symbolTable: m.Globals,
		errors:      errs,
		TypeMap:     typeMap,
		mode:        mode,
		localSigs:   make(map[*ast.FunctionDef]*symbols.FunctionSignature),
		assigned:    make(map[string]bool),
	}
}

// addError records a diagnostic. Return type inference runs bodies a
// second time, so it reports nothing.
func (w *walker) addError(err *diagnostics.DiagnosticError) {
	if w.mode == ModeInfer {
		return
	}
	w.errors.Add(err)
}

func (w *walker) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	w.addError(diagnostics.NewErrorf(code, tok, format, args...))
}

func (w *walker) warnf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	w.addError(diagnostics.NewWarning(code, tok, fmt.Sprintf(format, args...)))
}

// record stores the inferred type of a node and returns it.
func (w *walker) record(node ast.Node, t typesystem.Type) typesystem.Type {
	if t == nil {
		t = typesystem.Unknown
	}
	if node != nil {
		w.TypeMap[node] = t
	}
	return t
}

// inScope runs fn with scope as the current scope.
func (w *walker) inScope(scope *symbols.SymbolTable, fn func()) {
	prev := w.symbolTable
	w.symbolTable = scope
	defer func() { w.symbolTable = prev }()
	fn()
}

// newBlock opens a block scope below the current one.
func (w *walker) newBlock() *symbols.SymbolTable {
	return symbols.NewEnclosedSymbolTable(w.symbolTable, symbols.ScopeBlock)
}

// signature returns the signature of a declared function, top-level or
// local to a body.
func (w *walker) signature(fd *ast.FunctionDef) (*symbols.FunctionSignature, bool) {
	if sig, ok := w.localSigs[fd]; ok {
		return sig, true
	}
	sig, ok := w.an.sigs[fd]
	return sig, ok
}
