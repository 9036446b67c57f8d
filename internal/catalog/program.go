package catalog

import (
	"fmt"
	"sort"

	"github.com/funvibe/mambacheck/internal/ast"
	"github.com/funvibe/mambacheck/internal/config"
)

const (
	// ModuleName is the module the catalog declarations belong to.
	ModuleName = "builtins"
	fileName   = "<builtins>"
)

// Program converts the catalog into a declaration-only program. The
// analyzer registers it with the same declaration pass it runs on user
// modules, so built-ins get no special treatment beyond being declared
// first.
func (c *Catalog) Program() (*ast.Program, error) {
	var stmts []ast.Statement
	for _, cls := range c.Classes {
		def, err := classDef(cls)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, def)
	}
	for _, fn := range c.Functions {
		def, err := functionDef(fn, false)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		stmts = append(stmts, def)
	}
	names := make([]string, 0, len(c.Aliases))
	for name := range c.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		target, err := ParseType(c.Aliases[name])
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", name, err)
		}
		stmts = append(stmts, ast.Alias(name, target))
	}
	return ast.NewProgram(fileName, ModuleName, stmts...), nil
}

func classDef(cls ClassSpec) (*ast.ClassDef, error) {
	def := ast.Class(cls.Name).Generic(cls.Generic...)
	for _, b := range cls.Bases {
		base, err := ParseType(b)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", cls.Name, err)
		}
		def.Extends(base)
	}
	for _, f := range cls.Fields {
		typ, err := ParseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("class %s, field %s: %w", cls.Name, f.Name, err)
		}
		def.With(ast.Annotated(ast.Id(f.Name), typ, nil))
	}
	for _, m := range cls.Methods {
		fn, err := functionDef(m, true)
		if err != nil {
			return nil, fmt.Errorf("class %s, method %s: %w", cls.Name, m.Name, err)
		}
		def.With(fn)
	}
	return def, nil
}

func functionDef(spec FunctionSpec, method bool) (*ast.FunctionDef, error) {
	var params []*ast.Param
	if method {
		params = append(params, ast.Self())
	}
	for _, p := range spec.Params {
		typ, err := ParseType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		param := ast.P(p.Name, typ)
		param.Variadic = p.Variadic
		if p.Default {
			param.Default = ast.None()
		}
		params = append(params, param)
	}
	fn := ast.Def(spec.Name, params...).Generic(spec.Generic...)
	ret := spec.Returns
	if ret == "" {
		ret = config.NoneTypeName
	}
	typ, err := ParseType(ret)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}
	fn.Returns(typ)
	if spec.Abstract {
		fn.AsAbstract()
	}
	return fn, nil
}
