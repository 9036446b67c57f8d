// Package catalog loads the built-in declarations the checker registers
// before any user module: primitive and collection classes, the exception
// hierarchy, free functions and type aliases.
//
// The catalog is written in YAML. The built-in file is embedded; projects
// can add stub files through the catalog.extra option in mambacheck.toml.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed builtins.yaml
var builtinsYAML []byte

// Catalog is the decoded form of one or more stub files.
type Catalog struct {
	Classes   []ClassSpec       `yaml:"classes"`
	Functions []FunctionSpec    `yaml:"functions"`
	Aliases   map[string]string `yaml:"aliases"`
}

// ClassSpec declares a class.
type ClassSpec struct {
	Name string `yaml:"name"`

	// Generic lists the type parameter names, as in Generic[T, U].
	Generic []string `yaml:"generic,omitempty"`

	// Bases are type strings, e.g. "collection[T]". A class without bases
	// derives from object.
	Bases []string `yaml:"bases,omitempty"`

	// Primitive marks classes whose instances are primitive values (int,
	// float, str, ...). Member lookup on those values uses this class.
	Primitive bool `yaml:"primitive,omitempty"`

	// Promotes lists primitives this primitive is implicitly widened to.
	Promotes []string `yaml:"promotes,omitempty"`

	Fields  []FieldSpec    `yaml:"fields,omitempty"`
	Methods []FunctionSpec `yaml:"methods,omitempty"`
}

type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// FunctionSpec declares a free function or, inside a class, a method. The
// self parameter of methods is implicit.
type FunctionSpec struct {
	Name     string      `yaml:"name"`
	Generic  []string    `yaml:"generic,omitempty"`
	Params   []ParamSpec `yaml:"params,omitempty"`
	Returns  string      `yaml:"returns,omitempty"`
	Abstract bool        `yaml:"abstract,omitempty"`
}

type ParamSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Default  bool   `yaml:"default,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty"`
}

// ClassMeta carries the class properties that have no syntax in the
// declaration tree.
type ClassMeta struct {
	Primitive bool
	Promotes  []string
}

// Builtin decodes the embedded built-in catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtinsYAML, "builtins.yaml")
}

// Load reads and parses a stub file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes catalog content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := c.validate(path); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadAll returns the built-in catalog extended with the given stub files,
// in order.
func LoadAll(extra []string) (*Catalog, error) {
	c, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, path := range extra {
		more, err := Load(path)
		if err != nil {
			return nil, err
		}
		if err := c.Merge(more); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return c, nil
}

// Merge appends the declarations of other. Redeclaring a class, function
// or alias is an error.
func (c *Catalog) Merge(other *Catalog) error {
	classes := make(map[string]bool, len(c.Classes))
	for _, cls := range c.Classes {
		classes[cls.Name] = true
	}
	for _, cls := range other.Classes {
		if classes[cls.Name] {
			return fmt.Errorf("class %s is already declared", cls.Name)
		}
		c.Classes = append(c.Classes, cls)
	}
	funcs := make(map[string]bool, len(c.Functions))
	for _, fn := range c.Functions {
		funcs[fn.Name] = true
	}
	for _, fn := range other.Functions {
		if funcs[fn.Name] {
			return fmt.Errorf("function %s is already declared", fn.Name)
		}
		c.Functions = append(c.Functions, fn)
	}
	if c.Aliases == nil {
		c.Aliases = make(map[string]string)
	}
	for name, target := range other.Aliases {
		if _, ok := c.Aliases[name]; ok {
			return fmt.Errorf("alias %s is already declared", name)
		}
		c.Aliases[name] = target
	}
	return nil
}

// Meta returns the class properties keyed by class name.
func (c *Catalog) Meta() map[string]ClassMeta {
	out := make(map[string]ClassMeta, len(c.Classes))
	for _, cls := range c.Classes {
		out[cls.Name] = ClassMeta{Primitive: cls.Primitive, Promotes: cls.Promotes}
	}
	return out
}

// validate checks the catalog for structural errors. Type strings are
// checked when the catalog is converted to declarations.
func (c *Catalog) validate(path string) error {
	seen := make(map[string]bool)
	for i, cls := range c.Classes {
		if cls.Name == "" {
			return fmt.Errorf("%s: classes[%d]: name is required", path, i)
		}
		if seen[cls.Name] {
			return fmt.Errorf("%s: classes[%d]: duplicate class %s", path, i, cls.Name)
		}
		seen[cls.Name] = true
		if len(cls.Promotes) > 0 && !cls.Primitive {
			return fmt.Errorf("%s: classes[%d] (%s): promotes is only valid for primitive classes", path, i, cls.Name)
		}
		for j, m := range cls.Methods {
			if err := m.validate(); err != nil {
				return fmt.Errorf("%s: classes[%d].methods[%d] (%s): %w", path, i, j, cls.Name, err)
			}
		}
		for j, f := range cls.Fields {
			if f.Name == "" || f.Type == "" {
				return fmt.Errorf("%s: classes[%d].fields[%d] (%s): name and type are required", path, i, j, cls.Name)
			}
		}
	}
	for i, fn := range c.Functions {
		if err := fn.validate(); err != nil {
			return fmt.Errorf("%s: functions[%d]: %w", path, i, err)
		}
	}
	for name, target := range c.Aliases {
		if target == "" {
			return fmt.Errorf("%s: aliases.%s: target is required", path, name)
		}
	}
	return nil
}

func (f FunctionSpec) validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	for i, p := range f.Params {
		if p.Name == "" || p.Type == "" {
			return fmt.Errorf("params[%d]: name and type are required", i)
		}
		if p.Variadic && i != len(f.Params)-1 {
			return fmt.Errorf("params[%d] (%s): only the last parameter may be variadic", i, p.Name)
		}
	}
	return nil
}
