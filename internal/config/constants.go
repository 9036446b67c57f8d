package config

import "strings"

const SourceFileExt = ".mamba"

// SourceFileExtensions are all recognized source file extensions.
// The checker itself reads JSON syntax trees produced by the parser.
var SourceFileExtensions = []string{SourceFileExt, SourceFileExt + ".json"}

// ConfigFileName is looked up in the working directory when -config is not given.
const ConfigFileName = "mambacheck.toml"

// Built-in type names
const (
	ObjectTypeName        = "object"
	IntTypeName           = "int"
	FloatTypeName         = "float"
	ComplexTypeName       = "complex"
	StrTypeName           = "str"
	BoolTypeName          = "bool"
	NoneTypeName          = "None"
	ListTypeName          = "list"
	SetTypeName           = "set"
	DictTypeName          = "dict"
	TupleTypeName         = "tuple"
	RangeTypeName         = "range"
	BaseExceptionTypeName = "BaseException"
	ExceptionTypeName     = "Exception"
	StopIterationTypeName = "StopIteration"
)

// Special forms recognised in annotations
const (
	OptionalFormName  = "Optional"
	UnionFormName     = "Union"
	TupleFormName     = "Tuple"
	CallableFormName  = "Callable"
	GenericFormName   = "Generic"
	TypeAliasFormName = "TypeAlias"
	ListFormName      = "List"
	SetFormName       = "Set"
	DictFormName      = "Dict"
)

// Built-in function names
const (
	PrintFuncName      = "print"
	LenFuncName        = "len"
	IsInstanceFuncName = "isinstance"
	SuperFuncName      = "super"
)

// Protocol method names
const (
	InitMethodName     = "__init__"
	IterMethodName     = "__iter__"
	NextMethodName     = "__next__"
	GetItemMethodName  = "__getitem__"
	ContainsMethodName = "__contains__"
	SetItemMethodName  = "__setitem__"
	BoolMethodName     = "__bool__"
	NegMethodName      = "__neg__"
	PosMethodName      = "__pos__"
	InvertMethodName   = "__invert__"
	EqMethodName       = "__eq__"
	NeMethodName       = "__ne__"
)

// Well-known identifiers
const (
	SelfParamName = "self"
	WildcardName  = "_"
)

// Declaration helpers recognised by name
const (
	TypeVarFuncName = "TypeVar"
	// BuiltinsModuleName is the module the catalog declarations live in.
	BuiltinsModuleName = "builtins"
)

// TrimSourceExt removes the longest recognized source extension from name.
func TrimSourceExt(name string) string {
	best := ""
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	return strings.TrimSuffix(name, best)
}

// HasSourceExt reports whether path ends in a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
