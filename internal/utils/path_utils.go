package utils

import (
	"path/filepath"
	"strings"

	"github.com/funvibe/mambacheck/internal/config"
)

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes any recognized source extension.
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}

// GetModuleDir returns the directory context for a module path.
// If the path points to a source file, returns the file's directory.
// If the path points to a directory (no extension), returns the path itself.
func GetModuleDir(path string) string {
	if config.HasSourceExt(path) {
		return filepath.Dir(path)
	}
	return path
}

// DottedModuleName names the module of a file relative to root, with path
// separators turned into dots: root/pkg/shapes.mamba.json -> pkg.shapes.
// Files outside root fall back to ExtractModuleName.
func DottedModuleName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ExtractModuleName(path)
	}
	dir := filepath.Dir(rel)
	name := ExtractModuleName(rel)
	if dir == "." {
		return name
	}
	return strings.ReplaceAll(filepath.ToSlash(dir), "/", ".") + "." + name
}
