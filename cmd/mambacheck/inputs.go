package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/utils"
)

// treeExt is the extension of the syntax trees the parser writes.
const treeExt = ".mamba.json"

// collectSources expands the arguments into syntax tree files. Directories
// are searched recursively for *.mamba.json. The returned root is the
// directory module names are derived from: the first directory argument,
// or the directory of the first file.
func collectSources(args []string) ([]pipeline.Source, string, error) {
	var (
		sources []pipeline.Source
		root    string
		seen    = make(map[string]bool)
	)
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			sources = append(sources, pipeline.Source{Path: clean})
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, "", err
		}
		if !info.IsDir() {
			if root == "" {
				root = utils.GetModuleDir(arg)
			}
			add(arg)
			continue
		}
		if root == "" {
			root = arg
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, treeExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, "", err
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}
	if len(sources) == 0 {
		return nil, "", fmt.Errorf("no %s files found", treeExt)
	}
	return sources, root, nil
}
