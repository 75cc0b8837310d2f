// Package discovery walks a directory tree for Java source files,
// applying exclude patterns the way internal/util's pattern matcher was
// built for (§11.1 of SPEC_FULL.md).
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/javagraph/javagraph/internal/util"
)

// DefaultExcludePatterns returns the directory-name globs skipped by
// default during a walk.
func DefaultExcludePatterns() []string {
	return []string{
		".git",
		".svn",
		".hg",
		"node_modules",
		"target",
		"build",
		"out",
		"dist",
		".idea",
		".vscode",
		".gradle",
		".javagraph",
	}
}

// IsJavaFile reports whether path names a Java compilation unit.
func IsJavaFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".java")
}

// Walk returns every Java source file under root, sorted, with path
// separators normalized to "/" regardless of host OS. Directories whose
// base name matches one of excludePatterns are skipped entirely.
func Walk(root string, excludePatterns []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolve root: %w", err)
	}

	var files []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != absRoot && excluded(info.Name(), excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsJavaFile(path) {
			return nil
		}
		files = append(files, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if util.MatchPattern(p, name) {
			return true
		}
	}
	return false
}
