// Package resolve implements the name-resolution algorithm shared by
// stages D, E, and F (§4.E): resolving a bare type name against the
// visible scope of imports, enclosing type, and same package, and (in
// calls.go) resolving method invocations and object creation against
// local scope plus class-hierarchy analysis.
package resolve

import (
	"strings"

	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
)

// implicitOnDemand is always part of scope, the same way java.lang is
// implicitly imported in every compilation unit.
const implicitOnDemand = "java.lang"

// FileScope carries the per-file context stage B records (§4.B) that
// name resolution in later stages needs: the declaring package and the
// file's import list.
type FileScope struct {
	PackageName string
	// Single maps an imported simple type name to its FQN.
	Single map[string]string
	// OnDemand holds package prefixes exposed by `import pkg.*;`.
	OnDemand []string
}

// NewFileScope builds a FileScope from a package name, a map of
// single-type imports (simple name -> FQN), and the on-demand import
// package prefixes. Kept decoupled from package symbols
// to avoid an import cycle; pipeline does the adapting.
func NewFileScope(packageName string, singles map[string]string, onDemand []string) *FileScope {
	return &FileScope{PackageName: packageName, Single: singles, OnDemand: onDemand}
}

// ResolveType resolves a bare type name (generics/arrays already
// stripped by the caller) to a Class or Interface node, trying, in
// order: an already-qualified name, nesting inside enclosingFQN, the
// file's single-type imports, the same package, the file's on-demand
// imports, and finally java.lang. It returns ok=false when every avenue
// is exhausted, per §4.E/§4.F's best-effort contract.
func (s *FileScope) ResolveType(bareName string, idx *index.Index, enclosingFQN string) (*model.Node, bool) {
	if bareName == "" {
		return nil, false
	}
	bareName = strings.TrimSuffix(bareName, "[]")
	for strings.HasSuffix(bareName, "[]") {
		bareName = strings.TrimSuffix(bareName, "[]")
	}

	if n, ok := idx.ClassOrInterface(bareName); ok {
		return n, true
	}

	for owner := enclosingFQN; owner != ""; owner = parentFQN(owner) {
		if n, ok := idx.ClassOrInterface(owner + "." + bareName); ok {
			return n, true
		}
	}

	if s != nil {
		if fqn, ok := s.Single[bareName]; ok {
			if n, ok := idx.ClassOrInterface(fqn); ok {
				return n, true
			}
		}
		if s.PackageName != "" && s.PackageName != model.DefaultPackage {
			if n, ok := idx.ClassOrInterface(s.PackageName + "." + bareName); ok {
				return n, true
			}
		}
		for _, pkg := range s.OnDemand {
			if n, ok := idx.ClassOrInterface(pkg + "." + bareName); ok {
				return n, true
			}
		}
	}

	if n, ok := idx.ClassOrInterface(implicitOnDemand + "." + bareName); ok {
		return n, true
	}

	return nil, false
}

func parentFQN(fqn string) string {
	i := strings.LastIndexByte(fqn, '.')
	if i < 0 {
		return ""
	}
	return fqn[:i]
}

// BareName strips array/generic decoration down to the identifier
// ResolveType expects, e.g. "List<String>" -> "List", "String[]" -> "String".
func BareName(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSpace(t)
	for strings.HasSuffix(t, "[]") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "[]"))
	}
	for strings.HasSuffix(t, "...") {
		t = strings.TrimSpace(strings.TrimSuffix(t, "..."))
	}
	if i := strings.LastIndexByte(t, '.'); i >= 0 && !strings.Contains(t, "<") {
		// Fully-qualified reference used inline, e.g. "java.util.List":
		// keep it whole, ResolveType's first attempt handles exact FQNs.
		return t
	}
	return t
}
