// Package typeuse implements Stage F (§4.F): Uses edges from a Field,
// Method, or Constructor to every Class/Interface named in its declared
// type, parameter types, or return type.
package typeuse

import (
	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/resolve"
)

// Scopes supplies the per-file import context, keyed by file path.
type Scopes map[string]*resolve.FileScope

// Resolve walks every Field/Method/Constructor node in idx and emits a
// Uses/UsedBy pair for each distinct type its declaration mentions.
func Resolve(idx *index.Index, scopes Scopes) []model.Edge {
	var edges []model.Edge
	seen := map[string]bool{}

	emit := func(src string, owner string, filePath string, rawType string) {
		if rawType == "" || rawType == "void" {
			return
		}
		key := src + "\x00" + rawType
		if seen[key] {
			return
		}
		scope := scopes[filePath]
		bare := resolve.BareName(rawType)
		var dst string
		var resolved bool
		if target, ok := scope.ResolveType(bare, idx, owner); ok {
			dst = target.ID
			resolved = true
		} else {
			dst = model.ClassID(bare)
			resolved = false
		}
		seen[key] = true
		edges = append(edges,
			model.Edge{Src: src, Label: model.Uses, Dst: dst, Resolved: resolved},
			model.Edge{Src: dst, Label: model.UsedBy, Dst: src, Resolved: resolved},
		)
	}

	for _, n := range idx.AllNodes() {
		switch n.Kind {
		case model.NodeField:
			emit(n.ID, n.OwnerFQN, n.FilePath, n.DeclaredType)
		case model.NodeMethod:
			emit(n.ID, n.OwnerFQN, n.FilePath, n.ReturnType)
			for _, p := range n.Params {
				emit(n.ID, n.OwnerFQN, n.FilePath, p.Type)
			}
		case model.NodeConstructor:
			for _, p := range n.Params {
				emit(n.ID, n.OwnerFQN, n.FilePath, p.Type)
			}
		}
	}
	return edges
}
