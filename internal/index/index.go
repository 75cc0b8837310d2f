// Package index implements Stage C (§4.C): it aggregates every stage B
// node into the lookup tables stages D, E, and F consult. The index is
// built once and frozen before stage D runs (§4.C, §5).
package index

import (
	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/model"
)

// MethodKey identifies a method inside a single owner by simple name and
// canonical signature — the lookup key §4.C names.
type MethodKey struct {
	Owner     string
	Name      string
	Signature string
}

// CtorKey identifies a constructor inside a single owner by signature.
type CtorKey struct {
	Owner     string
	Signature string
}

// Index is the frozen symbol table Stage D/E/F all consult.
type Index struct {
	byID           map[string]*model.Node
	classesByFQN   map[string]*model.Node // Class or Interface
	methodsByOwner map[MethodKey]*model.Node
	ctorsByOwner   map[CtorKey]*model.Node
	fieldsByOwner  map[string]*model.Node // "owner#name" -> Field
	methodsOfOwner map[string][]*model.Node
	fieldsOfOwner  map[string][]*model.Node
	frozen         bool
}

// New builds an Index from the full node set across every parsed file,
// applying the "first declaration wins" collision policy (§4.C).
func New(nodes []model.Node, diags *diagnostics.Collector) *Index {
	idx := &Index{
		byID:           make(map[string]*model.Node),
		classesByFQN:   make(map[string]*model.Node),
		methodsByOwner: make(map[MethodKey]*model.Node),
		ctorsByOwner:   make(map[CtorKey]*model.Node),
		fieldsByOwner:  make(map[string]*model.Node),
		methodsOfOwner: make(map[string][]*model.Node),
		fieldsOfOwner:  make(map[string][]*model.Node),
	}

	for i := range nodes {
		n := &nodes[i]
		if existing, ok := idx.byID[n.ID]; ok {
			// Every file of a package carries the same Module node; only
			// a repeated type or member id is a duplicate declaration.
			if n.Kind != model.NodeModule {
				diags.Add(diagnostics.DuplicateSymbol, n.FilePath,
					"%s already declared at %s:%d", n.ID, existing.FilePath, existing.LineRange.Start)
			}
			continue
		}
		idx.byID[n.ID] = n

		switch n.Kind {
		case model.NodeClass, model.NodeInterface:
			idx.classesByFQN[n.FQN] = n
		case model.NodeMethod:
			key := MethodKey{Owner: n.OwnerFQN, Name: n.SimpleName, Signature: n.Signature}
			idx.methodsByOwner[key] = n
			idx.methodsOfOwner[n.OwnerFQN] = append(idx.methodsOfOwner[n.OwnerFQN], n)
		case model.NodeConstructor:
			key := CtorKey{Owner: n.OwnerFQN, Signature: n.Signature}
			idx.ctorsByOwner[key] = n
		case model.NodeField:
			idx.fieldsByOwner[n.OwnerFQN+"#"+n.SimpleName] = n
			idx.fieldsOfOwner[n.OwnerFQN] = append(idx.fieldsOfOwner[n.OwnerFQN], n)
		}
	}

	idx.frozen = true
	return idx
}

// Node returns the node with the given canonical id, if any.
func (idx *Index) Node(id string) (*model.Node, bool) {
	n, ok := idx.byID[id]
	return n, ok
}

// ClassOrInterface resolves a type FQN to its Class or Interface node.
func (idx *Index) ClassOrInterface(fqn string) (*model.Node, bool) {
	n, ok := idx.classesByFQN[fqn]
	return n, ok
}

// Method looks up a method by (owner FQN, simple name, signature).
func (idx *Index) Method(owner, name, signature string) (*model.Node, bool) {
	n, ok := idx.methodsByOwner[MethodKey{Owner: owner, Name: name, Signature: signature}]
	return n, ok
}

// Constructor looks up a constructor by (owner FQN, signature).
func (idx *Index) Constructor(owner, signature string) (*model.Node, bool) {
	n, ok := idx.ctorsByOwner[CtorKey{Owner: owner, Signature: signature}]
	return n, ok
}

// Field looks up a field by (owner FQN, simple name).
func (idx *Index) Field(owner, name string) (*model.Node, bool) {
	n, ok := idx.fieldsByOwner[owner+"#"+name]
	return n, ok
}

// MethodsOf returns every Method node declared directly on owner, in
// declaration order.
func (idx *Index) MethodsOf(owner string) []*model.Node {
	return idx.methodsOfOwner[owner]
}

// FieldsOf returns every Field node declared directly on owner.
func (idx *Index) FieldsOf(owner string) []*model.Node {
	return idx.fieldsOfOwner[owner]
}

// AllNodes returns every node retained in the index (post-dedup). The
// order follows map iteration and is not stable between calls.
func (idx *Index) AllNodes() []*model.Node {
	out := make([]*model.Node, 0, len(idx.byID))
	for _, n := range idx.byID {
		out = append(out, n)
	}
	return out
}
