package hierarchy

import (
	"testing"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
)

func hasEdge(edges []model.Edge, src string, label model.EdgeLabel, dst string) bool {
	for _, e := range edges {
		if e.Src == src && e.Label == label && e.Dst == dst {
			return true
		}
	}
	return false
}

func TestInheritanceAndOverride(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:A", Kind: model.NodeClass, FQN: "A"},
		{ID: "method:A#greet()", Kind: model.NodeMethod, OwnerFQN: "A", SimpleName: "greet", Signature: ""},
		{ID: "class:B", Kind: model.NodeClass, FQN: "B", Extends: []string{"A"}},
		{ID: "method:B#greet()", Kind: model.NodeMethod, OwnerFQN: "B", SimpleName: "greet", Signature: ""},
	}
	idx := index.New(nodes, diagnostics.New())
	r := Resolve(idx, Scopes{})

	if !hasEdge(r.Edges, "class:A", model.BaseClassOf, "class:B") {
		t.Fatal("missing BaseClassOf(A, B)")
	}
	if !hasEdge(r.Edges, "class:B", model.DerivedClassOf, "class:A") {
		t.Fatal("missing DerivedClassOf(B, A)")
	}
	if !hasEdge(r.Edges, "method:B#greet()", model.Overrides, "method:A#greet()") {
		t.Fatal("missing Overrides(B#greet, A#greet)")
	}
	if !hasEdge(r.Edges, "method:A#greet()", model.OverriddenBy, "method:B#greet()") {
		t.Fatal("missing OverriddenBy inverse")
	}
}

func TestInterfaceImplementation(t *testing.T) {
	nodes := []model.Node{
		{ID: "interface:I", Kind: model.NodeInterface, FQN: "I"},
		{ID: "method:I#run()", Kind: model.NodeMethod, OwnerFQN: "I", SimpleName: "run", Signature: "", IsAbstract: true},
		{ID: "class:C", Kind: model.NodeClass, FQN: "C", Implements: []string{"I"}},
		{ID: "method:C#run()", Kind: model.NodeMethod, OwnerFQN: "C", SimpleName: "run", Signature: ""},
	}
	idx := index.New(nodes, diagnostics.New())
	r := Resolve(idx, Scopes{})

	if !hasEdge(r.Edges, "class:C", model.Implements, "interface:I") {
		t.Fatal("missing Implements(C, I)")
	}
	if !hasEdge(r.Edges, "interface:I", model.ImplementedBy, "class:C") {
		t.Fatal("missing ImplementedBy inverse")
	}
	if !hasEdge(r.Edges, "method:C#run()", model.Overrides, "method:I#run()") {
		t.Fatal("missing Overrides(C#run, I#run)")
	}
}

func TestOverrideTieBreakClassAndInterface(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:A", Kind: model.NodeClass, FQN: "A"},
		{ID: "method:A#run()", Kind: model.NodeMethod, OwnerFQN: "A", SimpleName: "run", Signature: ""},
		{ID: "interface:I", Kind: model.NodeInterface, FQN: "I"},
		{ID: "method:I#run()", Kind: model.NodeMethod, OwnerFQN: "I", SimpleName: "run", Signature: "", IsAbstract: true},
		{ID: "class:B", Kind: model.NodeClass, FQN: "B", Extends: []string{"A"}, Implements: []string{"I"}},
		{ID: "method:B#run()", Kind: model.NodeMethod, OwnerFQN: "B", SimpleName: "run", Signature: ""},
	}
	idx := index.New(nodes, diagnostics.New())
	r := Resolve(idx, Scopes{})

	targets := r.Overrides["method:B#run()"]
	if len(targets) != 2 {
		t.Fatalf("override targets = %v, want 2 (class + interface)", targets)
	}
}

func TestStaticAndPrivateDoNotOverride(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:A", Kind: model.NodeClass, FQN: "A"},
		{ID: "method:A#helper()", Kind: model.NodeMethod, OwnerFQN: "A", SimpleName: "helper", Signature: ""},
		{ID: "method:A#secret()", Kind: model.NodeMethod, OwnerFQN: "A", SimpleName: "secret", Signature: ""},
		{ID: "class:B", Kind: model.NodeClass, FQN: "B", Extends: []string{"A"}},
		{ID: "method:B#helper()", Kind: model.NodeMethod, OwnerFQN: "B", SimpleName: "helper", Signature: "", IsStatic: true},
		{ID: "method:B#secret()", Kind: model.NodeMethod, OwnerFQN: "B", SimpleName: "secret", Signature: "", Modifiers: []string{"private"}},
	}
	idx := index.New(nodes, diagnostics.New())
	r := Resolve(idx, Scopes{})
	if len(r.Overrides["method:B#helper()"]) != 0 {
		t.Fatal("static method should not override")
	}
	if len(r.Overrides["method:B#secret()"]) != 0 {
		t.Fatal("private method should not override")
	}
}

func TestUnresolvedExtends(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:B", Kind: model.NodeClass, FQN: "B", Extends: []string{"Missing"}},
	}
	idx := index.New(nodes, diagnostics.New())
	r := Resolve(idx, Scopes{})
	found := false
	for _, e := range r.Edges {
		if e.Label == model.DerivedClassOf && e.Src == "class:B" && !e.Resolved {
			found = true
		}
	}
	if !found {
		t.Fatal("expected unresolved DerivedClassOf edge")
	}
}
