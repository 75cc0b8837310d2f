package typeuse

import (
	"testing"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/resolve"
)

func hasEdge(edges []model.Edge, src string, label model.EdgeLabel, dst string, resolved bool) bool {
	for _, e := range edges {
		if e.Src == src && e.Label == label && e.Dst == dst && e.Resolved == resolved {
			return true
		}
	}
	return false
}

func TestResolveFieldAndParamUses(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:com.example.Repo", Kind: model.NodeClass, FQN: "com.example.Repo", FilePath: "Repo.java"},
		{ID: "class:com.example.Service", Kind: model.NodeClass, FQN: "com.example.Service", FilePath: "Service.java"},
		{ID: "field:com.example.Service#repo", Kind: model.NodeField, OwnerFQN: "com.example.Service",
			SimpleName: "repo", DeclaredType: "Repo", FilePath: "Service.java"},
		{ID: "method:com.example.Service#save(Repo)", Kind: model.NodeMethod, OwnerFQN: "com.example.Service",
			SimpleName: "save", Signature: "Repo", ReturnType: "void",
			Params: []model.Param{{Name: "r", Type: "Repo"}}, FilePath: "Service.java"},
	}
	idx := index.New(nodes, diagnostics.New())
	scopes := Scopes{"Service.java": resolve.NewFileScope("com.example", nil, nil)}

	edges := Resolve(idx, scopes)

	if !hasEdge(edges, "field:com.example.Service#repo", model.Uses, "class:com.example.Repo", true) {
		t.Fatal("missing Uses(field repo, Repo)")
	}
	if !hasEdge(edges, "class:com.example.Repo", model.UsedBy, "field:com.example.Service#repo", true) {
		t.Fatal("missing UsedBy inverse")
	}
	if !hasEdge(edges, "method:com.example.Service#save(Repo)", model.Uses, "class:com.example.Repo", true) {
		t.Fatal("missing Uses(method save, Repo) from parameter type")
	}
}

func TestResolveUnresolvedType(t *testing.T) {
	nodes := []model.Node{
		{ID: "field:com.example.Foo#bar", Kind: model.NodeField, OwnerFQN: "com.example.Foo",
			SimpleName: "bar", DeclaredType: "Missing", FilePath: "Foo.java"},
	}
	idx := index.New(nodes, diagnostics.New())
	scopes := Scopes{"Foo.java": resolve.NewFileScope("com.example", nil, nil)}

	edges := Resolve(idx, scopes)
	if !hasEdge(edges, "field:com.example.Foo#bar", model.Uses, "class:Missing", false) {
		t.Fatal("missing unresolved Uses edge")
	}
}

func TestResolveSkipsVoidReturn(t *testing.T) {
	nodes := []model.Node{
		{ID: "method:com.example.Foo#run()", Kind: model.NodeMethod, OwnerFQN: "com.example.Foo",
			SimpleName: "run", Signature: "", ReturnType: "void", FilePath: "Foo.java"},
	}
	idx := index.New(nodes, diagnostics.New())
	scopes := Scopes{"Foo.java": resolve.NewFileScope("com.example", nil, nil)}

	edges := Resolve(idx, scopes)
	for _, e := range edges {
		if e.Src == "method:com.example.Foo#run()" {
			t.Fatalf("expected no Uses edges for a void no-arg method, got %+v", e)
		}
	}
}
