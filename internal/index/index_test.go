package index

import (
	"testing"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/model"
)

func TestIndexLookupsAndDedup(t *testing.T) {
	nodes := []model.Node{
		{ID: "class:com.example.Foo", Kind: model.NodeClass, FQN: "com.example.Foo"},
		{ID: "method:com.example.Foo#bar()", Kind: model.NodeMethod, OwnerFQN: "com.example.Foo", SimpleName: "bar", Signature: ""},
		{ID: "field:com.example.Foo#x", Kind: model.NodeField, OwnerFQN: "com.example.Foo", SimpleName: "x"},
		// Duplicate of the class above, from a second (misconfigured) file.
		{ID: "class:com.example.Foo", Kind: model.NodeClass, FQN: "com.example.Foo", FilePath: "dup.java"},
	}
	diags := diagnostics.New()
	idx := New(nodes, diags)

	if diags.Len() != 1 {
		t.Fatalf("diagnostics = %d, want 1 duplicate", diags.Len())
	}

	if _, ok := idx.ClassOrInterface("com.example.Foo"); !ok {
		t.Fatal("expected class lookup to succeed")
	}
	if _, ok := idx.Method("com.example.Foo", "bar", ""); !ok {
		t.Fatal("expected method lookup to succeed")
	}
	if _, ok := idx.Field("com.example.Foo", "x"); !ok {
		t.Fatal("expected field lookup to succeed")
	}
	if len(idx.AllNodes()) != 3 {
		t.Fatalf("AllNodes() = %d, want 3 (duplicate dropped)", len(idx.AllNodes()))
	}
}

func TestIndexMissingLookup(t *testing.T) {
	idx := New(nil, diagnostics.New())
	if _, ok := idx.ClassOrInterface("nope"); ok {
		t.Fatal("expected miss")
	}
}
