package parser

import (
	"context"
	"testing"

	"github.com/javagraph/javagraph/internal/diagnostics"
)

func TestParseFileProducesTree(t *testing.T) {
	src := []byte(`package com.example;

class Foo {
    void bar() {}
}
`)
	p := New()
	diags := diagnostics.New()
	f := p.ParseFile(context.Background(), "Foo.java", src, diags)
	defer f.Close()

	if f.Err != nil {
		t.Fatalf("unexpected parse error: %v", f.Err)
	}
	if f.Tree == nil || f.Tree.IsNull() {
		t.Fatal("expected non-nil tree")
	}
	if f.Tree.Kind() != "program" {
		t.Fatalf("root kind = %q, want program", f.Tree.Kind())
	}
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
}

func TestParseFileUnsupportedStillSkipsGracefully(t *testing.T) {
	// Garbage bytes still produce a tree under tree-sitter's error
	// recovery; the contract only requires a ParseError diagnostic when
	// the grammar can't produce a tree at all (§4.A), which practically
	// never happens for arbitrary byte input.
	p := New()
	diags := diagnostics.New()
	f := p.ParseFile(context.Background(), "Garbage.java", []byte("{{{{"), diags)
	defer f.Close()
	if f.Tree == nil {
		t.Fatal("expected a tree even for malformed input")
	}
}
