package symbols

import (
	"context"
	"testing"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/parser"
)

func extract(t *testing.T, src string) *FileSymbols {
	t.Helper()
	p := parser.New()
	diags := diagnostics.New()
	f := p.ParseFile(context.Background(), "Foo.java", []byte(src), diags)
	if f.Err != nil {
		t.Fatalf("parse error: %v", f.Err)
	}
	t.Cleanup(f.Close)
	fs, err := Extract(f, diags)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return fs
}

func findNode(fs *FileSymbols, id string) *model.Node {
	for i := range fs.Nodes {
		if fs.Nodes[i].ID == id {
			return &fs.Nodes[i]
		}
	}
	return nil
}

func hasEdge(fs *FileSymbols, src string, label model.EdgeLabel, dst string) bool {
	for _, e := range fs.Edges {
		if e.Src == src && e.Label == label && e.Dst == dst {
			return true
		}
	}
	return false
}

func TestExtractContainment(t *testing.T) {
	fs := extract(t, `package com.example;

class Foo {
    void bar() {}
}
`)
	if fs.PackageName != "com.example" {
		t.Fatalf("package = %q", fs.PackageName)
	}
	if findNode(fs, "module:com.example") == nil {
		t.Fatal("missing module node")
	}
	if findNode(fs, "class:com.example.Foo") == nil {
		t.Fatal("missing class node")
	}
	if findNode(fs, "method:com.example.Foo#bar()") == nil {
		t.Fatal("missing method node")
	}

	// §4.B: Module->Type and Type->Member ParentOf edges, plus their
	// ChildOf inverses (§8.3 scenario 1, invariant 2/§3.3).
	if !hasEdge(fs, "module:com.example", model.ParentOf, "class:com.example.Foo") {
		t.Fatal("missing ParentOf module->class edge")
	}
	if !hasEdge(fs, "class:com.example.Foo", model.ChildOf, "module:com.example") {
		t.Fatal("missing ChildOf class->module inverse edge")
	}
	if !hasEdge(fs, "class:com.example.Foo", model.ParentOf, "method:com.example.Foo#bar()") {
		t.Fatal("missing ParentOf class->method edge")
	}
	if !hasEdge(fs, "method:com.example.Foo#bar()", model.ChildOf, "class:com.example.Foo") {
		t.Fatal("missing ChildOf method->class inverse edge")
	}
}

func TestExtractContainmentNestedTypeAndField(t *testing.T) {
	fs := extract(t, `package com.example;

class Outer {
    int count;

    class Inner {
        void m() {}
    }
}
`)
	if !hasEdge(fs, "class:com.example.Outer", model.ParentOf, "field:com.example.Outer#count") {
		t.Fatal("missing ParentOf class->field edge")
	}
	if !hasEdge(fs, "class:com.example.Outer", model.ParentOf, "class:com.example.Outer.Inner") {
		t.Fatal("missing ParentOf outer->inner edge")
	}
	if !hasEdge(fs, "class:com.example.Outer.Inner", model.ChildOf, "class:com.example.Outer") {
		t.Fatal("missing ChildOf inner->outer inverse edge")
	}
	if !hasEdge(fs, "class:com.example.Outer.Inner", model.ParentOf, "method:com.example.Outer.Inner#m()") {
		t.Fatal("missing ParentOf inner->method edge")
	}
}

func TestExtractNestedClassFQN(t *testing.T) {
	fs := extract(t, `package com.example;

class Outer {
    class Inner {
        void m() {}
    }
}
`)
	if findNode(fs, "class:com.example.Outer.Inner") == nil {
		t.Fatal("missing nested class node")
	}
	if findNode(fs, "method:com.example.Outer.Inner#m()") == nil {
		t.Fatal("missing nested method node")
	}
}

func TestExtractMultiDeclaratorField(t *testing.T) {
	fs := extract(t, `package com.example;

class Foo {
    int a, b;
}
`)
	a := findNode(fs, "field:com.example.Foo#a")
	b := findNode(fs, "field:com.example.Foo#b")
	if a == nil || b == nil {
		t.Fatal("expected two split field nodes")
	}
	if a.DeclaredType != "int" || b.DeclaredType != "int" {
		t.Fatalf("declared types = %q, %q", a.DeclaredType, b.DeclaredType)
	}
}

func TestExtractSignatureWithParams(t *testing.T) {
	fs := extract(t, `package com.example;

class UserService {
    void createUser(String a, String b) {}
}
`)
	if findNode(fs, "method:com.example.UserService#createUser(String,String)") == nil {
		t.Fatal("missing signature-bearing method node")
	}
}

func TestExtractClassHierarchyFields(t *testing.T) {
	fs := extract(t, `package com.example;

class B extends A implements I, J {
}
`)
	b := findNode(fs, "class:com.example.B")
	if b == nil {
		t.Fatal("missing class B")
	}
	if len(b.Extends) != 1 || b.Extends[0] != "A" {
		t.Fatalf("extends = %v", b.Extends)
	}
	if len(b.Implements) != 2 {
		t.Fatalf("implements = %v", b.Implements)
	}
}

func TestExtractEnumAsClass(t *testing.T) {
	fs := extract(t, `package com.example;

enum Color {
    RED, GREEN, BLUE;
}
`)
	c := findNode(fs, "class:com.example.Color")
	if c == nil {
		t.Fatal("missing enum-as-class node")
	}
	if !c.HasModifier("enum") {
		t.Fatalf("modifiers = %v, want enum", c.Modifiers)
	}
	if findNode(fs, "field:com.example.Color#RED") == nil {
		t.Fatal("missing enum constant as field")
	}
}

func TestExtractInterfaceMultiExtends(t *testing.T) {
	fs := extract(t, `package com.example;

interface I extends A, B {
    void run();
}
`)
	i := findNode(fs, "interface:com.example.I")
	if i == nil {
		t.Fatal("missing interface node")
	}
	if len(i.Extends) != 2 {
		t.Fatalf("extends = %v", i.Extends)
	}
}

func TestExtractImports(t *testing.T) {
	fs := extract(t, `package com.example;

import java.util.List;
import java.util.*;

class Foo {}
`)
	var single, onDemand bool
	for _, imp := range fs.Imports {
		if imp.Alias == "List" && imp.Target == "java.util.List" {
			single = true
		}
		if imp.OnDemand && imp.Target == "java.util" {
			onDemand = true
		}
	}
	if !single || !onDemand {
		t.Fatalf("imports = %+v", fs.Imports)
	}
}

func TestExtractFieldInitializerRecorded(t *testing.T) {
	fs := extract(t, `package com.example;

class UserService {
    private UserRepository repo = new UserRepository();
}
`)
	if len(fs.FieldInits) != 1 {
		t.Fatalf("field inits = %d, want 1", len(fs.FieldInits))
	}
}

// fakeNode is a minimal parser.TreeNode double for span arithmetic that
// can't be provoked through real tree-sitter output, which never
// yields an inverted or out-of-bounds span for well-formed input.
type fakeNode struct {
	kind       string
	start, end uint32
}

func (f fakeNode) Kind() string                             { return f.kind }
func (f fakeNode) StartByte() uint32                        { return f.start }
func (f fakeNode) EndByte() uint32                          { return f.end }
func (f fakeNode) ChildCount() int                          { return 0 }
func (f fakeNode) Child(int) parser.TreeNode                { return nil }
func (f fakeNode) ChildByFieldName(string) parser.TreeNode   { return nil }
func (f fakeNode) Content([]byte) string                     { return "" }
func (f fakeNode) IsNull() bool                              { return false }

func TestLineRangeDetectsInvertedSpan(t *testing.T) {
	src := []byte("line one\nline two\nline three\n")
	e := &extractor{
		file: &parser.File{Path: "Bad.java", Source: src, Lines: parser.NewLineIndex(src)},
		fs:   &FileSymbols{},
	}
	// StartByte lands on line 3; EndByte-1 lands on line 1.
	e.lineRange(fakeNode{kind: "class_declaration", start: 20, end: 2})
	if e.spanErr == nil {
		t.Fatal("expected spanErr for an inverted span")
	}
}

func TestLineRangeDetectsOutOfBoundsSpan(t *testing.T) {
	src := []byte("line one\nline two\n")
	e := &extractor{
		file: &parser.File{Path: "Bad.java", Source: src, Lines: parser.NewLineIndex(src)},
		fs:   &FileSymbols{},
	}
	e.lineRange(fakeNode{kind: "class_declaration", start: 10000, end: 10005})
	if e.spanErr == nil {
		t.Fatal("expected spanErr for a span exceeding the file's line count")
	}
}

func TestExtractReturnsMalformedSpanError(t *testing.T) {
	src := []byte("package com.example;\n\nclass Foo {}\n")
	e := &extractor{
		file: &parser.File{Path: "Foo.java", Source: src, Lines: parser.NewLineIndex(src)},
		fs:   &FileSymbols{PackageName: "com.example"},
	}
	e.lineRange(fakeNode{kind: "class_declaration", start: 5, end: 0})
	if e.spanErr == nil {
		t.Fatal("expected spanErr to be set")
	}
	if e.spanErr.FilePath != "Foo.java" {
		t.Fatalf("spanErr.FilePath = %q", e.spanErr.FilePath)
	}
	if e.spanErr.Reason == "" {
		t.Fatal("expected a non-empty reason")
	}
	var asErr error = e.spanErr
	if asErr.Error() == "" {
		t.Fatal("expected a non-empty Error() message")
	}
}
