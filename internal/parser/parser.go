// Package parser drives a Java grammar over source bytes and yields a
// concrete syntax tree plus byte->line mapping for every file (§4.A).
//
// Grammar loading is a one-time side effect of github.com/smacker/go-tree-sitter's
// generated Java bindings; it is not part of the stage's contract.
package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"github.com/javagraph/javagraph/internal/diagnostics"
)

// TreeNode is the pluggable contract stage B walks (§4.A): any engine
// that can expose kind, byte offsets, and ordered children satisfies it.
// The smacker/go-tree-sitter *sitter.Node already does, via sitterNode.
type TreeNode interface {
	Kind() string
	StartByte() uint32
	EndByte() uint32
	ChildCount() int
	Child(i int) TreeNode
	ChildByFieldName(name string) TreeNode
	Content(source []byte) string
	IsNull() bool
}

type sitterNode struct{ n *sitter.Node }

func wrap(n *sitter.Node) TreeNode {
	if n == nil {
		return sitterNode{nil}
	}
	return sitterNode{n}
}

func (s sitterNode) IsNull() bool       { return s.n == nil }
func (s sitterNode) Kind() string       { return s.n.Type() }
func (s sitterNode) StartByte() uint32  { return s.n.StartByte() }
func (s sitterNode) EndByte() uint32    { return s.n.EndByte() }
func (s sitterNode) ChildCount() int    { return int(s.n.ChildCount()) }
func (s sitterNode) Child(i int) TreeNode {
	return wrap(s.n.Child(i))
}
func (s sitterNode) ChildByFieldName(name string) TreeNode {
	return wrap(s.n.ChildByFieldName(name))
}
func (s sitterNode) Content(source []byte) string {
	return s.n.Content(source)
}

// File is one parsed compilation unit. Tree is nil when parsing failed;
// callers must check Err first.
type File struct {
	Path    string
	Source  []byte
	Tree    TreeNode
	Lines   *LineIndex
	Err     error
	close   func()
}

// Close releases the tree-sitter tree backing this file. It is a no-op
// on a failed parse.
func (f *File) Close() {
	if f.close != nil {
		f.close()
		f.close = nil
	}
}

// Parser parses Java source bytes into syntax trees. It holds no
// per-file state and is safe to reuse across an entire analysis run.
type Parser struct {
	lang *sitter.Language
}

// New returns a Parser with the Java grammar loaded.
func New() *Parser {
	return &Parser{lang: java.GetLanguage()}
}

// ParseFile parses one (path, bytes) pair (§6.3's input unit). A parse
// failure never returns an error: per §4.A it emits a ParseError
// diagnostic into diags and returns a File with a nil Tree, which
// downstream stages must skip.
func (p *Parser) ParseFile(ctx context.Context, path string, source []byte, diags *diagnostics.Collector) *File {
	parser := sitter.NewParser()
	parser.SetLanguage(p.lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		diags.Add(diagnostics.ParseError, path, "%v", err)
		return &File{Path: path, Source: source, Err: err}
	}

	root := tree.RootNode()
	if root == nil || root.HasError() {
		// tree-sitter's error-recovery still yields a tree for most
		// malformed input; only a nil root is a true parse failure.
		if root == nil {
			diags.Add(diagnostics.ParseError, path, "grammar produced no tree")
			tree.Close()
			return &File{Path: path, Source: source, Err: fmt.Errorf("no tree for %s", path)}
		}
	}

	f := &File{
		Path:   path,
		Source: source,
		Tree:   wrap(root),
		Lines:  NewLineIndex(source),
		close:  tree.Close,
	}
	return f
}
