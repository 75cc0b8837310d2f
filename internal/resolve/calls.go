// calls.go implements Stage E (§4.E): walking each method/constructor
// body (and each field initializer, per SPEC_FULL.md §11.6) to resolve
// method invocations and object creations against local scope, the
// enclosing type, imports, and class-hierarchy analysis.
package resolve

import (
	"strings"

	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/parser"
)

// Scopes supplies each file's FileScope, keyed by file path.
type Scopes map[string]*FileScope

// Hierarchy is the subset of Stage D's output Stage E needs for virtual
// dispatch and superclass/interface climbing. Plain maps, not a type
// from package hierarchy, so the two packages don't import each other.
type Hierarchy struct {
	SuperOf         map[string]string   // class FQN -> direct resolved superclass FQN
	ClassInterfaces map[string][]string // class FQN -> transitive interfaces it implements
	InterfaceSupers map[string][]string // interface FQN -> transitive super-interfaces
	OverriddenBy    map[string][]string // method id -> method ids that override it (direct)
}

// Body is one method/constructor/field-initializer body to walk, with
// enough context to resolve names inside it.
type Body struct {
	CallerID string
	OwnerFQN string
	Node     parser.TreeNode
	File     *parser.File
	// Params seeds the local scope for a method/constructor body; empty
	// for field initializers. When empty, ResolveCalls uses the Params of
	// the caller's node in the index, if there is one.
	Params []model.Param
}

// ResolveCalls walks every body and returns the Calls/Instantiates edges
// (with inverses) for Stage G to assemble.
func ResolveCalls(idx *index.Index, scopes Scopes, h *Hierarchy, bodies []Body) []model.Edge {
	var edges []model.Edge
	for _, b := range bodies {
		w := &callWalker{
			idx:    idx,
			scope:  scopes[b.File.Path],
			h:      h,
			file:   b.File,
			owner:  b.OwnerFQN,
			caller: b.CallerID,
			locals: collectLocals(b.Node, b.File.Source),
		}
		params := b.Params
		if len(params) == 0 {
			if n, ok := idx.Node(b.CallerID); ok {
				params = n.Params
			}
		}
		for _, p := range params {
			w.locals = append(w.locals, localDecl{offset: -1, name: p.Name, typ: BareName(p.Type)})
		}
		w.walk(b.Node)
		edges = append(edges, w.edges...)
	}
	return edges
}

type callWalker struct {
	idx    *index.Index
	scope  *FileScope
	h      *Hierarchy
	file   *parser.File
	owner  string
	caller string
	locals []localDecl
	edges  []model.Edge
}

type localDecl struct {
	offset int
	name   string
	typ    string
}

// collectLocals pre-scans a body for every local_variable_declaration,
// left to right, with no flow analysis (§4.E).
func collectLocals(n parser.TreeNode, src []byte) []localDecl {
	var out []localDecl
	var walk func(parser.TreeNode)
	walk = func(x parser.TreeNode) {
		if x == nil || x.IsNull() {
			return
		}
		if x.Kind() == "local_variable_declaration" {
			typ := childText(x.ChildByFieldName("type"), src)
			for i := 0; i < x.ChildCount(); i++ {
				c := x.Child(i)
				if c.Kind() != "variable_declarator" {
					continue
				}
				name := ""
				for j := 0; j < c.ChildCount(); j++ {
					if c.Child(j).Kind() == "identifier" {
						name = c.Child(j).Content(src)
						break
					}
				}
				if name != "" {
					out = append(out, localDecl{offset: int(c.StartByte()), name: name, typ: BareName(typ)})
				}
			}
		}
		for i := 0; i < x.ChildCount(); i++ {
			walk(x.Child(i))
		}
	}
	walk(n)
	return out
}

func childText(n parser.TreeNode, src []byte) string {
	if n == nil || n.IsNull() {
		return ""
	}
	return strings.Join(strings.Fields(n.Content(src)), " ")
}

// localTypeAt returns the resolved FQN (falling back to the bare name
// when resolution fails) of the nearest-preceding declaration of name
// visible at byte offset off, if any.
func (w *callWalker) localTypeAt(name string, off int) (string, bool) {
	best := -1
	typ := ""
	found := false
	for _, d := range w.locals {
		if d.name != name {
			continue
		}
		if d.offset >= 0 && d.offset >= off {
			continue
		}
		if !found || d.offset > best {
			best = d.offset
			typ = d.typ
			found = true
		}
	}
	if !found {
		return "", false
	}
	return w.resolveTypeName(typ), true
}

// resolveTypeName resolves a bare type name to its FQN via the file's
// scope, falling back to the bare name itself (a same-named but
// unresolved ancestor) when every avenue is exhausted.
func (w *callWalker) resolveTypeName(bare string) string {
	if target, ok := w.scope.ResolveType(bare, w.idx, w.owner); ok {
		return target.FQN
	}
	return bare
}

func (w *callWalker) walk(n parser.TreeNode) {
	if n == nil || n.IsNull() {
		return
	}
	switch n.Kind() {
	case "method_invocation":
		w.resolveInvocation(n)
	case "object_creation_expression":
		w.resolveCreation(n)
	}
	for i := 0; i < n.ChildCount(); i++ {
		w.walk(n.Child(i))
	}
}

func (w *callWalker) text(n parser.TreeNode) string {
	if n == nil || n.IsNull() {
		return ""
	}
	return n.Content(w.file.Source)
}

// typeOfExpr computes the best-effort static type of an expression node,
// returning ok=false when it can't be determined (§4.E step 2).
func (w *callWalker) typeOfExpr(n parser.TreeNode) (string, bool) {
	if n == nil || n.IsNull() {
		return "", false
	}
	switch n.Kind() {
	case "this":
		return w.owner, true
	case "parenthesized_expression":
		for i := 0; i < n.ChildCount(); i++ {
			if t, ok := w.typeOfExpr(n.Child(i)); ok {
				return t, true
			}
		}
		return "", false
	case "cast_expression":
		if t := n.ChildByFieldName("type"); t != nil && !t.IsNull() {
			return w.resolveTypeName(BareName(childText(t, w.file.Source))), true
		}
		return "", false
	case "identifier":
		name := w.text(n)
		if t, ok := w.localTypeAt(name, int(n.StartByte())); ok {
			return t, true
		}
		if f, ok := w.findField(w.owner, name); ok {
			return w.resolveTypeName(BareName(f.DeclaredType)), true
		}
		return "", false
	case "field_access":
		obj := n.ChildByFieldName("object")
		fieldName := n.ChildByFieldName("field")
		if obj == nil || obj.IsNull() || fieldName == nil || fieldName.IsNull() {
			return "", false
		}
		if obj.Kind() == "this" {
			if f, ok := w.findField(w.owner, w.text(fieldName)); ok {
				return w.resolveTypeName(BareName(f.DeclaredType)), true
			}
			return "", false
		}
		objType, ok := w.typeOfExpr(obj)
		if !ok {
			return "", false
		}
		if f, ok := w.findField(objType, w.text(fieldName)); ok {
			return w.resolveTypeName(BareName(f.DeclaredType)), true
		}
		return "", false
	case "method_invocation":
		target := w.lookupInvocationTarget(n)
		if target == nil {
			return "", false
		}
		if target.ReturnType == "" || target.ReturnType == "void" {
			return "", false
		}
		return w.resolveTypeName(BareName(target.ReturnType)), true
	case "object_creation_expression":
		t := n.ChildByFieldName("type")
		if t == nil || t.IsNull() {
			return "", false
		}
		return w.resolveTypeName(BareName(childText(t, w.file.Source))), true
	case "string_literal":
		return "String", true
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal":
		return "int", true
	case "decimal_floating_point_literal":
		return "double", true
	case "true", "false":
		return "boolean", true
	case "character_literal":
		return "char", true
	default:
		return "", false
	}
}

// receiverTypeOf computes the static receiver type for a method
// invocation per §4.E step 1.
func (w *callWalker) receiverTypeOf(n parser.TreeNode) (string, bool) {
	obj := n.ChildByFieldName("object")
	if obj == nil || obj.IsNull() {
		return w.owner, true
	}
	switch obj.Kind() {
	case "this":
		return w.owner, true
	case "super":
		if sup, ok := w.h.SuperOf[w.owner]; ok {
			return sup, true
		}
		return "", false
	case "identifier":
		name := w.text(obj)
		if t, ok := w.localTypeAt(name, int(obj.StartByte())); ok {
			return t, true
		}
		if f, ok := w.findField(w.owner, name); ok {
			return w.resolveTypeName(BareName(f.DeclaredType)), true
		}
		// Otherwise treat the identifier as a type name (static call).
		if target, ok := w.scope.ResolveType(name, w.idx, w.owner); ok {
			return target.FQN, true
		}
		return "", false
	default:
		return w.typeOfExpr(obj)
	}
}

// argumentTypes computes the erased bare type of every argument
// expression in an argument_list, or ok=false if any is unknown.
func (w *callWalker) argumentTypes(args parser.TreeNode) ([]string, bool) {
	if args == nil || args.IsNull() {
		return nil, true
	}
	var types []string
	for i := 0; i < args.ChildCount(); i++ {
		c := args.Child(i)
		switch c.Kind() {
		case "(", ")", ",":
			continue
		}
		t, ok := w.typeOfExpr(c)
		if !ok {
			return nil, false
		}
		types = append(types, t)
	}
	return types, true
}

// findField looks up name on owner, then climbs its resolved superclass
// chain, since a field may be declared on an ancestor.
func (w *callWalker) findField(owner, name string) (*model.Node, bool) {
	for cur, ok := owner, true; ok; cur, ok = w.h.SuperOf[cur] {
		if f, found := w.idx.Field(cur, name); found {
			return f, true
		}
	}
	return nil, false
}

// climbForMethod searches receiverType, then its resolved superclass
// chain, then its (transitive) interfaces, for a method matching name+sig.
func (w *callWalker) climbForMethod(receiverType, name, sig string) *model.Node {
	seen := map[string]bool{}
	chain := []string{receiverType}
	for cur, ok := w.h.SuperOf[receiverType]; ok; cur, ok = w.h.SuperOf[cur] {
		chain = append(chain, cur)
	}
	for _, c := range chain {
		if seen[c] {
			continue
		}
		seen[c] = true
		if m, ok := w.idx.Method(c, name, sig); ok {
			return m
		}
	}
	for _, c := range chain {
		for _, ifc := range w.h.ClassInterfaces[c] {
			if seen[ifc] {
				continue
			}
			seen[ifc] = true
			if m, ok := w.idx.Method(ifc, name, sig); ok {
				return m
			}
		}
	}
	for _, ifc := range w.h.InterfaceSupers[receiverType] {
		if seen[ifc] {
			continue
		}
		seen[ifc] = true
		if m, ok := w.idx.Method(ifc, name, sig); ok {
			return m
		}
	}
	return nil
}

// lookupInvocationTarget resolves a method_invocation to its target
// Method node without emitting edges, for typeOfExpr's nested-call
// return-type inference. Returns nil when the call wouldn't resolve.
func (w *callWalker) lookupInvocationTarget(n parser.TreeNode) *model.Node {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.IsNull() {
		return nil
	}
	receiverType, ok := w.receiverTypeOf(n)
	if !ok {
		return nil
	}
	argTypes, ok := w.argumentTypes(n.ChildByFieldName("arguments"))
	if !ok {
		return nil
	}
	sig := model.Signature(argTypes)
	return w.climbForMethod(receiverType, w.text(nameNode), sig)
}

// transitiveOverriders returns every method id that (transitively)
// overrides targetID, widening a resolved virtual call per §4.E step 4.
func (w *callWalker) transitiveOverriders(targetID string) []string {
	var out []string
	seen := map[string]bool{targetID: true}
	queue := []string{targetID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range w.h.OverriddenBy[cur] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}

func (w *callWalker) emit(label model.EdgeLabel, dst string, resolved bool) {
	e := model.Edge{Src: w.caller, Label: label, Dst: dst, Resolved: resolved}
	w.edges = append(w.edges, e, e.WithInverse())
}

func (w *callWalker) resolveInvocation(n parser.TreeNode) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.IsNull() {
		return
	}
	name := w.text(nameNode)

	receiverType, recvOK := w.receiverTypeOf(n)
	argTypes, argsOK := w.argumentTypes(n.ChildByFieldName("arguments"))

	if !recvOK || !argsOK {
		guess := receiverType
		w.emit(model.Calls, model.UnresolvedMethodID(guess, name), false)
		return
	}

	sig := model.Signature(argTypes)
	target := w.climbForMethod(receiverType, name, sig)
	if target == nil {
		w.emit(model.Calls, model.UnresolvedMethodID(receiverType, name), false)
		return
	}

	w.emit(model.Calls, target.ID, true)
	for _, overriderID := range w.transitiveOverriders(target.ID) {
		w.emit(model.Calls, overriderID, true)
	}
}

func (w *callWalker) resolveCreation(n parser.TreeNode) {
	typeNode := n.ChildByFieldName("type")
	if typeNode == nil || typeNode.IsNull() {
		return
	}
	rawType := childText(typeNode, w.file.Source)
	bare := BareName(rawType)

	target, ok := w.scope.ResolveType(bare, w.idx, w.owner)
	if !ok || target.Kind != model.NodeClass {
		w.emit(model.Instantiates, model.ClassID(bare), false)
		return
	}

	argTypes, argsOK := w.argumentTypes(n.ChildByFieldName("arguments"))
	if !argsOK {
		w.emit(model.Instantiates, model.ClassID(target.FQN), false)
		return
	}
	sig := model.Signature(argTypes)
	if ctor, ok := w.idx.Constructor(target.FQN, sig); ok {
		w.emit(model.Instantiates, ctor.ID, true)
		return
	}
	w.emit(model.Instantiates, model.ClassID(target.FQN), false)
}
