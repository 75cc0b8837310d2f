// Package symbols implements Stage B (§4.B): a single walk over each
// parsed tree that emits Module/Class/Interface/Method/Constructor/Field
// nodes with fully-qualified names and source spans, plus the per-file
// import list and enclosing-type stack that later stages need for name
// resolution.
package symbols

import (
	"fmt"
	"strings"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/parser"
)

// Import is a single-type or on-demand import declaration.
type Import struct {
	// Alias is the simple type name a single-type import binds, e.g.
	// "List" for `import java.util.List;`. Empty for on-demand imports.
	Alias string
	// Target is the FQN a single-type import resolves to, or the
	// package prefix an on-demand import exposes.
	Target   string
	OnDemand bool
	Static   bool
}

// MethodBody pairs a Method or Constructor node with the tree-sitter
// body subtree Stage E needs to walk, plus the file it came from.
type MethodBody struct {
	NodeID   string
	OwnerFQN string
	IsStatic bool
	Body     parser.TreeNode
	File     *parser.File
}

// FieldInit pairs a Field node with its initializer expression (if any),
// for Stage E to attribute Calls/Instantiates edges to a synthetic
// <clinit>/<init> caller (§11.6 of SPEC_FULL.md).
type FieldInit struct {
	NodeID   string
	OwnerFQN string
	IsStatic bool
	Value    parser.TreeNode
	File     *parser.File
}

// FileSymbols is everything Stage B extracts from a single file.
type FileSymbols struct {
	PackageName  string
	Imports      []Import
	Nodes        []model.Node
	// Edges holds the Module->Type and Type->Member ParentOf/ChildOf
	// containment pairs (§4.B, §8.3 scenario 1); every other edge kind
	// is produced by later stages once the full symbol index exists.
	Edges        []model.Edge
	MethodBodies []MethodBody
	FieldInits   []FieldInit
}

// Extract walks f.Tree once and returns its symbols. f.Tree must be
// non-nil; callers skip files that failed to parse (§4.A). It returns a
// *diagnostics.MalformedSpanError, rather than merely collecting one,
// the first time a node's line range inverts or exceeds the file's
// bounds: per §7 that is a programmer error inside the analyzer, not a
// degraded-input condition, and aborts the pipeline.
func Extract(f *parser.File, diags *diagnostics.Collector) (*FileSymbols, error) {
	e := &extractor{file: f, diags: diags, fs: &FileSymbols{PackageName: model.DefaultPackage}}
	e.walkTop(f.Tree)
	if e.spanErr != nil {
		return e.fs, e.spanErr
	}
	return e.fs, nil
}

type extractor struct {
	file    *parser.File
	diags   *diagnostics.Collector
	fs      *FileSymbols
	spanErr *diagnostics.MalformedSpanError
}

func (e *extractor) src() []byte { return e.file.Source }

func (e *extractor) text(n parser.TreeNode) string {
	if n == nil || n.IsNull() {
		return ""
	}
	return n.Content(e.src())
}

// lineRange converts n's byte span to a 1-indexed, inclusive line range.
// A span that inverts (end < start) or falls outside the file's line
// count violates invariant 6 (§3.3); the first such span found is
// recorded on e.spanErr and Extract returns it as an error instead of
// silently clamping it.
func (e *extractor) lineRange(n parser.TreeNode) model.LineRange {
	start := e.file.Lines.LineAt(int(n.StartByte()))
	end := start
	if int(n.EndByte()) > 0 {
		// EndByte is exclusive; attribute the last covered byte's line.
		end = e.file.Lines.LineAt(int(n.EndByte()) - 1)
	}

	total := e.file.Lines.TotalLines()
	switch {
	case n.EndByte() < n.StartByte():
		e.recordSpanErr(start, end, "end byte precedes start byte")
	case end < start:
		e.recordSpanErr(start, end, "end line precedes start line")
	case start < 1 || start > total || end > total:
		e.recordSpanErr(start, end, fmt.Sprintf("line range exceeds file bounds (%d lines)", total))
	}
	return model.LineRange{Start: start, End: end}
}

func (e *extractor) recordSpanErr(start, end int, reason string) {
	if e.spanErr != nil {
		return
	}
	e.spanErr = &diagnostics.MalformedSpanError{
		FilePath: e.file.Path,
		Start:    start,
		End:      end,
		Reason:   reason,
	}
}

// walkTop handles the top-level `program` node: package/import
// declarations and top-level type declarations.
func (e *extractor) walkTop(root parser.TreeNode) {
	for i := 0; i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch child.Kind() {
		case "package_declaration":
			e.fs.PackageName = e.packageName(child)
		case "import_declaration":
			e.addImport(child)
		}
	}

	moduleID := model.ModuleID(e.fs.PackageName)
	e.fs.Nodes = append([]model.Node{e.moduleNode(root)}, e.fs.Nodes...)

	for i := 0; i < root.ChildCount(); i++ {
		child := root.Child(i)
		switch child.Kind() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
			e.walkType(child, "", moduleID)
		}
	}
}

// addContainment records a Module->Type or Type->Member ParentOf edge
// plus its ChildOf inverse (§4.B, invariant 2/§3.3).
func (e *extractor) addContainment(parentID, childID string) {
	if parentID == "" || childID == "" {
		return
	}
	edge := model.Edge{Src: parentID, Label: model.ParentOf, Dst: childID, Resolved: true}
	e.fs.Edges = append(e.fs.Edges, edge, edge.WithInverse())
}

func (e *extractor) moduleNode(root parser.TreeNode) model.Node {
	return model.Node{
		ID:          model.ModuleID(e.fs.PackageName),
		Kind:        model.NodeModule,
		FilePath:    e.file.Path,
		LineRange:   e.lineRange(root),
		SourceCode:  "",
		PackageName: e.fs.PackageName,
	}
}

// packageName extracts the dotted name from a package_declaration node.
// The name is not itself a named child field in the grammar; it is the
// scoped_identifier/identifier sitting between "package" and ";".
func (e *extractor) packageName(n parser.TreeNode) string {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "scoped_identifier" || c.Kind() == "identifier" {
			return e.text(c)
		}
	}
	return model.DefaultPackage
}

func (e *extractor) addImport(n parser.TreeNode) {
	static := false
	var nameNode parser.TreeNode
	onDemand := false
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch {
		case c.Kind() == "static":
			static = true
		case c.Kind() == "scoped_identifier" || c.Kind() == "identifier":
			nameNode = c
		case c.Kind() == "asterisk":
			onDemand = true
		}
	}
	if nameNode == nil {
		return
	}
	full := e.text(nameNode)
	if onDemand {
		e.fs.Imports = append(e.fs.Imports, Import{Target: full, OnDemand: true, Static: static})
		return
	}
	simple := full
	if idx := strings.LastIndexByte(full, '.'); idx >= 0 {
		simple = full[idx+1:]
	}
	e.fs.Imports = append(e.fs.Imports, Import{Alias: simple, Target: full, Static: static})
}

// fqn joins an enclosing type's FQN (possibly empty, for top-level
// types) with a simple name, per §4.B's "package.Outer.Inner" rule.
func (e *extractor) fqn(enclosingFQN, simpleName string) string {
	if enclosingFQN != "" {
		return enclosingFQN + "." + simpleName
	}
	if e.fs.PackageName == model.DefaultPackage || e.fs.PackageName == "" {
		return simpleName
	}
	return e.fs.PackageName + "." + simpleName
}

// walkType handles one class/interface/enum/record declaration, possibly
// nested inside enclosingFQN, and links it to ownerID (the enclosing
// module or type's id) with a ParentOf/ChildOf pair. It returns the
// type's own id, or "" if the declaration has no name to recover from.
func (e *extractor) walkType(n parser.TreeNode, enclosingFQN, ownerID string) string {
	name := e.fieldText(n, "name")
	if name == "" {
		return ""
	}
	fqn := e.fqn(enclosingFQN, name)

	var typeID string
	switch n.Kind() {
	case "interface_declaration":
		typeID = model.InterfaceID(fqn)
		e.emitInterface(n, fqn, name)
		e.addContainment(ownerID, typeID)
		e.walkBody(e.fieldOr(n, "body"), fqn, typeID)
	case "enum_declaration":
		typeID = model.ClassID(fqn)
		e.emitEnumAsClass(n, fqn, name)
		e.addContainment(ownerID, typeID)
		e.walkEnumBody(e.fieldOr(n, "body"), fqn, typeID)
	case "record_declaration":
		typeID = model.ClassID(fqn)
		e.emitRecordAsClass(n, fqn, name, typeID)
		e.addContainment(ownerID, typeID)
		e.walkBody(e.fieldOr(n, "body"), fqn, typeID)
	default: // class_declaration
		typeID = model.ClassID(fqn)
		e.emitClass(n, fqn, name)
		e.addContainment(ownerID, typeID)
		e.walkBody(e.fieldOr(n, "body"), fqn, typeID)
	}
	return typeID
}

func (e *extractor) fieldOr(n parser.TreeNode, field string) parser.TreeNode {
	c := n.ChildByFieldName(field)
	if c == nil || c.IsNull() {
		return nil
	}
	return c
}

func (e *extractor) fieldText(n parser.TreeNode, field string) string {
	c := e.fieldOr(n, field)
	if c == nil {
		return ""
	}
	return e.text(c)
}

func (e *extractor) modifiersOf(n parser.TreeNode) []string {
	var mods []string
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() != "modifiers" {
			continue
		}
		for j := 0; j < c.ChildCount(); j++ {
			m := c.Child(j)
			switch m.Kind() {
			case "public", "private", "protected", "static", "final", "abstract", "synchronized", "native", "transient", "volatile", "strictfp", "default":
				mods = append(mods, m.Kind())
			}
		}
	}
	return mods
}

func hasMod(mods []string, m string) bool {
	for _, x := range mods {
		if x == m {
			return true
		}
	}
	return false
}

func (e *extractor) emitClass(n parser.TreeNode, fqn, simple string) {
	mods := e.modifiersOf(n)
	node := model.Node{
		ID:         model.ClassID(fqn),
		Kind:       model.NodeClass,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		SimpleName: simple,
		FQN:        fqn,
		Modifiers:  mods,
	}
	if sc := e.fieldOr(n, "superclass"); sc != nil {
		if t := e.firstTypeName(sc); t != "" {
			node.Extends = []string{t}
		}
	}
	if ifc := e.fieldOr(n, "interfaces"); ifc != nil {
		node.Implements = e.typeListNames(ifc)
	}
	e.fs.Nodes = append(e.fs.Nodes, node)
}

func (e *extractor) emitEnumAsClass(n parser.TreeNode, fqn, simple string) {
	mods := append([]string{"enum"}, e.modifiersOf(n)...)
	node := model.Node{
		ID:         model.ClassID(fqn),
		Kind:       model.NodeClass,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		SimpleName: simple,
		FQN:        fqn,
		Modifiers:  mods,
	}
	if ifc := e.fieldOr(n, "interfaces"); ifc != nil {
		node.Implements = e.typeListNames(ifc)
	}
	e.fs.Nodes = append(e.fs.Nodes, node)
}

func (e *extractor) emitRecordAsClass(n parser.TreeNode, fqn, simple, typeID string) {
	mods := append([]string{"record", "final"}, e.modifiersOf(n)...)
	node := model.Node{
		ID:         model.ClassID(fqn),
		Kind:       model.NodeClass,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		SimpleName: simple,
		FQN:        fqn,
		Modifiers:  mods,
	}
	if ifc := e.fieldOr(n, "interfaces"); ifc != nil {
		node.Implements = e.typeListNames(ifc)
	}
	// Record components become fields, erased of their canonical record
	// ceremony: `record Point(int x, int y)` gives Point two fields.
	if params := e.fieldOr(n, "parameters"); params != nil {
		for i := 0; i < params.ChildCount(); i++ {
			p := params.Child(i)
			if p.Kind() != "formal_parameter" {
				continue
			}
			pname := e.fieldText(p, "name")
			ptype := e.typeText(e.fieldOr(p, "type"))
			if pname == "" {
				continue
			}
			fieldID := model.FieldID(fqn, pname)
			e.fs.Nodes = append(e.fs.Nodes, model.Node{
				ID:           fieldID,
				Kind:         model.NodeField,
				FilePath:     e.file.Path,
				LineRange:    e.lineRange(p),
				SourceCode:   e.text(p),
				OwnerFQN:     fqn,
				SimpleName:   pname,
				DeclaredType: ptype,
				Modifiers:    []string{"private", "final"},
			})
			e.addContainment(typeID, fieldID)
		}
	}
	e.fs.Nodes = append(e.fs.Nodes, node)
}

func (e *extractor) emitInterface(n parser.TreeNode, fqn, simple string) {
	mods := e.modifiersOf(n)
	node := model.Node{
		ID:         model.InterfaceID(fqn),
		Kind:       model.NodeInterface,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		SimpleName: simple,
		FQN:        fqn,
		Modifiers:  mods,
	}
	// extends_interfaces isn't addressed by a stable field name across
	// grammar revisions; scan direct children for it instead.
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() == "extends_interfaces" {
			node.Extends = e.typeListNames(c)
		}
	}
	e.fs.Nodes = append(e.fs.Nodes, node)
}

// firstTypeName returns the bare name of the single type under a
// superclass/type node, stripping generic arguments.
func (e *extractor) firstTypeName(n parser.TreeNode) string {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case "type_identifier", "scoped_type_identifier":
			return e.text(c)
		case "generic_type":
			return e.firstTypeName(c)
		}
	}
	return ""
}

// typeListNames extracts every type name out of a super_interfaces /
// extends_interfaces / type_list wrapper node.
func (e *extractor) typeListNames(n parser.TreeNode) []string {
	var out []string
	var walk func(parser.TreeNode)
	walk = func(x parser.TreeNode) {
		switch x.Kind() {
		case "type_identifier", "scoped_type_identifier":
			out = append(out, e.text(x))
			return
		case "generic_type":
			if name := e.firstTypeName(x); name != "" {
				out = append(out, name)
			}
			return
		}
		for i := 0; i < x.ChildCount(); i++ {
			walk(x.Child(i))
		}
	}
	walk(n)
	return out
}

// typeText renders a type node's source text collapsed to single
// spaces, preserving generics/arrays for later erasure (model.EraseType).
func (e *extractor) typeText(n parser.TreeNode) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(e.text(n)), " ")
}

// walkBody handles a class_body/record body's direct members, recursing
// into nested type declarations. ownerID is the enclosing type's id,
// the containment source for every direct member.
func (e *extractor) walkBody(body parser.TreeNode, ownerFQN, ownerID string) {
	if body == nil {
		return
	}
	for i := 0; i < body.ChildCount(); i++ {
		e.walkMember(body.Child(i), ownerFQN, ownerID)
	}
}

func (e *extractor) walkEnumBody(body parser.TreeNode, ownerFQN, ownerID string) {
	if body == nil {
		return
	}
	for i := 0; i < body.ChildCount(); i++ {
		c := body.Child(i)
		switch c.Kind() {
		case "enum_body_declarations":
			for j := 0; j < c.ChildCount(); j++ {
				e.walkMember(c.Child(j), ownerFQN, ownerID)
			}
		case "enum_constant":
			name := e.fieldText(c, "name")
			if name == "" {
				continue
			}
			fieldID := model.FieldID(ownerFQN, name)
			e.fs.Nodes = append(e.fs.Nodes, model.Node{
				ID:           fieldID,
				Kind:         model.NodeField,
				FilePath:     e.file.Path,
				LineRange:    e.lineRange(c),
				SourceCode:   e.text(c),
				OwnerFQN:     ownerFQN,
				SimpleName:   name,
				DeclaredType: ownerFQN,
				Modifiers:    []string{"public", "static", "final"},
			})
			e.addContainment(ownerID, fieldID)
		default:
			e.walkMember(c, ownerFQN, ownerID)
		}
	}
}

func (e *extractor) walkMember(m parser.TreeNode, ownerFQN, ownerID string) {
	switch m.Kind() {
	case "field_declaration":
		e.emitFields(m, ownerFQN, ownerID)
	case "method_declaration":
		e.emitMethod(m, ownerFQN, ownerID)
	case "constructor_declaration":
		e.emitConstructor(m, ownerFQN, ownerID)
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		e.walkType(m, ownerFQN, ownerID)
	}
}

// emitFields splits a multi-declarator field_declaration into one Field
// node per declarator (§4.B).
func (e *extractor) emitFields(n parser.TreeNode, ownerFQN, ownerID string) {
	mods := e.modifiersOf(n)
	declType := e.typeText(e.fieldOr(n, "type"))

	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() != "variable_declarator" {
			continue
		}
		name := ""
		extraDims := 0
		for j := 0; j < c.ChildCount(); j++ {
			d := c.Child(j)
			if d.Kind() == "identifier" {
				name = e.text(d)
			}
			if d.Kind() == "dimensions" {
				extraDims += strings.Count(e.text(d), "[")
			}
		}
		if name == "" {
			continue
		}
		t := declType
		for k := 0; k < extraDims; k++ {
			t += "[]"
		}
		id := model.FieldID(ownerFQN, name)
		e.fs.Nodes = append(e.fs.Nodes, model.Node{
			ID:           id,
			Kind:         model.NodeField,
			FilePath:     e.file.Path,
			LineRange:    e.lineRange(c),
			SourceCode:   e.text(n),
			OwnerFQN:     ownerFQN,
			SimpleName:   name,
			DeclaredType: t,
			Modifiers:    mods,
		})
		e.addContainment(ownerID, id)
		if val := e.fieldOr(c, "value"); val != nil {
			e.fs.FieldInits = append(e.fs.FieldInits, FieldInit{
				NodeID:   id,
				OwnerFQN: ownerFQN,
				IsStatic: hasMod(mods, "static"),
				Value:    val,
				File:     e.file,
			})
		}
	}
}

func (e *extractor) params(n parser.TreeNode) []model.Param {
	var out []model.Param
	plist := e.fieldOr(n, "parameters")
	if plist == nil {
		return out
	}
	for i := 0; i < plist.ChildCount(); i++ {
		p := plist.Child(i)
		switch p.Kind() {
		case "formal_parameter":
			name := e.fieldText(p, "name")
			t := e.typeText(e.fieldOr(p, "type"))
			if dims := e.fieldOr(p, "dimensions"); dims != nil {
				t += strings.Repeat("[]", strings.Count(e.text(dims), "["))
			}
			out = append(out, model.Param{Name: name, Type: t})
		case "spread_parameter":
			name := ""
			t := e.typeText(e.fieldOr(p, "type"))
			for j := 0; j < p.ChildCount(); j++ {
				if p.Child(j).Kind() == "variable_declarator" {
					name = e.fieldText(p.Child(j), "name")
				}
				if p.Child(j).Kind() == "identifier" {
					name = e.text(p.Child(j))
				}
			}
			out = append(out, model.Param{Name: name, Type: t + "..."})
		}
	}
	return out
}

func (e *extractor) emitMethod(n parser.TreeNode, ownerFQN, ownerID string) {
	name := e.fieldText(n, "name")
	if name == "" {
		return
	}
	mods := e.modifiersOf(n)
	params := e.params(n)
	paramTypes := make([]string, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	sig := model.Signature(paramTypes)
	id := model.MethodID(ownerFQN, name, sig)

	body := e.fieldOr(n, "body")
	isAbstract := body == nil || hasMod(mods, "abstract")

	node := model.Node{
		ID:         id,
		Kind:       model.NodeMethod,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		SimpleName: name,
		OwnerFQN:   ownerFQN,
		ReturnType: e.typeText(e.fieldOr(n, "type")),
		Params:     params,
		Signature:  sig,
		IsStatic:   hasMod(mods, "static"),
		Modifiers:  mods,
		IsAbstract: isAbstract,
	}
	e.fs.Nodes = append(e.fs.Nodes, node)
	e.addContainment(ownerID, id)

	if body != nil {
		e.fs.MethodBodies = append(e.fs.MethodBodies, MethodBody{
			NodeID:   id,
			OwnerFQN: ownerFQN,
			IsStatic: node.IsStatic,
			Body:     body,
			File:     e.file,
		})
	}
}

func (e *extractor) emitConstructor(n parser.TreeNode, ownerFQN, ownerID string) {
	params := e.params(n)
	paramTypes := make([]string, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	sig := model.Signature(paramTypes)
	id := model.ConstructorID(ownerFQN, sig)
	mods := e.modifiersOf(n)

	e.fs.Nodes = append(e.fs.Nodes, model.Node{
		ID:         id,
		Kind:       model.NodeConstructor,
		FilePath:   e.file.Path,
		LineRange:  e.lineRange(n),
		SourceCode: e.text(n),
		OwnerFQN:   ownerFQN,
		Params:     params,
		Signature:  sig,
		Modifiers:  mods,
	})
	e.addContainment(ownerID, id)

	if body := e.fieldOr(n, "body"); body != nil {
		e.fs.MethodBodies = append(e.fs.MethodBodies, MethodBody{
			NodeID:   id,
			OwnerFQN: ownerFQN,
			Body:     body,
			File:     e.file,
		})
	}
}
