// Package model defines the node and edge types shared by every analyzer
// stage. Nodes are born during stages A-B and are immutable afterward;
// later stages only add edges (see internal/graph).
package model

// NodeKind is one of the six node kinds the analyzer emits.
type NodeKind string

const (
	NodeModule      NodeKind = "Module"
	NodeClass       NodeKind = "Class"
	NodeInterface   NodeKind = "Interface"
	NodeMethod      NodeKind = "Method"
	NodeConstructor NodeKind = "Constructor"
	NodeField       NodeKind = "Field"
)

// DefaultPackage is the sentinel package name used for compilation units
// that declare no `package` clause.
const DefaultPackage = "<default>"

// LineRange is a 1-indexed, inclusive [start, end] source range.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Param is a single method or constructor parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Node is the common envelope for every node kind. Kind-specific
// attributes are ordinary fields of this struct, left at their zero
// value (and omitted from JSON) for kinds that do not use them, so the
// wire format (§6.2) stays a flat JSON object per line without needing
// one struct per kind.
type Node struct {
	ID         string    `json:"id"`
	Kind       NodeKind  `json:"kind"`
	FilePath   string    `json:"file_path"`
	LineRange  LineRange `json:"line_range"`
	SourceCode string    `json:"source_code"`

	// Module
	PackageName string `json:"package_name,omitempty"`

	// Class / Interface
	SimpleName string   `json:"simple_name,omitempty"`
	FQN        string   `json:"fqn,omitempty"`
	Extends    []string `json:"extends,omitempty"`
	Implements []string `json:"implements,omitempty"`
	Modifiers  []string `json:"modifiers,omitempty"`

	// Method / Constructor
	OwnerFQN   string  `json:"owner_fqn,omitempty"`
	ReturnType string  `json:"return_type,omitempty"`
	Params     []Param `json:"params,omitempty"`
	Signature  string  `json:"signature,omitempty"`
	IsStatic   bool    `json:"is_static,omitempty"`
	IsAbstract bool    `json:"is_abstract,omitempty"`

	// Field
	DeclaredType string `json:"declared_type,omitempty"`
}

// ExtendsSingle returns the sole extends target of a Class node, or ""
// if the class has no superclass clause. Interfaces may extend several
// interfaces and use Extends directly instead.
func (n *Node) ExtendsSingle() string {
	if len(n.Extends) == 0 {
		return ""
	}
	return n.Extends[0]
}

// IsType reports whether the node is a Class or Interface.
func (n *Node) IsType() bool {
	return n.Kind == NodeClass || n.Kind == NodeInterface
}

// IsCallable reports whether the node can be the destination of a Calls
// or Instantiates edge per invariant 5 (§3.3).
func (n *Node) IsCallable() bool {
	return n.Kind == NodeMethod || n.Kind == NodeConstructor
}

// HasModifier reports whether m is present in the node's modifier list.
func (n *Node) HasModifier(m string) bool {
	for _, x := range n.Modifiers {
		if x == m {
			return true
		}
	}
	return false
}
