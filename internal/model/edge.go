package model

// EdgeLabel is one of the fourteen edge names (seven inverse pairs, §3.2).
type EdgeLabel string

const (
	ParentOf       EdgeLabel = "ParentOf"
	ChildOf        EdgeLabel = "ChildOf"
	BaseClassOf    EdgeLabel = "BaseClassOf"
	DerivedClassOf EdgeLabel = "DerivedClassOf"
	Implements     EdgeLabel = "Implements"
	ImplementedBy  EdgeLabel = "ImplementedBy"
	Overrides      EdgeLabel = "Overrides"
	OverriddenBy   EdgeLabel = "OverriddenBy"
	Calls          EdgeLabel = "Calls"
	CalledBy       EdgeLabel = "CalledBy"
	Instantiates   EdgeLabel = "Instantiates"
	InstantiatedBy EdgeLabel = "InstantiatedBy"
	Uses           EdgeLabel = "Uses"
	UsedBy         EdgeLabel = "UsedBy"
)

// inverse maps every edge label to its pair. Edge.WithInverse uses it to
// build the reverse of an edge; the stages that produce edges emit each
// one together with its inverse (invariant 2, §3.3), and the assembler
// (internal/graph) stores edges exactly as it is given them.
var inverse = map[EdgeLabel]EdgeLabel{
	ParentOf:       ChildOf,
	ChildOf:        ParentOf,
	BaseClassOf:    DerivedClassOf,
	DerivedClassOf: BaseClassOf,
	Implements:     ImplementedBy,
	ImplementedBy:  Implements,
	Overrides:      OverriddenBy,
	OverriddenBy:   Overrides,
	Calls:          CalledBy,
	CalledBy:       Calls,
	Instantiates:   InstantiatedBy,
	InstantiatedBy: Instantiates,
	Uses:           UsedBy,
	UsedBy:         Uses,
}

// Inverse returns the paired label for l. It panics if l is not one of
// the fourteen known labels, since that would indicate a programmer
// error inside the analyzer, not a data condition.
func Inverse(l EdgeLabel) EdgeLabel {
	inv, ok := inverse[l]
	if !ok {
		panic("model: unknown edge label " + string(l))
	}
	return inv
}

// Edge is a single directed relation between two node ids.
//
// Resolved is true iff Dst refers to a node that exists in the emitted
// node set; otherwise Dst may be a synthetic placeholder id (§3.2).
type Edge struct {
	Src      string    `json:"src"`
	Label    EdgeLabel `json:"label"`
	Dst      string    `json:"dst"`
	Resolved bool      `json:"resolved"`
}

// Key identifies an edge for the assembler's dedup set: (src, label, dst).
func (e Edge) Key() string {
	return e.Src + "\x00" + string(e.Label) + "\x00" + e.Dst
}

// WithInverse returns the edge with label and endpoints swapped, carrying
// Resolved along unchanged (resolution is a property of a relation, not
// of the direction it's read in).
func (e Edge) WithInverse() Edge {
	return Edge{Src: e.Dst, Label: Inverse(e.Label), Dst: e.Src, Resolved: e.Resolved}
}
