// Package graph implements Stage G (§4.G): the in-memory graph
// assembler. It owns no I/O; internal/emit writes its output streams.
package graph

import (
	"github.com/emirpasic/gods/sets/treeset"

	"github.com/javagraph/javagraph/internal/model"
)

// Graph holds the deduplicated node and edge set a single analysis run
// produces. Iteration order is the sorted order of node id / edge key,
// so re-running the pipeline over unchanged input yields byte-identical
// output (§4.G, invariant 2).
type Graph struct {
	nodes   map[string]model.Node
	nodeIDs *treeset.Set

	edges    map[string]model.Edge
	edgeKeys *treeset.Set
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]model.Node),
		nodeIDs:  treeset.NewWithStringComparator(),
		edges:    make(map[string]model.Edge),
		edgeKeys: treeset.NewWithStringComparator(),
	}
}

// AddNode inserts n, first-wins on an id collision (stage C already
// applies the collision policy; this guards the assembler's own
// invariant independently of how it's called).
func (g *Graph) AddNode(n model.Node) {
	if _, exists := g.nodes[n.ID]; exists {
		return
	}
	g.nodes[n.ID] = n
	g.nodeIDs.Add(n.ID)
}

// AddNodes inserts every node in ns.
func (g *Graph) AddNodes(ns []model.Node) {
	for _, n := range ns {
		g.AddNode(n)
	}
}

// AddEdge inserts e, deduplicated by (src, label, dst) per invariant 3
// (§3.3): the same relation discovered twice (e.g. a call site matched
// by more than one resolution path) collapses to one edge.
func (g *Graph) AddEdge(e model.Edge) {
	key := e.Key()
	if _, exists := g.edges[key]; exists {
		return
	}
	g.edges[key] = e
	g.edgeKeys.Add(key)
}

// AddEdges inserts every edge in es.
func (g *Graph) AddEdges(es []model.Edge) {
	for _, e := range es {
		g.AddEdge(e)
	}
}

// Nodes returns every node, sorted by id.
func (g *Graph) Nodes() []model.Node {
	out := make([]model.Node, 0, g.nodeIDs.Size())
	for _, v := range g.nodeIDs.Values() {
		out = append(out, g.nodes[v.(string)])
	}
	return out
}

// Edges returns every edge, sorted by (src, label, dst).
func (g *Graph) Edges() []model.Edge {
	out := make([]model.Edge, 0, g.edgeKeys.Size())
	for _, v := range g.edgeKeys.Values() {
		out = append(out, g.edges[v.(string)])
	}
	return out
}

// NodeCount returns the number of distinct nodes held.
func (g *Graph) NodeCount() int { return g.nodeIDs.Size() }

// EdgeCount returns the number of distinct edges held.
func (g *Graph) EdgeCount() int { return g.edgeKeys.Size() }

// HasNode reports whether id refers to a node actually present in the
// graph, the test invariant 5 (§3.3) needs: Resolved=true edges must
// point at a real node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}
