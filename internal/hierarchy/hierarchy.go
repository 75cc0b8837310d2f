// Package hierarchy implements Stage D (§4.D): class hierarchy
// resolution, interface implementation, and the override relation, run
// in two ordered sub-stages (3a class/override, 3b interface).
//
// Design decision (documented in DESIGN.md): an interface extending
// another interface emits BaseClassOf/DerivedClassOf, mirroring the
// `extends` keyword it uses; Implements/ImplementedBy is reserved for
// the `implements` keyword relation between a class and an interface.
package hierarchy

import (
	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/resolve"
)

// Result is Stage D's output: the emitted edges plus the override table
// Stage E needs for virtual-dispatch widening (CHA, §4.E step 4).
type Result struct {
	Edges []model.Edge
	// Overrides maps a method id to every ancestor method id it
	// overrides (class target first, then interface targets).
	Overrides map[string][]string
	// OverriddenBy is the reverse of Overrides: ancestor method id to
	// every descendant method id that overrides it.
	OverriddenBy map[string][]string
	// SuperOf, ClassInterfaces, and InterfaceSupers are handed to Stage E
	// (as a resolve.Hierarchy) so call resolution can climb the same
	// resolved hierarchy without importing this package.
	SuperOf         map[string]string
	ClassInterfaces map[string][]string
	InterfaceSupers map[string][]string
}

// Scopes supplies the per-file import context (§4.B) Stage D needs to
// resolve extends/implements identifiers to FQNs.
type Scopes map[string]*resolve.FileScope

// Resolve runs both 3a and 3b over every Class/Interface node in idx.
func Resolve(idx *index.Index, scopes Scopes) *Result {
	r := &Result{
		Overrides:    make(map[string][]string),
		OverriddenBy: make(map[string][]string),
	}

	superOf := make(map[string]string)         // class FQN -> resolved superclass FQN
	ifaceExtendsOf := make(map[string][]string) // interface FQN -> resolved super-interface FQNs
	implementsOf := make(map[string][]string)   // class FQN -> resolved direct interface FQNs

	// 3a (part 1): class extends class.
	for _, n := range idx.AllNodes() {
		if n.Kind != model.NodeClass {
			continue
		}
		raw := n.ExtendsSingle()
		if raw == "" {
			continue
		}
		scope := scopes[n.FilePath]
		target, ok := scope.ResolveType(resolve.BareName(raw), idx, n.FQN)
		if ok && target.Kind == model.NodeClass {
			superOf[n.FQN] = target.FQN
			r.Edges = append(r.Edges,
				model.Edge{Src: target.ID, Label: model.BaseClassOf, Dst: n.ID, Resolved: true},
				model.Edge{Src: n.ID, Label: model.DerivedClassOf, Dst: target.ID, Resolved: true},
			)
		} else {
			dst := model.ClassID(raw)
			r.Edges = append(r.Edges,
				model.Edge{Src: dst, Label: model.BaseClassOf, Dst: n.ID, Resolved: false},
				model.Edge{Src: n.ID, Label: model.DerivedClassOf, Dst: dst, Resolved: false},
			)
		}
	}

	// 3b (part 1): interface extends interface(s) -> BaseClassOf/DerivedClassOf.
	for _, n := range idx.AllNodes() {
		if n.Kind != model.NodeInterface {
			continue
		}
		scope := scopes[n.FilePath]
		for _, raw := range n.Extends {
			target, ok := scope.ResolveType(resolve.BareName(raw), idx, n.FQN)
			if ok && target.Kind == model.NodeInterface {
				ifaceExtendsOf[n.FQN] = append(ifaceExtendsOf[n.FQN], target.FQN)
				r.Edges = append(r.Edges,
					model.Edge{Src: target.ID, Label: model.BaseClassOf, Dst: n.ID, Resolved: true},
					model.Edge{Src: n.ID, Label: model.DerivedClassOf, Dst: target.ID, Resolved: true},
				)
			} else {
				dst := model.InterfaceID(raw)
				r.Edges = append(r.Edges,
					model.Edge{Src: dst, Label: model.BaseClassOf, Dst: n.ID, Resolved: false},
					model.Edge{Src: n.ID, Label: model.DerivedClassOf, Dst: dst, Resolved: false},
				)
			}
		}
	}

	// 3b (part 2): class implements interface(s).
	for _, n := range idx.AllNodes() {
		if n.Kind != model.NodeClass {
			continue
		}
		scope := scopes[n.FilePath]
		for _, raw := range n.Implements {
			target, ok := scope.ResolveType(resolve.BareName(raw), idx, n.FQN)
			if ok && target.Kind == model.NodeInterface {
				implementsOf[n.FQN] = append(implementsOf[n.FQN], target.FQN)
				r.Edges = append(r.Edges,
					model.Edge{Src: n.ID, Label: model.Implements, Dst: target.ID, Resolved: true},
					model.Edge{Src: target.ID, Label: model.ImplementedBy, Dst: n.ID, Resolved: true},
				)
			} else {
				dst := model.InterfaceID(raw)
				r.Edges = append(r.Edges,
					model.Edge{Src: n.ID, Label: model.Implements, Dst: dst, Resolved: false},
					model.Edge{Src: dst, Label: model.ImplementedBy, Dst: n.ID, Resolved: false},
				)
			}
		}
	}

	// 3a (part 2): override computation over the resolved class chain.
	for _, n := range idx.AllNodes() {
		if n.Kind != model.NodeClass {
			continue
		}
		for _, m := range idx.MethodsOf(n.FQN) {
			if m.IsStatic || m.HasModifier("private") {
				continue
			}
			var targets []*model.Node

			if t := firstAncestorOverride(idx, superOf, n.FQN, m.SimpleName, m.Signature); t != nil {
				targets = append(targets, t)
			}
			for _, ifaceFQN := range transitiveInterfaces(implementsOf[n.FQN], ifaceExtendsOf) {
				if im, ok := idx.Method(ifaceFQN, m.SimpleName, m.Signature); ok && im.IsAbstract {
					targets = append(targets, im)
				}
			}

			for _, t := range targets {
				r.Edges = append(r.Edges,
					model.Edge{Src: m.ID, Label: model.Overrides, Dst: t.ID, Resolved: true},
					model.Edge{Src: t.ID, Label: model.OverriddenBy, Dst: m.ID, Resolved: true},
				)
				r.Overrides[m.ID] = append(r.Overrides[m.ID], t.ID)
				r.OverriddenBy[t.ID] = append(r.OverriddenBy[t.ID], m.ID)
			}
		}
	}

	r.SuperOf = superOf
	r.ClassInterfaces = make(map[string][]string)
	for fqn := range implementsOf {
		r.ClassInterfaces[fqn] = transitiveInterfaces(implementsOf[fqn], ifaceExtendsOf)
	}
	r.InterfaceSupers = make(map[string][]string)
	for fqn := range ifaceExtendsOf {
		r.InterfaceSupers[fqn] = transitiveInterfaces(ifaceExtendsOf[fqn], ifaceExtendsOf)
	}

	return r
}

// firstAncestorOverride climbs the resolved superclass chain starting
// at classFQN and returns the first ancestor's matching method, or nil
// if the chain is exhausted or breaks on an unresolved link.
func firstAncestorOverride(idx *index.Index, superOf map[string]string, classFQN, name, sig string) *model.Node {
	for ancestor, ok := superOf[classFQN]; ok; ancestor, ok = superOf[ancestor] {
		if m, found := idx.Method(ancestor, name, sig); found {
			return m
		}
	}
	return nil
}

// transitiveInterfaces expands a class's direct implements list through
// each interface's own extends chain, de-duplicated.
func transitiveInterfaces(direct []string, ifaceExtendsOf map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	var visit func(string)
	visit = func(fqn string) {
		if seen[fqn] {
			return
		}
		seen[fqn] = true
		out = append(out, fqn)
		for _, parent := range ifaceExtendsOf[fqn] {
			visit(parent)
		}
	}
	for _, d := range direct {
		visit(d)
	}
	return out
}
