// Package pipeline orchestrates stages A-G into the single synchronous
// entry point §5 describes. Per-file parsing and symbol extraction
// (stages A/B) run with bounded worker concurrency; stage C freezes the
// index before D, E, and F run in that fixed order, and G assembles the
// result. Apart from reading each input file's bytes, the pipeline
// performs no I/O of its own (§7); callers in cmd/javagraph own the
// output files and the optional store.
package pipeline

import (
	"context"
	"os"
	"sync"

	"github.com/javagraph/javagraph/internal/diagnostics"
	"github.com/javagraph/javagraph/internal/graph"
	"github.com/javagraph/javagraph/internal/hierarchy"
	"github.com/javagraph/javagraph/internal/index"
	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/parser"
	"github.com/javagraph/javagraph/internal/resolve"
	"github.com/javagraph/javagraph/internal/symbols"
	"github.com/javagraph/javagraph/internal/typeuse"
)

// Result is the pipeline's complete output: the assembled graph plus
// every diagnostic accumulated along the way, in file order.
type Result struct {
	Graph       *graph.Graph
	Diagnostics []diagnostics.Diagnostic
}

// Analyze runs the full pipeline over files (absolute or relative paths,
// already discovered by internal/discovery). workers bounds stage A/B
// concurrency; values below 1 are treated as 1.
func Analyze(ctx context.Context, files []string, workers int) (*Result, error) {
	if workers < 1 {
		workers = 1
	}

	type fileUnit struct {
		path    string
		diag    *diagnostics.Collector
		file    *parser.File
		syms    *symbols.FileSymbols
		spanErr error
	}

	units := make([]fileUnit, len(files))
	p := parser.New()
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			diags := diagnostics.New()
			source, err := readFile(path)
			if err != nil {
				diags.Add(diagnostics.ParseError, path, "%v", err)
				units[i] = fileUnit{path: path, diag: diags}
				return
			}

			f := p.ParseFile(ctx, path, source, diags)
			var syms *symbols.FileSymbols
			var spanErr error
			if f.Err == nil && f.Tree != nil {
				syms, spanErr = symbols.Extract(f, diags)
			}
			units[i] = fileUnit{path: path, diag: diags, file: f, syms: syms, spanErr: spanErr}
		}(i, path)
	}
	wg.Wait()

	// A malformed span is a programmer error inside the analyzer (§7),
	// not a degraded-input condition: abort before any later stage runs,
	// closing every file opened so far.
	for _, u := range units {
		if u.spanErr == nil {
			continue
		}
		for _, o := range units {
			if o.file != nil {
				o.file.Close()
			}
		}
		return nil, u.spanErr
	}

	var allDiags []diagnostics.Diagnostic
	var allNodes []model.Node
	var containmentEdges []model.Edge
	scopes := make(resolve.Scopes)
	type bodySource struct {
		owner string
		id    string
		node  parser.TreeNode
		file  *parser.File
	}
	var bodySources []bodySource

	for _, u := range units {
		allDiags = append(allDiags, u.diag.Items()...)
		if u.syms == nil {
			continue
		}
		allNodes = append(allNodes, u.syms.Nodes...)
		containmentEdges = append(containmentEdges, u.syms.Edges...)

		singles := map[string]string{}
		var onDemand []string
		for _, imp := range u.syms.Imports {
			if imp.OnDemand {
				onDemand = append(onDemand, imp.Target)
			} else {
				singles[imp.Alias] = imp.Target
			}
		}
		scopes[u.path] = resolve.NewFileScope(u.syms.PackageName, singles, onDemand)

		for _, mb := range u.syms.MethodBodies {
			bodySources = append(bodySources, bodySource{owner: mb.OwnerFQN, id: mb.NodeID, node: mb.Body, file: mb.File})
		}
		for _, fi := range u.syms.FieldInits {
			caller := model.InstanceInitID(fi.OwnerFQN)
			if fi.IsStatic {
				caller = model.StaticInitID(fi.OwnerFQN)
			}
			bodySources = append(bodySources, bodySource{owner: fi.OwnerFQN, id: caller, node: fi.Value, file: fi.File})
		}
	}

	diagCollector := diagnostics.New()
	idx := index.New(allNodes, diagCollector)
	allDiags = append(allDiags, diagCollector.Items()...)

	hScopes := make(hierarchy.Scopes, len(scopes))
	for path, s := range scopes {
		hScopes[path] = s
	}
	hr := hierarchy.Resolve(idx, hScopes)

	bodies := make([]resolve.Body, len(bodySources))
	for i, b := range bodySources {
		bodies[i] = resolve.Body{CallerID: b.id, OwnerFQN: b.owner, Node: b.node, File: b.file}
	}
	callEdges := resolve.ResolveCalls(idx, scopes, &resolve.Hierarchy{
		SuperOf:         hr.SuperOf,
		ClassInterfaces: hr.ClassInterfaces,
		InterfaceSupers: hr.InterfaceSupers,
		OverriddenBy:    hr.OverriddenBy,
	}, bodies)

	usesEdges := typeuse.Resolve(idx, typeuse.Scopes(scopes))

	g := graph.New()
	for _, n := range idx.AllNodes() {
		g.AddNode(*n)
	}
	g.AddEdges(containmentEdges)
	g.AddEdges(hr.Edges)
	g.AddEdges(callEdges)
	g.AddEdges(usesEdges)

	for _, u := range units {
		if u.file != nil {
			u.file.Close()
		}
	}

	return &Result{Graph: g, Diagnostics: allDiags}, nil
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
