// Package emit writes the frozen output streams §6.2 defines: a
// newline-delimited JSON node stream, a newline-delimited JSON edge
// stream, and a symbol-table JSON document. None of it is exercised by
// the core pipeline (§7: the core never performs I/O); the caller in
// cmd/javagraph owns the file handles.
package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/javagraph/javagraph/internal/model"
)

// Nodes writes one JSON object per line, one per node, in the order
// given (callers pass graph.Graph.Nodes(), already sorted by id).
func Nodes(w io.Writer, nodes []model.Node) error {
	return writeJSONL(w, len(nodes), func(i int) any { return nodes[i] })
}

// Edges writes one JSON object per line, one per edge.
func Edges(w io.Writer, edges []model.Edge) error {
	return writeJSONL(w, len(edges), func(i int) any { return edges[i] })
}

func writeJSONL(w io.Writer, n int, at func(int) any) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := 0; i < n; i++ {
		if err := enc.Encode(at(i)); err != nil {
			return fmt.Errorf("emit: encode line %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// SymbolTableEntry is one row of the symbol-table document: a node's id
// alongside the file and line range it was declared at, for tools that
// want a flat name index without loading the full node stream.
type SymbolTableEntry struct {
	ID        string          `json:"id"`
	Kind      model.NodeKind  `json:"kind"`
	FQN       string          `json:"fqn,omitempty"`
	FilePath  string          `json:"file_path"`
	LineRange model.LineRange `json:"line_range"`
}

// SymbolTable writes a single JSON document: a sorted-by-id array of
// SymbolTableEntry, one per Class/Interface/Method/Constructor/Field.
func SymbolTable(w io.Writer, nodes []model.Node) error {
	entries := make([]SymbolTableEntry, 0, len(nodes))
	for _, n := range nodes {
		switch n.Kind {
		case model.NodeClass, model.NodeInterface, model.NodeMethod, model.NodeConstructor, model.NodeField:
			entries = append(entries, SymbolTableEntry{
				ID:        n.ID,
				Kind:      n.Kind,
				FQN:       n.FQN,
				FilePath:  n.FilePath,
				LineRange: n.LineRange,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("emit: encode symbol table: %w", err)
	}
	return nil
}
