package emit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/javagraph/javagraph/internal/model"
)

func TestNodesWritesOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	nodes := []model.Node{
		{ID: "class:A", Kind: model.NodeClass, FQN: "A"},
		{ID: "class:B", Kind: model.NodeClass, FQN: "B"},
	}
	if err := Nodes(&buf, nodes); err != nil {
		t.Fatalf("Nodes: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var n model.Node
	if err := json.Unmarshal([]byte(lines[0]), &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if n.ID != "class:A" {
		t.Fatalf("first node id = %q", n.ID)
	}
}

func TestEdgesWritesOneJSONObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	edges := []model.Edge{
		{Src: "a", Label: model.Calls, Dst: "b", Resolved: true},
	}
	if err := Edges(&buf, edges); err != nil {
		t.Fatalf("Edges: %v", err)
	}
	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		count++
	}
	if count != 1 {
		t.Fatalf("lines = %d, want 1", count)
	}
}

func TestSymbolTableFiltersAndSorts(t *testing.T) {
	var buf bytes.Buffer
	nodes := []model.Node{
		{ID: "module:com.example", Kind: model.NodeModule},
		{ID: "class:com.example.Zeta", Kind: model.NodeClass, FQN: "com.example.Zeta"},
		{ID: "class:com.example.Alpha", Kind: model.NodeClass, FQN: "com.example.Alpha"},
	}
	if err := SymbolTable(&buf, nodes); err != nil {
		t.Fatalf("SymbolTable: %v", err)
	}

	var entries []SymbolTableEntry
	if err := json.Unmarshal(buf.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (module excluded)", len(entries))
	}
	if entries[0].ID != "class:com.example.Alpha" {
		t.Fatalf("first entry = %q, want sorted Alpha first", entries[0].ID)
	}
}
