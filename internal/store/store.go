// Package store is a thin SurrealDB-backed persistence layer for the
// assembled graph. It is additive to, and never a substitute for, the
// frozen JSONL streams (internal/emit) — it exists purely so a
// long-lived serve process (internal/mcpserver) can answer graph
// queries without re-parsing.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/javagraph/javagraph/internal/graph"
	"github.com/javagraph/javagraph/internal/model"
)

// Config holds the connection parameters for the SurrealDB instance,
// mirroring config.SurrealDBConfig.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store wraps a SurrealDB connection scoped to a namespace/database
// holding the nodes and edges tables.
type Store struct {
	db *surrealdb.DB
}

// nodeRecord and edgeRecord are the wire shapes stored in SurrealDB.
// They mirror model.Node/model.Edge, flattened for the schema, with ID
// holding the escaped record id (recordID) used for Select/Upsert.
type nodeRecord struct {
	ID         string          `json:"id"`
	Kind       model.NodeKind  `json:"kind"`
	FilePath   string          `json:"file_path"`
	LineStart  int             `json:"line_start"`
	LineEnd    int             `json:"line_end"`
	SourceCode string          `json:"source_code"`
	FQN        string          `json:"fqn,omitempty"`
	SimpleName string          `json:"simple_name,omitempty"`
	OwnerFQN   string          `json:"owner_fqn,omitempty"`
	Signature  string          `json:"signature,omitempty"`
}

type edgeRecord struct {
	ID       string          `json:"id"`
	Src      string          `json:"src"`
	Label    model.EdgeLabel `json:"label"`
	Dst      string          `json:"dst"`
	Resolved bool            `json:"resolved"`
}

// Open connects, signs in, and selects the configured namespace/database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("store: sign in: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("store: use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close(context.Background())
}

// Migrate defines the nodes/edges tables and their indexes. It is safe
// to call repeatedly: individual DEFINE statements that already exist
// are ignored.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`DEFINE TABLE nodes SCHEMAFULL`,
		`DEFINE FIELD kind ON nodes TYPE string`,
		`DEFINE FIELD file_path ON nodes TYPE string`,
		`DEFINE FIELD line_start ON nodes TYPE int`,
		`DEFINE FIELD line_end ON nodes TYPE int`,
		`DEFINE FIELD source_code ON nodes TYPE option<string>`,
		`DEFINE FIELD fqn ON nodes TYPE option<string>`,
		`DEFINE FIELD simple_name ON nodes TYPE option<string>`,
		`DEFINE FIELD owner_fqn ON nodes TYPE option<string>`,
		`DEFINE FIELD signature ON nodes TYPE option<string>`,
		`DEFINE INDEX idx_nodes_file ON nodes FIELDS file_path`,
		`DEFINE INDEX idx_nodes_fqn ON nodes FIELDS fqn`,
		`DEFINE INDEX idx_nodes_simple_name ON nodes FIELDS simple_name`,
		`DEFINE INDEX idx_nodes_owner ON nodes FIELDS owner_fqn`,

		`DEFINE TABLE edges SCHEMAFULL`,
		`DEFINE FIELD src ON edges TYPE string`,
		`DEFINE FIELD label ON edges TYPE string`,
		`DEFINE FIELD dst ON edges TYPE string`,
		`DEFINE FIELD resolved ON edges TYPE bool`,
		`DEFINE INDEX idx_edges_src ON edges FIELDS src`,
		`DEFINE INDEX idx_edges_dst ON edges FIELDS dst`,
		`DEFINE INDEX idx_edges_src_label ON edges FIELDS src, label`,
		`DEFINE INDEX idx_edges_dst_label ON edges FIELDS dst, label`,
	}

	for _, stmt := range statements {
		if _, err := surrealdb.Query[any](ctx, s.db, stmt, nil); err != nil {
			continue
		}
	}
	return nil
}

func toNodeRecord(n model.Node) nodeRecord {
	return nodeRecord{
		ID:         recordID(n.ID),
		Kind:       n.Kind,
		FilePath:   n.FilePath,
		LineStart:  n.LineRange.Start,
		LineEnd:    n.LineRange.End,
		SourceCode: n.SourceCode,
		FQN:        n.FQN,
		SimpleName: n.SimpleName,
		OwnerFQN:   n.OwnerFQN,
		Signature:  n.Signature,
	}
}

func fromNodeRecord(r nodeRecord) model.Node {
	return model.Node{
		ID:         stripRecordTable(r.ID),
		Kind:       r.Kind,
		FilePath:   r.FilePath,
		LineRange:  model.LineRange{Start: r.LineStart, End: r.LineEnd},
		SourceCode: r.SourceCode,
		FQN:        r.FQN,
		SimpleName: r.SimpleName,
		OwnerFQN:   r.OwnerFQN,
		Signature:  r.Signature,
	}
}

// recordID turns an analyzer id (e.g. "class:com.example.Repo") into a
// value safe to embed as a SurrealDB record id key: colons and
// parentheses are not valid there, so it is escaped, not truncated.
func recordID(id string) string {
	replacer := strings.NewReplacer(":", "_C_", "(", "_P_", ")", "_Q_", "#", "_H_", ".", "_D_")
	return replacer.Replace(id)
}

func stripRecordTable(rid string) string {
	replacer := strings.NewReplacer("_C_", ":", "_P_", "(", "_Q_", ")", "_H_", "#", "_D_", ".")
	return replacer.Replace(rid)
}

// UpsertNodesBatch writes every node in a single transaction.
func (s *Store) UpsertNodesBatch(ctx context.Context, nodes []model.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	data := make([]nodeRecord, len(nodes))
	for i, n := range nodes {
		data[i] = toNodeRecord(n)
	}

	query := `
		BEGIN TRANSACTION;
		FOR $n IN $nodes {
			UPSERT nodes SET
				kind = $n.kind,
				file_path = $n.file_path,
				line_start = $n.line_start,
				line_end = $n.line_end,
				source_code = $n.source_code,
				fqn = $n.fqn,
				simple_name = $n.simple_name,
				owner_fqn = $n.owner_fqn,
				signature = $n.signature
			WHERE id = $n.id;
		};
		COMMIT TRANSACTION;
	`
	_, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{"nodes": data})
	return err
}

// UpsertEdgesBatch writes every edge in a single transaction.
func (s *Store) UpsertEdgesBatch(ctx context.Context, edges []model.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	data := make([]edgeRecord, len(edges))
	for i, e := range edges {
		data[i] = edgeRecord{
			ID:       recordID(e.Key()),
			Src:      e.Src,
			Label:    e.Label,
			Dst:      e.Dst,
			Resolved: e.Resolved,
		}
	}

	query := `
		BEGIN TRANSACTION;
		FOR $e IN $edges {
			UPSERT edges SET
				src = $e.src,
				label = $e.label,
				dst = $e.dst,
				resolved = $e.resolved
			WHERE id = $e.id;
		};
		COMMIT TRANSACTION;
	`
	_, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{"edges": data})
	return err
}

// StoreGraph persists an entire assembled graph in one call: every
// node then every edge, each batched in its own transaction.
func (s *Store) StoreGraph(ctx context.Context, g *graph.Graph) error {
	if err := s.UpsertNodesBatch(ctx, g.Nodes()); err != nil {
		return fmt.Errorf("store: upsert nodes: %w", err)
	}
	if err := s.UpsertEdgesBatch(ctx, g.Edges()); err != nil {
		return fmt.Errorf("store: upsert edges: %w", err)
	}
	return nil
}

// GetNode looks up a single node by its analyzer id.
func (s *Store) GetNode(ctx context.Context, id string) (*model.Node, error) {
	rec, err := surrealdb.Select[nodeRecord](ctx, s.db, "nodes:"+recordID(id))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	n := fromNodeRecord(*rec)
	return &n, nil
}

// FindByName returns every node whose fqn or simple_name contains name.
func (s *Store) FindByName(ctx context.Context, name string) ([]model.Node, error) {
	query := `SELECT * FROM nodes WHERE fqn CONTAINS $name OR simple_name CONTAINS $name`
	results, err := surrealdb.Query[[]nodeRecord](ctx, s.db, query, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	return nodesFromResults(results), nil
}

// GetNodesByFile returns every node declared in filePath.
func (s *Store) GetNodesByFile(ctx context.Context, filePath string) ([]model.Node, error) {
	query := `SELECT * FROM nodes WHERE file_path = $path`
	results, err := surrealdb.Query[[]nodeRecord](ctx, s.db, query, map[string]any{"path": filePath})
	if err != nil {
		return nil, err
	}
	return nodesFromResults(results), nil
}

// GetCallers returns every node with a Calls edge targeting nodeID.
func (s *Store) GetCallers(ctx context.Context, nodeID string) ([]model.Node, error) {
	return s.neighborsByLabel(ctx, nodeID, model.CalledBy)
}

// GetCallees returns every node nodeID has a Calls edge to.
func (s *Store) GetCallees(ctx context.Context, nodeID string) ([]model.Node, error) {
	return s.neighborsByLabel(ctx, nodeID, model.Calls)
}

// neighborsByLabel follows edges with the given label out of nodeID
// and resolves the destination ids to nodes. Both Calls (outgoing) and
// CalledBy (incoming, since every edge is stored with its inverse
// already present per the assembler's invariant) are ordinary src
// lookups from nodeID's perspective.
func (s *Store) neighborsByLabel(ctx context.Context, nodeID string, label model.EdgeLabel) ([]model.Node, error) {
	query := `SELECT * FROM edges WHERE src = $id AND label = $label`
	results, err := surrealdb.Query[[]edgeRecord](ctx, s.db, query, map[string]any{
		"id":    nodeID,
		"label": string(label),
	})
	if err != nil {
		return nil, err
	}
	edges := edgesFromResults(results)

	var nodes []model.Node
	for _, e := range edges {
		n, err := s.GetNode(ctx, e.Dst)
		if err != nil || n == nil {
			continue
		}
		nodes = append(nodes, *n)
	}
	return nodes, nil
}

// DeleteFile removes every node and edge associated with filePath, in
// a single transaction, so a re-analyzed file never leaves stale
// nodes or dangling edges behind.
func (s *Store) DeleteFile(ctx context.Context, filePath string) error {
	query := `
		BEGIN TRANSACTION;
		LET $ids = (SELECT VALUE id FROM nodes WHERE file_path = $path);
		DELETE FROM edges WHERE src IN $ids OR dst IN $ids;
		DELETE FROM nodes WHERE file_path = $path;
		COMMIT TRANSACTION;
	`
	_, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{"path": filePath})
	return err
}

// ReplaceFile replaces every node/edge belonging to filePath with
// nodes/edges, used by internal/watch after a file changes on disk. The
// delete and the two upserts run as three separate transactions; if a
// later step fails, the earlier ones stay applied.
func (s *Store) ReplaceFile(ctx context.Context, filePath string, nodes []model.Node, edges []model.Edge) error {
	if err := s.DeleteFile(ctx, filePath); err != nil {
		return fmt.Errorf("store: delete stale file data: %w", err)
	}
	if err := s.UpsertNodesBatch(ctx, nodes); err != nil {
		return fmt.Errorf("store: upsert nodes: %w", err)
	}
	if err := s.UpsertEdgesBatch(ctx, edges); err != nil {
		return fmt.Errorf("store: upsert edges: %w", err)
	}
	return nil
}

// GetTransitiveDependencies walks Uses/Calls/Instantiates edges
// outward from nodeID up to depth levels using BFS, collecting every
// node reached along the way.
func (s *Store) GetTransitiveDependencies(ctx context.Context, nodeID string, depth int) ([]model.Node, error) {
	if depth <= 0 {
		depth = 3
	}

	visited := map[string]bool{nodeID: true}
	var result []model.Node
	currentLevel := []string{nodeID}

	for level := 0; level < depth && len(currentLevel) > 0; level++ {
		var nextLevel []string

		for _, id := range currentLevel {
			query := `SELECT * FROM edges WHERE src = $id AND resolved = true AND label IN $labels`
			results, err := surrealdb.Query[[]edgeRecord](ctx, s.db, query, map[string]any{
				"id":     id,
				"labels": []string{string(model.Uses), string(model.Calls), string(model.Instantiates)},
			})
			if err != nil {
				continue
			}
			for _, e := range edgesFromResults(results) {
				if !visited[e.Dst] {
					visited[e.Dst] = true
					nextLevel = append(nextLevel, e.Dst)
				}
			}
		}

		for _, id := range nextLevel {
			n, err := s.GetNode(ctx, id)
			if err == nil && n != nil {
				result = append(result, *n)
			}
		}
		currentLevel = nextLevel
	}

	return result, nil
}

func nodesFromResults(results *[]surrealdb.QueryResult[[]nodeRecord]) []model.Node {
	if results == nil || len(*results) == 0 {
		return nil
	}
	recs := (*results)[0].Result
	nodes := make([]model.Node, len(recs))
	for i, r := range recs {
		nodes[i] = fromNodeRecord(r)
	}
	return nodes
}

func edgesFromResults(results *[]surrealdb.QueryResult[[]edgeRecord]) []model.Edge {
	if results == nil || len(*results) == 0 {
		return nil
	}
	recs := (*results)[0].Result
	edges := make([]model.Edge, len(recs))
	for i, r := range recs {
		edges[i] = model.Edge{Src: r.Src, Label: r.Label, Dst: r.Dst, Resolved: r.Resolved}
	}
	return edges
}
