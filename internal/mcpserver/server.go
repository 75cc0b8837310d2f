// Package mcpserver exposes the persisted graph as a read-only set of
// MCP tools, adapted from the teacher's pkg/mcp server but trimmed to
// the query surface the graph actually supports: get_node,
// get_callers, get_callees, get_transitive_dependencies, find_by_name,
// get_nodes_by_file.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/javagraph/javagraph/internal/model"
	"github.com/javagraph/javagraph/internal/store"
)

// Server wraps a store.Store in an MCP tool surface.
type Server struct {
	store *store.Store
	mcp   *server.MCPServer
}

func New(st *store.Store) *Server {
	s := &Server{store: st}

	mcpServer := server.NewMCPServer(
		"javagraph",
		"0.1.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)
	s.mcp = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcpgo.Tool{
		Name:        "get_node",
		Description: "Look up a single graph node by its id (e.g. \"class:com.example.Repo\").",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": map[string]interface{}{"type": "string", "description": "Node id"},
			},
			Required: []string{"id"},
		},
	}, s.handleGetNode)

	mcpServer.AddTool(mcpgo.Tool{
		Name:        "get_callers",
		Description: "List every node with a resolved Calls edge targeting the given node id.",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"node_id": map[string]interface{}{"type": "string", "description": "Target node id"},
			},
			Required: []string{"node_id"},
		},
	}, s.handleGetCallers)

	mcpServer.AddTool(mcpgo.Tool{
		Name:        "get_callees",
		Description: "List every node the given node has a resolved Calls edge to.",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"node_id": map[string]interface{}{"type": "string", "description": "Source node id"},
			},
			Required: []string{"node_id"},
		},
	}, s.handleGetCallees)

	mcpServer.AddTool(mcpgo.Tool{
		Name:        "get_transitive_dependencies",
		Description: "Walk resolved outgoing Uses/Calls/Instantiates edges from a node up to a given depth (default 3).",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"node_id": map[string]interface{}{"type": "string", "description": "Starting node id"},
				"depth":   map[string]interface{}{"type": "integer", "description": "Maximum depth (default 3)"},
			},
			Required: []string{"node_id"},
		},
	}, s.handleGetTransitiveDependencies)

	mcpServer.AddTool(mcpgo.Tool{
		Name:        "find_by_name",
		Description: "Find nodes whose fully-qualified or simple name contains the given text.",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{"type": "string", "description": "Name substring"},
			},
			Required: []string{"name"},
		},
	}, s.handleFindByName)

	mcpServer.AddTool(mcpgo.Tool{
		Name:        "get_nodes_by_file",
		Description: "List every node declared in a given source file.",
		InputSchema: mcpgo.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"file_path": map[string]interface{}{"type": "string", "description": "Source file path"},
			},
			Required: []string{"file_path"},
		},
	}, s.handleGetNodesByFile)
}

func (s *Server) handleGetNode(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, _ := req.Params.Arguments["id"].(string)
	if id == "" {
		return errorResult("id parameter is required")
	}

	n, err := s.store.GetNode(ctx, id)
	if err != nil {
		return errorResult(fmt.Sprintf("lookup failed: %v", err))
	}
	if n == nil {
		return errorResult(fmt.Sprintf("no node found for id %q", id))
	}
	return jsonResult(n)
}

func (s *Server) handleGetCallers(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	nodeID, _ := req.Params.Arguments["node_id"].(string)
	if nodeID == "" {
		return errorResult("node_id parameter is required")
	}

	nodes, err := s.store.GetCallers(ctx, nodeID)
	if err != nil {
		return errorResult(fmt.Sprintf("query failed: %v", err))
	}
	return jsonResult(nodeListResult(nodeID, nodes))
}

func (s *Server) handleGetCallees(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	nodeID, _ := req.Params.Arguments["node_id"].(string)
	if nodeID == "" {
		return errorResult("node_id parameter is required")
	}

	nodes, err := s.store.GetCallees(ctx, nodeID)
	if err != nil {
		return errorResult(fmt.Sprintf("query failed: %v", err))
	}
	return jsonResult(nodeListResult(nodeID, nodes))
}

func (s *Server) handleGetTransitiveDependencies(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	nodeID, _ := req.Params.Arguments["node_id"].(string)
	if nodeID == "" {
		return errorResult("node_id parameter is required")
	}
	depth := 3
	if d, ok := req.Params.Arguments["depth"].(float64); ok && d > 0 {
		depth = int(d)
	}

	nodes, err := s.store.GetTransitiveDependencies(ctx, nodeID, depth)
	if err != nil {
		return errorResult(fmt.Sprintf("query failed: %v", err))
	}

	return jsonResult(map[string]interface{}{
		"node_id":      nodeID,
		"depth":        depth,
		"count":        len(nodes),
		"dependencies": nodes,
	})
}

func (s *Server) handleFindByName(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, _ := req.Params.Arguments["name"].(string)
	if name == "" {
		return errorResult("name parameter is required")
	}

	nodes, err := s.store.FindByName(ctx, name)
	if err != nil {
		return errorResult(fmt.Sprintf("query failed: %v", err))
	}
	return jsonResult(map[string]interface{}{
		"name":    name,
		"count":   len(nodes),
		"results": nodes,
	})
}

func (s *Server) handleGetNodesByFile(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	filePath, _ := req.Params.Arguments["file_path"].(string)
	if filePath == "" {
		return errorResult("file_path parameter is required")
	}

	nodes, err := s.store.GetNodesByFile(ctx, filePath)
	if err != nil {
		return errorResult(fmt.Sprintf("query failed: %v", err))
	}
	return jsonResult(map[string]interface{}{
		"file_path": filePath,
		"count":     len(nodes),
		"nodes":     nodes,
	})
}

func nodeListResult(nodeID string, nodes []model.Node) map[string]interface{} {
	return map[string]interface{}{
		"node_id": nodeID,
		"count":   len(nodes),
		"nodes":   nodes,
	}
}

func jsonResult(v interface{}) (*mcpgo.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		log.Printf("Warning: failed to marshal MCP tool result: %v", err)
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return &mcpgo.CallToolResult{
		Content: []mcpgo.Content{
			mcpgo.TextContent{Type: "text", Text: string(jsonBytes)},
		},
	}, nil
}

func errorResult(msg string) (*mcpgo.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(map[string]interface{}{"error": true, "message": msg})
	return &mcpgo.CallToolResult{
		Content: []mcpgo.Content{
			mcpgo.TextContent{Type: "text", Text: string(jsonBytes)},
		},
		IsError: true,
	}, nil
}

// ServeStdio runs the MCP server over stdio until the process exits or
// the context's parent cancels it (ServeStdio blocks on stdin, per
// mark3labs/mcp-go; ctx is accepted for symmetry with ServeHTTP).
func (s *Server) ServeStdio(ctx context.Context) error {
	log.Println("Starting MCP server on stdio...")
	return server.ServeStdio(s.mcp)
}

// ServeHTTP runs the MCP server over SSE on the given port until ctx
// is cancelled.
func (s *Server) ServeHTTP(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting MCP server on http://localhost%s\n", addr)

	sseHandler := server.NewSSEServer(s.mcp,
		server.WithBaseURL(fmt.Sprintf("http://127.0.0.1:%d", port)),
	)

	mux := http.NewServeMux()
	mux.Handle("/", sseHandler)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
