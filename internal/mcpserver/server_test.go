package mcpserver

import (
	"context"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

func newRequest(args map[string]interface{}) mcpgo.CallToolRequest {
	var req mcpgo.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestHandleGetNodeRequiresID(t *testing.T) {
	s := &Server{}
	result, err := s.handleGetNode(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGetNode: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for missing id parameter")
	}
}

func TestHandleGetCallersRequiresNodeID(t *testing.T) {
	s := &Server{}
	result, err := s.handleGetCallers(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGetCallers: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for missing node_id parameter")
	}
}

func TestHandleFindByNameRequiresName(t *testing.T) {
	s := &Server{}
	result, err := s.handleFindByName(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleFindByName: %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError for missing name parameter")
	}
}

func TestNew(t *testing.T) {
	s := New(nil)
	if s == nil || s.mcp == nil {
		t.Fatal("New did not build an MCP server instance")
	}
}
