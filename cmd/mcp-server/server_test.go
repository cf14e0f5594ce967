package main

import (
	"testing"

	"github.com/ledgerbook/ledgerbook-go/pkg/ledgerbook"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// TestServerInitialization verifies that the server can initialize without panicking
// This catches jsonschema validation errors and other startup issues
func TestServerInitialization(t *testing.T) {
	client := &ledgerbook.Client{}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ledgerbook",
		Version: "1.0.0",
	}, nil)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Server initialization panicked: %v", r)
		}
	}()

	registerTools(server, client)
}
