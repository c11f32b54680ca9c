// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the gitsize MCP server without starting it.
// This is exposed for unit testing. store may be nil when run tracking is off.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, store contract.RunStore) *server.MCPServer {
	s := server.NewMCPServer(
		"gitsize Repository Size Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		store:   store,
	}

	// --- 1. Tool: get_size_history ---
	s.AddTool(mcp.NewTool("get_size_history",
		mcp.WithDescription("Sample a git repository's commit history over time and report its on-disk size at each sample date."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to current directory if not specified).")),
		mcp.WithString("ref", mcp.Description("Ref to walk history from. Defaults to HEAD.")),
		mcp.WithString("sampling", mcp.Description("Sampling interval. 'auto' picks yearly for histories longer than six years."), mcp.Enum("auto", "yearly", "monthly")),
		mcp.WithBoolean("uncompressed", mcp.Description("Also report the total uncompressed size of all reachable blobs (slower).")),
		mcp.WithNumber("workers", mcp.Description("Number of samples measured concurrently.")),
		mcp.WithString("policy", mcp.Description("What to do when a sample fails."), mcp.Enum("fail-fast", "continue")),
	), h.handleGetSizeHistory)

	// --- 2. Tool: check_size ---
	s.AddTool(mcp.NewTool("check_size",
		mcp.WithDescription("Measure a ref once and check it against size thresholds, optionally relative to a base ref."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("ref", mcp.Description("Ref to measure. Defaults to HEAD.")),
		mcp.WithString("max_size", mcp.Description("Maximum packed size, e.g. '500MB'.")),
		mcp.WithString("max_uncompressed", mcp.Description("Maximum uncompressed size, e.g. '2GB'. Measuring it is slow.")),
		mcp.WithString("base", mcp.Description("Base ref for the growth threshold.")),
		mcp.WithNumber("max_growth", mcp.Description("Maximum packed growth from base, in percent.")),
	), h.handleCheckSize)

	return s
}

// StartMCPServer starts the gitsize MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, store contract.RunStore) error {
	s := NewMCPServer(baseCfg, client, store)
	return server.ServeStdio(s)
}
