package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/gitsize/core"
	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	store   contract.RunStore
}

// historyCapture keeps the history instead of printing it, since stdout carries the protocol.
type historyCapture struct {
	history *schema.SizeHistory
}

func (c *historyCapture) WriteHistory(history *schema.SizeHistory, _ *contract.Config, _ time.Duration) error {
	c.history = history
	return nil
}

// historyConfig applies the tool arguments on top of the server's base config.
func (h *toolHandler) historyConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if r := request.GetString("ref", ""); r != "" {
		cfg.Ref = r
	}
	if s := request.GetString("sampling", ""); s != "" {
		cfg.Sampling = schema.SamplingMode(s)
	}
	if p := request.GetString("policy", ""); p != "" {
		cfg.Policy = schema.FailurePolicy(p)
	}
	if w := request.GetInt("workers", 0); w != 0 {
		cfg.Workers = w
	}
	cfg.WantUncompressed = request.GetBool("uncompressed", cfg.WantUncompressed)
	cfg.PlotFile = ""
	return cfg, contract.RevalidateHistory(cfg)
}

func (h *toolHandler) handleGetSizeHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.historyConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid history parameters: %v", err)), nil
	}

	capture := &historyCapture{}
	if err := core.ExecuteSizeHistory(core.WithSuppressHeader(ctx), cfg, h.client, capture, h.store); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("size history failed (%s): %v", contract.Classify(err), err)), nil
	}

	jsonData, _ := json.MarshalIndent(capture.history, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleCheckSize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.historyConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid check parameters: %v", err)), nil
	}
	if cfg.MaxPackedBytes, err = parseSizeArg(request, "max_size", cfg.MaxPackedBytes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cfg.MaxUncompressedBytes, err = parseSizeArg(request, "max_uncompressed", cfg.MaxUncompressedBytes); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if cfg.MaxUncompressedBytes > 0 {
		cfg.WantUncompressed = true
	}
	cfg.BaseRef = request.GetString("base", cfg.BaseRef)
	cfg.MaxGrowthPct = request.GetFloat("max_growth", cfg.MaxGrowthPct)
	if cfg.MaxGrowthPct < 0 || (cfg.MaxGrowthPct > 0 && cfg.BaseRef == "") {
		return mcp.NewToolResultError("invalid check parameters: max_growth must be positive and requires base"), nil
	}

	result, err := core.RunSizeCheck(ctx, cfg, h.client)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("size check failed (%s): %v", contract.Classify(err), err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// parseSizeArg reads a humanized byte size argument such as "500MB".
func parseSizeArg(request mcp.CallToolRequest, name string, fallback uint64) (uint64, error) {
	s := request.GetString(name, "")
	if s == "" {
		return fallback, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}
