package mcp

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"

	"github.com/hpungsan/capitol/internal/config"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"bill", "sync", "congress"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"bill_aggregate": {
		def:     aggregateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAggregate },
	},
	"bill_sync": {
		def:     syncToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSync },
	},
	"bill_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"bill_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"bill_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"bill_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"sync_runs": {
		def:     runsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuns },
	},
	"sync_run": {
		def:     runToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRun },
	},
	"sync_purge": {
		def:     purgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
	"congress_lookup": {
		def:     congressToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCongress },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := lo.Keys(toolRegistry)
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	return lo.Filter(names, func(name string, _ int) bool {
		_, ok := toolRegistry[name]
		return !ok
	})
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	return lo.Without(names, KnownTypes...)
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "bill_sync" → "bill").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	return lo.Filter(AllToolNames(), func(name string, _ int) bool {
		return slices.Contains(types, GetTypeForTool(name))
	})
}

// NewServer creates a new MCP server with the capitol tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded. agg may be nil when no API key is configured; the tools
// that reach congress.gov then fail with INVALID_REQUEST.
func NewServer(db *sql.DB, cfg *config.Config, agg *pipeline.Aggregator, log *slog.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"capitol",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, agg, log)

	disabled := lo.SliceToMap(
		append(ExpandTypesToTools(cfg.DisabledTypes), cfg.DisabledTools...),
		func(name string) (string, bool) { return name, true },
	)

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, agg *pipeline.Aggregator, log *slog.Logger, version string) error {
	s := NewServer(db, cfg, agg, log, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
