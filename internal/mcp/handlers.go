package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/capitol/internal/config"
	"github.com/hpungsan/capitol/internal/errors"
	"github.com/hpungsan/capitol/internal/ops"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
	agg *pipeline.Aggregator
	log *slog.Logger
}

// NewHandlers creates a new Handlers instance. agg may be nil.
func NewHandlers(db *sql.DB, cfg *config.Config, agg *pipeline.Aggregator, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{db: db, cfg: cfg, agg: agg, log: log}
}

// Request types for each tool

// RefRequest identifies one bill.
type RefRequest struct {
	Congress int    `json:"congress"`
	Type     string `json:"bill_type"`
	Number   string `json:"bill_number"`
}

func (r RefRequest) input() ops.RefInput {
	return ops.RefInput{Congress: r.Congress, Type: r.Type, Number: r.Number}
}

// AggregateRequest represents the arguments for bill_aggregate.
type AggregateRequest struct {
	RefRequest
	Persist bool `json:"persist,omitempty"`
}

// SyncRequest represents the arguments for bill_sync.
type SyncRequest struct {
	Congress int    `json:"congress,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// FetchRequest represents the arguments for bill_fetch.
type FetchRequest struct {
	RefRequest
	IncludeActions *bool `json:"include_actions,omitempty"`
}

// ListRequest represents the arguments for bill_list.
type ListRequest struct {
	Congress   int    `json:"congress,omitempty"`
	Status     string `json:"status,omitempty"`
	PolicyArea string `json:"policy_area,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for bill_export.
type ExportRequest struct {
	Path     string `json:"path,omitempty"`
	Congress int    `json:"congress,omitempty"`
}

// ImportRequest represents the arguments for bill_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// RunsRequest represents the arguments for sync_runs.
type RunsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// RunRequest represents the arguments for sync_run.
type RunRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the arguments for sync_purge.
type PurgeRequest struct {
	OlderThanDays int `json:"older_than_days,omitempty"`
}

// CongressRequest represents the arguments for congress_lookup.
type CongressRequest struct {
	Date string `json:"date,omitempty"`
}

// Handler implementations

// HandleAggregate handles the bill_aggregate tool call.
func (h *Handlers) HandleAggregate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AggregateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Aggregate(ctx, h.db, h.agg, ops.AggregateInput{
		RefInput: input.input(),
		Persist:  input.Persist,
	})
	if err != nil {
		return h.fail("bill_aggregate", err), nil
	}
	return successResult(result)
}

// HandleSync handles the bill_sync tool call.
func (h *Handlers) HandleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SyncRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Sync(ctx, h.db, h.agg, ops.SyncInput{
		Congress: input.Congress,
		From:     input.From,
		To:       input.To,
		Limit:    input.Limit,
	})
	if err != nil {
		return h.fail("bill_sync", err), nil
	}
	return successResult(result)
}

// HandleFetch handles the bill_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{
		RefInput:       input.input(),
		IncludeActions: input.IncludeActions,
	})
	if err != nil {
		return h.fail("bill_fetch", err), nil
	}
	return successResult(result)
}

// HandleList handles the bill_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.List(ctx, h.db, ops.ListInput{
		Congress:   input.Congress,
		Status:     input.Status,
		PolicyArea: input.PolicyArea,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return h.fail("bill_list", err), nil
	}
	return successResult(result)
}

// HandleExport handles the bill_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:     input.Path,
		Congress: input.Congress,
	})
	if err != nil {
		return h.fail("bill_export", err), nil
	}
	return successResult(result)
}

// HandleImport handles the bill_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return h.fail("bill_import", err), nil
	}
	return successResult(result)
}

// HandleRuns handles the sync_runs tool call.
func (h *Handlers) HandleRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Runs(ctx, h.db, ops.RunsInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return h.fail("sync_runs", err), nil
	}
	return successResult(result)
}

// HandleRun handles the sync_run tool call.
func (h *Handlers) HandleRun(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RunRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Run(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("sync_run", err), nil
	}
	return successResult(result)
}

// HandlePurge handles the sync_purge tool call.
func (h *Handlers) HandlePurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.PurgeRuns(ctx, h.db, ops.PurgeRunsInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return h.fail("sync_purge", err), nil
	}
	return successResult(result)
}

// HandleCongress handles the congress_lookup tool call.
func (h *Handlers) HandleCongress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CongressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Congress(ops.CongressInput{Date: input.Date})
	if err != nil {
		return h.fail("congress_lookup", err), nil
	}
	return successResult(result)
}

// fail logs internal and upstream errors before converting them; the
// client only ever sees the sanitized payload.
func (h *Handlers) fail(tool string, err error) *mcp.CallToolResult {
	switch errors.CodeOf(err) {
	case errors.ErrInternal:
		h.log.Error("tool failed", "tool", tool, "err", err)
	case errors.ErrUpstream, errors.ErrSchemaValidation:
		h.log.Warn("tool failed", "tool", tool, "err", err)
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Details of INTERNAL errors are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if ce, ok := errors.As(err); ok {
		// A wrapped error keeps its wrapper context in the message
		msg := ce.Message
		if err != error(ce) && ce.Code != errors.ErrInternal {
			msg = err.Error()
		}
		errorObj := map[string]any{
			"code":    ce.Code,
			"message": msg,
			"status":  ce.Status,
		}
		if ce.Code != errors.ErrInternal && ce.Details != nil {
			errorObj["details"] = ce.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
