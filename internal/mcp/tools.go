package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/ops"
)

func statusNames() []string {
	names := make([]string, len(bill.AllStatuses))
	for i, s := range bill.AllStatuses {
		names[i] = string(s)
	}
	return names
}

var refOptions = []mcp.ToolOption{
	mcp.WithNumber("congress", mcp.Required(), mcp.Description("Congress number, e.g. 119")),
	mcp.WithString("bill_type", mcp.Required(), mcp.Description("Bill type: hr, s, hjres, sjres, hconres, sconres, hres, sres")),
	mcp.WithString("bill_number", mcp.Required(), mcp.Description("Bill number, e.g. 3076")),
}

func withRef(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(append([]mcp.ToolOption{}, refOptions...), opts...)
}

var aggregateToolDef = mcp.NewTool("bill_aggregate", withRef(
	mcp.WithDescription("Fetch one bill from congress.gov with all of its related records and compute its analytics."),
	mcp.WithBoolean("persist", mcp.Description("Store the aggregated bill locally (default false)")),
)...)

var syncToolDef = mcp.NewTool("bill_sync",
	mcp.WithDescription("List bills from congress.gov, aggregate each one and store the results. A failing bill is reported without failing the run."),
	mcp.WithNumber("congress", mcp.Description("Congress number; omit to list across congresses")),
	mcp.WithString("from", mcp.Description("Only bills updated at or after this date (YYYY-MM-DD)")),
	mcp.WithString("to", mcp.Description("Only bills updated at or before this date (YYYY-MM-DD)")),
	mcp.WithNumber("limit", mcp.Description("Listing page size")),
)

var fetchToolDef = mcp.NewTool("bill_fetch", withRef(
	mcp.WithDescription("Fetch a stored bill."),
	mcp.WithBoolean("include_actions", mcp.Description("Include the action history (default true)")),
)...)

var listToolDef = mcp.NewTool("bill_list",
	mcp.WithDescription("List stored bills, most recently stored first."),
	mcp.WithNumber("congress", mcp.Description("Filter by congress number")),
	mcp.WithString("status", mcp.Description("Filter by derived status"), mcp.Enum(statusNames()...)),
	mcp.WithString("policy_area", mcp.Description("Filter by policy area (case-insensitive)")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var exportToolDef = mcp.NewTool("bill_export",
	mcp.WithDescription("Export stored bills to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path; defaults to a timestamped file in the exports directory")),
	mcp.WithNumber("congress", mcp.Description("Only export this congress")),
)

var importToolDef = mcp.NewTool("bill_import",
	mcp.WithDescription("Import bills from a JSONL file written by bill_export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("mode", mcp.Description("What to do with bills already stored (default replace)"),
		mcp.Enum(string(ops.ImportModeReplace), string(ops.ImportModeSkip))),
)

var runsToolDef = mcp.NewTool("sync_runs",
	mcp.WithDescription("List recorded sync runs, newest first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var runToolDef = mcp.NewTool("sync_run",
	mcp.WithDescription("Fetch one sync run with the bills that failed in it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Run id")),
)

var purgeToolDef = mcp.NewTool("sync_purge",
	mcp.WithDescription("Permanently delete finished sync runs and their failures."),
	mcp.WithNumber("older_than_days", mcp.Description("Only runs started more than N days ago; omit to purge every finished run")),
)

var congressToolDef = mcp.NewTool("congress_lookup",
	mcp.WithDescription("Report which congress was in session on a date, when it began, and the session day."),
	mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD; defaults to today (UTC)")),
)
