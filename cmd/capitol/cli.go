package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/capitol/internal/bill"
	"github.com/hpungsan/capitol/internal/config"
	"github.com/hpungsan/capitol/internal/errors"
	"github.com/hpungsan/capitol/internal/ops"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// stdout is where command output goes; tests swap it.
var stdout io.Writer = os.Stdout

// newCLIApp creates the CLI application with all commands. agg is nil when
// no API key is configured.
func newCLIApp(db *sql.DB, cfg *config.Config, agg *pipeline.Aggregator) *cli.App {
	app := &cli.App{
		Name:    "capitol",
		Usage:   "Aggregate congress.gov bills into local analytics records",
		Version: Version,
		Commands: []*cli.Command{
			aggregateCmd(db, agg),
			syncCmd(db, agg),
			fetchCmd(db),
			listCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			runsCmd(db),
			runCmd(db),
			purgeRunsCmd(db),
			congressCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func aggregateCmd(db *sql.DB, agg *pipeline.Aggregator) *cli.Command {
	return &cli.Command{
		Name:      "aggregate",
		Usage:     "Fetch one bill from congress.gov and compute its analytics",
		ArgsUsage: "<congress/type/number>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "persist", Aliases: []string{"p"}, Usage: "Store the bill locally"},
		},
		Action: func(c *cli.Context) error {
			ref, err := refArg(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Aggregate(c.Context, db, agg, ops.AggregateInput{
				RefInput: ref,
				Persist:  c.Bool("persist"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func syncCmd(db *sql.DB, agg *pipeline.Aggregator) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "List bills from congress.gov, aggregate and store each one",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "congress", Aliases: []string{"c"}, Usage: "Congress number (default: all)"},
			&cli.StringFlag{Name: "from", Usage: "Bills updated at or after this date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "to", Usage: "Bills updated at or before this date (YYYY-MM-DD)"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Listing page size"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Sync(c.Context, db, agg, ops.SyncInput{
				Congress: c.Int("congress"),
				From:     c.String("from"),
				To:       c.String("to"),
				Limit:    c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a stored bill",
		ArgsUsage: "<congress/type/number>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-actions", Usage: "Exclude the action history"},
		},
		Action: func(c *cli.Context) error {
			ref, err := refArg(c)
			if err != nil {
				return outputError(err)
			}

			input := ops.FetchInput{RefInput: ref}
			if c.Bool("no-actions") {
				includeActions := false
				input.IncludeActions = &includeActions
			}

			output, err := ops.Fetch(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List stored bills",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "congress", Aliases: []string{"c"}, Usage: "Filter by congress"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status, e.g. PASSED_HOUSE"},
			&cli.StringFlag{Name: "policy-area", Usage: "Filter by policy area"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Congress:   c.Int("congress"),
				Status:     c.String("status"),
				PolicyArea: c.String("policy-area"),
				Limit:      c.Int("limit"),
				Offset:     c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export stored bills to JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output .jsonl path (default: exports directory)"},
			&cli.IntFlag{Name: "congress", Aliases: []string{"c"}, Usage: "Only export this congress"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, cfg, ops.ExportInput{
				Path:     c.String("path"),
				Congress: c.Int("congress"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import bills from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(ops.ImportModeReplace), Usage: "Existing bills: replace|skip"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.NewInvalidRequest("import path is required"))
			}

			output, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func runsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List sync runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultRunsLimit, Usage: "Max results"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Runs(c.Context, db, ops.RunsInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func runCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Show one sync run and its failures",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Run(c.Context, db, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func purgeRunsCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge-runs",
		Usage: "Permanently delete finished sync runs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only runs started more than N days ago (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeRunsInput{}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = days
			}

			output, err := ops.PurgeRuns(c.Context, db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func congressCmd() *cli.Command {
	return &cli.Command{
		Name:      "congress",
		Usage:     "Show the congress in session on a date (default today)",
		ArgsUsage: "[YYYY-MM-DD]",
		Action: func(c *cli.Context) error {
			output, err := ops.Congress(ops.CongressInput{Date: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// Helper functions

// refArg parses the single positional bill reference.
func refArg(c *cli.Context) (ops.RefInput, error) {
	if c.NArg() != 1 {
		return ops.RefInput{}, errors.NewInvalidRequest("bill reference is required, e.g. 119/hr/3076")
	}
	ref, err := bill.ParseRef(c.Args().First())
	if err != nil {
		return ops.RefInput{}, err
	}
	return ops.RefInput{Congress: ref.Congress, Type: ref.Type, Number: ref.Number}, nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats err as "[CODE] message" with exit status 1.
func outputError(err error) error {
	if ce, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", ce.Code, ce.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	numStr, ok := strings.CutSuffix(s, "d")
	if !ok {
		return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 30d")
	}
	days, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}
	if days < 0 {
		return 0, fmt.Errorf("duration must be non-negative")
	}
	return days, nil
}
