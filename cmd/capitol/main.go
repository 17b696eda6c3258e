package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hpungsan/capitol/internal/config"
	"github.com/hpungsan/capitol/internal/congress"
	"github.com/hpungsan/capitol/internal/db"
	"github.com/hpungsan/capitol/internal/logging"
	"github.com/hpungsan/capitol/internal/mcp"
	"github.com/hpungsan/capitol/internal/pipeline"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"aggregate": true, "sync": true, "fetch": true, "list": true,
	"export": true, "import": true,
	"runs": true, "run": true, "purge-runs": true,
	"congress": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode(args []string) bool {
	if len(args) < 2 {
		return false
	}
	return cliCommands[args[1]] || isHelpOrVersion(args)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch args[1] {
	case "--help", "-h", "--version", "-v", "help":
		return true
	}
	return false
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___   _   ___ ___ _____ ___  _
  / __| /_\ | _ \_ _|_   _/ _ \| |
 | (__ / _ \|  _/| |  | || (_) | |__
  \___/_/ \_\_| |___| |_| \___/|____|

  congress.gov bill aggregation and analytics

  Usage: capitol <command> [options]
         capitol --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// newAggregator builds the congress.gov pipeline, or returns nil when no API
// key is configured so that local-only commands keep working.
func newAggregator(cfg *config.Config, env *config.Env, log *slog.Logger) (*pipeline.Aggregator, error) {
	if env.APIKey == "" {
		log.Debug("CONGRESS_API_KEY not set; congress.gov tools are unavailable")
		return nil, nil
	}
	client, err := congress.NewClient(cfg.ClientOptions(env.APIKey, log))
	if err != nil {
		return nil, err
	}
	return pipeline.NewAggregator(client, log), nil
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion(os.Args) {
		if err := newCLIApp(nil, nil, nil).Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	env, err := config.LoadEnv()
	if err != nil {
		fatal("%v", err)
	}
	log := logging.Setup(env.LogLevel)

	baseDir, err := env.BaseDir()
	if err != nil {
		fatal("%v", err)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		database.Close()
		fatal("failed to load config: %v", err)
	}
	cfg.BaseDir = baseDir
	config.ApplyEnv(cfg, env)
	db.ConfigurePool(database, cfg)

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("unknown types in disabled_types", "types", unknown)
	}

	agg, err := newAggregator(cfg, env, log)
	if err != nil {
		database.Close()
		fatal("failed to create congress.gov client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// CLI mode: known subcommand
	if isCLIMode(os.Args) {
		if err := newCLIApp(database, cfg, agg).RunContext(ctx, os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			stop()
			database.Close()
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'capitol --help' for usage.\n")
		stop()
		database.Close()
		os.Exit(1)
	}

	// MCP server mode (default)
	log.Info("starting MCP server", "version", Version, "base_dir", baseDir, "congress_api", agg != nil)
	if err := mcp.Run(database, cfg, agg, log, Version); err != nil {
		log.Error("MCP server stopped", "err", err)
		stop()
		database.Close()
		os.Exit(1)
	}
}
