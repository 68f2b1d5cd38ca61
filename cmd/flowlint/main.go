package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/flowlint/flowlint/internal/expressions"
	"github.com/flowlint/flowlint/internal/logging"
	"github.com/flowlint/flowlint/internal/providers"
	"github.com/flowlint/flowlint/internal/store"
	"github.com/flowlint/flowlint/internal/validation"
	"github.com/flowlint/flowlint/pkg/mcp"
	"github.com/flowlint/flowlint/pkg/schema"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "flowlint",
		Usage:   "Validator for alerting-workflow definitions",
		Version: Version,
		Description: `Flowlint checks workflow definitions (YAML or JSON) against the
rules the visual builder enforces: container shape, step ordering,
foreach/condition constraints, expressions, references and triggers.

Examples:
  flowlint validate workflow.yaml
  flowlint validate --record workflows/
  flowlint providers
  flowlint mcp`,
		Commands: []*cli.Command{
			validateCommand,
			providersCommand,
			reportsCommand,
			mcpCommand,
			exprCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Validate workflow definition files",
	ArgsUsage: "<file|dir> [...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "record",
			Usage: "Persist definitions and lint reports to the store",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only print failing files",
		},
	},
	Action: runValidate,
}

var providersCommand = &cli.Command{
	Name:   "providers",
	Usage:  "List the builtin provider catalog",
	Action: runProviders,
}

var reportsCommand = &cli.Command{
	Name:  "reports",
	Usage: "List recorded lint reports",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "workflow",
			Usage: "Filter by workflow ID",
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 20,
			Usage: "Maximum number of reports",
		},
	},
	Action: runReports,
}

var mcpCommand = &cli.Command{
	Name:   "mcp",
	Usage:  "Serve the MCP stdio server",
	Action: runMCP,
}

func runValidate(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one file or directory is required", 2)
	}

	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	validator, err := validation.NewWorkflowValidator(providers.Builtin())
	if err != nil {
		return err
	}

	var st store.Store
	if c.Bool("record") {
		st, err = openStore(c.Context, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	files, err := collectFiles(c.Args().Slice())
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		def, err := schema.Decode(data)
		if err != nil {
			failed++
			fmt.Printf("%s: %v\n", file, err)
			continue
		}

		result := validator.Validate(def)
		printResult(file, result, c.Bool("quiet"))
		if !result.Valid() {
			failed++
		}

		if st != nil {
			if err := recordReport(c.Context, st, cfg.TenantID, file, def, result); err != nil {
				logger.WarnContext(c.Context, "failed to record report", "file", file, "error", err)
			}
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d files failed validation", failed, len(files)), 1)
	}
	return nil
}

func runProviders(c *cli.Context) error {
	for _, d := range providers.Builtin().List() {
		caps := ""
		for i, cap := range d.Capabilities {
			if i > 0 {
				caps += ","
			}
			caps += string(cap)
		}
		fmt.Printf("%-14s %-14s %s\n", d.Type, caps, d.Description)
	}
	return nil
}

func runReports(c *cli.Context) error {
	cfg := loadConfig()
	st, err := openStore(c.Context, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	reports, err := st.ListReports(c.Context, store.ReportFilter{
		WorkflowID: c.String("workflow"),
		TenantID:   cfg.TenantID,
		Limit:      c.Int("limit"),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runMCP(c *cli.Context) error {
	cfg := loadConfig()
	logger := newLogger(cfg.LogLevel)

	validator, err := validation.NewWorkflowValidator(providers.Builtin())
	if err != nil {
		return err
	}

	// The store is optional for the MCP server; validate still works without it.
	st, err := openStore(c.Context, cfg)
	if err != nil {
		logger.WarnContext(c.Context, "store unavailable, reports disabled", "error", err)
		st = nil
	} else {
		defer st.Close()
	}

	srv := mcp.NewFlowlintServer(mcp.FlowlintServerDeps{
		Validator: validator,
		Registry:  providers.Builtin(),
		Store:     st,
		Logger:    logger,
	})
	return srv.Serve(c.Context)
}

// collectFiles expands directories into their .yaml/.yml/.json entries.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch filepath.Ext(e.Name()) {
			case ".yaml", ".yml", ".json":
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	return files, nil
}

func printResult(file string, result *schema.ValidationResult, quiet bool) {
	if result.Valid() && quiet {
		return
	}
	if result.Valid() {
		fmt.Printf("%s: ok", file)
		if n := len(result.Warnings); n > 0 {
			fmt.Printf(" (%d warnings)", n)
		}
		fmt.Println()
	} else {
		fmt.Printf("%s: invalid\n", file)
	}
	for _, issue := range result.Errors {
		fmt.Printf("  error   %s: %s\n", issue.Path, issue.Message)
	}
	for _, issue := range result.Warnings {
		fmt.Printf("  warning %s: %s\n", issue.Path, issue.Message)
	}
}

func recordReport(ctx context.Context, st store.Store, tenant, file string, def *schema.Definition, result *schema.ValidationResult) error {
	now := time.Now().UTC()
	wfID := def.ID
	if wfID == "" {
		wfID = uuid.New().String()
	}

	wf := &store.Workflow{
		ID:         wfID,
		TenantID:   tenant,
		Source:     file,
		Definition: *def,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if c := def.Container(); c != nil {
		wf.Name = c.Name
	}
	if err := st.CreateWorkflow(ctx, wf); err != nil {
		return err
	}

	return st.SaveReport(ctx, &store.Report{
		ID:         uuid.New().String(),
		WorkflowID: wfID,
		TenantID:   tenant,
		Valid:      result.Valid(),
		Errors:     result.Errors,
		Warnings:   result.Warnings,
		CreatedAt:  now,
	})
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, err
	}
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}

var exprCommand = &cli.Command{
	Name:      "expr",
	Usage:     "Evaluate a workflow expression against sample data",
	ArgsUsage: "<expression>",
	Hidden:    true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "engine",
			Value: "expr",
			Usage: "Expression engine: cel, expr or jq",
		},
		&cli.StringFlag{
			Name:  "data",
			Value: "{}",
			Usage: "Sample data as a JSON object",
		},
	},
	Action: runExpr,
}

func runExpr(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one expression is required", 2)
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(c.String("data")), &data); err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}

	var eng expressions.Engine
	switch c.String("engine") {
	case "cel":
		var err error
		eng, err = expressions.NewCELEngine()
		if err != nil {
			return err
		}
	case "jq":
		eng = expressions.NewGoJQEngine()
	case "expr":
		eng = expressions.NewExprEngine()
	default:
		return cli.Exit("unknown engine: "+c.String("engine"), 2)
	}

	out, err := eng.Evaluate(c.Context, c.Args().First(), data)
	if err != nil {
		return err
	}
	rendered, err := json.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(rendered))
	return nil
}
