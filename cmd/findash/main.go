package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/findash/internal/config"
	"github.com/rumor-ml/commons.systems/findash/internal/dashboard"
	"github.com/rumor-ml/commons.systems/findash/internal/domain"
	"github.com/rumor-ml/commons.systems/findash/internal/logger"
	"github.com/rumor-ml/commons.systems/findash/internal/output"
	"github.com/rumor-ml/commons.systems/findash/internal/quotes"
	"github.com/rumor-ml/commons.systems/findash/internal/registry"
	"github.com/rumor-ml/commons.systems/findash/internal/report"
	"github.com/rumor-ml/commons.systems/findash/internal/schema"
	"github.com/rumor-ml/commons.systems/findash/internal/settings"
	"github.com/rumor-ml/commons.systems/findash/internal/ui"
	"github.com/rumor-ml/commons.systems/findash/internal/validate"
)

const (
	version = "0.1.0"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usageText = `findash - personal finance dashboard from bank exports

Usage:
  findash <command> [flags]

Commands:
  dashboard   Greeting, card rollups, top transactions, rates and quotes
  spending    Monthly spend of one category over the last three months
  cashback    Cashback per category for one month
  validate    Check a ledger for problems the reports would trip over
  version     Show version

Run 'findash <command> -h' for command flags.

Examples:
  # Dashboard for the month up to 20 May 2020
  findash dashboard -date 20.05.2020

  # Supermarket spending as of 31 March 2024, from two overlapping exports
  findash spending -category Супермаркеты -date 31.03.2024 -input jan.csv -input mar.xlsx

  # Cashback for January 2025 written to a file
  findash cashback -year 2025 -month 1 -output cashback.json

`

func main() {
	// Load .env file for local development (ignore errors when absent)
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// env is what every command needs: configuration, a logger and the
// writers to report to.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	decimal.MarshalJSONWithoutQuotes = true
	ui.SetOutput(stderr)

	if len(args) == 0 {
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}

	command, rest := args[0], args[1:]
	switch command {
	case "version", "-version", "--version":
		fmt.Fprintf(stdout, "findash version %s\n", version)
		return exitOK
	case "help", "-h", "-help", "--help":
		fmt.Fprint(stdout, usageText)
		return exitOK
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)

	log := logger.WithFields(logger.New(stderr, level), map[string]interface{}{
		"run_id":  uuid.NewString(),
		"command": command,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	e := &env{cfg: cfg, log: log, stdout: stdout, stderr: stderr}

	var err error
	switch command {
	case "dashboard":
		err = e.dashboard(ctx, rest)
	case "spending":
		err = e.spending(ctx, rest)
	case "cashback":
		err = e.cashback(ctx, rest)
	case "validate":
		err = e.validate(ctx, rest)
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", command)
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	default:
		ui.Error(err.Error())
		return exitError
	}
}

var errUsage = errors.New("usage error")

// inputFlags collects repeated -input values
type inputFlags []string

func (f *inputFlags) String() string {
	return strings.Join(*f, ",")
}

func (f *inputFlags) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("input path cannot be empty")
	}
	*f = append(*f, value)
	return nil
}

// commonFlags are shared by every report command
type commonFlags struct {
	inputs  inputFlags
	columns string
	output  string
	compact bool
}

func (e *env) newFlagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Var(&c.inputs, "input", "Ledger file or directory; repeatable (default $FINDASH_DATA_FILE)")
	fs.StringVar(&c.columns, "columns", e.cfg.ColumnsFile, "Column alias YAML overriding the built-in headers")
	fs.StringVar(&c.output, "output", "", "Output JSON file (default: stdout)")
	fs.BoolVar(&c.compact, "compact", false, "Write single-line JSON")
	return fs
}

func (e *env) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(e.stderr, "Error: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return errUsage
	}
	return nil
}

func (e *env) paths(c *commonFlags) []string {
	if len(c.inputs) > 0 {
		return c.inputs
	}
	return []string{e.cfg.DataFile}
}

func (e *env) newLoader(c *commonFlags) (*registry.Loader, error) {
	var (
		s   *schema.Schema
		err error
	)
	if c.columns != "" {
		s, err = schema.LoadFromFile(c.columns)
	} else {
		s, err = schema.LoadEmbedded()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load column schema: %w", err)
	}

	reg, err := registry.New(s)
	if err != nil {
		return nil, fmt.Errorf("failed to create parser registry: %w", err)
	}
	return registry.NewLoader(reg, e.log), nil
}

// load reads the ledgers the tolerant way: failures leave an empty dataset
func (e *env) load(ctx context.Context, c *commonFlags) (*domain.Dataset, error) {
	loader, err := e.newLoader(c)
	if err != nil {
		return nil, err
	}
	ds := loader.Load(ctx, e.paths(c)...)
	if ds.IsEmpty() {
		ui.Warning("No transactions loaded; sections depending on them will be empty")
	} else {
		ui.Success(fmt.Sprintf("Loaded %d transactions", ds.Len()))
	}
	return ds, nil
}

func (e *env) write(payload any, c *commonFlags) error {
	opts := output.WriteOptions{FilePath: c.output, Compact: c.compact}
	if opts.FilePath == "" {
		if err := output.WriteReport(payload, e.stdout, opts.Compact); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := output.WriteReportToFile(payload, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	ui.Success(fmt.Sprintf("Output written to %s", c.output))
	return nil
}

func (e *env) newAssembler(ctx context.Context) *dashboard.Assembler {
	log := logger.FromContext(ctx)
	rates := quotes.NewCBRClient(
		quotes.WithBaseURL(e.cfg.CBRDailyURL),
		quotes.WithTimeout(e.cfg.HTTPTimeout),
		quotes.WithLogger(log),
	)
	prices := quotes.NewAlphaVantageClient(
		quotes.WithBaseURL(e.cfg.AlphaVantageURL),
		quotes.WithTimeout(e.cfg.HTTPTimeout),
		quotes.WithAPIKey(e.cfg.AlphaVantageAPIKey),
		quotes.WithLogger(log),
	)
	return dashboard.New(report.New(log), rates, prices, log)
}

func (e *env) dashboard(ctx context.Context, args []string) error {
	var c commonFlags
	fs := e.newFlagSet("dashboard", &c)
	date := fs.String("date", time.Now().Format("02.01.2006"), "Reference date (DD.MM.YYYY); the window starts on the 1st of its month")
	settingsFile := fs.String("settings", e.cfg.SettingsFile, "User settings file (JSON or YAML)")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	ui.Header("Financial Dashboard")
	ui.Step(1, 3, "Loading transactions")
	ds, err := e.load(ctx, &c)
	if err != nil {
		return err
	}

	ui.Step(2, 3, "Loading user settings")
	userSettings := settings.Load(*settingsFile, logger.FromContext(ctx))
	ui.Info(fmt.Sprintf("%d currencies, %d stocks", len(userSettings.UserCurrencies), len(userSettings.UserStocks)))

	ui.Step(3, 3, "Assembling dashboard")
	r := e.newAssembler(ctx).Build(ctx, ds, dashboard.Request{Date: *date, Settings: userSettings})
	return e.write(r, &c)
}

func (e *env) spending(ctx context.Context, args []string) error {
	var c commonFlags
	fs := e.newFlagSet("spending", &c)
	category := fs.String("category", "", "Category to report, matched exactly (required)")
	date := fs.String("date", "", "As-of date (DD.MM.YYYY); default today")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if *category == "" {
		fmt.Fprintf(e.stderr, "Error: -category flag is required\n\n")
		fs.Usage()
		return errUsage
	}

	ui.Header("Category Spending")
	ui.Step(1, 2, "Loading transactions")
	ds, err := e.load(ctx, &c)
	if err != nil {
		return err
	}

	ui.Step(2, 2, fmt.Sprintf("Summing %s by month", *category))
	r := e.newAssembler(ctx).Spending(ds, *category, *date)
	if len(r.Months) == 0 {
		ui.Warning(fmt.Sprintf("No spending found for %s", *category))
	}
	return e.write(r, &c)
}

func (e *env) cashback(ctx context.Context, args []string) error {
	var c commonFlags
	fs := e.newFlagSet("cashback", &c)
	now := time.Now()
	year := fs.Int("year", now.Year(), "Year to report")
	month := fs.Int("month", int(now.Month()), "Month to report (1-12)")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if *month < 1 || *month > 12 {
		fmt.Fprintf(e.stderr, "Error: -month must be between 1 and 12, got %d\n\n", *month)
		fs.Usage()
		return errUsage
	}

	ui.Header("Cashback by Category")
	ui.Step(1, 2, "Loading transactions")
	ds, err := e.load(ctx, &c)
	if err != nil {
		return err
	}

	ui.Step(2, 2, fmt.Sprintf("Analyzing %04d-%02d", *year, *month))
	r := e.newAssembler(ctx).Cashback(ds, *year, *month)
	if len(r.Categories) == 0 {
		ui.Warning(fmt.Sprintf("No cashback data for %04d-%02d", *year, *month))
	}
	return e.write(r, &c)
}

func (e *env) validate(ctx context.Context, args []string) error {
	var c commonFlags
	fs := e.newFlagSet("validate", &c)
	verbose := fs.Bool("verbose", false, "Show every issue instead of the first 5")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	ui.Header("Validating Ledger")
	ui.Step(1, 2, "Loading transactions")
	loader, err := e.newLoader(&c)
	if err != nil {
		return err
	}
	ds, stats, err := loader.LoadStrict(ctx, e.paths(&c)...)
	if err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Loaded %d transactions from %d files (%d duplicates skipped)", ds.Len(), stats.Files, stats.Duplicates))

	ui.Step(2, 2, "Checking rows")
	result := validate.ValidateDataset(ds)

	limit := 5
	if *verbose {
		limit = len(result.Errors) + len(result.Warnings)
	}
	for i, w := range result.Warnings {
		if i >= limit {
			ui.Warning(fmt.Sprintf("... and %d more warnings", len(result.Warnings)-limit))
			break
		}
		ui.Warning(w.String())
	}
	for i, ve := range result.Errors {
		if i >= limit {
			ui.Error(fmt.Sprintf("... and %d more errors", len(result.Errors)-limit))
			break
		}
		ui.Error(ve.String())
	}

	if !result.Valid() {
		return fmt.Errorf("validation failed with %d errors", len(result.Errors))
	}
	if len(result.Warnings) > 0 {
		ui.Warning(fmt.Sprintf("Validation produced %d warnings", len(result.Warnings)))
	} else {
		ui.Success("Validation passed")
	}
	return nil
}
