package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"aptoslend/config"
	"aptoslend/lending/configurator"
	"aptoslend/storage"
)

const envJournalDir = "AAVE_JOURNAL_DIR"

var openJournalDB = storage.OpenDatabase

type reportView struct {
	RunID     string `json:"run_id"`
	Submitted int    `json:"submitted"`
	Skipped   int    `json:"skipped"`
	Error     string `json:"error,omitempty"`
}

// runSetupProtocolCommand applies a YAML plan with the configuration
// orchestrator. Every submission is journaled when a journal directory is
// set so a partial run can be inspected with the journal command.
func runSetupProtocolCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("setup-protocol", "--plan plan.yaml [flags]", stderr)
	var planPath, journalDir, adminKey, oracleKey, tokensKey string
	fs.StringVar(&planPath, "plan", "", "reserve plan (YAML)")
	fs.StringVar(&journalDir, "journal", os.Getenv(envJournalDir), "journal store: LevelDB directory, sqlite://file or postgres:// URL")
	fs.StringVar(&adminKey, "pool-admin-key", "", "pool admin private key (defaults to AAVE_POOL_ADMIN_PRIVATE_KEY)")
	fs.StringVar(&oracleKey, "oracle-key", "", "oracle admin private key (defaults to AAVE_ORACLE_PRIVATE_KEY)")
	fs.StringVar(&tokensKey, "tokens-key", "", "token factory owner private key (defaults to AAVE_UNDERLYING_TOKENS_PRIVATE_KEY)")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(planPath) == "" {
		return printError(stderr, errors.New("--plan is required"))
	}
	plan, err := configurator.LoadPlan(planPath)
	if err != nil {
		return printError(stderr, err)
	}

	// All three keys resolve before the first remote call.
	admin, err := resolveAccount(config.RolePoolAdmin, adminKey)
	if err != nil {
		return printError(stderr, err)
	}
	oracle, err := resolveAccount(config.RoleOracle, oracleKey)
	if err != nil {
		return printError(stderr, err)
	}
	tokens, err := resolveAccount(config.RoleUnderlyingTokens, tokensKey)
	if err != nil {
		return printError(stderr, err)
	}

	env, err := loadEnvironment()
	if err != nil {
		return printError(stderr, err)
	}
	if err := env.cfg.RequireAddresses(config.DomainPool, config.DomainConfig, config.DomainData,
		config.DomainRate, config.DomainOracle, config.DomainTokens); err != nil {
		return printError(stderr, err)
	}

	opts := []configurator.Option{configurator.WithLogger(slog.Default().With(slog.String("env", env.cfg.Network)))}
	if !plan.Treasury.IsZero() {
		opts = append(opts, configurator.WithTreasury(plan.Treasury))
	}
	if dir := strings.TrimSpace(journalDir); dir != "" {
		db, err := openJournalDB(dir)
		if err != nil {
			return printError(stderr, fmt.Errorf("open journal: %w", err))
		}
		defer db.Close()
		opts = append(opts, configurator.WithRecorder(storage.NewJournal(db)))
	}

	orchestrator := configurator.New(env.caller, env.registry(), configurator.Signers{
		PoolAdmin: admin,
		Oracle:    oracle,
		Tokens:    tokens,
	}, opts...)
	report, err := orchestrator.SetupProtocol(rootCtx, plan.Reserves, plan.EModes)
	if report != nil {
		view := reportView{RunID: report.RunID, Submitted: report.Submitted, Skipped: report.Skipped}
		if err != nil {
			view.Error = err.Error()
		}
		writeJSON(stdout, view)
	}
	if err != nil {
		return printError(stderr, err)
	}
	return 0
}

type runView struct {
	RunID   string    `json:"run_id"`
	Started time.Time `json:"started"`
	Entries int       `json:"entries"`
}

// runJournalCommand lists recorded runs, or the transactions of one run.
func runJournalCommand(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("journal", "--journal STORE [--run ID [--export file.parquet]]", stderr)
	var dir, runID, export string
	fs.StringVar(&dir, "journal", os.Getenv(envJournalDir), "journal store written by setup-protocol")
	fs.StringVar(&runID, "run", "", "print the entries of this run")
	fs.StringVar(&export, "export", "", "with --run, also write the entries to this parquet file")
	var asTable bool
	fs.BoolVar(&asTable, "table", false, "print a table instead of JSON")
	if !parseFlags(fs, args, stderr) {
		return 1
	}
	if strings.TrimSpace(dir) == "" {
		return printError(stderr, fmt.Errorf("--journal is required (or set %s)", envJournalDir))
	}
	db, err := openJournalDB(dir)
	if err != nil {
		return printError(stderr, fmt.Errorf("open journal: %w", err))
	}
	defer db.Close()
	journal := storage.NewJournal(db)

	if runID = strings.TrimSpace(runID); runID != "" {
		entries, err := journal.Entries(runID)
		if err != nil {
			return printError(stderr, err)
		}
		if len(entries) == 0 {
			return printError(stderr, fmt.Errorf("run %s: %w", runID, storage.ErrNotFound))
		}
		if export = strings.TrimSpace(export); export != "" {
			if err := storage.ExportParquet(export, entries); err != nil {
				return printError(stderr, err)
			}
		}
		if asTable {
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{strconv.FormatUint(e.Seq, 10), e.Step, e.Symbol, e.Function, e.Hash, strconv.FormatBool(e.Success)})
			}
			return writeTable(stdout, []string{"Seq", "Step", "Symbol", "Function", "Hash", "Success"}, rows)
		}
		return writeJSON(stdout, entries)
	}
	if strings.TrimSpace(export) != "" {
		return printError(stderr, errors.New("--export requires --run"))
	}

	runs, err := journal.Runs()
	if err != nil {
		return printError(stderr, err)
	}
	if asTable {
		rows := make([][]string, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, []string{run.RunID, run.Started.Format(time.RFC3339), strconv.Itoa(run.Entries)})
		}
		return writeTable(stdout, []string{"Run", "Started", "Entries"}, rows)
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{RunID: run.RunID, Started: run.Started, Entries: run.Entries})
	}
	return writeJSON(stdout, views)
}
