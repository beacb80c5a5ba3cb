// Package main is adqltap's command-line entry point, exposing the ADQL
// parser, checker, and translator as standalone subcommands plus a serve
// command that runs the UWS job runtime without an HTTP front end (the
// TAP servlet surface itself lives outside this module).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"adqltap"
	"adqltap/catalog"
	"adqltap/checker"
	"adqltap/config"
	"adqltap/dialect"
	"adqltap/dialect/postgres"
	"adqltap/translate"
	"adqltap/uws"
	"adqltap/uws/backup"
	"adqltap/uws/destruction"
	"adqltap/uws/exec"
)

type parseFlags struct {
	query string
}

type checkFlags struct {
	query       string
	catalogFile string
}

type translateFlags struct {
	query       string
	catalogFile string
	dialectName string
}

type serveFlags struct {
	configFile  string
	catalogFile string
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "tapd",
		Short: "ADQL parser, checker, translator, and UWS job runtime",
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	flags := &parseFlags{}
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an ADQL query and print its canonical re-rendering",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runParse(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "ADQL query text (required)")
	return cmd
}

func runParse(flags *parseFlags) error {
	if flags.query == "" {
		return fmt.Errorf("--query is required")
	}
	q, errors := adqltap.Parse(flags.query)
	if len(errors) != 0 {
		for _, e := range errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("%d parse error(s)", len(errors))
	}
	fmt.Println(adqltap.Render(q))
	return nil
}

func checkCmd() *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Parse and semantically check an ADQL query against a catalog",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCheck(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "ADQL query text (required)")
	cmd.Flags().StringVarP(&flags.catalogFile, "catalog", "c", "", "Path to a JSON catalog definition (required)")
	return cmd
}

func runCheck(flags *checkFlags) error {
	checked, _, err := parseAndCheck(flags.query, flags.catalogFile)
	if err != nil {
		return err
	}
	fmt.Println("ok:", checked.ResultColumnNames())
	return nil
}

func translateCmd() *cobra.Command {
	flags := &translateFlags{}
	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Check an ADQL query and translate it to backend SQL",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTranslate(flags)
		},
	}
	cmd.Flags().StringVarP(&flags.query, "query", "q", "", "ADQL query text (required)")
	cmd.Flags().StringVarP(&flags.catalogFile, "catalog", "c", "", "Path to a JSON catalog definition (required)")
	cmd.Flags().StringVar(&flags.dialectName, "dialect", "postgres", "Target SQL dialect (postgres)")
	return cmd
}

func runTranslate(flags *translateFlags) error {
	checked, cfg, err := parseAndCheckWithDefaultConfig(flags.query, flags.catalogFile)
	if err != nil {
		return err
	}

	d, err := resolveDialect(flags.dialectName)
	if err != nil {
		return err
	}

	result, err := translate.Translate(checked, translate.Options{Dialect: d, RowCap: cfg.RowCap})
	if err != nil {
		return fmt.Errorf("translating query: %w", err)
	}
	fmt.Println(result.SQL)
	if len(result.Bindings) > 0 {
		fmt.Println("bindings:", result.Bindings)
	}
	return nil
}

func resolveDialect(name string) (dialect.Dialect, error) {
	switch name {
	case "postgres":
		return postgres.New(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

func parseAndCheck(query, catalogFile string) (*checker.CheckedQuery, *catalog.Catalog, error) {
	if query == "" {
		return nil, nil, fmt.Errorf("--query is required")
	}
	if catalogFile == "" {
		return nil, nil, fmt.Errorf("--catalog is required")
	}
	cat, err := catalog.LoadJSON(catalogFile)
	if err != nil {
		return nil, nil, err
	}
	q, parseErrs := adqltap.Parse(query)
	if len(parseErrs) != 0 {
		for _, e := range parseErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, nil, fmt.Errorf("%d parse error(s)", len(parseErrs))
	}
	checked, checkErrs := checker.New(cat).Check(q)
	if len(checkErrs) != 0 {
		for _, e := range checkErrs {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, nil, fmt.Errorf("%d check error(s)", len(checkErrs))
	}
	return checked, cat, nil
}

func parseAndCheckWithDefaultConfig(query, catalogFile string) (*checker.CheckedQuery, config.Config, error) {
	checked, _, err := parseAndCheck(query, catalogFile)
	if err != nil {
		return nil, config.Config{}, err
	}
	return checked, config.Default(), nil
}

func serveCmd() *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the UWS job runtime (execution, destruction, backup) with no HTTP front end",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}
	cmd.Flags().StringVar(&flags.configFile, "config", "", "Path to a TOML service-limits file (optional, defaults applied otherwise)")
	cmd.Flags().StringVarP(&flags.catalogFile, "catalog", "c", "", "Path to a JSON catalog definition (required)")
	return cmd
}

func runServe(flags *serveFlags) error {
	if flags.catalogFile == "" {
		return fmt.Errorf("--catalog is required")
	}
	if _, err := catalog.LoadJSON(flags.catalogFile); err != nil {
		return err
	}

	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	list := uws.NewJobList("async")

	// The execution manager is wired here so the job runtime is complete
	// end to end; nothing in this module submits jobs to it, since job
	// submission is driven by the TAP servlet surface this module omits.
	execMgr := exec.NewManager(list, cfg.MaxRunning, func(ctx context.Context, job *uws.Job) error {
		<-ctx.Done()
		return ctx.Err()
	}, log)

	destMgr := destruction.NewManager(map[string]*uws.JobList{"async": list}, noopFileManager{}, log)
	if err := destMgr.StartPeriodicTick(cfg.DestructionSweepCron); err != nil {
		return fmt.Errorf("starting destruction sweep: %w", err)
	}
	defer destMgr.Stop()

	backupMgr := backup.NewManager(map[string]*uws.JobList{"async": list}, noopBackupFileManager{}, log, false)
	if cfg.Backup.Mode == "interval" {
		if err := backupMgr.StartInterval(fmt.Sprintf("@every %s", cfg.Backup.Interval)); err != nil {
			return fmt.Errorf("starting interval backup: %w", err)
		}
		defer backupMgr.Stop()
	}

	log.Info().Int("max_running", cfg.MaxRunning).Int("running", execMgr.RunningCount()).Msg("tapd job runtime started")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()
	log.Info().Msg("tapd job runtime shutting down")
	return nil
}

type noopFileManager struct{}

func (noopFileManager) DeleteJobFiles(jobID string) {}

type noopBackupFileManager struct{}

func (noopBackupFileManager) OpenBackup(scope string) (backup.AtomicWriter, error) {
	return discardWriter{}, nil
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriter) Commit() error               { return nil }
func (discardWriter) Abort() error                { return nil }
