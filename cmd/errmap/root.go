package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevin07696/error-mapping/internal/adapters/logging"
	"github.com/kevin07696/error-mapping/internal/config"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1 // configuration, load or io failure
	exitSignal  = 2 // result classified as undefined, unavailable, unexpected or invalid input
)

// exitError carries a process exit code through cobra
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app is the state shared by the subcommands once flags are parsed
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	stdin  io.Reader
	stdout io.Writer
}

type rootFlags struct {
	source        string
	path          string
	format        string
	reasonPattern string
	logLevel      string
	environment   string
	table         string
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout}
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "errmap",
		Short: "Classify provider result codes with an error mapping rule set",
		Long: `errmap matches a provider (code, description, state) triple against an
ordered list of rules and prints the failure of the first matching rule.

Rules are read from RULES_SOURCE (file, aws, vault, postgres); flags override
the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, flags)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.source, "source", "", "rule source: file, aws, vault, postgres (env RULES_SOURCE)")
	pf.StringVarP(&flags.path, "rules", "r", "", "rule file path, secret id or vault path (env RULES_PATH)")
	pf.StringVar(&flags.format, "format", "", "rule format: json or yaml (env RULES_FORMAT)")
	pf.StringVar(&flags.reasonPattern, "reason-pattern", "", "failure reason template (env REASON_PATTERN)")
	pf.StringVar(&flags.table, "table", "", "PostgreSQL rules table (env RULES_TABLE)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	pf.StringVar(&flags.environment, "environment", "", "development or production (env ENVIRONMENT)")

	root.AddCommand(
		newClassifyCmd(a),
		newValidateCmd(a),
		newStreamCmd(a),
		newSchemaCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, flags *rootFlags) error {
	cfg := config.FromEnv()

	pf := cmd.Flags()
	override := func(name string, dst *string, value string) {
		if pf.Changed(name) {
			*dst = value
		}
	}
	override("source", &cfg.Rules.Source, flags.source)
	override("rules", &cfg.Rules.Path, flags.path)
	override("format", &cfg.Rules.Format, flags.format)
	override("reason-pattern", &cfg.Rules.ReasonPattern, flags.reasonPattern)
	override("table", &cfg.Database.Table, flags.table)
	override("log-level", &cfg.Logger.Level, flags.logLevel)
	override("environment", &cfg.Logger.Environment, flags.environment)

	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	logger, err := logging.New(cfg.Logger.Environment, cfg.Logger.Level)
	if err != nil {
		return &exitError{code: exitFailure, err: err}
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
