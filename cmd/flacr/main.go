// Command flacr re-encodes or verifies every .flac file under a directory.
// It parses flags, validates config, and either runs the system check
// (--check) or the batch pipeline followed by the report.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/flacr/internal/check"
	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/config"
	"github.com/backmassage/flacr/internal/display"
	"github.com/backmassage/flacr/internal/logging"
	"github.com/backmassage/flacr/internal/pipeline"
	"github.com/backmassage/flacr/internal/report"
)

// version and commit are set at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

// Process exit codes.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

// exitError carries a process exit code out of RunE.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	cfg := config.DefaultConfig()
	root := newRootCmd(&cfg)

	if err := root.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "flacr: %v\n", err)
		os.Exit(exitFailure)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var negated *config.NegatedFlags
	cmd := &cobra.Command{
		Use:   "flacr [flags]",
		Short: "Re-encode or verify a FLAC library in parallel",
		Long: `flacr recursively finds .flac files and re-encodes each one in place with
flac --best (or only decode-tests them with --test), optionally followed by a
ReplayGain pass with rsgain.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.ApplyNegatedFlags(cfg, negated)
			return run(cmd.Context(), cfg)
		},
	}
	negated = config.BindFlags(cmd.Flags(), cfg)
	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	// 1. Validate config; the directory must exist unless only checking.
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.NewLogger(cfg)
	display.PrintBanner(os.Stdout)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. System check mode: report tools and exit.
	if cfg.CheckOnly {
		if !check.RunCheck(ctx, cfg, command.ExecRunner{}, log) {
			return exitError{exitFailure}
		}
		return nil
	}

	// 3. Required tools must be on PATH before any file is touched.
	if err := check.CheckDeps(cfg); err != nil {
		log.Error("%v", err)
		tool := cfg.FlacTool
		if errors.Is(err, check.ErrRsgainNotFound) {
			tool = cfg.RsgainTool
		}
		log.Info("%s", check.RemediationHint(tool))
		return exitError{exitFailure}
	}

	log.Info("=== flacr v%s ===", version)
	log.Info("Directory: %s", cfg.Directory)
	if cfg.TestOnly {
		log.Warn("TEST MODE: files are only decoded, never modified")
	}

	// 4. Run the pipeline, then report whatever was collected.
	res, err := pipeline.Run(ctx, cfg, log, pipeline.Deps{})
	if err != nil && len(res.Outcomes) == 0 && !errors.Is(err, pipeline.ErrInterrupted) {
		log.Error("%v", err)
		return exitError{exitFailure}
	}
	report.New(cfg, log).Report(res)

	switch {
	case errors.Is(err, pipeline.ErrInterrupted):
		log.Warn("Interrupted; %d file(s) were processed, %d stopped mid-run and left untouched",
			res.Stats.Total, res.Cancelled)
		return exitError{exitInterrupted}
	case err != nil:
		log.Error("%v", err)
		return exitError{exitFailure}
	case res.Stats.Errors > 0:
		return exitError{exitFailure}
	}
	return nil
}
