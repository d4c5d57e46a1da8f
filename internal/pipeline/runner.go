package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/config"
	"github.com/backmassage/flacr/internal/display"
	"github.com/backmassage/flacr/internal/logging"
	"github.com/backmassage/flacr/internal/rsgain"
)

// Sentinel errors returned by Run.
var (
	ErrInterrupted = errors.New("interrupted")
	ErrGainFailed  = errors.New("rsgain failed")
)

// RunResult is what the reporter needs after a run.
type RunResult struct {
	Kind     Kind
	Strategy string
	Outcomes  []JobOutcome // Arrival order.
	Failures  []JobOutcome
	Stats     RunStats
	Cancelled int  // Jobs cut short by an interrupt; not in Outcomes.
	Gain      bool // rsgain ran and succeeded.
}

// Deps are the side-effecting collaborators of a run. Zero values select
// the real implementations.
type Deps struct {
	Runner command.Runner
	FS     FileSystem
}

func (d Deps) withDefaults() Deps {
	if d.Runner == nil {
		d.Runner = command.ExecRunner{}
	}
	if d.FS == nil {
		d.FS = OSFileSystem{}
	}
	return d
}

// Run is the top-level batch entry point: gate -> discover -> dispatch ->
// aggregate -> optional rsgain. Per-file failures are in the result; the
// returned error is reserved for pre-flight failures, interrupts and a
// failed rsgain pass.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) (RunResult, error) {
	deps = deps.withDefaults()

	kind := KindReencode
	if cfg.TestOnly {
		kind = KindVerify
	}
	strategy := SelectStrategy(kind, cfg.Mode, cfg.Threads)
	result := RunResult{Kind: kind, Strategy: strategy.Name()}

	// Wide mode needs --threads; refuse before touching any file. A single
	// thread never passes the flag, so any encoder will do.
	if _, wide := strategy.(SequentialWide); wide && cfg.Threads > 1 {
		if err := CheckThreadSupport(ctx, deps.Runner, cfg.FlacTool); err != nil {
			return result, err
		}
	}

	files, err := discover(cfg, log)
	if err != nil {
		return result, fmt.Errorf("scan %s: %w", cfg.Directory, err)
	}
	log.Info("Found %d flac files in %s", len(files), cfg.Directory)
	log.Debug("Strategy: %s, threads: %d, job: %s", strategy.Name(), cfg.Threads, kind)

	exec := &Executor{
		Runner:     deps.Runner,
		FS:         deps.FS,
		Tool:       cfg.FlacTool,
		Timeout:    cfg.Timeout,
		TempSuffix: cfg.TempSuffix,
	}
	agg := NewAggregator(len(files))

	label := "encoding"
	if kind == KindVerify {
		label = "verifying"
	}
	bar := display.NewProgress(os.Stderr, label, int64(len(files)), cfg.Progress)

	var cancelled atomic.Int32
	strategy.Dispatch(ctx, files, exec.Job(kind), func(o JobOutcome) {
		if o.Cancelled {
			cancelled.Add(1)
			log.Debug("cancelled: %s", filepath.Base(o.Path))
			return
		}
		count, errs := agg.Add(o)
		bar.Increment(errs)
		if o.OK() {
			log.Debug("[%d/%d] ok: %s", count, len(files), filepath.Base(o.Path))
		} else {
			log.Debug("[%d/%d] failed: %s", count, len(files), filepath.Base(o.Path))
		}
	})
	bar.Finish()

	result.Outcomes = agg.Outcomes()
	result.Failures = agg.Failures()
	result.Stats = agg.Stats()
	result.Cancelled = int(cancelled.Load())

	if ctx.Err() != nil {
		return result, ErrInterrupted
	}

	if cfg.Rsgain {
		ok, err := runGain(ctx, cfg, log, deps.Runner, kind, result.Stats)
		result.Gain = ok
		if err != nil {
			return result, err
		}
	}
	return result, nil
}

// discover runs the scan with an optional "searching" bar whose initial
// total is the operator's guess.
func discover(cfg *config.Config, log *logging.Logger) ([]CandidateFile, error) {
	bar := display.NewProgress(os.Stderr, "searching", int64(cfg.GuessCount), cfg.Progress)
	files, err := Discover(cfg.Directory, DiscoverOptions{
		SingleLevel: cfg.SingleFolder,
		OnVisit:     func() { bar.Increment(0) },
		OnSkip: func(path string, err error) {
			log.Debug("Skipping unreadable %s: %v", path, err)
		},
	})
	bar.Finish()
	return files, err
}

// runGain runs rsgain once for the whole directory, but only after a
// re-encode pass that finished without a single error.
func runGain(ctx context.Context, cfg *config.Config, log *logging.Logger, runner command.Runner, kind Kind, stats RunStats) (bool, error) {
	if kind != KindReencode {
		log.Warn("Skipping rsgain: test mode does not modify files")
		return false, nil
	}
	if stats.Errors > 0 {
		log.Warn("Skipping rsgain: %d file(s) failed to re-encode", stats.Errors)
		return false, nil
	}

	cmd := rsgain.EasyCommand(cfg.RsgainTool, cfg.Threads, cfg.Directory)
	log.Info("Calculating replaygain: %s", cmd)
	res := runner.Run(ctx, cmd)
	if ctx.Err() != nil {
		return false, ErrInterrupted
	}
	if res.Err != nil || res.ExitCode != 0 {
		return false, fmt.Errorf("%w: %s", ErrGainFailed, res.Diagnostic())
	}
	return true, nil
}
