package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/flacr/internal/config"
)

// Strategy processes every file with job and hands each outcome to emit as
// soon as it exists. emit may be called from several goroutines at once.
// Once ctx is done no further jobs are started; files never started produce
// no outcome.
type Strategy interface {
	Dispatch(ctx context.Context, files []CandidateFile, job JobFunc, emit func(JobOutcome))
	Name() string
}

// FanOut runs up to Workers single-threaded jobs at the same time.
// Completion order is unconstrained.
type FanOut struct {
	Workers int
}

func (s FanOut) Name() string { return "fan-out" }

func (s FanOut) Dispatch(ctx context.Context, files []CandidateFile, job JobFunc, emit func(JobOutcome)) {
	var g errgroup.Group
	g.SetLimit(max(1, s.Workers))
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		// Go blocks while all workers are busy; the job re-checks ctx
		// because cancellation may land during that wait.
		f := f
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			emit(job(ctx, f, 1))
			return nil
		})
	}
	_ = g.Wait()
}

// SequentialWide runs one job at a time in discovery order and lets the
// encoder use Threads threads internally.
type SequentialWide struct {
	Threads int
}

func (s SequentialWide) Name() string { return "sequential-wide" }

func (s SequentialWide) Dispatch(ctx context.Context, files []CandidateFile, job JobFunc, emit func(JobOutcome)) {
	for _, f := range files {
		if ctx.Err() != nil {
			return
		}
		emit(job(ctx, f, s.Threads))
	}
}

// SelectStrategy picks the strategy for a run. Verify jobs always fan out:
// a decode test has no internal parallelism to exploit.
func SelectStrategy(kind Kind, mode config.Mode, threads int) Strategy {
	if kind == KindReencode && mode == config.ModeWide {
		return SequentialWide{Threads: threads}
	}
	return FanOut{Workers: threads}
}
