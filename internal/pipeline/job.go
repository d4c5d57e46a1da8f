package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/flac"
)

// Kind selects the unit of work for a whole run; kinds are never mixed.
type Kind int

const (
	KindReencode Kind = iota // Re-encode and replace in place.
	KindVerify               // Decode test only; no file is touched.
)

func (k Kind) String() string {
	if k == KindVerify {
		return "verify"
	}
	return "reencode"
}

// JobOutcome is the result record for one processed file. An empty
// Diagnostic means success. SizeAfter equals SizeBefore for every failed,
// cancelled or verify-only outcome.
type JobOutcome struct {
	Path          string
	Diagnostic    string
	SizeBefore    int64
	SizeAfter     int64
	ManualReplace bool   // Re-encoded copy kept at TempPath; original was in use.
	TempPath      string // Set only when ManualReplace is true.
	Cancelled     bool   // Stopped by an interrupt; says nothing about the file.
	Elapsed       time.Duration
}

// OK reports whether the job succeeded.
func (o JobOutcome) OK() bool { return o.Diagnostic == "" }

// JobFunc runs one file with the given encoder thread hint.
type JobFunc func(ctx context.Context, f CandidateFile, threads int) JobOutcome

// Executor runs verify and re-encode jobs. It holds no per-job state, so a
// single Executor is shared by all workers.
type Executor struct {
	Runner     command.Runner
	FS         FileSystem
	Tool       string        // flac binary.
	Timeout    time.Duration // Per invocation.
	TempSuffix string        // Appended to the original path for the encoder output.
}

// Job returns the JobFunc for kind.
func (e *Executor) Job(kind Kind) JobFunc {
	if kind == KindVerify {
		return func(ctx context.Context, f CandidateFile, _ int) JobOutcome {
			return e.Verify(ctx, f)
		}
	}
	return e.Reencode
}

// Verify runs the decode test. Success needs a zero exit and no diagnostic
// text; a timeout is a failure like any other.
func (e *Executor) Verify(ctx context.Context, f CandidateFile) JobOutcome {
	res := e.Runner.Run(ctx, flac.VerifyCommand(e.Tool, f.Path, e.Timeout))
	out := JobOutcome{
		Path:       f.Path,
		SizeBefore: f.Size,
		SizeAfter:  f.Size,
		Elapsed:    res.Elapsed,
	}
	if !res.OK() {
		if ctx.Err() != nil {
			out.Cancelled = true
			return out
		}
		out.Diagnostic = res.Diagnostic()
	}
	return out
}

// Reencode encodes f into a sibling temp file and, on success, replaces the
// original with it. The original is never observed half-written: the encoder
// only ever writes the temp file.
func (e *Executor) Reencode(ctx context.Context, f CandidateFile, threads int) JobOutcome {
	out := JobOutcome{Path: f.Path, SizeBefore: f.Size, SizeAfter: f.Size}

	info, err := e.FS.Stat(f.Path)
	if err != nil {
		out.Diagnostic = fmt.Sprintf("stat original: %v", err)
		return out
	}
	out.SizeBefore, out.SizeAfter = info.Size(), info.Size()

	tmp := f.Path + e.TempSuffix
	// A leftover from an aborted run would make flac refuse to write.
	e.removeTemp(tmp)

	res := e.Runner.Run(ctx, flac.EncodeCommand(e.Tool, f.Path, tmp, threads, e.Timeout))
	out.Elapsed = res.Elapsed
	if !res.OK() {
		e.removeTemp(tmp)
		if ctx.Err() != nil {
			out.Cancelled = true
			return out
		}
		out.Diagnostic = res.Diagnostic()
		return out
	}

	tmpInfo, err := e.FS.Stat(tmp)
	if err != nil {
		out.Diagnostic = fmt.Sprintf("encoder reported success but wrote no output: %v", err)
		return out
	}

	if err := replaceFile(e.FS, tmp, f.Path); err != nil {
		if IsLocked(err) {
			out.ManualReplace = true
			out.TempPath = tmp
			out.Diagnostic = fmt.Sprintf("manual replacement required: original is in use by another process; re-encoded copy kept at %s", tmp)
			return out
		}
		e.removeTemp(tmp)
		out.Diagnostic = fmt.Sprintf("replace original: %v", err)
		return out
	}

	out.SizeAfter = tmpInfo.Size()
	return out
}

func (e *Executor) removeTemp(tmp string) {
	if _, err := e.FS.Stat(tmp); err == nil {
		_ = e.FS.Remove(tmp)
	}
}
