package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/flacr/internal/command"
)

// lockedFS refuses to rename onto a file, like Windows does while another
// process holds it open.
type lockedFS struct {
	OSFileSystem
	err error
}

func (l lockedFS) Rename(oldpath, newpath string) error {
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: l.err}
}

// stubRunner always returns res.
type stubRunner struct{ res command.Result }

func (s stubRunner) Run(context.Context, command.Command) command.Result { return s.res }

func TestVerify_Success(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ok.flac", 64)
	e := newExecutor(newFakeFlac(), nil)

	o := e.Verify(context.Background(), CandidateFile{Path: path, Size: 64})
	if !o.OK() {
		t.Fatalf("Diagnostic = %q, want success", o.Diagnostic)
	}
	if o.SizeBefore != 64 || o.SizeAfter != 64 {
		t.Errorf("sizes = %d/%d, want 64/64", o.SizeBefore, o.SizeAfter)
	}
}

func TestVerify_FailureKeepsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.flac", 64)
	ff := newFakeFlac()
	ff.fail["bad.flac"] = "bad.flac: ERROR while decoding data"
	e := newExecutor(ff, nil)

	o := e.Verify(context.Background(), CandidateFile{Path: path, Size: 64})
	if !strings.Contains(o.Diagnostic, "ERROR while decoding") {
		t.Errorf("Diagnostic = %q", o.Diagnostic)
	}
	if o.SizeBefore != o.SizeAfter {
		t.Errorf("verify changed sizes: %d -> %d", o.SizeBefore, o.SizeAfter)
	}
	if fileSize(t, path) != 64 {
		t.Error("verify modified the file")
	}
}

func TestVerify_WarningTextIsFailure(t *testing.T) {
	e := newExecutor(stubRunner{command.Result{Stderr: "WARNING: MD5 signature unset"}}, nil)
	o := e.Verify(context.Background(), CandidateFile{Path: "/m/a.flac", Size: 1})
	if o.OK() {
		t.Error("diagnostic text with zero exit must be a failure")
	}
}

func TestVerify_Timeout(t *testing.T) {
	e := newExecutor(stubRunner{command.Result{
		ExitCode: -1, TimedOut: true, Elapsed: 5 * time.Minute, Err: command.ErrTimeout,
	}}, nil)
	o := e.Verify(context.Background(), CandidateFile{Path: "/m/a.flac", Size: 1})
	if !strings.Contains(o.Diagnostic, "timed out") {
		t.Errorf("Diagnostic = %q, want timeout", o.Diagnostic)
	}
}

func TestReencode_ReplacesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", 100)
	e := newExecutor(newFakeFlac(), nil)

	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 100}, 1)
	if !o.OK() {
		t.Fatalf("Diagnostic = %q", o.Diagnostic)
	}
	if exists(path + ".tmp") {
		t.Error("temp file left behind after success")
	}
	if !exists(path) {
		t.Fatal("original path missing after success")
	}
	if o.SizeBefore != 100 || o.SizeAfter != 50 {
		t.Errorf("sizes = %d/%d, want 100/50", o.SizeBefore, o.SizeAfter)
	}
	if got := fileSize(t, path); got != o.SizeAfter {
		t.Errorf("SizeAfter %d does not match file on disk %d", o.SizeAfter, got)
	}
}

func TestReencode_SizesComeFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", 80)
	e := newExecutor(newFakeFlac(), nil)

	// Discovery saw a stale size; the job must stat the file itself.
	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 999}, 1)
	if o.SizeBefore != 80 {
		t.Errorf("SizeBefore = %d, want 80 from stat", o.SizeBefore)
	}
}

func TestReencode_EncoderFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.flac", 100)
	ff := newFakeFlac()
	ff.fail["broken.flac"] = "broken.flac: ERROR: input file has an ID3v2 tag"
	e := newExecutor(ff, nil)

	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 100}, 1)
	if o.Diagnostic == "" {
		t.Fatal("expected a diagnostic")
	}
	if o.SizeBefore != 100 || o.SizeAfter != 100 {
		t.Errorf("sizes = %d/%d, want 100/100", o.SizeBefore, o.SizeAfter)
	}
	if exists(path + ".tmp") {
		t.Error("temp file not removed after failure")
	}
	if fileSize(t, path) != 100 {
		t.Error("original modified after failure")
	}
}

func TestReencode_LockedOriginal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "playing.flac", 100)
	e := newExecutor(newFakeFlac(), lockedFS{err: ErrFileLocked})

	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 100}, 1)
	if !o.ManualReplace {
		t.Fatalf("ManualReplace = false, Diagnostic = %q", o.Diagnostic)
	}
	if !strings.Contains(o.Diagnostic, "manual replacement required") {
		t.Errorf("Diagnostic = %q", o.Diagnostic)
	}
	if o.TempPath != path+".tmp" {
		t.Errorf("TempPath = %q", o.TempPath)
	}
	if !exists(path) || !exists(path+".tmp") {
		t.Error("both original and temp file must be kept for manual replacement")
	}
	if o.SizeAfter != o.SizeBefore {
		t.Errorf("SizeAfter = %d, want unchanged %d", o.SizeAfter, o.SizeBefore)
	}
}

func TestReencode_OtherRenameErrorCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", 100)
	e := newExecutor(newFakeFlac(), lockedFS{err: os.ErrPermission})

	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 100}, 1)
	if o.OK() || o.ManualReplace {
		t.Fatalf("want plain failure, got %+v", o)
	}
	if exists(path + ".tmp") {
		t.Error("temp file not removed after rename failure")
	}
	if fileSize(t, path) != 100 {
		t.Error("original modified")
	}
}

func TestReencode_RemovesStaleTemp(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", 100)
	writeFile(t, dir, "song.flac.tmp", 7)
	e := newExecutor(newFakeFlac(), nil)

	o := e.Reencode(context.Background(), CandidateFile{Path: path, Size: 100}, 1)
	if !o.OK() {
		t.Fatalf("Diagnostic = %q", o.Diagnostic)
	}
	if exists(path + ".tmp") {
		t.Error("stale temp file survived")
	}
}

func TestReencode_MissingOriginal(t *testing.T) {
	e := newExecutor(newFakeFlac(), nil)
	o := e.Reencode(context.Background(), CandidateFile{Path: "/nope/gone.flac", Size: 5}, 1)
	if o.OK() {
		t.Error("missing original must fail")
	}
	if o.SizeBefore != 5 || o.SizeAfter != 5 {
		t.Errorf("sizes = %d/%d, want discovered 5/5", o.SizeBefore, o.SizeAfter)
	}
}

func TestReencode_ThreadHint(t *testing.T) {
	tests := []struct {
		threads int
		want    bool
	}{
		{1, false},
		{4, true},
	}
	for _, tt := range tests {
		dir := t.TempDir()
		path := writeFile(t, dir, "song.flac", 10)
		ff := newFakeFlac()
		e := newExecutor(ff, nil)
		e.Reencode(context.Background(), CandidateFile{Path: path, Size: 10}, tt.threads)

		calls := ff.encodeCalls()
		if len(calls) != 1 {
			t.Fatalf("got %d encode calls, want 1", len(calls))
		}
		got := strings.Contains(calls[0].String(), "--threads=")
		if got != tt.want {
			t.Errorf("threads=%d: --threads present = %v, want %v", tt.threads, got, tt.want)
		}
	}
}

func TestIsLocked(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrFileLocked, true},
		{"wrapped", &os.LinkError{Op: "rename", Err: ErrFileLocked}, true},
		{"permission", os.ErrPermission, false},
		{"other", errors.New("disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLocked(tt.err); got != tt.want {
				t.Errorf("IsLocked(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestKind_Job(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.flac", 10)
	ff := newFakeFlac()
	e := newExecutor(ff, nil)

	e.Job(KindVerify)(context.Background(), CandidateFile{Path: path, Size: 10}, 8)
	calls := ff.snapshot()
	if len(calls) != 1 || calls[0].Args[0] != "-t" {
		t.Errorf("KindVerify ran %v", calls)
	}
	if fileSize(t, path) != 10 {
		t.Error("verify job modified the file")
	}
}

func TestJobs_CancelledMidRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.flac", 100)
	ff := newFakeFlac()
	ff.delay = time.Second
	e := newExecutor(ff, nil)

	for _, kind := range []Kind{KindVerify, KindReencode} {
		t.Run(kind.String(), func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			time.AfterFunc(20*time.Millisecond, cancel)

			o := e.Job(kind)(ctx, CandidateFile{Path: path, Size: 100}, 1)
			if !o.Cancelled {
				t.Fatalf("Cancelled = false, Diagnostic = %q", o.Diagnostic)
			}
			if o.Diagnostic != "" {
				t.Errorf("Diagnostic = %q, want none for a cancelled job", o.Diagnostic)
			}
			if o.SizeAfter != o.SizeBefore {
				t.Errorf("sizes = %d/%d, want unchanged", o.SizeBefore, o.SizeAfter)
			}
			if exists(path+".tmp") || fileSize(t, path) != 100 {
				t.Error("cancelled job left changes behind")
			}
		})
	}
}
