// Package report renders a finished run: per-file errors go either to the
// append-only error log or to the console, followed by the summary.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/backmassage/flacr/internal/config"
	"github.com/backmassage/flacr/internal/display"
	"github.com/backmassage/flacr/internal/logging"
	"github.com/backmassage/flacr/internal/pipeline"
	"github.com/backmassage/flacr/internal/term"
)

// Reporter writes the results of a run.
type Reporter struct {
	cfg *config.Config
	log *logging.Logger
	out io.Writer
	now func() time.Time
}

// New returns a Reporter printing to stdout.
func New(cfg *config.Config, log *logging.Logger) *Reporter {
	return &Reporter{cfg: cfg, log: log, out: os.Stdout, now: time.Now}
}

// Report emits the errors (log file or console, never both) and the summary.
func (r *Reporter) Report(res pipeline.RunResult) {
	if len(res.Failures) > 0 {
		r.writeErrors(res.Failures)
	}
	r.summary(res)
}

// writeErrors appends to the error log when configured; if the log cannot be
// written the errors are printed instead so they are never lost.
func (r *Reporter) writeErrors(failures []pipeline.JobOutcome) {
	if r.cfg.LogToFile {
		err := AppendErrorLog(r.cfg.ErrorLog, failures, r.now())
		if err == nil {
			r.log.Warn("%d error(s) appended to %s", len(failures), r.cfg.ErrorLog)
			return
		}
		r.log.Warn("Cannot write log file %s (%v); printing errors instead", r.cfg.ErrorLog, err)
	}
	for _, f := range failures {
		fmt.Fprintf(r.out, "Encountered error when processing file:\n%s\n%s\n",
			f.Path, term.Red.Sprint(f.Diagnostic))
	}
}

func (r *Reporter) summary(res pipeline.RunResult) {
	s := res.Stats
	fmt.Fprintf(r.out, "\n%d flac files processed, %d errors. Error rate: %s %%.\n",
		s.Total, s.Errors, display.FormatPercent(s.ErrorRate()))

	if res.Kind != pipeline.KindReencode || s.Total == 0 {
		return
	}
	saved := s.SpaceSaved()
	if saved >= 0 {
		r.log.Success("Total space saved: %s (%s -> %s)",
			humanize.IBytes(uint64(saved)),
			humanize.IBytes(uint64(s.BytesBefore)),
			humanize.IBytes(uint64(s.BytesAfter)))
	} else {
		r.log.Warn("Total space saved: -%s (overall output is larger)",
			humanize.IBytes(uint64(-saved)))
	}
	if s.ManualReplace > 0 {
		r.log.Warn("%d file(s) need manual replacement (in use during the run):", s.ManualReplace)
		for _, o := range res.Failures {
			if o.ManualReplace {
				r.log.Warn("  mv %q %q", o.TempPath, o.Path)
			}
		}
	}
}

// AppendErrorLog appends a dated block of "path\nerror\n" entries to path,
// creating the file (and its directory) if needed.
func AppendErrorLog(path string, failures []pipeline.JobOutcome, now time.Time) error {
	if len(failures) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "\nflacr error log, date: %s\n", now.Format("2006-01-02 15:04:05")); err != nil {
		f.Close()
		return err
	}
	for _, o := range failures {
		if _, err := fmt.Fprintf(f, "%s\n%s\n", o.Path, o.Diagnostic); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
