// Package display renders the banner, human-readable sizes, and the
// discovery and processing progress bars.
package display

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress is a single counting bar with a running error tally. A disabled
// Progress is a no-op, so callers never need to branch on --progress.
type Progress struct {
	p      *mpb.Progress
	bar    *mpb.Bar
	errors atomic.Int64
}

// NewProgress starts a bar labelled label with the given total. When
// enabled is false nothing is rendered.
func NewProgress(w io.Writer, label string, total int64, enabled bool) *Progress {
	pr := &Progress{}
	if !enabled {
		return pr
	}
	pr.p = mpb.New(mpb.WithOutput(w), mpb.WithWidth(64))
	pr.bar = pr.p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(label+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Any(func(decor.Statistics) string {
				return fmt.Sprintf(" errors: %d", pr.errors.Load())
			}),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 60), " done"),
		),
	)
	return pr
}

// Increment advances the bar by one and raises the error tally shown next
// to it to errors. The tally never goes down, so callers racing with stale
// counts cannot undo a newer one. Safe for concurrent use.
func (pr *Progress) Increment(errors int) {
	n := int64(errors)
	for {
		cur := pr.errors.Load()
		if n <= cur || pr.errors.CompareAndSwap(cur, n) {
			break
		}
	}
	if pr.bar == nil {
		return
	}
	pr.bar.Increment()
}

// Finish completes the bar at its current count and waits for the final
// render. Used both for normal completion and after an interrupt.
func (pr *Progress) Finish() {
	if pr.p == nil {
		return
	}
	pr.bar.SetTotal(-1, true)
	pr.p.Wait()
}
