// Package rsgain builds the ReplayGain tagging invocation run once per
// directory after a clean re-encode pass.
package rsgain

import (
	"strconv"

	"github.com/backmassage/flacr/internal/command"
)

// DefaultTool is the rsgain binary looked up on PATH.
const DefaultTool = "rsgain"

// minThreads keeps rsgain from running single-threaded; a single job is
// dominated by process start-up on large libraries.
const minThreads = 2

// EasyCommand builds: rsgain easy -m <max(threads,2)> <dir>.
// Output is streamed to the terminal; rsgain prints its own per-album report.
func EasyCommand(tool string, threads int, dir string) command.Command {
	if threads < minThreads {
		threads = minThreads
	}
	return command.Command{
		Name:   tool,
		Args:   []string{"easy", "-m", strconv.Itoa(threads), dir},
		Stream: true,
	}
}
