package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/flac"
)

// ErrThreadsUnsupported is the fatal pre-flight error for wide mode against
// an encoder without --threads.
var ErrThreadsUnsupported = errors.New("flac does not support multi-threaded encoding")

// CheckThreadSupport queries the encoder version and fails unless it is at
// least flac.MinThreadsVersion.
func CheckThreadSupport(ctx context.Context, runner command.Runner, tool string) error {
	res := runner.Run(ctx, flac.VersionCommand(tool))
	if res.Err != nil || res.ExitCode != 0 {
		return fmt.Errorf("query %s version: %s", tool, res.Diagnostic())
	}
	v, err := flac.ParseVersion(flac.Banner(res))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrThreadsUnsupported, err)
	}
	if !flac.SupportsThreads(v) {
		return fmt.Errorf("%w: found flac %s, need %s or newer", ErrThreadsUnsupported, v, flac.MinThreadsVersion)
	}
	return nil
}
