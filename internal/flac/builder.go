package flac

import (
	"strconv"
	"time"

	"github.com/backmassage/flacr/internal/command"
)

// Padding is the metadata padding reserved in every re-encoded file so tag
// edits (e.g. ReplayGain) do not force a full rewrite.
const Padding = 4096

// DefaultTool is the encoder binary looked up on PATH.
const DefaultTool = "flac"

// VerifyCommand builds the decode test for path:
//
//	flac -t --silent <path>
func VerifyCommand(tool, path string, timeout time.Duration) command.Command {
	return command.Command{
		Name:    tool,
		Args:    []string{"-t", "--silent", path},
		Timeout: timeout,
	}
}

// EncodeCommand builds the re-encode of path into tempPath:
//
//	flac --best --verify --padding=4096 --silent [--threads=<n>] <path> -o <tempPath>
//
// --threads is only passed when threads > 1; older encoders reject it.
func EncodeCommand(tool, path, tempPath string, threads int, timeout time.Duration) command.Command {
	args := make([]string, 0, 8)
	args = append(args, "--best", "--verify", "--padding="+strconv.Itoa(Padding), "--silent")
	if threads > 1 {
		args = append(args, "--threads="+strconv.Itoa(threads))
	}
	args = append(args, path, "-o", tempPath)
	return command.Command{
		Name:    tool,
		Args:    args,
		Timeout: timeout,
	}
}

// VersionCommand builds the version query: flac --version.
func VersionCommand(tool string) command.Command {
	return command.Command{
		Name:    tool,
		Args:    []string{"--version"},
		Timeout: 10 * time.Second,
	}
}
