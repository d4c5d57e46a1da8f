// Package config holds runtime configuration: defaults, CLI flag binding, and
// validation. Defaults match the original flacr script for parity.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Mode selects the concurrency strategy for re-encoding.
type Mode string

const (
	ModeFanOut Mode = "fanout" // N files in parallel, one encoder thread each (default).
	ModeWide   Mode = "wide"   // One file at a time, encoder uses N threads.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultErrorLog is the file errors are appended to with --log.
const DefaultErrorLog = "flacr_error.log"

// Config holds all runtime settings. It is populated by [DefaultConfig],
// mutated by flag parsing, and then passed (by pointer) to packages that
// need it.
type Config struct {
	// Input.
	Directory    string // Default: ".".
	SingleFolder bool   // Only scan Directory itself, no subdirectories.
	GuessCount   int    // Default: 999999. Initial total for the discovery bar.

	// Processing.
	Threads    int           // Default: 1. Validated 1..NumCPU.
	Mode       Mode          // Default: "fanout".
	TestOnly   bool          // Verify decodability instead of re-encoding.
	Rsgain     bool          // Run rsgain easy after a clean re-encode pass.
	Timeout    time.Duration // Default: 5m. Per flac invocation.
	TempSuffix string        // Fixed: ".tmp".

	// External tools (names or paths).
	FlacTool   string // Default: "flac".
	RsgainTool string // Default: "rsgain".

	// Display and logging.
	LogToFile bool      // Append errors to ErrorLog instead of printing them.
	ErrorLog  string    // Default: "flacr_error.log".
	Progress  bool      // Show progress bars.
	Verbose   bool      // Per-file debug lines.
	ColorMode ColorMode // Default: "auto".
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with defaults matching the original script.
func DefaultConfig() Config {
	return Config{
		Directory:  ".",
		GuessCount: 999_999,
		Threads:    1,
		Mode:       ModeFanOut,
		Timeout:    5 * time.Minute,
		TempSuffix: ".tmp",
		FlacTool:   "flac",
		RsgainTool: "rsgain",
		ErrorLog:   DefaultErrorLog,
		ColorMode:  ColorAuto,
	}
}

// MaxThreads is the upper bound for --multi-threaded.
func MaxThreads() int {
	return runtime.NumCPU()
}

// NormalizeDirArg strips trailing separators from a directory path.
// The filesystem root is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" || path == string(filepath.Separator) {
		return path
	}
	trimmed := strings.TrimRight(path, "/"+string(filepath.Separator))
	if trimmed == "" {
		return path
	}
	return trimmed
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly
// mode, it also requires Directory to be an existing, readable directory.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFanOut, ModeWide:
		// valid
	default:
		return errors.New("invalid mode (use 'fanout' or 'wide')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if limit := MaxThreads(); c.Threads < 1 || c.Threads > limit {
		return fmt.Errorf("invalid thread count, supply a value between 1 and %d", limit)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.GuessCount < 0 {
		return errors.New("guess count must not be negative")
	}
	if c.TempSuffix == "" {
		return errors.New("temp suffix must not be empty")
	}
	if c.LogToFile && c.ErrorLog == "" {
		return errors.New("--log needs a log file path")
	}

	if c.CheckOnly {
		return nil
	}
	return ValidateDir(c.Directory)
}

// ValidateDir ensures path names a directory the process can list.
func ValidateDir(path string) error {
	if path == "" {
		return errors.New("directory must not be empty")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("readable_dir:%s is not a valid path", path)
	}
	if !fi.IsDir() {
		return fmt.Errorf("readable_dir:%s is not a directory", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("readable_dir:%s is not readable: %w", path, err)
	}
	return f.Close()
}
