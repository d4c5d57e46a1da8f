package config

// This file binds CLI flags to Config on a pflag.FlagSet (owned by the cobra
// root command). Negated flags are applied after Parse so Config defaults
// hold unless set.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// NegatedFlags holds boolean flags that are applied after Parse.
type NegatedFlags struct {
	forceColor bool
	noColor    bool
}

// BindFlags registers every flacr flag on fs, writing into cfg. The returned
// NegatedFlags must be passed to [ApplyNegatedFlags] once fs has been parsed.
func BindFlags(fs *pflag.FlagSet, cfg *Config) *NegatedFlags {
	n := &NegatedFlags{}

	defineInputFlags(fs, cfg)
	defineProcessingFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, n)

	return n
}

// defineInputFlags registers -d/--directory, -s/--single-folder, -g/--guess-count.
func defineInputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Directory, "directory", "d", cfg.Directory,
		"Directory that will be scanned for .flac files")
	fs.BoolVarP(&cfg.SingleFolder, "single-folder", "s", false,
		"Only scan the directory itself, no subdirectories")
	fs.IntVarP(&cfg.GuessCount, "guess-count", "g", cfg.GuessCount,
		"Guessed total file count shown by the discovery progress bar")
}

// defineProcessingFlags registers thread count, mode, test, rsgain, timeout and tool paths.
func defineProcessingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVarP(&cfg.Threads, "multi-threaded", "m", cfg.Threads,
		fmt.Sprintf("Threads used for conversion and replaygain calculation (1-%d)", MaxThreads()))
	fs.Var(&modeValue{&cfg.Mode}, "mode",
		"Concurrency strategy: fanout (many files, one thread each) | wide (one file, many threads)")
	fs.BoolVarP(&cfg.TestOnly, "test", "t", false,
		"Skip recompression and only report decoding errors")
	fs.BoolVarP(&cfg.Rsgain, "rsgain", "r", false,
		"Calculate replaygain values with rsgain after recompression")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout,
		"Per-file time limit for flac")
	fs.StringVar(&cfg.FlacTool, "flac", cfg.FlacTool, "flac executable")
	fs.StringVar(&cfg.RsgainTool, "rsgain-bin", cfg.RsgainTool, "rsgain executable")
}

// defineDisplayFlags registers logging, progress, color, verbose and --check.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *NegatedFlags) {
	fs.BoolVarP(&cfg.LogToFile, "log", "l", false,
		"Append errors to the error log instead of printing them")
	fs.StringVar(&cfg.ErrorLog, "log-file", cfg.ErrorLog, "Error log path used with --log")
	fs.BoolVarP(&cfg.Progress, "progress", "p", false,
		"Show progress bars during scanning and processing")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose output")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false,
		"Check that flac and rsgain are available and exit")
	fs.BoolVar(&n.forceColor, "color", false, "Force colored output")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored output")
}

// ApplyNegatedFlags copies negated flag values into cfg.
func ApplyNegatedFlags(cfg *Config, n *NegatedFlags) {
	if n == nil {
		return
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	cfg.Directory = NormalizeDirArg(cfg.Directory)
}

// pflag.Value adapter so Mode can be used with fs.Var.

type modeValue struct{ p *Mode }

func (m *modeValue) String() string { return string(*m.p) }
func (m *modeValue) Type() string   { return "mode" }
func (m *modeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "fanout", "fan-out":
		*m.p = ModeFanOut
	case "wide", "sequential":
		*m.p = ModeWide
	default:
		return fmt.Errorf("invalid mode %q (use 'fanout' or 'wide')", s)
	}
	return nil
}
