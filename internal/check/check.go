// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for flac and rsgain.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/config"
	"github.com/backmassage/flacr/internal/flac"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrFlacNotFound   = errors.New("flac not found on PATH")
	ErrRsgainNotFound = errors.New("rsgain not found on PATH")
)

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck reports whether flac and rsgain are on PATH, their versions, and
// whether flac can encode multi-threaded. Returns false when flac is missing.
func RunCheck(ctx context.Context, cfg *config.Config, runner command.Runner, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkFlac(ctx, cfg, runner, log)
	checkRsgain(ctx, cfg, runner, log)
	return ok
}

// checkFlac verifies flac is on PATH and logs its version and --threads support.
func checkFlac(ctx context.Context, cfg *config.Config, runner command.Runner, log Logger) bool {
	if _, err := lookPath(cfg.FlacTool); err != nil {
		log.Error("Not found: '%s' is NOT in the PATH.", cfg.FlacTool)
		log.Info("%s", RemediationHint(cfg.FlacTool))
		return false
	}
	log.Success("Found: '%s' is in the PATH.", cfg.FlacTool)

	res := runner.Run(ctx, flac.VersionCommand(cfg.FlacTool))
	if res.Err != nil {
		log.Warn("%s found but --version failed: %s", cfg.FlacTool, res.Diagnostic())
		return true
	}
	v, err := flac.ParseVersion(flac.Banner(res))
	if err != nil {
		log.Warn("%v", err)
		return true
	}
	if flac.SupportsThreads(v) {
		log.Success("flac %s supports --threads (wide mode available)", v)
	} else {
		log.Warn("flac %s predates %s: wide mode unavailable", v, flac.MinThreadsVersion)
	}
	return true
}

// checkRsgain verifies rsgain is on PATH and logs its first output line.
func checkRsgain(ctx context.Context, cfg *config.Config, runner command.Runner, log Logger) {
	if _, err := lookPath(cfg.RsgainTool); err != nil {
		log.Warn("Not found: '%s' is NOT in the PATH (only needed with --rsgain).", cfg.RsgainTool)
		return
	}
	res := runner.Run(ctx, command.Command{Name: cfg.RsgainTool, Args: []string{"--version"}})
	line := firstLine(res.Stdout)
	if line == "" {
		line = "version unknown"
	}
	log.Success("Found: '%s' is in the PATH (%s).", cfg.RsgainTool, line)
}

// CheckDeps is the pre-pipeline validation: flac must be on PATH, and rsgain
// as well when --rsgain was requested. Returns a sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := lookPath(cfg.FlacTool); err != nil {
		return ErrFlacNotFound
	}
	if cfg.Rsgain {
		if _, err := lookPath(cfg.RsgainTool); err != nil {
			return ErrRsgainNotFound
		}
	}
	return nil
}

// RemediationHint tells the operator how to make tool reachable.
func RemediationHint(tool string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Add the folder containing %s.exe to 'Path' under "+
			"System Properties > Environment Variables, then re-run flacr.", tool)
	case "darwin":
		return fmt.Sprintf("Install %s (e.g. brew install %s) or add its folder to PATH.", tool, tool)
	default:
		return fmt.Sprintf("Install %s with your package manager or add its folder to PATH.", tool)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
