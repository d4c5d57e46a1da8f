package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/backmassage/flacr/internal/command"
	"github.com/backmassage/flacr/internal/config"
	"github.com/backmassage/flacr/internal/logging"
)

// fakeFlac stands in for the flac and rsgain binaries. Verify and encode
// calls succeed unless the file's base name is listed in fail; a successful
// encode writes the first half of the source to the temp path.
type fakeFlac struct {
	version string
	fail    map[string]string // base name -> stderr
	delay   time.Duration

	mu          sync.Mutex
	calls       []command.Command
	inFlight    int
	maxInFlight int
}

func newFakeFlac() *fakeFlac {
	return &fakeFlac{version: "flac 1.5.0\n", fail: map[string]string{}}
}

func (f *fakeFlac) Run(ctx context.Context, c command.Command) command.Result {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return command.Result{ExitCode: -1, Err: ctx.Err()}
		}
	}

	args := c.Args
	switch {
	case c.Name == "rsgain":
		return command.Result{}
	case len(args) == 1 && args[0] == "--version":
		return command.Result{Stdout: f.version}
	case args[0] == "-t":
		return f.result(args[len(args)-1], "")
	case args[0] == "--best":
		src, dst := args[len(args)-3], args[len(args)-1]
		if msg, ok := f.fail[filepath.Base(src)]; ok {
			// flac leaves a partial file behind on failure.
			_ = os.WriteFile(dst, []byte("partial"), 0o644)
			return f.result(src, msg)
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return command.Result{ExitCode: 1, Stderr: err.Error(), Err: err}
		}
		if err := os.WriteFile(dst, data[:len(data)/2], 0o644); err != nil {
			return command.Result{ExitCode: 1, Stderr: err.Error(), Err: err}
		}
		return command.Result{}
	}
	return command.Result{ExitCode: 2, Stderr: "unexpected call: " + c.String(), Err: errors.New("exit status 2")}
}

func (f *fakeFlac) result(path, forced string) command.Result {
	msg := forced
	if msg == "" {
		msg = f.fail[filepath.Base(path)]
	}
	if msg == "" {
		return command.Result{}
	}
	return command.Result{ExitCode: 1, Stderr: msg, Err: errors.New("exit status 1")}
}

func (f *fakeFlac) snapshot() []command.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]command.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// encodeCalls returns the encode invocations in call order.
func (f *fakeFlac) encodeCalls() []command.Command {
	var out []command.Command
	for _, c := range f.snapshot() {
		if c.Name == "flac" && len(c.Args) > 0 && c.Args[0] == "--best" {
			out = append(out, c)
		}
	}
	return out
}

// --- Helpers ---

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("f", size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return fi.Size()
}

func testConfig(dir string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Directory = dir
	cfg.ColorMode = config.ColorNever
	return cfg
}

func testLogger(cfg *config.Config) *logging.Logger {
	log := logging.NewLogger(cfg)
	log.SetOutput(io.Discard, nil)
	return log
}

func newExecutor(runner command.Runner, fsys FileSystem) *Executor {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	return &Executor{
		Runner:     runner,
		FS:         fsys,
		Tool:       "flac",
		Timeout:    time.Minute,
		TempSuffix: ".tmp",
	}
}

func basenames(files []CandidateFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}
