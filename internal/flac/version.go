package flac

import (
	"fmt"
	"regexp"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/backmassage/flacr/internal/command"
)

// MinThreadsVersion is the first flac release that accepts --threads.
const MinThreadsVersion = "1.5.0"

// reVersion matches the banner printed by "flac --version", e.g.
// "flac 1.4.3" or "flac git-1a2b3c4 20240101" (no release number).
var reVersion = regexp.MustCompile(`(?m)^flac\s+v?(\d+\.\d+(?:\.\d+)?)`)

var minThreads = goversion.Must(goversion.NewVersion(MinThreadsVersion))

// Banner returns the text of a flac --version run to parse: stdout, or
// stderr when stdout is empty (some builds print the banner there).
func Banner(res command.Result) string {
	if strings.TrimSpace(res.Stdout) != "" {
		return res.Stdout
	}
	return res.Stderr
}

// ParseVersion extracts the release number from flac --version output.
func ParseVersion(out string) (*goversion.Version, error) {
	m := reVersion.FindStringSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("unrecognized flac version output %q", out)
	}
	v, err := goversion.NewVersion(m[1])
	if err != nil {
		return nil, fmt.Errorf("parse flac version %q: %w", m[1], err)
	}
	return v, nil
}

// SupportsThreads reports whether v understands --threads.
func SupportsThreads(v *goversion.Version) bool {
	return v != nil && !v.LessThan(minThreads)
}
