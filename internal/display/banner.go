package display

import (
	"io"

	"github.com/backmassage/flacr/internal/term"
)

const banner = `  __ _
 / _| | __ _  ___ _ __
| |_| |/ _` + "`" + ` |/ __| '__|
|  _| | (_| | (__| |
|_| |_|\__,_|\___|_|
`

// PrintBanner writes the ASCII art banner, magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	_, _ = term.Magenta.Fprint(w, banner)
	_, _ = io.WriteString(w, "\n")
}
