package display

import "fmt"

// FormatPercent renders a ratio as a percentage with two decimals, as used
// by the "Error rate" summary line.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f", ratio*100)
}
