package assemble

import (
	"fmt"
	"math"
)

// FormatStartPoint renders an offset in seconds. Offsets above one hour use
// HH:MM:SS; anything up to and including 3600 uses MM:SS with total minutes,
// so 3600 renders as "60:00". Fractions are truncated.
func FormatStartPoint(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	if seconds > 3600 {
		return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
