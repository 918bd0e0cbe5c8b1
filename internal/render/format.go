package render

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as M:SS. Undefined input (NaN, infinite or
// negative) renders as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// validDuration reports whether d can be used as a divisor.
func validDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}
