package utils

import (
	"fmt"
	"math"
)

// Round2 rounds to two decimal places. Costs are stored at full precision;
// rounding happens only when a value leaves the system.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SpotNumber formats the nth spot of a lot, e.g. SpotNumber(7) == "A007".
// Spots are numbered sequentially from 1 within their lot.
func SpotNumber(n int) string {
	return fmt.Sprintf("A%03d", n)
}
