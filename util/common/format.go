package common

import (
	"math"
	"strconv"
)

// FormatAmount renders a vote amount without decimals when integral,
// otherwise with two.
func FormatAmount(value float64) string {
	if value == math.Floor(value) {
		return strconv.FormatFloat(value, 'f', 0, 64)
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}
