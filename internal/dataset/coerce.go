package dataset

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Coerce converts a raw field value to a number.
//
// Blank input is zero. Text that parses as a decimal number yields that number
// (out of range values become ±Inf). Anything else yields NaN so that bad data
// stays distinguishable from a real zero.
//
// The grammar is strconv.ParseFloat's: "1e3", "Inf" and hex floats with a
// binary exponent ("0x1p4") parse, while "0x10", "1,234" and "12%" do not.
func Coerce(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}
