package ynab

import (
	"math"
	"strconv"
)

// halfCentUp maps the eighths that sit exactly on a half cent to the cent
// above them.
var halfCentUp = map[float64]string{1: "13", 3: "38", 5: "63", 7: "88"}

// FormatMilliunits renders m/1000 with exactly two decimals, rounding the
// float64 quotient the way a JavaScript toFixed(2) does: correct rounding of
// the binary value, with exact half cents going to the larger magnitude. The
// sign of m is kept, so -12340 gives "-12.34" and -4 gives "-0.00".
func FormatMilliunits(m int64) string {
	x := math.Abs(float64(m) / 1000)
	sign := ""
	if m < 0 {
		sign = "-"
	}

	// A float64 lands exactly on a half cent only when its fraction is an
	// odd number of eighths. FormatFloat would round those to even.
	whole := math.Floor(x)
	if cents, ok := halfCentUp[(x-whole)*8]; ok {
		return sign + strconv.FormatFloat(whole, 'f', 0, 64) + "." + cents
	}
	return sign + strconv.FormatFloat(x, 'f', 2, 64)
}
