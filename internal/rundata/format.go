// Copyright (C) 2025 Sideface Authors
// SPDX-License-Identifier: BSD-3-Clause

package rundata

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotApplicable is printed in place of a percentage whose denominator is zero.
const NotApplicable = "N/A"

// FormatCount formats call counts. Single-run counts are integers, but
// aggregated counts can be fractional, so values are rounded to 3 decimals
// and printed without a decimal point when integral:
//
//	4000      => 4,000
//	4000.1212 => 4,000.121
//	4000.0001 => 4,000
func FormatCount(v float64) string {
	v = math.Round(v*1000) / 1000
	p := message.NewPrinter(language.English)
	if math.Round(v) == v {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.3f", v)
}

// FormatNumber rounds to an integer and adds thousands separators.
func FormatNumber(v float64) string {
	return message.NewPrinter(language.English).Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent formats a ratio as a percentage with the given precision.
func FormatPercent(ratio float64, precision int) string {
	return fmt.Sprintf("%.*f%%", precision, 100*ratio)
}

// Pct returns a as a percentage of b rounded to one decimal, or
// NotApplicable when b is zero.
func Pct(a, b float64) string {
	if b == 0 {
		return NotApplicable
	}
	return strconv.FormatFloat(math.Round(a*1000/b)/10, 'f', -1, 64)
}
