package report

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// notAvailable renders undefined ROI and unreachable breakeven prices.
const notAvailable = "n/a"

// printer groups thousands the way US dollar amounts are usually written.
var printer = message.NewPrinter(language.English)

// fixed rounds v half away from zero and prints it with separators.
func fixed(v float64, places int32) string {
	return printer.Sprintf("%."+strconv.Itoa(int(places))+"f", decimal.NewFromFloat(v).Round(places).InexactFloat64())
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Money formats a USD amount with cents and separators.
func Money(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return "$" + fixed(v, 2)
}

// Price formats a per-unit price with six decimals.
func Price(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return "$" + fixed(v, 6)
}

// Amount formats a token or points quantity.
func Amount(v float64, places int32) string {
	if !finite(v) {
		return notAvailable
	}
	return fixed(v, places)
}

// Percent formats a fraction as a percentage.
func Percent(v float64, places int32) string {
	if !finite(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(places) + "%"
}

// ROI formats an optional return, signed.
func ROI(roi *float64) string {
	if roi == nil || !finite(*roi) {
		return notAvailable
	}
	d := decimal.NewFromFloat(*roi).Shift(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

// FDV formats a valuation compactly, e.g. $20M or $1.5B.
func FDV(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	d := decimal.NewFromFloat(v)
	switch abs := math.Abs(v); {
	case abs >= 1e9:
		return "$" + d.Shift(-9).Round(2).String() + "B"
	case abs >= 1e6:
		return "$" + d.Shift(-6).Round(2).String() + "M"
	case abs >= 1e3:
		return "$" + d.Shift(-3).Round(2).String() + "K"
	}
	return Money(v)
}
