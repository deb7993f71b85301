package normalizer

import (
	"strconv"
)

// Placeholders rendered when a line is not offered
const (
	MissingPoint = "-"
	MissingPrice = "—"
)

const unicodeMinus = "−"

// FormatAmerican renders an American odds price: "+150", "−110" (U+2212), "" for nil
func FormatAmerican(price *int) string {
	if price == nil {
		return ""
	}
	p := *price
	if p > 0 {
		return "+" + strconv.Itoa(p)
	}
	if p < 0 {
		return unicodeMinus + strconv.Itoa(-p)
	}
	return "0"
}

// FormatPoint renders a spread point with an explicit "+" when positive, "" for nil
func FormatPoint(point *float64) string {
	if point == nil {
		return ""
	}
	s := strconv.FormatFloat(*point, 'f', -1, 64)
	if *point > 0 {
		return "+" + s
	}
	return s
}

// FormatTotal renders a totals line as a plain number, "" for nil
func FormatTotal(point *float64) string {
	if point == nil {
		return ""
	}
	return strconv.FormatFloat(*point, 'f', -1, 64)
}

func priceOrPlaceholder(price *int) string {
	if price == nil {
		return MissingPrice
	}
	return FormatAmerican(price)
}

func pointOrPlaceholder(s string) string {
	if s == "" {
		return MissingPoint
	}
	return s
}
