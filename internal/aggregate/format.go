package aggregate

import (
	"fmt"
	"math"
	"time"
)

// Indian public-finance units: 1 lakh = 1e5, 1 crore = 1e7.
const (
	lakh  = 1e5
	crore = 1e7
)

// FormatLakhs renders an amount in lakhs with two decimals, e.g. "₹2.50L".
func FormatLakhs(amount float64) string {
	return fmt.Sprintf("₹%.2fL", amount/lakh)
}

// FormatCrores renders an amount in crores with two decimals, e.g. "₹1.20Cr".
func FormatCrores(amount float64) string {
	return fmt.Sprintf("₹%.2fCr", amount/crore)
}

// FormatAmount picks the unit by magnitude: crores at or above one crore,
// lakhs otherwise.
func FormatAmount(amount float64) string {
	if math.Abs(amount) >= crore {
		return FormatCrores(amount)
	}
	return FormatLakhs(amount)
}

// FormatPercent renders a [0,1] score as a whole percentage, e.g. "87%".
// Rounds to nearest.
func FormatPercent(score float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(score*100)))
}

// BarHeights scales a series to [0,max] integer heights for the trend chart.
// An all-zero series yields all-zero heights.
func BarHeights(counts [12]int, max int) [12]int {
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	var out [12]int
	if peak == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = int(math.Round(float64(c) / float64(peak) * float64(max)))
	}
	return out
}

// TimeAgo renders a timestamp relative to now: "just now", "5m ago",
// "3h ago", "2d ago". Zero times render as a dash.
func TimeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
