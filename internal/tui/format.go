package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hyeonlog/jangteo/internal/core/market"
)

// formatWon renders a price with thousands separators and the won sign.
func formatWon(price int64) string {
	s := strconv.FormatInt(price, 10)
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-₩" + string(out)
	}
	return "₩" + string(out)
}

// relativeTime renders a timestamp relative to now: "just now", "5m",
// "3h", "2d", then the plain date.
func relativeTime(t market.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t.Time)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// remaining renders the time left until a deadline, or "ended".
func remaining(end market.Time, now time.Time) string {
	if end.IsZero() {
		return ""
	}
	d := end.Sub(now)
	if d <= 0 {
		return "ended"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh left", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm left", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm left", mins)
	}
	return "under 1m left"
}

// truncate cuts a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
