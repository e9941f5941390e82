package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/weatherly/internal/domain"
)

// formatTemp renders a °C value rounded to whole degrees.
func formatTemp(celsius float64) string {
	v := math.Round(celsius)
	if v == 0 {
		v = 0 // Drop negative zero
	}
	return fmt.Sprintf("%.0f°", v)
}

// formatAge renders how long ago t was, relative to now.
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
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

// describe returns the first condition's description, capitalized.
func describe(conditions []domain.Condition) string {
	if len(conditions) == 0 {
		return ""
	}
	desc := conditions[0].Description
	if desc == "" {
		desc = conditions[0].Main
	}
	r := []rune(desc)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}

// weekday returns the short day name of a forecast timestamp in the
// location's own timezone.
func weekday(dt int64, offsetSeconds int) string {
	return time.Unix(dt+int64(offsetSeconds), 0).UTC().Format("Mon")
}

// summaryText renders a refresh summary for the status line.
func summaryText(s domain.RefreshSummary, forced bool) string {
	if s.Total == 0 {
		return "No saved locations"
	}
	var b strings.Builder
	if forced {
		fmt.Fprintf(&b, "Refreshed %d of %d", s.Loaded, s.Total)
	} else {
		fmt.Fprintf(&b, "Updated %d, %d already fresh", s.Loaded, s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", s.Failed)
	}
	return b.String()
}
