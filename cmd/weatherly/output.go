package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/service"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// renderLocations formats saved locations with their weather state.
func renderLocations(views []service.LocationView, now time.Time) string {
	t := newTable("#", "LOCATION", "TEMP", "CONDITION", "STATUS", "UPDATED")
	for i, v := range views {
		temp, condition := "", ""
		if v.Snapshot != nil {
			temp = fmt.Sprintf("%.0f°C", v.Snapshot.Current.Temp)
			if c := v.Snapshot.Current.Conditions; len(c) > 0 {
				condition = c[0].Description
			}
		}
		t.Row(strconv.Itoa(i+1), v.Location.DisplayName(), temp, condition, statusText(v.State), updatedText(v.LastUpdated, now))
	}
	return t.String()
}

// renderSearchResults formats geocoder candidates, marking saved ones.
func renderSearchResults(results []service.SearchResult) string {
	t := newTable("#", "CITY", "COORDINATES", "SAVED")
	for i, r := range results {
		coords := ""
		if r.Candidate.Lat != nil && r.Candidate.Lon != nil {
			coords = fmt.Sprintf("%.4f, %.4f", *r.Candidate.Lat, *r.Candidate.Lon)
		}
		saved := ""
		if r.Saved {
			saved = "yes"
		}
		t.Row(strconv.Itoa(i+1), r.Candidate.DisplayName(), coords, saved)
	}
	return t.String()
}

func statusText(s domain.FetchState) string {
	if s.Status == domain.StatusError {
		return s.Message
	}
	return s.Status.String()
}

func updatedText(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return now.Sub(t).Truncate(time.Second).String() + " ago"
}

func printSummary(w io.Writer, s domain.RefreshSummary) {
	fmt.Fprintf(w, "%d locations: %d loaded, %d failed", s.Total, s.Loaded, s.Failed)
	if s.Skipped > 0 {
		fmt.Fprintf(w, ", %d already fresh", s.Skipped)
	}
	fmt.Fprintln(w)
}
