package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/weatherly/internal/adapter"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/forecast"
	"github.com/mmcdole/weatherly/internal/locations"
	"github.com/mmcdole/weatherly/internal/service"
	"github.com/mmcdole/weatherly/internal/store"
)

type nopSource struct{}

func (nopSource) FetchByCoordinates(context.Context, float64, float64) (*domain.Snapshot, error) {
	return nil, errors.New("offline")
}

func ptr(f float64) *float64 { return &f }

func newTestHome(t *testing.T, names ...string) *service.HomeService {
	t.Helper()
	kv, err := store.Open("")
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	logger := adapter.NullLogger()
	st := store.NewAdapter(kv)
	registry := locations.NewRegistry(st, logger)
	for i, n := range names {
		c := domain.Candidate{Name: n, Country: "FR", Lat: ptr(float64(i * 10)), Lon: ptr(float64(i * 10))}
		if _, err := registry.Add(c); err != nil {
			t.Fatalf("Add(%s) error = %v", n, err)
		}
	}
	fc := forecast.NewService(nopSource{}, registry, st, logger)
	return service.NewHomeService(registry, fc, logger)
}

func TestResolveLocation(t *testing.T) {
	home := newTestHome(t, "Paris", "Lyon", "Marseille")

	tests := []struct {
		arg     string
		want    string
		wantErr error
	}{
		{"1", "Paris", nil},
		{"3", "Marseille", nil},
		{"0", "", domain.ErrIndexOutOfRange},
		{"4", "", domain.ErrIndexOutOfRange},
		{"lyon", "Lyon", nil},
		{"mrsl", "Marseille", nil},
		{"tokyo", "", domain.ErrLocationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			loc, err := resolveLocation(home, tt.arg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveLocation(%q) error = %v, want %v", tt.arg, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveLocation(%q) error = %v", tt.arg, err)
			}
			if loc.Name != tt.want {
				t.Errorf("resolveLocation(%q) = %s, want %s", tt.arg, loc.Name, tt.want)
			}
		})
	}
}

func TestParsePosition(t *testing.T) {
	if got, err := parsePosition("3"); err != nil || got != 2 {
		t.Errorf("parsePosition(3) = %d, %v; want 2", got, err)
	}
	if _, err := parsePosition("first"); err == nil {
		t.Error("parsePosition(first) returned no error")
	}
}

func TestPromptChoice(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"valid", "2\n", 1, true},
		{"retry after bad input", "9\nabc\n3\n", 2, true},
		{"empty cancels", "\n", 0, false},
		{"eof cancels", "", 0, false},
		{"no trailing newline", "1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, ok, err := promptChoice(strings.NewReader(tt.input), &out, 3)
			if err != nil {
				t.Fatalf("promptChoice() error = %v", err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("promptChoice() = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false} {
		if got := confirm(strings.NewReader(input), &bytes.Buffer{}, "Sure?"); got != want {
			t.Errorf("confirm(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRenderLocations(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	views := []service.LocationView{
		{
			Location:    domain.Location{Name: "Paris", Country: "FR"},
			State:       domain.FetchState{Status: domain.StatusLoaded},
			Snapshot:    &domain.Snapshot{Current: domain.CurrentWeather{Temp: 18.2, Conditions: []domain.Condition{{Description: "few clouds"}}}},
			LastUpdated: now.Add(-90 * time.Second),
		},
		{
			Location: domain.Location{Name: "Lyon", Country: "FR"},
			State:    domain.ErrorState(domain.MessageNetworkError),
		},
	}

	out := renderLocations(views, now)
	for _, want := range []string{"Paris", "18°C", "few clouds", "1m30s ago", "Lyon", domain.MessageNetworkError, "never"} {
		if !strings.Contains(out, want) {
			t.Errorf("renderLocations() missing %q:\n%s", want, out)
		}
	}
}

func TestPrintSummary(t *testing.T) {
	var b bytes.Buffer
	printSummary(&b, domain.RefreshSummary{Total: 4, Loaded: 2, Failed: 1, Skipped: 1})
	if got, want := b.String(), "4 locations: 2 loaded, 1 failed, 1 already fresh\n"; got != want {
		t.Errorf("printSummary() = %q, want %q", got, want)
	}
}
