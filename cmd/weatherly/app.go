package main

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/weatherly/internal/adapter"
	"github.com/mmcdole/weatherly/internal/domain"
	"github.com/mmcdole/weatherly/internal/forecast"
	"github.com/mmcdole/weatherly/internal/locations"
	"github.com/mmcdole/weatherly/internal/openweather"
	"github.com/mmcdole/weatherly/internal/service"
	"github.com/mmcdole/weatherly/internal/store"
)

// app wires the store, API client and services for one command run.
type app struct {
	kv       *store.Store
	registry *locations.Registry
	forecast *forecast.Service
	home     *service.HomeService
	search   *service.SearchService
}

func openApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	kv, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s (is another weatherly running?): %w", cfg.Store.Path, err)
	}

	client := openweather.NewClient(openweather.Config{
		BaseURL: cfg.Weather.BaseURL,
		APIKey:  cfg.Weather.APIKey,
		Timeout: cfg.Weather.Timeout,
	}, logger)

	st := store.NewAdapter(kv)
	registry := locations.NewRegistry(st, logger)
	fc := forecast.NewService(client, registry, st, logger)

	return &app{
		kv:       kv,
		registry: registry,
		forecast: fc,
		home:     service.NewHomeService(registry, fc, logger),
		search:   service.NewSearchService(client, registry, logger),
	}, nil
}

// Close waits for background fetches, then closes the store.
func (a *app) Close() error {
	a.home.Wait()
	return a.kv.Close()
}

func requireAPIKey(cfg *adapter.Config) error {
	if cfg.IsConfigured() {
		return nil
	}
	return fmt.Errorf("%w: set OPENWEATHER_API_KEY or weather.api_key in the config file", domain.ErrUnauthorized)
}
