package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Weather WeatherConfig `mapstructure:"weather"`
	Store   StoreConfig   `mapstructure:"store"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WeatherConfig holds OpenWeather API settings
type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// StoreConfig holds the location of the state database
type StoreConfig struct {
	Path string `mapstructure:"path"` // Directory; empty keeps state in memory only
}

// RefreshConfig holds background refresh settings
type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables the background sweep
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // Empty logs to stderr
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org",
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Path: defaultDataPath(),
		},
		Refresh: RefreshConfig{
			Interval: 15 * time.Minute,
		},
		Logging: LoggingConfig{
			File:  "",
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default state directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "weatherly")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "weatherly")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "weatherly")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "weatherly")
	}
}

// LoadConfig loads configuration from .env, the config file and environment.
// An explicit file must exist; otherwise a missing config file is fine.
// WEATHERLY_* variables override file values, and OPENWEATHER_API_KEY is
// accepted for the API key.
func LoadConfig(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	cfg := DefaultConfig()
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Defaults make every key visible to AutomaticEnv
	v.SetDefault("weather.api_key", cfg.Weather.APIKey)
	v.SetDefault("weather.base_url", cfg.Weather.BaseURL)
	v.SetDefault("weather.timeout", cfg.Weather.Timeout)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("refresh.interval", cfg.Refresh.Interval)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	// Environment variable overrides
	v.SetEnvPrefix("WEATHERLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("weather.api_key", "WEATHERLY_WEATHER_API_KEY", "OPENWEATHER_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)

	return cfg, nil
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return c.Weather.APIKey != ""
}

// ClearData removes the state database directory
func (c *Config) ClearData() error {
	if c.Store.Path == "" {
		return nil
	}
	if err := os.RemoveAll(c.Store.Path); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
