package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	UI        UIConfig        `mapstructure:"ui"`
	Favorites FavoritesConfig `mapstructure:"favorites"`
	Media     MediaConfig     `mapstructure:"media"`
	Keys      KeyConfig       `mapstructure:"keys"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	CoversURL      string        `mapstructure:"covers_url"`
	PlaceholderURL string        `mapstructure:"placeholder_url"`
	WorksURL       string        `mapstructure:"works_url"`
	Limit          int           `mapstructure:"limit"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	CacheSize      int           `mapstructure:"cache_size"`
	// Interests overrides the built-in interest tags when non-empty.
	Interests []string `mapstructure:"interests"`
}

type UIConfig struct {
	Colors               UIColors      `mapstructure:"colors"`
	Debounce             time.Duration `mapstructure:"debounce"`
	MaxDescriptionLength int           `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int           `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int           `mapstructure:"word_wrap_min_width"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type FavoritesConfig struct {
	// Persist keeps favorites across restarts in a bbolt file at Path.
	// Off by default: favorites live in memory only.
	Persist    bool   `mapstructure:"persist"`
	Path       string `mapstructure:"path"`
	ExportPath string `mapstructure:"export_path"`
	// ExportFormat is "yaml" or "json".
	ExportFormat string `mapstructure:"export_format"`
}

type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit           string `mapstructure:"quit"`
	Interests      string `mapstructure:"interests"`
	ToggleFavorite string `mapstructure:"toggle_favorite"`
	Favorites      string `mapstructure:"favorites"`
	Open           string `mapstructure:"open"`
	Export         string `mapstructure:"export"`
	Refresh        string `mapstructure:"refresh"`
	Back           string `mapstructure:"back"`
}

type MetricsConfig struct {
	// Addr is the listen address for the Prometheus handler; empty disables it.
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".shelf")

	return &Config{
		Catalog: CatalogConfig{
			BaseURL:        "https://openlibrary.org/search.json",
			CoversURL:      "https://covers.openlibrary.org",
			PlaceholderURL: "https://openlibrary.org/images/icons/avatar_book-sm.png",
			WorksURL:       "https://openlibrary.org",
			Limit:          12,
			HTTPTimeout:    15 * time.Second,
			UserAgent:      "shelf/1.0 (https://github.com/pders01/shelf)",
			CacheSize:      64,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Debounce:             300 * time.Millisecond,
			MaxDescriptionLength: 120,
			WordWrapMaxWidth:     100,
			WordWrapMinWidth:     40,
		},
		Favorites: FavoritesConfig{
			Persist:      false,
			Path:         filepath.Join(dataDir, "favorites.db"),
			ExportPath:   filepath.Join(dataDir, "favorites.yaml"),
			ExportFormat: "yaml",
		},
		Media: MediaConfig{
			Darwin:        []string{"open"},
			Linux:         []string{"xdg-open", "sensible-browser", "firefox"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:           "q",
				Interests:      "t",
				ToggleFavorite: "f",
				Favorites:      "l",
				Open:           "o",
				Export:         "e",
				Refresh:        "r",
				Back:           "esc",
			},
		},
		Metrics: MetricsConfig{},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "shelf.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("catalog", cfg.Catalog)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("favorites", cfg.Favorites)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("metrics", cfg.Metrics)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "shelf")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SHELF")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decode over the defaults so partial tables keep unset values.
	config := *cfg
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Flat env overrides for the values people actually change per shell.
	if base := v.GetString("catalog_base_url"); base != "" {
		config.Catalog.BaseURL = base
	}
	if level := v.GetString("log_level"); level != "" {
		config.Log.Level = level
	}

	if config.Catalog.Limit <= 0 {
		config.Catalog.Limit = 12
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Favorites.Path = expandPath(cfg.Favorites.Path)
	cfg.Favorites.ExportPath = expandPath(cfg.Favorites.ExportPath)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Convert durations to strings for TOML readability
	catalogCfg := map[string]interface{}{
		"base_url":        config.Catalog.BaseURL,
		"covers_url":      config.Catalog.CoversURL,
		"placeholder_url": config.Catalog.PlaceholderURL,
		"works_url":       config.Catalog.WorksURL,
		"limit":           config.Catalog.Limit,
		"http_timeout":    config.Catalog.HTTPTimeout.String(),
		"user_agent":      config.Catalog.UserAgent,
		"cache_size":      config.Catalog.CacheSize,
		"interests":       config.Catalog.Interests,
	}

	uiCfg := map[string]interface{}{
		"colors":                 config.UI.Colors,
		"debounce":               config.UI.Debounce.String(),
		"max_description_length": config.UI.MaxDescriptionLength,
		"word_wrap_max_width":    config.UI.WordWrapMaxWidth,
		"word_wrap_min_width":    config.UI.WordWrapMinWidth,
	}

	favoritesCfg := map[string]interface{}{
		"persist":       config.Favorites.Persist,
		"path":          config.Favorites.Path,
		"export_path":   config.Favorites.ExportPath,
		"export_format": config.Favorites.ExportFormat,
	}

	mediaCfg := map[string]interface{}{
		"darwin":         config.Media.Darwin,
		"linux":          config.Media.Linux,
		"windows":        config.Media.Windows,
		"default_opener": config.Media.DefaultOpener,
	}

	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":            b.Quit,
			"interests":       b.Interests,
			"toggle_favorite": b.ToggleFavorite,
			"favorites":       b.Favorites,
			"open":            b.Open,
			"export":          b.Export,
			"refresh":         b.Refresh,
			"back":            b.Back,
		},
	}

	v.Set("catalog", catalogCfg)
	v.Set("ui", uiCfg)
	v.Set("favorites", favoritesCfg)
	v.Set("media", mediaCfg)
	v.Set("keys", keysCfg)
	v.Set("metrics", map[string]interface{}{"addr": config.Metrics.Addr})
	v.Set("log", map[string]interface{}{"level": config.Log.Level, "path": config.Log.Path})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
