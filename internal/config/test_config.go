package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Catalog.BaseURL = "http://127.0.0.1/search.json"
	cfg.Catalog.HTTPTimeout = 5 * time.Second
	cfg.Catalog.UserAgent = "shelf-test/1.0"
	cfg.Catalog.CacheSize = 0
	cfg.UI.Debounce = 10 * time.Millisecond
	cfg.Favorites.Persist = false
	cfg.Favorites.Path = ":memory:"
	cfg.Log.Level = "off"
	return cfg
}
