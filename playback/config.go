package playback

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config holds the tunable values of a playback session.
type Config struct {
	// TickMS is the initial wait between automatic advances.
	// Default: 100 ms.
	TickMS int64 `json:"tick_ms"`

	// MinTickMS is the floor reached by repeated speed-ups.
	// Default: 10 ms.
	MinTickMS int64 `json:"min_tick_ms"`

	// MaxTickMS is the ceiling reached by repeated slow-downs.
	// Default: 6400 ms.
	MaxTickMS int64 `json:"max_tick_ms"`

	// EngineURL is the base URL of the simulation engine.
	EngineURL string `json:"engine_url"`

	// RequestTimeoutMS bounds a single engine request.
	// Default: 30000 ms.
	RequestTimeoutMS int64 `json:"request_timeout_ms"`

	// RenderCacheSets and RenderCacheWays size the rendered-frame cache.
	// Zero sets disables the cache.
	RenderCacheSets int `json:"render_cache_sets"`
	RenderCacheWays int `json:"render_cache_ways"`

	// ListenAddr is where the web presenter accepts websocket clients.
	ListenAddr string `json:"listen_addr"`
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() *Config {
	return &Config{
		TickMS:           100,
		MinTickMS:        10,
		MaxTickMS:        6400,
		EngineURL:        "http://localhost:8080/mips",
		RequestTimeoutMS: 30000,
		RenderCacheSets:  16,
		RenderCacheWays:  4,
		ListenAddr:       ":8090",
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playback config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse playback config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize playback config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write playback config file: %w", err)
	}

	return nil
}

// Validate checks that the tick bounds are positive and ordered.
func (c *Config) Validate() error {
	if c.MinTickMS <= 0 {
		return fmt.Errorf("min_tick_ms must be > 0")
	}
	if c.TickMS < c.MinTickMS {
		return fmt.Errorf("tick_ms must be >= min_tick_ms")
	}
	if c.MaxTickMS < c.TickMS {
		return fmt.Errorf("max_tick_ms must be >= tick_ms")
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("request_timeout_ms must be > 0")
	}
	if c.RenderCacheSets < 0 || c.RenderCacheWays < 0 {
		return fmt.Errorf("render cache dimensions must be >= 0")
	}
	if c.RenderCacheSets > 0 && c.RenderCacheWays == 0 {
		return fmt.Errorf("render_cache_ways must be > 0 when the cache is enabled")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Tick returns the initial tick interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// MinTick returns the tick floor.
func (c *Config) MinTick() time.Duration {
	return time.Duration(c.MinTickMS) * time.Millisecond
}

// MaxTick returns the tick ceiling.
func (c *Config) MaxTick() time.Duration {
	return time.Duration(c.MaxTickMS) * time.Millisecond
}

// RequestTimeout returns the per-request engine timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}
