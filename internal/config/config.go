package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Feeds   FeedsConfig
	Worker  WorkerConfig
	Map     MapConfig
	Output  OutputConfig
	Logging LoggingConfig
}

type FeedsConfig struct {
	EarthquakeURL string
	PlatesEnabled bool
	PlatesURL     string
	FetchTimeout  time.Duration
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type MapConfig struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
}

type OutputConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Feeds: FeedsConfig{
			EarthquakeURL: getEnv("EARTHQUAKE_FEED_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"),
			PlatesEnabled: getEnvBool("PLATES_ENABLED", true),
			PlatesURL:     getEnv("PLATES_FEED_URL", "https://raw.githubusercontent.com/fraxen/tectonicplates/master/GeoJSON/PB2002_boundaries.json"),
			FetchTimeout:  getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 2),
		},
		Map: MapConfig{
			CenterLat: getEnvFloat("MAP_CENTER_LAT", 20.0),
			CenterLon: getEnvFloat("MAP_CENTER_LON", 5.0),
			Zoom:      getEnvInt("MAP_ZOOM", 2),
		},
		Output: OutputConfig{
			Path: getEnv("OUTPUT_PATH", "./quake-map.html"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Feeds.EarthquakeURL == "" {
		return fmt.Errorf("earthquake feed URL is required")
	}
	if c.Feeds.PlatesEnabled && c.Feeds.PlatesURL == "" {
		return fmt.Errorf("plates feed URL is required when plates are enabled")
	}
	if c.Feeds.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("invalid worker count: %d", c.Worker.Count)
	}
	if c.Worker.BufferSize < 0 {
		return fmt.Errorf("invalid worker buffer size: %d", c.Worker.BufferSize)
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("invalid map center latitude: %v", c.Map.CenterLat)
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("invalid map center longitude: %v", c.Map.CenterLon)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 19 {
		return fmt.Errorf("invalid map zoom: %d", c.Map.Zoom)
	}

	if c.Output.Path == "" {
		return fmt.Errorf("output path is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
