package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the location of the YAML config file.
const PathEnvVar = "CONFIG_PATH"

var defaultPaths = []string{"config.yaml", "config.yml"}

func defaultConfig() *Config {
	return &Config{
		ServiceName:    "reco_service",
		Host:           "0.0.0.0",
		Port:           8080,
		KRecs:          10,
		PredictorsPath: "data/predictors",
		DatasetPath:    "data/dataset",
		RatingSource:   RatingSourceCSV,
		DatabaseURL:    "",
		DBPoolSize:     20,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Backend:  CacheNone,
			TTL:      10 * time.Minute,
			Capacity: 100_000,
		},
		Server: ServerConfig{
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitWindow: time.Minute,
		},
		Models: ModelsConfig{
			Random: RandomModelConfig{
				Enabled:     true,
				RandomState: 42,
			},
			ALS: ALSModelConfig{
				Enabled:       false,
				ModelFilename: "als.json",
				Interactions:  "interactions.csv",
				ColdDataset:   "cold_reco.csv",
				UsersFeatures: "users_features.csv",
				ItemsFeatures: "items_features.csv",
			},
		},
	}
}

// Load builds the configuration from defaults, then the YAML file (if any), then env.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, err := findConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := splitList(k, "server.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the explicit CONFIG_PATH, which must exist, or the first default
// path found. No file at all is not an error.
func findConfigFile() (string, error) {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s: %w", p, err)
		}
		return p, nil
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

var envMappings = map[string]string{
	"service_name":          "service_name",
	"host":                  "host",
	"port":                  "port",
	"k_recs":                "k_recs",
	"predictors_path":       "predictors_path",
	"dataset_path":          "dataset_path",
	"explanation_data_path": "explanation_data_path",
	"rating_source":         "rating_source",
	"database_url":          "database_url",
	"db_pool_size":          "db_pool_size",

	"log_level":  "log.level",
	"log_format": "log.format",

	"cache_backend":  "cache.backend",
	"redis_url":      "cache.redis_url",
	"cache_ttl":      "cache.ttl",
	"cache_capacity": "cache.capacity",

	"request_timeout":     "server.request_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"cors_origins":        "server.cors_origins",

	"random_enabled":     "models.random.enabled",
	"random_items":       "models.random.items",
	"random_state":       "models.random.random_state",
	"als_enabled":        "models.als.enabled",
	"als_model_filename": "models.als.model_filename",
	"als_interactions":   "models.als.interactions",
	"als_cold_dataset":   "models.als.cold_dataset",
}

// envKey maps a known env var to its config path; unknown vars are dropped.
func envKey(key string) string {
	return envMappings[strings.ToLower(key)]
}

// splitList turns a comma separated env value into a string slice.
func splitList(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if err := k.Set(path, out); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}
