package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Rating sources for the explanation tables.
const (
	RatingSourceCSV      = "csv"
	RatingSourcePostgres = "postgres"
)

// Cache backends for deterministic model results.
const (
	CacheNone  = "none"
	CacheLocal = "local"
	CacheRedis = "redis"
)

type Config struct {
	ServiceName         string `koanf:"service_name" validate:"required"`
	Host                string `koanf:"host"`
	Port                int    `koanf:"port" validate:"min=1,max=65535"`
	KRecs               int    `koanf:"k_recs" validate:"min=1,max=1000"`
	PredictorsPath      string `koanf:"predictors_path" validate:"required"`
	DatasetPath         string `koanf:"dataset_path" validate:"required"`
	ExplanationDataPath string `koanf:"explanation_data_path"`
	RatingSource        string `koanf:"rating_source" validate:"oneof=csv postgres"`
	DatabaseURL         string `koanf:"database_url" validate:"required_if=RatingSource postgres"`
	DBPoolSize          int    `koanf:"db_pool_size" validate:"min=1"`

	Log    LogConfig    `koanf:"log"`
	Cache  CacheConfig  `koanf:"cache"`
	Server ServerConfig `koanf:"server"`
	Models ModelsConfig `koanf:"models"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type CacheConfig struct {
	Backend  string        `koanf:"backend" validate:"oneof=none local redis"`
	RedisURL string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `koanf:"ttl" validate:"min=0"`
	Capacity uint64        `koanf:"capacity"`
}

type ServerConfig struct {
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"min=0"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=0"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type ModelsConfig struct {
	Random RandomModelConfig `koanf:"random"`
	ALS    ALSModelConfig    `koanf:"als"`
}

type RandomModelConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Items       string `koanf:"items"`
	RandomState int64  `koanf:"random_state"`
}

type ALSModelConfig struct {
	Enabled       bool   `koanf:"enabled"`
	ModelFilename string `koanf:"model_filename" validate:"required_if=Enabled true"`
	Interactions  string `koanf:"interactions" validate:"required_if=Enabled true"`
	ColdDataset   string `koanf:"cold_dataset" validate:"required_if=Enabled true"`
	UsersFeatures string `koanf:"users_features"`
	ItemsFeatures string `koanf:"items_features"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExplanationDir is where items_rating.csv and users.csv live. Defaults to the dataset path.
func (c *Config) ExplanationDir() string {
	if c.ExplanationDataPath != "" {
		return c.ExplanationDataPath
	}
	return c.DatasetPath
}

func (c *Config) DatasetFile(name string) string {
	return filepath.Join(c.DatasetPath, name)
}

func (c *Config) PredictorFile(name string) string {
	return filepath.Join(c.PredictorsPath, name)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
