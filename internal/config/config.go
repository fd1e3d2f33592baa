package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HTTPServerConfig represents HTTP server configuration
type HTTPServerConfig struct {
	Host              string        `yaml:"host" json:"host"`
	Port              int           `yaml:"port" json:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" json:"read_header_timeout"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes" json:"max_header_bytes"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AllowedOrigins    []string      `yaml:"allowed_origins" json:"allowed_origins"`
}

// Addr returns the listen address.
func (c HTTPServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig represents the relational store configuration
type DatabaseConfig struct {
	// Driver is "sqlite" (embedded, default) or "postgres"
	Driver          string        `yaml:"driver" json:"driver"`
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	// Seed applies the reference catalog migration on top of the schema
	Seed     bool `yaml:"seed" json:"seed"`
	LogQuery bool `yaml:"log_query" json:"log_query"`
}

// RedisConfig represents the shared cache connection
type RedisConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled"`
	Address    string        `yaml:"address" json:"address"`
	Password   string        `yaml:"password" json:"password"`
	DB         int           `yaml:"db" json:"db"`
	ClientName string        `yaml:"client_name" json:"client_name"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	PoolSize   int           `yaml:"pool_size" json:"pool_size"`
}

// CacheConfig holds per-cache time to live values
type CacheConfig struct {
	DefaultTTL          time.Duration `yaml:"default_ttl" json:"default_ttl"`
	CategoryPricingTTL  time.Duration `yaml:"category_pricing_ttl" json:"category_pricing_ttl"`
	PriceSummaryTTL     time.Duration `yaml:"price_summary_ttl" json:"price_summary_ttl"`
	BrandLowestPriceTTL time.Duration `yaml:"brand_lowest_price_ttl" json:"brand_lowest_price_ttl"`
	// LocalMaxEntries bounds the in-process fallback cache
	LocalMaxEntries int64 `yaml:"local_max_entries" json:"local_max_entries"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// TracingConfig controls OpenTelemetry tracing
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" json:"enabled"`
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// Config represents the application configuration
type Config struct {
	Server   HTTPServerConfig `yaml:"server" json:"server"`
	Database DatabaseConfig   `yaml:"database" json:"database"`
	Redis    RedisConfig      `yaml:"redis" json:"redis"`
	Cache    CacheConfig      `yaml:"cache" json:"cache"`
	Log      LogConfig        `yaml:"log" json:"log"`
	Tracing  TracingConfig    `yaml:"tracing" json:"tracing"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: HTTPServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    1 << 20, // 1MB
			ShutdownTimeout:   15 * time.Second,
			AllowedOrigins:    []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:catalog.db?_foreign_keys=1&_busy_timeout=5000",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			Seed:            true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Address:    "localhost:6379",
			ClientName: "catalog-cache",
			Timeout:    time.Second,
			PoolSize:   20,
		},
		Cache: CacheConfig{
			DefaultTTL:          60 * time.Second,
			CategoryPricingTTL:  20 * time.Second,
			PriceSummaryTTL:     30 * time.Second,
			BrandLowestPriceTTL: 60 * time.Second,
			LocalMaxEntries:     10000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "catalog-api",
		},
	}
}

// LoadConfig loads the application configuration: defaults, then
// environment variables, then an optional config.yaml.
func LoadConfig() (*Config, error) {
	return load(".", "./config", "/etc/catalog")
}

func load(paths ...string) (*Config, error) {
	config := Default()

	applyEnv(config)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use default and environment values
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		applyFile(v, config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnv(config *Config) {
	if port, err := strconv.Atoi(os.Getenv("SERVER_PORT")); err == nil {
		config.Server.Port = port
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.Server.AllowedOrigins = strings.Split(origins, ",")
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if seed, err := strconv.ParseBool(os.Getenv("DATABASE_SEED")); err == nil {
		config.Database.Seed = seed
	}
	if maxOpen, err := strconv.Atoi(os.Getenv("DATABASE_MAX_OPEN_CONNS")); err == nil {
		config.Database.MaxOpenConns = maxOpen
	}

	if enabled, err := strconv.ParseBool(os.Getenv("REDIS_ENABLED")); err == nil {
		config.Redis.Enabled = enabled
	}
	if redisAddr := os.Getenv("REDIS_ADDRESS"); redisAddr != "" {
		config.Redis.Address = redisAddr
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.Redis.Password = redisPassword
	}
	if redisDB, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		config.Redis.DB = redisDB
	}
	if timeout, err := time.ParseDuration(os.Getenv("REDIS_TIMEOUT")); err == nil {
		config.Redis.Timeout = timeout
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Log.Format = format
	}

	if tracing, err := strconv.ParseBool(os.Getenv("TRACING_ENABLED")); err == nil {
		config.Tracing.Enabled = tracing
	}
}

func applyFile(v *viper.Viper, config *Config) {
	if v.IsSet("server.host") {
		config.Server.Host = v.GetString("server.host")
	}
	if v.IsSet("server.port") {
		config.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.shutdown_timeout") {
		config.Server.ShutdownTimeout = v.GetDuration("server.shutdown_timeout")
	}
	if v.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if v.IsSet("database.driver") {
		config.Database.Driver = v.GetString("database.driver")
	}
	if v.IsSet("database.dsn") {
		config.Database.DSN = v.GetString("database.dsn")
	}
	if v.IsSet("database.seed") {
		config.Database.Seed = v.GetBool("database.seed")
	}
	if v.IsSet("database.max_open_conns") {
		config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	}
	if v.IsSet("database.max_idle_conns") {
		config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")
	}
	if v.IsSet("database.conn_max_lifetime") {
		config.Database.ConnMaxLifetime = v.GetDuration("database.conn_max_lifetime")
	}
	if v.IsSet("database.log_query") {
		config.Database.LogQuery = v.GetBool("database.log_query")
	}

	if v.IsSet("redis.enabled") {
		config.Redis.Enabled = v.GetBool("redis.enabled")
	}
	if v.IsSet("redis.address") {
		config.Redis.Address = v.GetString("redis.address")
	}
	if v.IsSet("redis.password") {
		config.Redis.Password = v.GetString("redis.password")
	}
	if v.IsSet("redis.db") {
		config.Redis.DB = v.GetInt("redis.db")
	}
	if v.IsSet("redis.client_name") {
		config.Redis.ClientName = v.GetString("redis.client_name")
	}
	if v.IsSet("redis.timeout") {
		config.Redis.Timeout = v.GetDuration("redis.timeout")
	}

	if v.IsSet("cache.default_ttl") {
		config.Cache.DefaultTTL = v.GetDuration("cache.default_ttl")
	}
	if v.IsSet("cache.category_pricing_ttl") {
		config.Cache.CategoryPricingTTL = v.GetDuration("cache.category_pricing_ttl")
	}
	if v.IsSet("cache.price_summary_ttl") {
		config.Cache.PriceSummaryTTL = v.GetDuration("cache.price_summary_ttl")
	}
	if v.IsSet("cache.brand_lowest_price_ttl") {
		config.Cache.BrandLowestPriceTTL = v.GetDuration("cache.brand_lowest_price_ttl")
	}

	if v.IsSet("log.level") {
		config.Log.Level = v.GetString("log.level")
	}
	if v.IsSet("log.format") {
		config.Log.Format = v.GetString("log.format")
	}

	if v.IsSet("tracing.enabled") {
		config.Tracing.Enabled = v.GetBool("tracing.enabled")
	}
	if v.IsSet("tracing.service_name") {
		config.Tracing.ServiceName = v.GetString("tracing.service_name")
	}
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn must be set")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	ttls := map[string]time.Duration{
		"default_ttl":            c.Cache.DefaultTTL,
		"category_pricing_ttl":   c.Cache.CategoryPricingTTL,
		"price_summary_ttl":      c.Cache.PriceSummaryTTL,
		"brand_lowest_price_ttl": c.Cache.BrandLowestPriceTTL,
	}
	for name, ttl := range ttls {
		if ttl <= 0 {
			return fmt.Errorf("cache %s must be positive", name)
		}
	}
	return nil
}
