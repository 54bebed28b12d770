package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/sanvivo/price-dashboard/internal/filter"
	"github.com/sanvivo/price-dashboard/internal/gateway"
	"github.com/sanvivo/price-dashboard/internal/http/ratelimit"
	"github.com/sanvivo/price-dashboard/internal/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. PRICE_DASHBOARD_API_BASE_URL.
const EnvPrefix = "PRICE_DASHBOARD"

// Config holds the application configuration
type Config struct {
	API       APIConfig        `mapstructure:"api"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Storage   StorageConfig    `mapstructure:"storage"`
	Filter    FilterConfig     `mapstructure:"filter"`
	Export    ExportConfig     `mapstructure:"export"`
	Server    ServerConfig     `mapstructure:"server"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
}

// APIConfig points at the remote pricing API
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	InitialBackoffMs  int     `mapstructure:"initial_backoff_ms" validate:"gte=0"`
	MaxBackoffMs      int     `mapstructure:"max_backoff_ms" validate:"gtefield=InitialBackoffMs"`
}

// StorageConfig selects where product groups are persisted
type StorageConfig struct {
	Type     string `mapstructure:"type" validate:"oneof=local sqlite"`
	BasePath string `mapstructure:"base_path" validate:"required"`
}

// FilterConfig holds filter defaults
type FilterConfig struct {
	DesignatedPharmacies []string `mapstructure:"designated_pharmacies" validate:"dive,required"`
}

// ExportConfig controls file downloads
type ExportConfig struct {
	Dir    string `mapstructure:"dir" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=csv xlsx"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format  string `mapstructure:"format" validate:"oneof=json console"`
	NoColor bool   `mapstructure:"no_color"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := loadEnvFile(); err != nil {
		// .env is optional
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.Telemetry = telemetry.ConfigFromEnv(cfg.Telemetry)

	globalConfig = &cfg
	return &cfg, nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// loadEnvFile loads the first .env file found by parsing KEY=VALUE lines into
// the process environment
func loadEnvFile() error {
	for _, path := range []string{".", "./config"} {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			return loadDotEnvFile(envFile)
		}
	}
	return fmt.Errorf("no .env file found")
}

func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
			// Real environment wins over .env
			if _, set := os.LookupEnv(key); !set {
				os.Setenv(key, value)
			}
		}
	}
	return scanner.Err()
}

// bindEnvVars binds the short conventional variable names
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", "PRICE_API_URL")
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	v.BindEnv("logging.level", EnvPrefix+"_LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("storage.base_path", EnvPrefix+"_STORAGE_BASE_PATH", "STORAGE_PATH")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", gateway.DefaultBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)

	v.SetDefault("rate_limit.requests_per_second", 2.0)
	v.SetDefault("rate_limit.max_retries", 2)
	v.SetDefault("rate_limit.initial_backoff_ms", 200)
	v.SetDefault("rate_limit.max_backoff_ms", 5000)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.base_path", "./data")

	v.SetDefault("filter.designated_pharmacies", filter.DefaultDesignatedPharmacies)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "csv")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.no_color", false)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", telemetry.DefaultServiceName)
	v.SetDefault("telemetry.service_version", "")
	v.SetDefault("telemetry.environment", "")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// RateLimitSettings converts the section for the HTTP client.
func (c RateLimitConfig) RateLimitSettings() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: c.RequestsPerSecond,
		MaxRetries:        c.MaxRetries,
		InitialBackoffMs:  c.InitialBackoffMs,
		MaxBackoffMs:      c.MaxBackoffMs,
	}
}

// GatewayConfig assembles the remote data gateway settings.
func (c *Config) GatewayConfig() gateway.Config {
	return gateway.Config{
		BaseURL:   c.API.BaseURL,
		Timeout:   c.API.Timeout,
		RateLimit: c.RateLimit.RateLimitSettings(),
	}
}
