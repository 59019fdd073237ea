package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string         `yaml:"app_env"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Location LocationConfig `yaml:"location"`
	Logger   LoggerConfig   `yaml:"logger"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Seed     SeedConfig     `yaml:"seed"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // postgres, mysql, sqlite
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
	Path        string `yaml:"path"` // sqlite file
	MaxRetries  int    `yaml:"max_retries"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Broker       string        `yaml:"broker"`
	GroupID      string        `yaml:"group_id"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

type AuthConfig struct {
	JWTSecret                string `yaml:"jwt_secret"`
	AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
	TOTPIssuer               string `yaml:"totp_issuer"`
}

type LocationConfig struct {
	DefaultRadiusMeters int           `yaml:"default_radius_meters"`
	CacheTTL            time.Duration `yaml:"cache_ttl"`
}

type LoggerConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // json, console
	Output     string `yaml:"output"` // stdout, file
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"`    // MB
	MaxBackups int    `yaml:"max_backups"` // files
	MaxAge     int    `yaml:"max_age"`     // days
	Compress   bool   `yaml:"compress"`
	Color      bool   `yaml:"color"`
	Stacktrace bool   `yaml:"stacktrace"`
	TimeZone   string `yaml:"time_zone"`
	TimeFormat string `yaml:"time_format"`
}

type MetricsConfig struct {
	Enabled   bool      `yaml:"enabled"`
	Namespace string    `yaml:"namespace"`
	Buckets   []float64 `yaml:"buckets"`
}

type TracingConfig struct {
	Enabled     bool              `yaml:"enabled"`
	ServiceName string            `yaml:"service_name"`
	Endpoint    string            `yaml:"endpoint"`
	Protocol    string            `yaml:"protocol"` // grpc or http
	Insecure    bool              `yaml:"insecure"`
	SamplerRate float64           `yaml:"sampler_rate"`
	Headers     map[string]string `yaml:"headers"`
}

type SeedConfig struct {
	OnBoot bool `yaml:"on_boot"`
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Default returns the configuration used when no file or env overrides are present.
func Default() Config {
	return Config{
		AppEnv: "development",
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:      "postgres",
			Host:        "localhost",
			Port:        "5432",
			User:        "postgres",
			Name:        "timetrack",
			SSLMode:     "disable",
			Path:        "timetrack.db",
			MaxRetries:  5,
			AutoMigrate: true,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			GroupID:      "timetrack-notifications",
			PollInterval: 3 * time.Second,
		},
		Auth: AuthConfig{
			AccessTokenExpireMinutes: 30,
			TOTPIssuer:               "TimeTrack",
		},
		Location: LocationConfig{
			DefaultRadiusMeters: 100,
			CacheTTL:            10 * time.Minute,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "timetrack",
		},
		Tracing: TracingConfig{
			ServiceName: "timetrack-api",
			Protocol:    "grpc",
			SamplerRate: 1,
		},
	}
}

// Load reads .env, then the optional YAML file, then environment overrides.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", filename, err)
		}
		if err := yaml.Unmarshal(resolveEnv(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", filename, err)
		}
	}

	applyEnv(&cfg)

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return &cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// resolveEnv expands ${VAR} and ${VAR:default} in raw config bytes.
func resolveEnv(content []byte) []byte {
	return envPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := envPattern.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string
		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}
		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}

func applyEnv(cfg *Config) {
	setString(&cfg.AppEnv, "APP_ENV")
	setString(&cfg.Server.Port, "PORT")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SSLMode, "DB_SSLMODE")
	setString(&cfg.Database.Path, "DB_PATH")

	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Kafka.Broker, "KAFKA_BROKER")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setInt(&cfg.Auth.AccessTokenExpireMinutes, "ACCESS_TOKEN_EXPIRE_MINUTES")
	setInt(&cfg.Location.DefaultRadiusMeters, "DEFAULT_RADIUS_METERS")

	setString(&cfg.Logger.Level, "LOG_LEVEL")
	setString(&cfg.Logger.Format, "LOG_FORMAT")
	setString(&cfg.Logger.Output, "LOG_OUTPUT")
	setString(&cfg.Logger.FilePath, "LOG_FILE_PATH")

	setBool(&cfg.Tracing.Enabled, "OTEL_ENABLED")
	setString(&cfg.Tracing.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Seed.OnBoot, "SEED_ON_BOOT")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
