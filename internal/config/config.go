package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath переменная окружения с путём к конфигу
const EnvConfigPath = "CONFIG_PATH"

// DefaultPath путь к конфигу по умолчанию
const DefaultPath = "config.toml"

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Tracing      TracingConfig      `toml:"tracing"`
	Kafka        KafkaConfig        `toml:"kafka"`
	RateLimit    RateLimitConfig    `toml:"rate_limit"`
	Availability AvailabilityConfig `toml:"availability"`
	Security     SecurityConfig     `toml:"security"`
}

type ServerConfig struct {
	HTTPPort        int      `toml:"http_port"`
	ReadTimeout     int      `toml:"read_timeout"`     // секунды
	WriteTimeout    int      `toml:"write_timeout"`    // секунды
	IdleTimeout     int      `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int      `toml:"shutdown_timeout"` // секунды
	CORSOrigins     []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто - только stdout
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	Endpoint    string  `toml:"endpoint"` // OTLP gRPC, host:port
	SampleRatio float64 `toml:"sample_ratio"`
	ServiceName string  `toml:"service_name"`
}

type KafkaConfig struct {
	Enabled      bool   `toml:"enabled"`
	Brokers      string `toml:"brokers"` // через запятую
	Topic        string `toml:"topic"`
	WriteTimeout int    `toml:"write_timeout"` // секунды
}

type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Limit         int    `toml:"limit"`
	WindowSeconds int    `toml:"window_seconds"`
	Prefix        string `toml:"prefix"`
	FailOpen      bool   `toml:"fail_open"`
}

type AvailabilityConfig struct {
	MaxParallel int `toml:"max_parallel"`
}

type SecurityConfig struct {
	UserIDHeader string `toml:"user_id_header"`
	BcryptCost   int    `toml:"bcrypt_cost"`
}

// Path возвращает путь к конфигу с учётом CONFIG_PATH
func Path() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath
}

// Load читает конфиг из файла, заполняет значения по умолчанию и валидирует
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse разбирает конфиг из строки
func Parse(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфиг для локального запуска
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			AutoMigrate:     true,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{Path: "/metrics", ServiceName: "appointment-service"},
		Tracing: TracingConfig{SampleRatio: 1},
		Kafka:   KafkaConfig{Topic: "booking-events", WriteTimeout: 5},
		RateLimit: RateLimitConfig{
			Limit:         30,
			WindowSeconds: 60,
			Prefix:        "rl:bookings",
			FailOpen:      true,
		},
		Availability: AvailabilityConfig{MaxParallel: 8},
		Security:     SecurityConfig{UserIDHeader: "X-User-ID"},
	}
}

func (c *Config) applyDefaults() {
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Metrics.ServiceName
	}
	if c.Security.UserIDHeader == "" {
		c.Security.UserIDHeader = "X-User-ID"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate проверяет обязательные поля, возвращает все ошибки сразу
func (c *Config) Validate() error {
	var errs []error
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("server.http_port out of range: %d", c.Server.HTTPPort))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("database.dbname is required"))
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must be non-negative"))
	}
	if c.Kafka.Enabled {
		if strings.TrimSpace(c.Kafka.Brokers) == "" {
			errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
		}
		if c.Kafka.Topic == "" {
			errs = append(errs, errors.New("kafka.topic is required when kafka is enabled"))
		}
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RedisAddr == "" {
			errs = append(errs, errors.New("rate_limit.redis_addr is required when rate limit is enabled"))
		}
		if c.RateLimit.Limit <= 0 || c.RateLimit.WindowSeconds <= 0 {
			errs = append(errs, errors.New("rate_limit.limit and rate_limit.window_seconds must be positive"))
		}
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be in [0,1]: %v", c.Tracing.SampleRatio))
	}
	if c.Availability.MaxParallel <= 0 {
		errs = append(errs, errors.New("availability.max_parallel must be positive"))
	}
	if c.Security.BcryptCost != 0 && (c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31) {
		errs = append(errs, fmt.Errorf("security.bcrypt_cost out of range: %d", c.Security.BcryptCost))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
