package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Env string `yaml:"env"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	Component string `yaml:"component"`
	Source    bool   `yaml:"source"`
}

type DBConfig struct {
	Driver       string `yaml:"driver"` // mysql | postgres | sqlite
	DSN          string `yaml:"dsn"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GRPCConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type HTTPConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// StorageConfig points at an S3-compatible bucket holding profile photos.
type StorageConfig struct {
	Endpoint      string        `yaml:"endpoint"`
	Region        string        `yaml:"region"`
	Bucket        string        `yaml:"bucket"`
	AccessKey     string        `yaml:"access_key"`
	SecretKey     string        `yaml:"secret_key"`
	PublicBaseURL string        `yaml:"public_base_url"`
	PresignTTL    time.Duration `yaml:"presign_ttl"`
}

type LimitsConfig struct {
	SwipesPerMinute   int           `yaml:"swipes_per_minute"`
	SwipeBurst        int           `yaml:"swipe_burst"`
	OnboardingTimeout time.Duration `yaml:"onboarding_timeout"`
	DefaultPageSize   int           `yaml:"default_page_size"`
	MaxPageSize       int           `yaml:"max_page_size"`
}

type Config struct {
	App     AppConfig     `yaml:"app"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
	Redis   RedisConfig   `yaml:"redis"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// New returns defaults overridden by the process environment.
func New() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// Load layers defaults, an optional YAML file, a .env file and the
// environment, in that order.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// a missing .env is normal outside local development
	_ = godotenv.Load()

	cfg.applyEnv()
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}

	cfg.App.Env = "production"

	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Component = "devmatch"

	cfg.DB.Driver = "mysql"
	cfg.DB.Host = "localhost"
	cfg.DB.Port = "3306"
	cfg.DB.User = "root"
	cfg.DB.Password = "root"
	cfg.DB.Name = "devmatch"
	cfg.DB.MaxOpenConns = 25
	cfg.DB.MaxIdleConns = 5

	cfg.Redis.Addr = "localhost:6379"

	cfg.GRPC.Host = "127.0.0.1"
	cfg.GRPC.Port = "50051"

	cfg.HTTP.Host = "0.0.0.0"
	cfg.HTTP.Port = "8080"
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second

	cfg.Auth.JWTSecret = "change-me"
	cfg.Auth.TokenTTL = 24 * time.Hour

	cfg.Storage.Endpoint = "http://localhost:9000"
	cfg.Storage.Region = "us-east-1"
	cfg.Storage.Bucket = "devmatch-photos"
	cfg.Storage.PresignTTL = 15 * time.Minute

	cfg.Limits.SwipesPerMinute = 120
	cfg.Limits.SwipeBurst = 20
	cfg.Limits.OnboardingTimeout = 20 * time.Second
	cfg.Limits.DefaultPageSize = 50
	cfg.Limits.MaxPageSize = 100

	return cfg
}

func (cfg *Config) applyEnv() {
	cfg.App.Env = getEnvDefault("APP_ENV", cfg.App.Env)

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", cfg.Log.Format)
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", cfg.Log.Component)
	if v, ok := os.LookupEnv("LOG_SOURCE"); ok {
		cfg.Log.Source = isTruthy(v)
	}

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.DSN = getEnvDefault("DB_DSN", cfg.DB.DSN)
	cfg.DB.Host = getEnvDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnvDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnvDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnvDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnvDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)
	cfg.DB.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns)

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", cfg.GRPC.Host)
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", cfg.GRPC.Port)

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", cfg.HTTP.Port)
	cfg.HTTP.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout)

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getEnvDuration("JWT_TTL", cfg.Auth.TokenTTL)

	// Storage
	cfg.Storage.Endpoint = getEnvDefault("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.Region = getEnvDefault("S3_REGION", cfg.Storage.Region)
	cfg.Storage.Bucket = getEnvDefault("S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.AccessKey = getEnvDefault("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnvDefault("S3_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.PublicBaseURL = getEnvDefault("S3_PUBLIC_BASE_URL", cfg.Storage.PublicBaseURL)
	cfg.Storage.PresignTTL = getEnvDuration("S3_PRESIGN_TTL", cfg.Storage.PresignTTL)

	// Limits
	cfg.Limits.SwipesPerMinute = getEnvInt("SWIPES_PER_MINUTE", cfg.Limits.SwipesPerMinute)
	cfg.Limits.SwipeBurst = getEnvInt("SWIPE_BURST", cfg.Limits.SwipeBurst)
	cfg.Limits.OnboardingTimeout = getEnvDuration("ONBOARDING_TIMEOUT", cfg.Limits.OnboardingTimeout)
	cfg.Limits.DefaultPageSize = getEnvInt("DEFAULT_PAGE_SIZE", cfg.Limits.DefaultPageSize)
	cfg.Limits.MaxPageSize = getEnvInt("MAX_PAGE_SIZE", cfg.Limits.MaxPageSize)
}

// ConnString builds the driver-specific connection string unless a DSN was given.
func (c DBConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host, c.Port, c.User, c.Password, c.Name,
		)
	case "sqlite":
		return c.Name + ".db"
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name,
		)
	}
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
