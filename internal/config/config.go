package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	CORS     CORSConfig     `yaml:"cors"`
	Contact  ContactConfig  `yaml:"contact"`
	Mail     MailConfig     `yaml:"mail"`
	Visits   VisitsConfig   `yaml:"visits"`
	Digest   DigestConfig   `yaml:"digest"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Guard    GuardConfig    `yaml:"guard"`
	Sentry   SentryConfig   `yaml:"sentry"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Mode            string        `yaml:"mode"`
	TrustedProxies  []string      `yaml:"trusted_proxies"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type ContactConfig struct {
	MaxBodySize   int64           `yaml:"max_body_size"`
	SubjectPrefix string          `yaml:"subject_prefix"`
	RateLimit     RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Driver        string        `yaml:"driver"` // memory | redis
	MaxRequests   int           `yaml:"max_requests"`
	Window        time.Duration `yaml:"window"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type MailConfig struct {
	Provider string        `yaml:"provider"` // resend | log
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	From     string        `yaml:"from"`
	To       string        `yaml:"to"`
	Timeout  time.Duration `yaml:"timeout"`
}

type VisitsConfig struct {
	Driver        string         `yaml:"driver"` // file | postgres | sqlite
	Path          string         `yaml:"path"`
	RetentionDays int            `yaml:"retention_days"`
	Timezone      string         `yaml:"timezone"`
	Throttle      ThrottleConfig `yaml:"throttle"`
}

type ThrottleConfig struct {
	RatePerMinute int `yaml:"rate_per_minute"`
	Burst         int `yaml:"burst"`
}

type DigestConfig struct {
	Secret string `yaml:"secret"`
	To     string `yaml:"to"`
	TopN   int    `yaml:"top_n"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type GuardConfig struct {
	BlockedUserAgents   []string `yaml:"blocked_user_agents"`
	RejectPathTraversal *bool    `yaml:"reject_path_traversal"`
}

type SentryConfig struct {
	DSN         string  `yaml:"dsn"`
	Environment string  `yaml:"environment"`
	SampleRate  float64 `yaml:"sample_rate"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads CONFIG_PATH (or configs/config.yaml), applies environment
// overrides and fills in defaults. A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.overrideFromEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	// Server
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.Mode = val
	}
	if val := os.Getenv("CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORS.AllowedOrigins = splitList(val)
	}

	// Mail
	if val := os.Getenv("MAIL_PROVIDER"); val != "" {
		c.Mail.Provider = val
	}
	if val := os.Getenv("RESEND_API_KEY"); val != "" {
		c.Mail.APIKey = val
	}
	if val := os.Getenv("MAIL_FROM"); val != "" {
		c.Mail.From = val
	}
	if val := os.Getenv("CONTACT_EMAIL"); val != "" {
		c.Mail.To = val
	}

	// Contact
	if val := os.Getenv("RATE_LIMIT_DRIVER"); val != "" {
		c.Contact.RateLimit.Driver = val
	}

	// Visits
	if val := os.Getenv("VISITS_DRIVER"); val != "" {
		c.Visits.Driver = val
	}
	if val := os.Getenv("VISITS_PATH"); val != "" {
		c.Visits.Path = val
	}
	if val := os.Getenv("VISITS_TIMEZONE"); val != "" {
		c.Visits.Timezone = val
	}
	if val := os.Getenv("VISITS_RETENTION_DAYS"); val != "" {
		if days, err := strconv.Atoi(val); err == nil {
			c.Visits.RetentionDays = days
		}
	}

	// Digest
	if val := os.Getenv("DIGEST_SECRET"); val != "" {
		c.Digest.Secret = val
	}
	if val := os.Getenv("DIGEST_EMAIL"); val != "" {
		c.Digest.To = val
	}

	// Database
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Database.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.DBName = val
	}
	if val := os.Getenv("SQLITE_PATH"); val != "" {
		c.Database.SQLitePath = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Sentry
	if val := os.Getenv("SENTRY_DSN"); val != "" {
		c.Sentry.DSN = val
	}
	if val := os.Getenv("SENTRY_ENVIRONMENT"); val != "" {
		c.Sentry.Environment = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.Log.File = val
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if c.Contact.MaxBodySize == 0 {
		c.Contact.MaxBodySize = 52 << 20 // five 10MB files plus form fields
	}
	if c.Contact.SubjectPrefix == "" {
		c.Contact.SubjectPrefix = "Portfolio contact"
	}
	if c.Contact.RateLimit.Driver == "" {
		c.Contact.RateLimit.Driver = "memory"
	}
	if c.Contact.RateLimit.MaxRequests == 0 {
		c.Contact.RateLimit.MaxRequests = 5
	}
	if c.Contact.RateLimit.Window == 0 {
		c.Contact.RateLimit.Window = 15 * time.Minute
	}
	if c.Contact.RateLimit.SweepInterval == 0 {
		c.Contact.RateLimit.SweepInterval = 10 * time.Minute
	}

	if c.Mail.Provider == "" {
		c.Mail.Provider = "resend"
	}
	if c.Mail.BaseURL == "" {
		c.Mail.BaseURL = "https://api.resend.com"
	}
	if c.Mail.From == "" {
		c.Mail.From = "Portfolio <onboarding@resend.dev>"
	}
	if c.Mail.Timeout == 0 {
		c.Mail.Timeout = 15 * time.Second
	}

	if c.Visits.Driver == "" {
		c.Visits.Driver = "file"
	}
	if c.Visits.Path == "" {
		c.Visits.Path = "data/visits.json"
	}
	if c.Visits.RetentionDays == 0 {
		c.Visits.RetentionDays = 400
	}
	if c.Visits.Timezone == "" {
		c.Visits.Timezone = "UTC"
	}
	if c.Visits.Throttle.RatePerMinute == 0 {
		c.Visits.Throttle.RatePerMinute = 60
	}
	if c.Visits.Throttle.Burst == 0 {
		c.Visits.Throttle.Burst = 20
	}

	if c.Digest.To == "" {
		c.Digest.To = c.Mail.To
	}
	if c.Digest.TopN == 0 {
		c.Digest.TopN = 5
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/visits.db"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.Guard.RejectPathTraversal == nil {
		reject := true
		c.Guard.RejectPathTraversal = &reject
	}

	if c.Sentry.Environment == "" {
		c.Sentry.Environment = c.Server.Mode
	}
	if c.Sentry.SampleRate == 0 {
		c.Sentry.SampleRate = 1.0
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "./logs/app.log"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 20
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 28
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Contact.RateLimit.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown rate limit driver %q", c.Contact.RateLimit.Driver)
	}

	switch c.Mail.Provider {
	case "resend", "log":
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}

	switch c.Visits.Driver {
	case "file", "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown visits driver %q", c.Visits.Driver)
	}

	if _, err := time.LoadLocation(c.Visits.Timezone); err != nil {
		return fmt.Errorf("invalid visits timezone %q: %w", c.Visits.Timezone, err)
	}

	if c.Contact.RateLimit.MaxRequests < 0 || c.Contact.RateLimit.Window < 0 {
		return fmt.Errorf("rate limit settings must not be negative")
	}

	return nil
}

// Location returns the timezone used to bucket visits into calendar days.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Visits.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
