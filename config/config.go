package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Booking  BookingConfig  `yaml:"booking"`
	Tickets  TicketsConfig  `yaml:"tickets"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address            string   `yaml:"address"`
	SwaggerEnabled     bool     `yaml:"swagger_enabled"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

// DatabaseConfig selects the backing store. Driver "memory" keeps everything in
// process and is meant for local runs and tests.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSNValue string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	if d.DSNValue != "" {
		return d.DSNValue
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	PricingTopic       string   `yaml:"pricing_topic"`
	GroupID            string   `yaml:"group_id"`
}

type PricingConfig struct {
	SearchWindowSeconds    int     `yaml:"search_window_seconds"`
	SurgeThreshold         int     `yaml:"surge_threshold"`
	SurgeMultiplier        float64 `yaml:"surge_multiplier"`
	ResetIdleSeconds       int     `yaml:"reset_idle_seconds"`
	SearchRetentionMinutes int     `yaml:"search_retention_minutes"`
	TrackerBackend         string  `yaml:"tracker_backend"`
}

func (p PricingConfig) SearchWindow() time.Duration {
	return time.Duration(p.SearchWindowSeconds) * time.Second
}

func (p PricingConfig) ResetIdle() time.Duration {
	return time.Duration(p.ResetIdleSeconds) * time.Second
}

func (p PricingConfig) SearchRetention() time.Duration {
	return time.Duration(p.SearchRetentionMinutes) * time.Minute
}

type WalletConfig struct {
	StartingBalance int64 `yaml:"starting_balance"`
}

type BookingConfig struct {
	FlightsCacheTTL     int `yaml:"flights_cache_ttl_seconds"`
	SearchResultLimit   int `yaml:"search_result_limit"`
	MaxIdentityAttempts int `yaml:"max_identity_attempts"`
}

type TicketsConfig struct {
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	DefaultUser string `yaml:"default_user"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Production bool   `yaml:"production"`
}

type WorkerConfig struct {
	RetentionSweepMinutes  int  `yaml:"retention_sweep_minutes"`
	SurgeResetSweepSeconds int  `yaml:"surge_reset_sweep_seconds"`
	SurgeResetSweep        bool `yaml:"surge_reset_sweep"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Fields whose zero value is meaningful get their defaults before
	// decoding, so an explicit zero in the file survives.
	cfg := preset()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, suitable for an
// in-memory run.
func Default() *Config {
	cfg := preset()
	cfg.applyDefaults()
	return &cfg
}

const defaultStartingBalance = 50000

func preset() Config {
	return Config{Wallet: WalletConfig{StartingBalance: defaultStartingBalance}}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.RateLimitPerMinute == 0 {
		c.HTTP.RateLimitPerMinute = 120
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = 20
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "surgefare-worker"
	}
	if c.Pricing.SearchWindowSeconds == 0 {
		c.Pricing.SearchWindowSeconds = 300
	}
	if c.Pricing.SurgeThreshold == 0 {
		c.Pricing.SurgeThreshold = 3
	}
	if c.Pricing.SurgeMultiplier == 0 {
		c.Pricing.SurgeMultiplier = 1.10
	}
	if c.Pricing.ResetIdleSeconds == 0 {
		c.Pricing.ResetIdleSeconds = 600
	}
	if c.Pricing.SearchRetentionMinutes == 0 {
		c.Pricing.SearchRetentionMinutes = 24 * 60
	}
	if c.Pricing.TrackerBackend == "" {
		c.Pricing.TrackerBackend = "postgres"
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 30
	}
	if c.Booking.SearchResultLimit == 0 {
		c.Booking.SearchResultLimit = 10
	}
	if c.Booking.MaxIdentityAttempts == 0 {
		c.Booking.MaxIdentityAttempts = 5
	}
	if c.Tickets.Dir == "" {
		c.Tickets.Dir = "tickets"
	}
	if c.Auth.DefaultUser == "" {
		c.Auth.DefaultUser = "default_user"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Worker.RetentionSweepMinutes == 0 {
		c.Worker.RetentionSweepMinutes = 15
	}
	if c.Worker.SurgeResetSweepSeconds == 0 {
		c.Worker.SurgeResetSweepSeconds = 60
	}
}

func (c *Config) applyEnv() error {
	var errs []error
	envInt := func(name string, dst *int) {
		if v, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	envString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	envInt("SEARCH_WINDOW_SECONDS", &c.Pricing.SearchWindowSeconds)
	envInt("SURGE_THRESHOLD", &c.Pricing.SurgeThreshold)
	envInt("PRICE_RESET_SECONDS", &c.Pricing.ResetIdleSeconds)
	if v, ok := os.LookupEnv("SURGE_MULTIPLIER"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("SURGE_MULTIPLIER: %w", err))
		} else {
			c.Pricing.SurgeMultiplier = f
		}
	}
	if v, ok := os.LookupEnv("DEFAULT_WALLET_BALANCE"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEFAULT_WALLET_BALANCE: %w", err))
		} else {
			c.Wallet.StartingBalance = n
		}
	}
	envString("DATABASE_DSN", &c.Database.DSNValue)
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("JWT_SECRET", &c.Auth.JWTSecret)
	envString("LOG_LEVEL", &c.Log.Level)
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	switch {
	case c.Pricing.SurgeThreshold < 1:
		return errors.New("pricing.surge_threshold must be at least 1")
	case c.Pricing.SurgeMultiplier <= 1:
		return errors.New("pricing.surge_multiplier must be greater than 1")
	case c.Pricing.SearchWindowSeconds <= 0:
		return errors.New("pricing.search_window_seconds must be positive")
	case c.Pricing.ResetIdleSeconds <= 0:
		return errors.New("pricing.reset_idle_seconds must be positive")
	case c.Pricing.SearchRetention() < c.Pricing.SearchWindow():
		return errors.New("pricing.search_retention_minutes must cover the search window")
	case c.Wallet.StartingBalance < 0:
		return errors.New("wallet.starting_balance must not be negative")
	case c.Worker.RetentionSweepMinutes <= 0:
		return errors.New("worker.retention_sweep_minutes must be positive")
	case c.Worker.SurgeResetSweepSeconds <= 0:
		return errors.New("worker.surge_reset_sweep_seconds must be positive")
	}
	switch c.Pricing.TrackerBackend {
	case "postgres", "redis":
	default:
		return fmt.Errorf("unknown pricing.tracker_backend %q", c.Pricing.TrackerBackend)
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
