package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig возвращается, если конфигурация не прошла валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Stripe    StripeConfig    `toml:"stripe"`
	Mail      MailConfig      `toml:"mail"`
	Auth      AuthConfig      `toml:"auth"`
	Booking   BookingConfig   `toml:"booking"`
	Payment   PaymentConfig   `toml:"payment"`
	FieldSync FieldSyncConfig `toml:"fieldsync"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logs      LogsConfig      `toml:"logs"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	PublicURL       string `toml:"public_url"` // базовый URL фронтенда для ссылок в письмах
	Timezone        string `toml:"timezone"`
	ReadTimeout     int    `toml:"read_timeout"`     // секунды
	WriteTimeout    int    `toml:"write_timeout"`    // секунды
	IdleTimeout     int    `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int    `toml:"shutdown_timeout"` // секунды
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

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `toml:"brokers"`
	MockMode     bool     `toml:"mock_mode"`
	BookingTopic string   `toml:"booking_topic"`
	OrderTopic   string   `toml:"order_topic"`
}

type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	WebhookSecret string `toml:"webhook_secret"`
}

type MailConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
}

type AuthConfig struct {
	JWTSecret           string `toml:"jwt_secret"`
	TokenTTLHours       int    `toml:"token_ttl_hours"`
	MagicLinkTTLMinutes int    `toml:"magic_link_ttl_minutes"`
}

type BookingConfig struct {
	AdvanceDays         int `toml:"advance_days"` // 0 = без ограничения
	MinNoticeMinutes    int `toml:"min_notice_minutes"`
	CancelNoticeMinutes int `toml:"cancel_notice_minutes"`
	MaxSlotsPerItem     int `toml:"max_slots_per_item"`
}

type PaymentConfig struct {
	Currency        string `toml:"currency"`
	OrderTTLMinutes int    `toml:"order_ttl_minutes"`
	ExpirySchedule  string `toml:"expiry_schedule"`
}

type FieldSyncConfig struct {
	Enabled   bool   `toml:"enabled"`
	URL       string `toml:"url"`
	Timeout   int    `toml:"timeout"` // секунды
	Schedule  string `toml:"schedule"`
	DaysAhead int    `toml:"days_ahead"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// Load читает конфигурацию из TOML файла
// Секреты переопределяются переменными окружения (в т.ч. из .env)
func Load(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default конфигурация со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			PublicURL:       "http://localhost:3000",
			Timezone:        "UTC",
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
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			MockMode:     true,
			BookingTopic: "booking-events",
			OrderTopic:   "order-events",
		},
		Mail: MailConfig{Port: 587},
		Auth: AuthConfig{
			TokenTTLHours:       72,
			MagicLinkTTLMinutes: 15,
		},
		Booking: BookingConfig{
			AdvanceDays:         30,
			MinNoticeMinutes:    30,
			CancelNoticeMinutes: 120,
			MaxSlotsPerItem:     8,
		},
		Payment: PaymentConfig{
			Currency:        "usd",
			OrderTTLMinutes: 15,
			ExpirySchedule:  "@every 1m",
		},
		FieldSync: FieldSyncConfig{
			Timeout:   10,
			Schedule:  "@every 15m",
			DaysAhead: 14,
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "court-booking",
		},
		Logs: LogsConfig{Level: "info"},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"DATABASE_PASSWORD", &c.Database.Password},
		{"JWT_SECRET", &c.Auth.JWTSecret},
		{"STRIPE_SECRET_KEY", &c.Stripe.SecretKey},
		{"STRIPE_WEBHOOK_SECRET", &c.Stripe.WebhookSecret},
		{"SMTP_PASSWORD", &c.Mail.Password},
		{"REDIS_PASSWORD", &c.Redis.Password},
	}

	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.target = v
		}
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, "server.http_port out of range")
	}
	if c.Database.DBName == "" {
		problems = append(problems, "database.dbname is required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Auth.TokenTTLHours <= 0 {
		problems = append(problems, "auth.token_ttl_hours must be positive")
	}
	if c.Booking.AdvanceDays < 0 {
		problems = append(problems, "booking.advance_days must be >= 0")
	}
	if c.Booking.MinNoticeMinutes < 0 || c.Booking.CancelNoticeMinutes < 0 {
		problems = append(problems, "booking notice minutes must be >= 0")
	}
	if c.Booking.MaxSlotsPerItem <= 0 {
		problems = append(problems, "booking.max_slots_per_item must be positive")
	}
	if c.Payment.OrderTTLMinutes <= 0 {
		problems = append(problems, "payment.order_ttl_minutes must be positive")
	}
	if c.Payment.Currency == "" {
		problems = append(problems, "payment.currency is required")
	}
	if !c.Kafka.MockMode && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers required when mock_mode is off")
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.From == "") {
		problems = append(problems, "mail.host and mail.from required when mail is enabled")
	}
	if c.FieldSync.Enabled && c.FieldSync.URL == "" {
		problems = append(problems, "fieldsync.url required when fieldsync is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
