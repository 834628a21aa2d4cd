// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Pass           string
	Name           string
	MigrateRetries int
}

type Config struct {
	Env            string
	HTTPAddr       string
	LogLevel       zerolog.Level
	StoreDriver    string
	DB             DBConfig
	RedisAddr      string
	KafkaBrokers   []string
	OrderTopic     string
	JWTSecret      string
	TokenTTL       time.Duration
	BcryptCost     int
	RequestTimeout time.Duration
	RateLimit      float64
	RateBurst      int
	InitAdminEmail string
	InitAdminPass  string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from lookup, which has the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	p := parser{lookup: lookup}

	cfg := &Config{
		Env:         p.str("ENV", "development"),
		HTTPAddr:    p.str("HTTP_ADDR", ":7500"),
		StoreDriver: strings.ToLower(p.str("STORE_DRIVER", DriverMySQL)),
		DB: DBConfig{
			Host:           p.str("DB_HOST", "127.0.0.1"),
			Port:           p.str("DB_PORT", "3306"),
			User:           p.str("DB_USER", "root"),
			Pass:           p.str("DB_PASS", ""),
			Name:           p.str("DB_NAME", "storehive"),
			MigrateRetries: p.intVal("DB_MIGRATE_RETRIES", 3),
		},
		RedisAddr:      p.str("REDIS_ADDR", ""),
		KafkaBrokers:   p.list("KAFKA_BROKERS"),
		OrderTopic:     p.str("ORDER_TOPIC", "order-topic"),
		JWTSecret:      p.str("JWT_SECRET", ""),
		TokenTTL:       p.duration("TOKEN_TTL", 24*time.Hour),
		BcryptCost:     p.intVal("BCRYPT_COST", 10),
		RequestTimeout: p.duration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimit:      p.floatVal("RATE_LIMIT", 10),
		RateBurst:      p.intVal("RATE_BURST", 30),
		InitAdminEmail: p.str("INIT_ADMIN_EMAIL", ""),
		InitAdminPass:  p.str("INIT_ADMIN_PASSWORD", ""),
	}

	level, err := zerolog.ParseLevel(strings.ToLower(p.str("LOG_LEVEL", "info")))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	if p.err() != nil {
		return nil, p.err()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.StoreDriver != DriverMySQL && c.StoreDriver != DriverMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMemory, c.StoreDriver))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT and RATE_BURST must be positive"))
	}
	if c.DB.MigrateRetries < 0 {
		errs = append(errs, errors.New("DB_MIGRATE_RETRIES must not be negative"))
	}
	return errors.Join(errs...)
}

// DSN is the MySQL data source name. ClientFoundRows makes conditional
// updates report matched rows.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true&loc=UTC", d.User, d.Pass, d.Host, d.Port, d.Name)
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v, ok := p.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) intVal(key string, def int) int {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) floatVal(key string, def float64) float64 {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := p.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) list(key string) []string {
	var out []string
	for _, v := range strings.Split(p.str(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}
