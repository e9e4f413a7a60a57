package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"restopos/internal/models"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Config is the complete runtime configuration. Values come from an optional TOML
// file named by CONFIG_FILE, then environment variables override them.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Redis     RedisConfig     `toml:"redis"`
	MinIO     MinIOConfig     `toml:"minio"`
	Inventory InventoryConfig `toml:"inventory"`
	Cache     CacheConfig     `toml:"cache"`
}

type ServerConfig struct {
	Port     int    `toml:"port"`
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	URL      string `toml:"url"`
	MaxConns int32  `toml:"max_conns"`
}

// AuthConfig holds token settings. When JWKSURL is set tokens are verified against
// that key set instead of Secret.
type AuthConfig struct {
	Secret           string        `toml:"jwt_secret"`
	TokenTTL         time.Duration `toml:"jwt_ttl"`
	JWKSURL          string        `toml:"jwks_url"`
	LoginMaxAttempts int           `toml:"login_max_attempts"`
	LoginWindow      time.Duration `toml:"login_window"`

	// BootstrapEmail and BootstrapPassword seed a MANAGER account on startup when set.
	BootstrapEmail    string `toml:"bootstrap_manager_email"`
	BootstrapPassword string `toml:"bootstrap_manager_password"`

	// GeneratedSecret is true when no secret was configured and one was generated.
	GeneratedSecret bool `toml:"-"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type InventoryConfig struct {
	StockPolicy      models.StockPolicy `toml:"stock_policy"`
	LowStockInterval time.Duration      `toml:"low_stock_interval"`
}

type CacheConfig struct {
	MenuTTL   time.Duration `toml:"menu_ttl"`
	ReportTTL time.Duration `toml:"report_ttl"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, Env: "development", LogLevel: "info"},
		Database: DatabaseConfig{MaxConns: 10},
		Auth: AuthConfig{
			TokenTTL:         24 * time.Hour,
			LoginMaxAttempts: 5,
			LoginWindow:      15 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		MinIO: MinIOConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "menu-images",
		},
		Inventory: InventoryConfig{
			StockPolicy:      models.StockPolicyReject,
			LowStockInterval: 15 * time.Minute,
		},
		Cache: CacheConfig{MenuTTL: 5 * time.Minute, ReportTTL: time.Minute},
	}
}

// Load reads .env if present, then CONFIG_FILE if set, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = random.String(32)
		cfg.Auth.GeneratedSecret = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over cfg.
func LoadFile(filename string, cfg *Config) error {
	if _, err := toml.DecodeFile(filename, cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if !c.Inventory.StockPolicy.Valid() {
		return fmt.Errorf("invalid STOCK_POLICY %q: want reject or allow_negative", c.Inventory.StockPolicy)
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.Inventory.LowStockInterval <= 0 {
		return errors.New("LOW_STOCK_INTERVAL must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production logging.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) error {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = n
		}
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = d
		}
		return nil
	}

	str("APP_ENV", &cfg.Server.Env)
	str("LOG_LEVEL", &cfg.Server.LogLevel)
	str("DATABASE_URL", &cfg.Database.URL)
	str("JWT_SECRET", &cfg.Auth.Secret)
	str("JWT_JWKS_URL", &cfg.Auth.JWKSURL)
	str("BOOTSTRAP_MANAGER_EMAIL", &cfg.Auth.BootstrapEmail)
	str("BOOTSTRAP_MANAGER_PASSWORD", &cfg.Auth.BootstrapPassword)
	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	str("MINIO_ENDPOINT", &cfg.MinIO.Endpoint)
	str("MINIO_ACCESS_KEY", &cfg.MinIO.AccessKey)
	str("MINIO_SECRET_KEY", &cfg.MinIO.SecretKey)
	str("MINIO_BUCKET", &cfg.MinIO.Bucket)

	if v, ok := lookup("MINIO_USE_SSL"); ok && v != "" {
		cfg.MinIO.UseSSL = v == "true"
	}
	if v, ok := lookup("STOCK_POLICY"); ok && v != "" {
		cfg.Inventory.StockPolicy = models.StockPolicy(strings.ToLower(v))
	}

	var maxConns int
	if err := integer("DB_MAX_CONNS", &maxConns); err != nil {
		return err
	}
	if maxConns > 0 {
		cfg.Database.MaxConns = int32(maxConns)
	}

	for key, dst := range map[string]*int{
		"PORT":               &cfg.Server.Port,
		"REDIS_DB":           &cfg.Redis.DB,
		"LOGIN_MAX_ATTEMPTS": &cfg.Auth.LoginMaxAttempts,
	} {
		if err := integer(key, dst); err != nil {
			return err
		}
	}

	for key, dst := range map[string]*time.Duration{
		"JWT_TTL":            &cfg.Auth.TokenTTL,
		"LOGIN_WINDOW":       &cfg.Auth.LoginWindow,
		"LOW_STOCK_INTERVAL": &cfg.Inventory.LowStockInterval,
		"MENU_CACHE_TTL":     &cfg.Cache.MenuTTL,
		"REPORT_CACHE_TTL":   &cfg.Cache.ReportTTL,
	} {
		if err := duration(key, dst); err != nil {
			return err
		}
	}
	return nil
}
