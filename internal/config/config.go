package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Env      string
	HTTPAddr string

	DBDriver    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CronSecret        string
	AdminPasswordHash string
	AdminPassword     string
	JWTSecret         string
	AdminTokenTTL     time.Duration
	CookieSecure      bool

	MaxTables     int
	SeatsPerTable int

	LogLevel  string
	LogFormat string

	WhatsAppDataDir string
	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables, on top of an
// optional .env file at path ("" means ./.env).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = ".env"
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		// a missing .env is fine; the environment may carry everything
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		HTTPAddr: v.GetString("HTTP_ADDR"),

		DBDriver:    v.GetString("DB_DRIVER"),
		DatabaseURL: v.GetString("DATABASE_URL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		CronSecret:        v.GetString("CRON_SECRET"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		AdminTokenTTL:     v.GetDuration("ADMIN_TOKEN_TTL"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),

		MaxTables:     v.GetInt("MAX_TABLES"),
		SeatsPerTable: v.GetInt("SEATS_PER_TABLE"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		WhatsAppDataDir: v.GetString("WHATSAPP_DATA_DIR"),
		WeddingDate:     v.GetString("WEDDING_DATE"),
		WeddingLocation: v.GetString("WEDDING_LOCATION"),
		BrideName:       v.GetString("BRIDE_NAME"),
		GroomName:       v.GetString("GROOM_NAME"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URL", "file:data/wedding.db")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("CRON_SECRET", "")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_TOKEN_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("MAX_TABLES", 26)
	v.SetDefault("SEATS_PER_TABLE", 10)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WHATSAPP_DATA_DIR", "data")
	v.SetDefault("WEDDING_DATE", "Saturday, January 1, 2025")
	v.SetDefault("WEDDING_LOCATION", "Venue TBD")
	v.SetDefault("BRIDE_NAME", "Bride")
	v.SetDefault("GROOM_NAME", "Groom")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or pgx, got %q", c.DBDriver)
	}
	if c.DBDriver == "pgx" && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for pgx")
	}
	if c.MaxTables < 1 {
		return errors.New("MAX_TABLES must be at least 1")
	}
	if c.SeatsPerTable < 1 {
		return errors.New("SEATS_PER_TABLE must be at least 1")
	}
	if c.AdminTokenTTL <= 0 {
		return errors.New("ADMIN_TOKEN_TTL must be positive")
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in production")
		}
		if c.AdminPasswordHash == "" {
			return errors.New("ADMIN_PASSWORD_HASH is required in production")
		}
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	return nil
}
