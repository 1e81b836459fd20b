package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Supported capability token transports.
const (
	TransportBearer = "bearer"
	TransportCookie = "cookie"
)

// Config holds every environment-level setting of the service.
type Config struct {
	AppPort   string
	APIPrefix string

	DBDriver        string
	DatabaseDSN     string
	DBHost          string
	DBPort          int
	DBName          string
	DBUser          string
	DBPassword      string
	DBSSLMode       string
	PoolMin         int
	PoolMax         int
	ConnMaxLifetime time.Duration

	AdminPassword     string
	JWTSecret         string
	TokenTTL          time.Duration
	AuthTransport     string
	SessionCookieName string
	LoginPath         string
	CookieSecure      bool

	AllowedOrigins  string
	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int

	RabbitMQURL string

	TLSCertFile string
	TLSKeyFile  string

	SeedDemoData bool
}

// TLSEnabled reports whether both certificate paths are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// DSN returns DatabaseDSN when set, otherwise a driver specific DSN built from the DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	switch c.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case DriverSQLite:
		return c.DBName + ".db"
	default:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8000")
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "inventory_db")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRE_HOURS", 24)
	v.SetDefault("AUTH_TRANSPORT", TransportBearer)
	v.SetDefault("SESSION_COOKIE_NAME", "session")
	v.SetDefault("LOGIN_PATH", "/login")
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_MAX", 120)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("BODY_LIMIT_BYTES", 1<<20)

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_KEY_FILE", "")
	v.SetDefault("SEED_DEMO_DATA", false)
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using environment only")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:   v.GetString("APP_PORT"),
		APIPrefix: strings.TrimRight(v.GetString("API_PREFIX"), "/"),

		DBDriver:        strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetInt("DB_PORT"),
		DBName:          v.GetString("DB_NAME"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		PoolMin:         v.GetInt("DB_POOL_MIN"),
		PoolMax:         v.GetInt("DB_POOL_MAX"),
		ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),

		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          time.Duration(v.GetInt("JWT_EXPIRE_HOURS")) * time.Hour,
		AuthTransport:     strings.ToLower(strings.TrimSpace(v.GetString("AUTH_TRANSPORT"))),
		SessionCookieName: v.GetString("SESSION_COOKIE_NAME"),
		LoginPath:         v.GetString("LOGIN_PATH"),
		CookieSecure:      v.GetBool("COOKIE_SECURE"),

		AllowedOrigins:  v.GetString("ALLOWED_ORIGINS"),
		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		BodyLimitBytes:  v.GetInt("BODY_LIMIT_BYTES"),

		RabbitMQURL: v.GetString("RABBITMQ_URL"),

		TLSCertFile: v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:  v.GetString("TLS_KEY_FILE"),

		SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, mysql, sqlite, memory (got %q)", c.DBDriver)
	}
	switch c.AuthTransport {
	case TransportBearer, TransportCookie:
	default:
		return fmt.Errorf("AUTH_TRANSPORT must be bearer or cookie (got %q)", c.AuthTransport)
	}
	if c.PoolMin < 0 || c.PoolMax < 1 || c.PoolMin > c.PoolMax {
		return fmt.Errorf("invalid pool bounds: DB_POOL_MIN=%d DB_POOL_MAX=%d", c.PoolMin, c.PoolMax)
	}
	if c.TokenTTL <= 0 {
		return errors.New("JWT_EXPIRE_HOURS must be positive")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	// The guard is mounted for every driver, so the memory store needs a secret too.
	if strings.TrimSpace(c.AdminPassword) == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}
	return nil
}
