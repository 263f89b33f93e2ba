package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port            string
	ShutdownTimeout time.Duration

	// Database
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Receipts
	UploadDir      string
	MaxUploadBytes int64
}

// SetDefaults registers the default value of every configuration key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("shutdown_timeout", "30s")

	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("sqlite_path", "./data/spendwise.db")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "spendwise")
	v.SetDefault("db_password", "spendwise")
	v.SetDefault("db_name", "spendwise")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("upload_dir", "receipts")
	v.SetDefault("max_upload_bytes", 2*1024*1024)
}

// NewViper returns a viper instance with defaults applied that reads
// overrides from the environment (DB_DRIVER, UPLOAD_DIR, ...).
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load loads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	return LoadViper(NewViper())
}

// LoadViper is Load for a caller-supplied viper, e.g. one with CLI flags bound.
func LoadViper(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromViper(v)
}

// FromViper builds and validates a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:             v.GetString("env"),
		Port:            v.GetString("port"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		SQLitePath: v.GetString("sqlite_path"),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_sslmode"),

		UploadDir:      v.GetString("upload_dir"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "db_host and db_name are required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported db_driver %q (use sqlite or postgres)", c.DBDriver))
	}

	if c.UploadDir == "" {
		problems = append(problems, "upload_dir must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		problems = append(problems, fmt.Sprintf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// PostgresDSN returns the key/value DSN used by the gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form of the postgres connection, as expected by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
