package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	defaultJWTSecret = "farmfinance-dev-secret"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	Port     int    `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Timezone string `mapstructure:"TIMEZONE"`

	DBDriver    string `mapstructure:"DB_DRIVER"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTExpiry     time.Duration `mapstructure:"JWT_EXPIRY"`
	BcryptCost    int           `mapstructure:"BCRYPT_COST"`
	EncryptionKey string        `mapstructure:"ENCRYPTION_KEY"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	FirebaseProjectID            string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseServiceAccountJSON   string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON"`
	FirebaseServiceAccountBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_BASE64"`

	OrphanCheckInterval time.Duration `mapstructure:"ORPHAN_CHECK_INTERVAL"`
}

var keys = []string{
	"APP_ENV", "PORT", "LOG_LEVEL", "TIMEZONE",
	"DB_DRIVER", "SQLITE_PATH", "DATABASE_URL",
	"JWT_SECRET", "JWT_EXPIRY", "BCRYPT_COST", "ENCRYPTION_KEY",
	"CORS_ALLOWED_ORIGINS",
	"FIREBASE_PROJECT_ID", "FIREBASE_SERVICE_ACCOUNT_JSON", "FIREBASE_SERVICE_ACCOUNT_BASE64",
	"ORPHAN_CHECK_INTERVAL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "./farmfinance.db")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ORPHAN_CHECK_INTERVAL", "24h")
}

// Load reads .env (if present), then an optional config file, then the
// environment. Later sources win. path may be empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows about.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))

	return &c, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv != EnvProduction
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Location resolves TIMEZONE. Validate reports an unknown zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate returns every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.AppEnv != EnvDevelopment && c.AppEnv != EnvProduction {
		errs = append(errs, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.AppEnv))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite3 driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.JWTSecret == defaultJWTSecret && !c.IsDevelopment() {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY must be positive, got %s", c.JWTExpiry))
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
	if c.EncryptionKey == "" && !c.IsDevelopment() {
		errs = append(errs, errors.New("ENCRYPTION_KEY must be set in production"))
	}
	if c.OrphanCheckInterval < 0 {
		errs = append(errs, fmt.Errorf("ORPHAN_CHECK_INTERVAL cannot be negative, got %s", c.OrphanCheckInterval))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}
