package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yeremiapane/restaurant-ordering/database"
)

// Config is the process configuration. Keys are read from the environment
// (and an optional .env file) under their upper-case names, e.g. DB_DSN.
type Config struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin_mode"`

	DBDriver string `mapstructure:"db_driver"`
	DBDSN    string `mapstructure:"db_dsn"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl"`

	SessionDefaultTTLMinutes int           `mapstructure:"session_default_ttl_minutes"`
	SessionMaxTTLMinutes     int           `mapstructure:"session_max_ttl_minutes"`
	SweepInterval            time.Duration `mapstructure:"sweep_interval"`
	DuplicateFixInterval     time.Duration `mapstructure:"duplicate_fix_interval"`
	SessionUniqueActiveIndex bool          `mapstructure:"session_unique_active_index"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	RateLimitRPS      float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
	CORSAllowedOrigin string  `mapstructure:"cors_allowed_origin"`
}

func Default() Config {
	return Config{
		Port:                     "8080",
		GinMode:                  "debug",
		DBDriver:                 database.DriverSQLite,
		DBDSN:                    "file:restaurant.db?_busy_timeout=5000",
		JWTTTL:                   24 * time.Hour,
		SessionDefaultTTLMinutes: 120,
		SessionMaxTTLMinutes:     24 * 60,
		SweepInterval:            time.Minute,
		DuplicateFixInterval:     0,
		SessionUniqueActiveIndex: false,
		LogLevel:                 "info",
		LogFormat:                "text",
		RateLimitRPS:             50,
		RateLimitBurst:           100,
		CORSAllowedOrigin:        "*",
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("port", d.Port)
	v.SetDefault("gin_mode", d.GinMode)
	v.SetDefault("db_driver", d.DBDriver)
	v.SetDefault("db_dsn", d.DBDSN)
	v.SetDefault("jwt_secret", d.JWTSecret)
	v.SetDefault("jwt_ttl", d.JWTTTL)
	v.SetDefault("session_default_ttl_minutes", d.SessionDefaultTTLMinutes)
	v.SetDefault("session_max_ttl_minutes", d.SessionMaxTTLMinutes)
	v.SetDefault("sweep_interval", d.SweepInterval)
	v.SetDefault("duplicate_fix_interval", d.DuplicateFixInterval)
	v.SetDefault("session_unique_active_index", d.SessionUniqueActiveIndex)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("rate_limit_rps", d.RateLimitRPS)
	v.SetDefault("rate_limit_burst", d.RateLimitBurst)
	v.SetDefault("cors_allowed_origin", d.CORSAllowedOrigin)
}

// LoadDotEnv loads .env into the process environment when the file exists.
// Variables already set win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v and the environment, then validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.DBDriver) {
	case database.DriverMySQL, database.DriverPostgres, "postgresql", database.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("db_driver %q is not one of mysql, postgres, sqlite", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("db_dsn is required"))
	}
	if c.SessionDefaultTTLMinutes <= 0 {
		errs = append(errs, errors.New("session_default_ttl_minutes must be positive"))
	}
	if c.SessionMaxTTLMinutes < c.SessionDefaultTTLMinutes {
		errs = append(errs, errors.New("session_max_ttl_minutes must not be below the default ttl"))
	}
	if c.SweepInterval < 0 || c.DuplicateFixInterval < 0 {
		errs = append(errs, errors.New("job intervals must not be negative"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate_limit_rps and rate_limit_burst must be positive"))
	}
	return errors.Join(errs...)
}

// RequireJWTSecret is checked by commands that serve the admin surface.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required to serve the admin endpoints")
	}
	return nil
}

func (c *Config) DatabaseOptions() database.Options {
	return database.Options{Driver: c.DBDriver, DSN: c.DBDSN}
}
