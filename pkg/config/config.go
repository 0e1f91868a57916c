package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names, exported for tests and tooling.
const (
	EnvAppEnv    = "SKILLBAZAAR_APP_ENV"
	EnvAppPort   = "SKILLBAZAAR_APP_PORT"
	EnvDBDSN     = "SKILLBAZAAR_DB_DSN"
	EnvRedisURL  = "SKILLBAZAAR_REDIS_URL"
	EnvJWTSecret = "SKILLBAZAAR_JWT_SECRET"
	EnvJWTIssuer = "SKILLBAZAAR_JWT_ISSUER"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SKILLBAZAAR_APP_ENV" required:"true"`
	Port         string `envconfig:"SKILLBAZAAR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SKILLBAZAAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SKILLBAZAAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SKILLBAZAAR_DB_DSN"`

	Host     string `envconfig:"SKILLBAZAAR_DB_HOST"`
	Port     int    `envconfig:"SKILLBAZAAR_DB_PORT" default:"5432"`
	User     string `envconfig:"SKILLBAZAAR_DB_USER"`
	Password string `envconfig:"SKILLBAZAAR_DB_PASSWORD"`
	Name     string `envconfig:"SKILLBAZAAR_DB_NAME"`
	SSLMode  string `envconfig:"SKILLBAZAAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SKILLBAZAAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SKILLBAZAAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SKILLBAZAAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SKILLBAZAAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a DSN from discrete connection fields when one was
// not supplied directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either SKILLBAZAAR_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SKILLBAZAAR_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SKILLBAZAAR_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SKILLBAZAAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SKILLBAZAAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SKILLBAZAAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SKILLBAZAAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SKILLBAZAAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SKILLBAZAAR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SKILLBAZAAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SKILLBAZAAR_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}
