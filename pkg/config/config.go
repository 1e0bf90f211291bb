package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the platform reads.
	EnvPrefix = "clinic"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
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
	Env          string `envconfig:"CLINIC_APP_ENV" required:"true"`
	Port         string `envconfig:"CLINIC_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CLINIC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CLINIC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CLINIC_DB_DSN"`

	Host     string `envconfig:"CLINIC_DB_HOST"`
	Port     int    `envconfig:"CLINIC_DB_PORT" default:"5432"`
	User     string `envconfig:"CLINIC_DB_USER"`
	Password string `envconfig:"CLINIC_DB_PASSWORD"`
	Name     string `envconfig:"CLINIC_DB_NAME"`
	SSLMode  string `envconfig:"CLINIC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CLINIC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CLINIC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CLINIC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either CLINIC_DB_DSN or CLINIC_DB_HOST/USER/NAME must be set")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"CLINIC_REDIS_URL"`
	Address      string        `envconfig:"CLINIC_REDIS_ADDR"`
	Password     string        `envconfig:"CLINIC_REDIS_PASSWORD"`
	DB           int           `envconfig:"CLINIC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CLINIC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CLINIC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CLINIC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CLINIC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CLINIC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CLINIC_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CLINIC_JWT_ISSUER" default:"clinic-backend"`
	ExpirationMinutes int    `envconfig:"CLINIC_JWT_EXPIRATION_MINUTES" default:"480"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CLINIC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CLINIC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CLINIC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CLINIC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CLINIC_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CLINIC_AUTO_MIGRATE" default:"false"`
}
