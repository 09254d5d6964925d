package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Upstream      UpstreamConfig
	Payment       PaymentConfig
	Catalog       CatalogConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"AURELIA_APP_ENV" required:"true"`
	Port         string `envconfig:"AURELIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AURELIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AURELIA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AURELIA_DB_DSN"`
	Driver string `envconfig:"AURELIA_DB_DRIVER" default:"sqlite"`

	SQLitePath string `envconfig:"AURELIA_DB_SQLITE_PATH" default:"aurelia.db"`

	MaxOpenConns    int           `envconfig:"AURELIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AURELIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AURELIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AURELIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	switch driver {
	case DBDriverSQLite:
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s is postgres", EnvDBDSN, EnvDBDriver)
		}
		return nil
	default:
		return fmt.Errorf("unsupported db driver %q", db.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"AURELIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AURELIA_REDIS_ADDR"`
	Password     string        `envconfig:"AURELIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"AURELIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AURELIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AURELIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AURELIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AURELIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AURELIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"AURELIA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"AURELIA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"AURELIA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"AURELIA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"AURELIA_PASSWORD_MIN_LENGTH" default:"6"`
	ArgonMemoryKB    int `envconfig:"AURELIA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AURELIA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AURELIA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AURELIA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AURELIA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"AURELIA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"AURELIA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"AURELIA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"AURELIA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"AURELIA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"AURELIA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// UpstreamConfig points at the mock collection API the storefront mirrors
// its writes to. The service stays fully functional when it is unreachable.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"AURELIA_UPSTREAM_BASE_URL" default:"http://localhost:5000"`
	Timeout time.Duration `envconfig:"AURELIA_UPSTREAM_TIMEOUT" default:"5s"`
}

type PaymentConfig struct {
	ProcessingDelay time.Duration `envconfig:"AURELIA_PAYMENT_PROCESSING_DELAY" default:"2s"`
	IntentTTL       time.Duration `envconfig:"AURELIA_PAYMENT_INTENT_TTL" default:"15m"`
	DeclineRate     float64       `envconfig:"AURELIA_PAYMENT_DECLINE_RATE" default:"0"`
}

type CatalogConfig struct {
	PageSize    int  `envconfig:"AURELIA_CATALOG_PAGE_SIZE" default:"8"`
	SeedEnabled bool `envconfig:"AURELIA_CATALOG_SEED_ENABLED" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AURELIA_AUTO_MIGRATE" default:"false"`
}
