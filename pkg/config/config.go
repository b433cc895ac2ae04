package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable consumed by the service.
	EnvPrefix = "SMARTSTOCK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SMARTSTOCK_DB_DSN"
	EnvDBHost = "SMARTSTOCK_DB_HOST"
	EnvDBUser = "SMARTSTOCK_DB_USER"
	EnvDBName = "SMARTSTOCK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	SMTP          SMTPConfig
	Alerts        AlertsConfig
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
	Env          string `envconfig:"SMARTSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"SMARTSTOCK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SMARTSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMARTSTOCK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SMARTSTOCK_DB_DSN"`
	Driver string `envconfig:"SMARTSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SMARTSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"SMARTSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SMARTSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"SMARTSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SMARTSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SMARTSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMARTSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMARTSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMARTSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMARTSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMARTSTOCK_REDIS_URL"`
	Address      string        `envconfig:"SMARTSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"SMARTSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMARTSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMARTSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMARTSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMARTSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMARTSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMARTSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Auth rate limiting
// is skipped when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"SMARTSTOCK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SMARTSTOCK_JWT_ISSUER" default:"smartstock"`
	ExpirationMinutes int    `envconfig:"SMARTSTOCK_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SMARTSTOCK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SMARTSTOCK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SMARTSTOCK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SMARTSTOCK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SMARTSTOCK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"SMARTSTOCK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type SMTPConfig struct {
	Host        string        `envconfig:"SMARTSTOCK_MAIL_SERVER" default:"smtp.gmail.com"`
	Port        int           `envconfig:"SMARTSTOCK_MAIL_PORT" default:"587"`
	Username    string        `envconfig:"SMARTSTOCK_MAIL_USERNAME"`
	Password    string        `envconfig:"SMARTSTOCK_MAIL_PASSWORD"`
	From        string        `envconfig:"SMARTSTOCK_MAIL_FROM"`
	SendTimeout time.Duration `envconfig:"SMARTSTOCK_MAIL_SEND_TIMEOUT" default:"10s"`
}

// Sender returns the From address, falling back to the SMTP username.
func (s SMTPConfig) Sender() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

type AlertsConfig struct {
	Workers   int `envconfig:"SMARTSTOCK_ALERT_WORKERS" default:"2"`
	QueueSize int `envconfig:"SMARTSTOCK_ALERT_QUEUE_SIZE" default:"64"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SMARTSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SMARTSTOCK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
