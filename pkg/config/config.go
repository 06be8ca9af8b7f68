package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every env var this service reads.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CAFECONECTA_DB_DSN"
	EnvDBHost = "CAFECONECTA_DB_HOST"
	EnvDBUser = "CAFECONECTA_DB_USER"
	EnvDBName = "CAFECONECTA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Chat          ChatConfig
	Gemini        GeminiConfig
	Market        MarketConfig
	Cron          CronConfig
	Outbox        OutboxConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
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
	Env          string `envconfig:"CAFECONECTA_APP_ENV" required:"true"`
	Port         string `envconfig:"CAFECONECTA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAFECONECTA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAFECONECTA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"CAFECONECTA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CAFECONECTA_DB_DSN"`
	Driver string `envconfig:"CAFECONECTA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAFECONECTA_DB_HOST"`
	LegacyPort     int    `envconfig:"CAFECONECTA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAFECONECTA_DB_USER"`
	LegacyPassword string `envconfig:"CAFECONECTA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAFECONECTA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAFECONECTA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAFECONECTA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAFECONECTA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAFECONECTA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAFECONECTA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAFECONECTA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAFECONECTA_REDIS_ADDR"`
	Password     string        `envconfig:"CAFECONECTA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAFECONECTA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAFECONECTA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAFECONECTA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAFECONECTA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAFECONECTA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAFECONECTA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"CAFECONECTA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"CAFECONECTA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"CAFECONECTA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"CAFECONECTA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CAFECONECTA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CAFECONECTA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CAFECONECTA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CAFECONECTA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CAFECONECTA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"CAFECONECTA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CAFECONECTA_AUTO_MIGRATE" default:"false"`
}

// ChatConfig governs the negotiation engine's auto-reply behavior.
type ChatConfig struct {
	AutoReplyDelay   time.Duration `envconfig:"CAFECONECTA_CHAT_AUTO_REPLY_DELAY" default:"2s"`
	GeneratorTimeout time.Duration `envconfig:"CAFECONECTA_CHAT_GENERATOR_TIMEOUT" default:"8s"`
	HistoryWindow    int           `envconfig:"CAFECONECTA_CHAT_HISTORY_WINDOW" default:"5"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"CAFECONECTA_GEMINI_API_KEY"`
	Model   string        `envconfig:"CAFECONECTA_GEMINI_MODEL" default:"gemini-3-flash-preview"`
	BaseURL string        `envconfig:"CAFECONECTA_GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"CAFECONECTA_GEMINI_TIMEOUT" default:"10s"`
}

// MarketConfig points at the external quote feed used for the global
// indicator shown on the market board.
type MarketConfig struct {
	TwelveDataAPIKey  string        `envconfig:"CAFECONECTA_TWELVEDATA_API_KEY"`
	TwelveDataBaseURL string        `envconfig:"CAFECONECTA_TWELVEDATA_BASE_URL" default:"https://api.twelvedata.com"`
	IndicatorSymbol   string        `envconfig:"CAFECONECTA_MARKET_INDICATOR_SYMBOL" default:"AAPL"`
	ExchangePair      string        `envconfig:"CAFECONECTA_MARKET_EXCHANGE_PAIR" default:"USD/BRL"`
	FeedTimeout       time.Duration `envconfig:"CAFECONECTA_MARKET_FEED_TIMEOUT" default:"10s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"CAFECONECTA_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"CAFECONECTA_CRON_LOCK_TTL" default:"10m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"CAFECONECTA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"CAFECONECTA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"CAFECONECTA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"CAFECONECTA_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"CAFECONECTA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	MarketplaceTopic        string `envconfig:"CAFECONECTA_PUBSUB_MARKETPLACE_TOPIC" default:"cafe-marketplace-events"`
	MarketplaceSubscription string `envconfig:"CAFECONECTA_PUBSUB_MARKETPLACE_SUBSCRIPTION"`
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
