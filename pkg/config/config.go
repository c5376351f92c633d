package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "KAANAGAS"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv   = "KAANAGAS_APP_ENV"
	EnvPort     = "KAANAGAS_APP_PORT"
	EnvDBDSN    = "KAANAGAS_DB_DSN"
	EnvDBHost   = "KAANAGAS_DB_HOST"
	EnvDBUser   = "KAANAGAS_DB_USER"
	EnvDBName   = "KAANAGAS_DB_NAME"
	EnvRedisURL = "KAANAGAS_REDIS_URL"

	EnvJWTSecret  = "KAANAGAS_JWT_SECRET"
	EnvJWTIssuer  = "KAANAGAS_JWT_ISSUER"
	EnvJWTExpMins = "KAANAGAS_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID      = "KAANAGAS_GCP_PROJECT_ID"
	EnvPubSubDomainTopic = "KAANAGAS_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "KAANAGAS_PUBSUB_DOMAIN_SUBSCRIPTION"

	EnvMpesaConsumerKey    = "KAANAGAS_MPESA_CONSUMER_KEY"
	EnvMpesaConsumerSecret = "KAANAGAS_MPESA_CONSUMER_SECRET"
	EnvMpesaShortcode      = "KAANAGAS_MPESA_SHORTCODE"
	EnvMpesaPasskey        = "KAANAGAS_MPESA_PASSKEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Mpesa        MpesaConfig
	Marketplace  MarketplaceConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"KAANAGAS_APP_ENV" required:"true"`
	Port         string `envconfig:"KAANAGAS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KAANAGAS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KAANAGAS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KAANAGAS_DB_DSN"`
	Driver string `envconfig:"KAANAGAS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KAANAGAS_DB_HOST"`
	LegacyPort     int    `envconfig:"KAANAGAS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KAANAGAS_DB_USER"`
	LegacyPassword string `envconfig:"KAANAGAS_DB_PASSWORD"`
	LegacyName     string `envconfig:"KAANAGAS_DB_NAME"`
	LegacySSLMode  string `envconfig:"KAANAGAS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KAANAGAS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KAANAGAS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KAANAGAS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KAANAGAS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KAANAGAS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KAANAGAS_REDIS_ADDR"`
	Password     string        `envconfig:"KAANAGAS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KAANAGAS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KAANAGAS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KAANAGAS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KAANAGAS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KAANAGAS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KAANAGAS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KAANAGAS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KAANAGAS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KAANAGAS_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type MpesaConfig struct {
	BaseURL         string        `envconfig:"KAANAGAS_MPESA_BASE_URL" default:"https://sandbox.safaricom.co.ke"`
	ConsumerKey     string        `envconfig:"KAANAGAS_MPESA_CONSUMER_KEY"`
	ConsumerSecret  string        `envconfig:"KAANAGAS_MPESA_CONSUMER_SECRET"`
	Shortcode       string        `envconfig:"KAANAGAS_MPESA_SHORTCODE"`
	Passkey         string        `envconfig:"KAANAGAS_MPESA_PASSKEY"`
	CallbackURL     string        `envconfig:"KAANAGAS_MPESA_CALLBACK_URL"`
	CallbackSecret  string        `envconfig:"KAANAGAS_MPESA_CALLBACK_SECRET"`
	RequestTimeout  time.Duration `envconfig:"KAANAGAS_MPESA_REQUEST_TIMEOUT" default:"10s"`
	Simulate        bool          `envconfig:"KAANAGAS_MPESA_SIMULATE" default:"false"`
	TransactionType string        `envconfig:"KAANAGAS_MPESA_TRANSACTION_TYPE" default:"CustomerPayBillOnline"`
}

type MarketplaceConfig struct {
	RiderBaseFee          decimal.Decimal `envconfig:"KAANAGAS_RIDER_BASE_FEE" default:"100"`
	RiderPerKmRate        decimal.Decimal `envconfig:"KAANAGAS_RIDER_PER_KM_RATE" default:"10"`
	DefaultPrepMinutes    int             `envconfig:"KAANAGAS_DEFAULT_PREP_MINUTES" default:"30"`
	OrderNumberPrefix     string          `envconfig:"KAANAGAS_ORDER_NUMBER_PREFIX" default:"KAA"`
	MaxOrderItemsPerOrder int             `envconfig:"KAANAGAS_MAX_ORDER_ITEMS" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KAANAGAS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KAANAGAS_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"KAANAGAS_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	WebhookGuardTTL      time.Duration `envconfig:"KAANAGAS_WEBHOOK_GUARD_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KAANAGAS_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"KAANAGAS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KAANAGAS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"KAANAGAS_PUBSUB_DOMAIN_TOPIC" required:"true"`
	DomainSubscription string `envconfig:"KAANAGAS_PUBSUB_DOMAIN_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KAANAGAS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KAANAGAS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KAANAGAS_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
