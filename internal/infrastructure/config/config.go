package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Common settings shared by every binary.
type Common struct {
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=financevault"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

// Gateway configures the session cookie bridge and page server.
type Gateway struct {
	Common

	Port            string        `env:"PORT,             default=3000"`
	BackendURL      string        `env:"API_BASE_URL,     default=http://localhost:8000/api" validate:"required,url"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT,  default=10s"`
	CookieSecure    bool          `env:"COOKIE_SECURE,    default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`
}

// Client configures the command-line client runtime.
type Client struct {
	Common

	GatewayURL     string        `env:"GATEWAY_URL,     default=http://localhost:3000" validate:"required,url"`
	BackendURL     string        `env:"API_BASE_URL,    default=http://localhost:8000/api" validate:"required,url"`
	Timeout        time.Duration `env:"CLIENT_TIMEOUT,  default=10s"`
	SessionStore   string        `env:"SESSION_STORE,   default=bolt" validate:"oneof=bolt redis memory"`
	SessionPath    string        `env:"SESSION_PATH"`
	SessionProfile string        `env:"SESSION_PROFILE, default=default"`

	Redis RedisConfig
}

// Identity configures the development identity backend.
type Identity struct {
	Common

	Port            string        `env:"PORT,             default=8000"`
	JWTSecret       string        `env:"JWT_SECRET"       validate:"required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=24h"`
	KeyName         string        `env:"RSA_KEY_NAME,     default=main"`
	KeyBits         int           `env:"RSA_KEY_BITS,     default=2048" validate:"gte=2048"`
	AccountStore    string        `env:"ACCOUNT_STORE,    default=memory" validate:"oneof=memory mongo"`
	RevocationStore string        `env:"REVOCATION_STORE, default=memory" validate:"oneof=memory redis"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Mongo MongoConfig
	Redis RedisConfig
}

// LoadGateway reads the gateway configuration.
func LoadGateway(ctx context.Context) (*Gateway, error) {
	var cfg Gateway
	return &cfg, load(ctx, &cfg, nil)
}

// LoadClient reads the client configuration.
func LoadClient(ctx context.Context) (*Client, error) {
	var cfg Client
	return &cfg, load(ctx, &cfg, nil)
}

// LoadIdentity reads the identity backend configuration.
func LoadIdentity(ctx context.Context) (*Identity, error) {
	var cfg Identity
	return &cfg, load(ctx, &cfg, nil)
}

// load reads an optional .env file, then processes target from the
// environment (or from lookuper when set) and validates it.
func load(ctx context.Context, target any, lookuper envconfig.Lookuper) error {
	if lookuper == nil {
		_ = godotenv.Load()
		lookuper = envconfig.OsLookuper()
	}

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := validator.New().Struct(target); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}
