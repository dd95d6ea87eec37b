package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	APIURL    string `env:"AUTOX_API_URL, default=http://localhost:5000/api" validate:"required,url"`
	LogLevel  string `env:"LOG_LEVEL,     default=info"`
	LogPretty bool   `env:"LOG_PRETTY,    default=false"`

	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Mock    MockConfig
}

// StorageConfig selects the durable key-value backend holding the session.
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND,   default=file" validate:"oneof=file memory redis mongo"`
	Path      string `env:"STORAGE_PATH"`
	Namespace string `env:"STORAGE_NAMESPACE, default=autox"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=autox"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// MockConfig configures the autox-mock development backend.
type MockConfig struct {
	Port        string        `env:"PORT,             default=5000"`
	JWTSecret   string        `env:"JWT_SECRET,       default=autox-dev-secret"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,        default=24h"`
	Persistence string        `env:"MOCK_PERSISTENCE, default=memory" validate:"oneof=memory mongo"`
	Revocation  string        `env:"MOCK_REVOCATION,  default=memory" validate:"oneof=memory redis"`
	LoginRate   float64       `env:"LOGIN_RATE,       default=1"`
	LoginBurst  int           `env:"LOGIN_BURST,      default=5"`
}

// Load reads an optional .env file from the working directory, then the
// process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return process(ctx, envconfig.OsLookuper())
}

// LoadFrom builds a Config from an explicit set of variables. Used by tests.
func LoadFrom(ctx context.Context, vars map[string]string) (*Config, error) {
	return process(ctx, envconfig.MapLookuper(vars))
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// SessionPath returns the file used by the file storage backend, defaulting
// to <user config dir>/autox/session.json.
func (s StorageConfig) SessionPath() (string, error) {
	if s.Path != "" {
		return s.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "autox", "session.json"), nil
}
