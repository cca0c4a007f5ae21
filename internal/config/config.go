// Package config loads dashboard settings from an optional .env file,
// an optional config.yaml and FRAUD_DASHBOARD_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/storage"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "FRAUD_DASHBOARD"

// Config holds the full application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Auth    AuthConfig    `yaml:"auth" mapstructure:"auth"`
	Prefs   PrefsConfig   `yaml:"prefs" mapstructure:"prefs"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Alerts  AlertsConfig  `yaml:"alerts" mapstructure:"alerts"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	CookieSecure   bool     `yaml:"cookie_secure" mapstructure:"cookie_secure"`
}

// APIConfig points at the fraud-detection backend.
type APIConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Token       string `yaml:"token" mapstructure:"token"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
}

// Timeout returns the HTTP client timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// CacheConfig configures the query cache.
type CacheConfig struct {
	StaleSeconds int `yaml:"stale_seconds" mapstructure:"stale_seconds"`
}

// StaleTime returns how long a cached response stays fresh.
func (c CacheConfig) StaleTime() time.Duration {
	return time.Duration(c.StaleSeconds) * time.Second
}

// AuthConfig configures analyst sign-in.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
	Users         []models.User `yaml:"users" mapstructure:"users"`
}

// TokenTTL returns the lifetime of a session token.
func (c AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// PrefsConfig selects the notification preferences repository.
type PrefsConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // file | postgres | sqlite
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// StorageConfig selects where staged uploads and exports are kept.
type StorageConfig struct {
	Driver  string           `yaml:"driver" mapstructure:"driver"` // local | r2
	Dir     string           `yaml:"dir" mapstructure:"dir"`
	BaseURL string           `yaml:"base_url" mapstructure:"base_url"`
	R2      storage.R2Config `yaml:"r2" mapstructure:"r2"`
}

// AlertsConfig configures the background alert watcher.
type AlertsConfig struct {
	PollSeconds int `yaml:"poll_seconds" mapstructure:"poll_seconds"`
}

// PollInterval returns the watcher interval.
func (c AlertsConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.retries", 3)
	v.SetDefault("cache.stale_seconds", 30)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 12)
	v.SetDefault("prefs.driver", "file")
	v.SetDefault("prefs.path", "data/preferences.json")
	v.SetDefault("prefs.database_url", "")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "data/files")
	v.SetDefault("storage.base_url", "/files")
	v.SetDefault("storage.r2.account_id", "")
	v.SetDefault("storage.r2.access_key", "")
	v.SetDefault("storage.r2.secret_key", "")
	v.SetDefault("storage.r2.bucket", "")
	v.SetDefault("storage.r2.public_url", "")
	v.SetDefault("storage.r2.endpoint", "")
	v.SetDefault("alerts.poll_seconds", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return eris.New("config: auth.jwt_secret is required")
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return eris.New("config: api.base_url is required")
	}
	switch c.Prefs.Driver {
	case "file", "sqlite":
		if c.Prefs.Path == "" {
			return eris.Errorf("config: prefs.path is required for driver %q", c.Prefs.Driver)
		}
	case "postgres":
		if c.Prefs.DatabaseURL == "" {
			return eris.New("config: prefs.database_url is required for driver \"postgres\"")
		}
	default:
		return eris.Errorf("config: unknown prefs.driver %q", c.Prefs.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "r2":
		if c.Storage.R2.Bucket == "" {
			return eris.New("config: storage.r2.bucket is required for driver \"r2\"")
		}
	default:
		return eris.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	for i, u := range c.Auth.Users {
		if u.Email == "" || u.PasswordHash == "" {
			return eris.Errorf("config: auth.users[%d] needs email and password_hash", i)
		}
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
