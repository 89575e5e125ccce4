// Package config loads the service configuration: YAML file, .env and
// process environment overrides, then validation against an embedded CUE
// schema before anything touches a database or a listener.
package config

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// schema constrains a decoded Config. Validation happens after all
// overrides are applied, so a bad env var fails the same way a bad file
// does.
const schema = `
#Config: {
	server: {
		addr:              string & !=""
		username:          string & !=""
		password_hash:     string
		jwt_secret:        string
		token_ttl_minutes: int & >0
	}
	store: {
		postgres_url: string
		sqlite_path:  string & !=""
	}
	scan: {
		cooldown_seconds: int & >=0
	}
	log: {
		level: "debug" | "info" | "warn" | "error"
	}
}
`

// Config is the full service configuration.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Store  StoreConfig  `yaml:"store" json:"store"`
	Scan   ScanConfig   `yaml:"scan" json:"scan"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP surface and its shared-credential gate.
// Login is disabled while PasswordHash is empty.
type ServerConfig struct {
	Addr            string `yaml:"addr" json:"addr"`
	Username        string `yaml:"username" json:"username"`
	PasswordHash    string `yaml:"password_hash" json:"password_hash"`
	JWTSecret       string `yaml:"jwt_secret" json:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes" json:"token_ttl_minutes"`
}

// TokenTTL returns the bearer-token lifetime.
func (s ServerConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

// StoreConfig selects the storage tiers. An empty PostgresURL skips the
// online tier and the service runs on the local file alone.
type StoreConfig struct {
	PostgresURL string `yaml:"postgres_url" json:"postgres_url"`
	SQLitePath  string `yaml:"sqlite_path" json:"sqlite_path"`
}

// ScanConfig tunes scan handling.
type ScanConfig struct {
	CooldownSeconds int `yaml:"cooldown_seconds" json:"cooldown_seconds"`
}

// Cooldown returns the scan debounce window.
func (s ScanConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSeconds) * time.Second
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Username:        "admin",
			TokenTTLMinutes: 12 * 60,
		},
		Store: StoreConfig{
			SQLitePath: "circulate.db",
		},
		Scan: ScanConfig{CooldownSeconds: 2},
		Log:  LogConfig{Level: "info"},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then a .env file in the working
// directory, then process environment variables. The result is validated
// before being returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is optional; absence is the normal case outside development.
	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment variable names. DATABASE_URL follows the hosting-platform
// convention; the rest are namespaced.
const (
	EnvAddr         = "CIRCULATE_ADDR"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvSQLitePath   = "CIRCULATE_SQLITE_PATH"
	EnvUsername     = "CIRCULATE_USERNAME"
	EnvPasswordHash = "CIRCULATE_PASSWORD_HASH"
	EnvJWTSecret    = "CIRCULATE_JWT_SECRET"
	EnvLogLevel     = "CIRCULATE_LOG_LEVEL"
)

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	set(&cfg.Server.Addr, EnvAddr)
	set(&cfg.Store.PostgresURL, EnvDatabaseURL)
	set(&cfg.Store.SQLitePath, EnvSQLitePath)
	set(&cfg.Server.Username, EnvUsername)
	set(&cfg.Server.PasswordHash, EnvPasswordHash)
	set(&cfg.Server.JWTSecret, EnvJWTSecret)
	set(&cfg.Log.Level, EnvLogLevel)
}

// Validate unifies the configuration with the embedded CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	sv := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Config"))
	if err := sv.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	unified := sv.Unify(ctx.Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
