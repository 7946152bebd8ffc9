package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"craftfolio.dev/internal/auth"
)

// EnvConfigPath names the environment variable pointing at the YAML config file
const EnvConfigPath = "PORTFOLIO_CONFIG"

// DefaultConfigFile is read from the working directory when EnvConfigPath is unset
const DefaultConfigFile = "config.yaml"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Admin     AdminConfig     `yaml:"admin"`
	Upload    UploadConfig    `yaml:"upload"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	StaticDir         string        `yaml:"static_dir"`
	// TrustProxy takes the client IP from X-Forwarded-For and friends; enable only behind a proxy
	TrustProxy bool `yaml:"trust_proxy"`
}

// DatabaseConfig selects and tunes the backing store
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Issuer    string        `yaml:"issuer"`

	// SecretGenerated is set when no secret was configured and a random one was used
	SecretGenerated bool `yaml:"-"`
}

// AdminConfig describes the single administrator account
type AdminConfig struct {
	ID           int    `yaml:"id"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	// Password is a plaintext fallback for local development, hashed at load
	Password string `yaml:"password"`
}

// UploadConfig controls where images are stored and how large they may be
type UploadConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
	MaxSide  int    `yaml:"max_side"`
}

// CORSConfig lists the origins allowed to call the API from a browser
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig throttles the public write endpoints per client IP
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// MaxClients bounds how many client IPs are tracked at once
	MaxClients int `yaml:"max_clients"`
}

// LogConfig selects log verbosity and output format
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":5000",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			StaticDir:         "static",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "portfolio.db",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
			Issuer:   "craftfolio",
		},
		Admin: AdminConfig{ID: 1},
		Upload: UploadConfig{
			Dir:      "uploads",
			MaxBytes: 5 << 20,
			MaxSide:  2048,
		},
		CORS:      CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: RateLimitConfig{RequestsPerSecond: 1, Burst: 5, MaxClients: 10000},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the YAML config file if there is one, applies environment
// overrides and validates the result
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit config file path; an empty path skips the file
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.prepare(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("SERVER_ADDR", &c.Server.Addr)
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	setString("STATIC_DIR", &c.Server.StaticDir)
	setString("DATABASE_DRIVER", &c.Database.Driver)
	setString("DATABASE_URL", &c.Database.DSN)
	setString("JWT_SECRET", &c.Auth.JWTSecret)
	setString("ADMIN_USERNAME", &c.Admin.Username)
	setString("ADMIN_PASSWORD_HASH", &c.Admin.PasswordHash)
	setString("ADMIN_PASSWORD", &c.Admin.Password)
	setString("UPLOAD_DIR", &c.Upload.Dir)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.Auth.TokenTTL = ttl
	}
	if v := getenv("ADMIN_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ADMIN_ID %q: %w", v, err)
		}
		c.Admin.ID = id
	}
	if v := getenv("TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY %q: %w", v, err)
		}
		c.Server.TrustProxy = trust
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
	return nil
}

// applyDefaults fills in values a config file may have zeroed
func (c *Config) applyDefaults() {
	d := Default()

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadHeaderTimeout <= 0 {
		c.Server.ReadHeaderTimeout = d.Server.ReadHeaderTimeout
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.IdleTimeout <= 0 {
		c.Server.IdleTimeout = d.Server.IdleTimeout
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = d.Server.StaticDir
	}
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = d.Auth.TokenTTL
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = d.Auth.Issuer
	}
	if c.Admin.ID == 0 {
		c.Admin.ID = d.Admin.ID
	}
	if c.Upload.Dir == "" {
		c.Upload.Dir = d.Upload.Dir
	}
	if c.Upload.MaxBytes <= 0 {
		c.Upload.MaxBytes = d.Upload.MaxBytes
	}
	if c.Upload.MaxSide <= 0 {
		c.Upload.MaxSide = d.Upload.MaxSide
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = d.CORS.AllowedOrigins
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = d.RateLimit.RequestsPerSecond
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = d.RateLimit.Burst
	}
	if c.RateLimit.MaxClients <= 0 {
		c.RateLimit.MaxClients = d.RateLimit.MaxClients
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// prepare hashes a plaintext admin password and generates a signing secret when none is set
func (c *Config) prepare() error {
	if c.Admin.PasswordHash == "" && c.Admin.Password != "" {
		hash, err := auth.HashPassword(c.Admin.Password)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		c.Admin.PasswordHash = hash
	}
	c.Admin.Password = ""

	if c.Auth.JWTSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate jwt secret: %w", err)
		}
		c.Auth.JWTSecret = hex.EncodeToString(buf)
		c.Auth.SecretGenerated = true
	}
	return nil
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.Admin.Username == "" {
		return errors.New("admin username is required (admin.username or ADMIN_USERNAME)")
	}
	if c.Admin.PasswordHash == "" {
		return errors.New("admin password is required (admin.password_hash or ADMIN_PASSWORD_HASH)")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("unknown database driver %q (want sqlite, mysql or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required (database.dsn or DATABASE_URL)")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format)
	}
	return nil
}
