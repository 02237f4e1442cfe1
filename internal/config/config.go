package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	PlanAPI   PlanAPIConfig   `yaml:"plan_api"`
	Session   SessionConfig   `yaml:"session"`
	CSRF      CSRFConfig      `yaml:"csrf"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type PlanAPIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each plan service call. Zero means no client timeout.
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SecureCookie  bool          `yaml:"secure_cookie"`
}

type CSRFConfig struct {
	Enabled bool `yaml:"enabled"`
	// Key is the 32-byte auth key. When empty a random key is generated at
	// startup, which invalidates open forms on restart.
	Key string `yaml:"key"`
}

type StorageConfig struct {
	// Dir holds the SQLite activity log when no database is configured.
	Dir string `yaml:"dir"`
}

// DatabaseConfig is optional. When Host is set the activity log is kept in
// PostgreSQL instead of SQLite.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Enabled reports whether PostgreSQL is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Default returns the configuration used for any field the file leaves out.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		PlanAPI: PlanAPIConfig{BaseURL: "http://localhost:8000"},
		Session: SessionConfig{TTL: 12 * time.Hour, SweepInterval: 5 * time.Minute},
		CSRF:    CSRFConfig{Enabled: true},
		Storage: StorageConfig{Dir: "data"},
		Tailscale: TailscaleConfig{
			Hostname: "weeklyplan",
			StateDir: "tsnet-state",
		},
	}
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides.
// An empty path skips the file and uses defaults plus environment.
// Env vars use the prefix WEEKLYPLAN_ and underscore-separated paths:
//
//	WEEKLYPLAN_SERVER_HOST, WEEKLYPLAN_SERVER_PORT,
//	WEEKLYPLAN_PLAN_API_BASE_URL, WEEKLYPLAN_PLAN_API_TIMEOUT,
//	WEEKLYPLAN_SESSION_TTL, WEEKLYPLAN_SESSION_SECURE_COOKIE,
//	WEEKLYPLAN_CSRF_ENABLED, WEEKLYPLAN_CSRF_KEY,
//	WEEKLYPLAN_STORAGE_DIR,
//	WEEKLYPLAN_DB_HOST, WEEKLYPLAN_DB_PORT, WEEKLYPLAN_DB_NAME,
//	WEEKLYPLAN_DB_USER, WEEKLYPLAN_DB_PASSWORD, WEEKLYPLAN_DB_SSLMODE,
//	WEEKLYPLAN_TAILSCALE_ENABLED, WEEKLYPLAN_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString("WEEKLYPLAN_SERVER_HOST", &cfg.Server.Host)
	setInt("WEEKLYPLAN_SERVER_PORT", &cfg.Server.Port)
	setString("WEEKLYPLAN_PLAN_API_BASE_URL", &cfg.PlanAPI.BaseURL)
	setDuration("WEEKLYPLAN_PLAN_API_TIMEOUT", &cfg.PlanAPI.Timeout)
	setDuration("WEEKLYPLAN_SESSION_TTL", &cfg.Session.TTL)
	setDuration("WEEKLYPLAN_SESSION_SWEEP_INTERVAL", &cfg.Session.SweepInterval)
	setBool("WEEKLYPLAN_SESSION_SECURE_COOKIE", &cfg.Session.SecureCookie)
	setBool("WEEKLYPLAN_CSRF_ENABLED", &cfg.CSRF.Enabled)
	setString("WEEKLYPLAN_CSRF_KEY", &cfg.CSRF.Key)
	setString("WEEKLYPLAN_STORAGE_DIR", &cfg.Storage.Dir)
	setString("WEEKLYPLAN_DB_HOST", &cfg.Database.Host)
	setInt("WEEKLYPLAN_DB_PORT", &cfg.Database.Port)
	setString("WEEKLYPLAN_DB_NAME", &cfg.Database.Name)
	setString("WEEKLYPLAN_DB_USER", &cfg.Database.User)
	setString("WEEKLYPLAN_DB_PASSWORD", &cfg.Database.Password)
	setString("WEEKLYPLAN_DB_SSLMODE", &cfg.Database.SSLMode)
	setBool("WEEKLYPLAN_TAILSCALE_ENABLED", &cfg.Tailscale.Enabled)
	setString("WEEKLYPLAN_TAILSCALE_HOSTNAME", &cfg.Tailscale.Hostname)
	setString("WEEKLYPLAN_TAILSCALE_STATE_DIR", &cfg.Tailscale.StateDir)
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.PlanAPI.BaseURL == "" {
		return fmt.Errorf("plan_api.base_url is required")
	}
	u, err := url.Parse(c.PlanAPI.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("plan_api.base_url %q is not an absolute URL", c.PlanAPI.BaseURL)
	}
	if c.PlanAPI.Timeout < 0 {
		return fmt.Errorf("plan_api.timeout must not be negative")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	if c.CSRF.Key != "" && len(c.CSRF.Key) != 32 {
		return fmt.Errorf("csrf.key must be 32 bytes, got %d", len(c.CSRF.Key))
	}
	if c.Database.Enabled() {
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	} else if c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required without a database")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required")
	}
	return nil
}
