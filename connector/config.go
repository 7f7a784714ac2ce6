package connector

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every variable read by ConfigFromEnv.
const EnvPrefix = "PGQUERY_"

// Config represents database connection configuration.
type Config struct {
	Host           string            `json:"host" yaml:"host"`
	Port           int               `json:"port" yaml:"port"`
	Database       string            `json:"database" yaml:"database"`
	Username       string            `json:"username" yaml:"username"`
	Password       string            `json:"password" yaml:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration     `json:"query_timeout" yaml:"query_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// PoolConfig defines connection pool settings. MinConns is the number of
// connections the pool keeps open even when idle.
type PoolConfig struct {
	MaxOpen         int           `json:"max_open" yaml:"max_open"`
	MinConns        int           `json:"min_conns" yaml:"min_conns"`
	MaxLifetime     time.Duration `json:"max_lifetime" yaml:"max_lifetime"`
	MaxIdleTime     time.Duration `json:"max_idle_time" yaml:"max_idle_time"`
	HealthCheckFreq time.Duration `json:"health_check_freq" yaml:"health_check_freq"`
}

// RetryConfig defines connection retry behavior.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay"`
	Backoff    float64       `json:"backoff" yaml:"backoff"`
}

// Validate checks the fields required to build a DSN.
func (c Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// WithDefaults fills unset pool settings.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Pool.MaxOpen <= 0 {
		c.Pool.MaxOpen = 10
	}
	if c.Pool.MinConns < 0 {
		c.Pool.MinConns = 0
	}
	if c.Pool.MinConns > c.Pool.MaxOpen {
		c.Pool.MinConns = c.Pool.MaxOpen
	}
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	return c
}

// LoadConfig reads a YAML configuration file. Durations use Go syntax
// ("5s", "30m").
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from PGQUERY_* variables. Files in envFiles
// are loaded first without overriding variables already set; a missing file
// is not an error.
func ConfigFromEnv(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, errors.Wrapf(err, "load env file %s", f)
		}
	}

	cfg := Config{
		Host:     env("HOST"),
		Database: env("DATABASE"),
		Username: env("USER"),
		Password: env("PASSWORD"),
		SSLMode:  env("SSLMODE"),
	}

	var err error
	if cfg.Port, err = envInt("PORT"); err != nil {
		return Config{}, err
	}
	if cfg.Pool.MaxOpen, err = envInt("POOL_MAX_OPEN"); err != nil {
		return Config{}, err
	}
	if cfg.Pool.MinConns, err = envInt("POOL_MIN_CONNS"); err != nil {
		return Config{}, err
	}
	if cfg.ConnectTimeout, err = envDuration("CONNECT_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.QueryTimeout, err = envDuration("QUERY_TIMEOUT"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func envInt(key string) (int, error) {
	v := env(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s%s", EnvPrefix, key)
	}
	return n, nil
}

func envDuration(key string) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s%s", EnvPrefix, key)
	}
	return d, nil
}
