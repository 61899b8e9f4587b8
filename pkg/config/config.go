package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderYahoo      = "yahoo"
	ProviderClickHouse = "clickhouse"

	CacheNone    = "none"
	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLayered = "layered"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
		Ship   struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"riskreturn.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"ship"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	Provider struct {
		Type  string `yaml:"type" default:"yahoo" validate:"oneof=yahoo clickhouse"`
		Yahoo struct {
			BaseURL       string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
			UserAgent     string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; RiskReturn/1.0)"`
			Timeout       time.Duration `yaml:"timeout" default:"20s"`
			RatePerSecond float64       `yaml:"rate_per_second" default:"4"`
			Burst         int           `yaml:"burst" default:"2"`
			Breaker       struct {
				MaxRequests  uint32        `yaml:"max_requests" default:"1"`
				Interval     time.Duration `yaml:"interval" default:"60s"`
				Timeout      time.Duration `yaml:"timeout" default:"30s"`
				FailureRatio float64       `yaml:"failure_ratio" default:"0.6"`
				MinRequests  uint32        `yaml:"min_requests" default:"5"`
			} `yaml:"breaker"`
		} `yaml:"yahoo"`
		ClickHouse struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"9000"`
			Database     string        `yaml:"database" default:"market"`
			User         string        `yaml:"user" default:"default"`
			Password     string        `yaml:"password"`
			UseHTTP      bool          `yaml:"use_http"`
			DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s"`
			MaxOpenConns int           `yaml:"max_open_conns" default:"10"`
		} `yaml:"clickhouse"`
	} `yaml:"provider"`

	Cache struct {
		Backend string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis layered"`
		TTL     time.Duration `yaml:"ttl" default:"15m"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"riskreturn"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		EventsTopic  string        `yaml:"events_topic" default:"riskreturn.analysis"`
		RequiredAcks int           `yaml:"required_acks" default:"1"`
		Compression  string        `yaml:"compression" default:"snappy"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`

	RateLimit struct {
		Enabled           bool    `yaml:"enabled" default:"true"`
		RequestsPerSecond float64 `yaml:"requests_per_second" default:"2"`
		Burst             int     `yaml:"burst" default:"5"`
	} `yaml:"ratelimit"`

	Analysis struct {
		DefaultTickers string `yaml:"default_tickers" default:"SPY, QQQ, DIA, IWM, XLK, XLE, XLY, XLV, XLF, KO, MCD, PEP, MSFT, AAPL, VIST"`
		DefaultPeriod  string `yaml:"default_period" default:"1y"`
	} `yaml:"analysis"`
}

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file (if present) and then
// applies environment overrides. A missing YAML file is not an error.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var c *Config
	if _, err := os.Stat(path); err == nil {
		c, err = Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		c = Default()
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HTTP_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider.Type = strings.ToLower(v)
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		c.Provider.Yahoo.BaseURL = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Provider.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.Provider.ClickHouse.Password = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("DEFAULT_TICKERS"); v != "" {
		c.Analysis.DefaultTickers = v
	}
	return nil
}

var validate = validator.New()

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Logging.Ship.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("logging.ship requires kafka to be enabled")
	}
	if c.Provider.Type == ProviderClickHouse && c.Provider.ClickHouse.Host == "" {
		return fmt.Errorf("provider.clickhouse.host is required")
	}
	return nil
}
