package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout    time.Duration `koanf:"read_timeout"`
		WriteTimeout   time.Duration `koanf:"write_timeout"`
		IdleTimeout    time.Duration `koanf:"idle_timeout"`
		RequestTimeout time.Duration `koanf:"request_timeout"`
	} `koanf:"http"`

	Storage struct {
		Driver string `koanf:"driver"` // memory | sqlite | redis | mysql
		SQLite struct {
			Path string `koanf:"path"`
		} `koanf:"sqlite"`
		MySQL struct {
			DSN             string        `koanf:"dsn"`
			MaxOpenConns    int           `koanf:"max_open_conns"`
			MaxIdleConns    int           `koanf:"max_idle_conns"`
			ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
		} `koanf:"mysql"`
		KeyPrefix string `koanf:"key_prefix"`
	} `koanf:"storage"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
		DB       int    `koanf:"db"`
	} `koanf:"redis"`

	Catalog struct {
		Path string `koanf:"path"` // empty: embedded data set
	} `koanf:"catalog"`

	Session struct {
		Secret string        `koanf:"secret"`
		Cookie string        `koanf:"cookie"`
		TTL    time.Duration `koanf:"ttl"`
		Secure bool          `koanf:"secure"`
	} `koanf:"session"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		Enabled    bool   `koanf:"enabled"`
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange"`
		RoutingKey string `koanf:"routing_key"`
		Queue      string `koanf:"queue"`
		Prefetch   int    `koanf:"prefetch"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Enabled bool     `koanf:"enabled"`
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
		GroupID string   `koanf:"group_id"`
	} `koanf:"kafka"`

	GRPC struct {
		HealthAddr string `koanf:"health_addr"` // empty: disabled
	} `koanf:"grpc"`

	Notifier struct {
		Source string `koanf:"source"` // rabbitmq | kafka
	} `koanf:"notifier"`
}

const envPrefix = "STOREFRONT_"

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix STOREFRONT_, nested with __)
	// e.g. STOREFRONT_STORAGE__DRIVER, STOREFRONT_REDIS__PASSWORD
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "storefront"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Session.Cookie == "" {
		c.Session.Cookie = "sf_session"
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = 24 * time.Hour
	}
	if c.Idempotency.TTL <= 0 {
		c.Idempotency.TTL = 24 * time.Hour
	}
	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = 3 * time.Second
	}
	if c.Rabbit.Prefetch <= 0 {
		c.Rabbit.Prefetch = 50
	}
	if c.Notifier.Source == "" {
		c.Notifier.Source = "rabbitmq"
	}
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path required")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required for storage.driver=redis")
		}
	case "mysql":
		if c.Storage.MySQL.DSN == "" {
			return fmt.Errorf("storage.mysql.dsn required")
		}
	default:
		return fmt.Errorf("storage.driver %q not supported", c.Storage.Driver)
	}
	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("session.secret must be at least 16 bytes")
	}
	if c.Rabbit.Enabled && (c.Rabbit.URL == "" || c.Rabbit.Exchange == "") {
		return fmt.Errorf("rabbitmq.url and rabbitmq.exchange required when enabled")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka.brokers and kafka.topic required when enabled")
	}
	return nil
}
