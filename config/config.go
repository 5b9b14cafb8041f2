package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Logging struct {
	Env       string `yaml:"env"`       // dev|prod
	Service   string `yaml:"service"`   // session-service
	Version   string `yaml:"version"`   // v0.1.0
	Backend   string `yaml:"backend"`   // std|zap
	AddSource bool   `yaml:"addSource"` // false|true
	Debug     bool   `yaml:"debug"`     // false|true
}

type Session struct {
	RoomIDLength  int    `yaml:"roomIdLength"`  // default 6
	PingInterval  string `yaml:"pingInterval"`  // default 15s
	WriteTimeout  string `yaml:"writeTimeout"`  // default 5s
	MaxMessageKiB int64  `yaml:"maxMessageKiB"` // default 64
}

type Config struct {
	HTTP    HTTP    `yaml:"http"`
	Logging Logging `yaml:"logging"`
	Session Session `yaml:"session"`
}

func LoadConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Logging.Service == "" {
		c.Logging.Service = "session-service"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.Logging.Version == "" {
		c.Logging.Version = "v0.1.0"
	}
	if c.Logging.Backend == "" {
		c.Logging.Backend = "std"
	}
	if c.Session.RoomIDLength <= 0 {
		c.Session.RoomIDLength = 6
	}
	if c.Session.MaxMessageKiB <= 0 {
		c.Session.MaxMessageKiB = 64
	}
	return nil
}

func (s *Session) PingEvery() time.Duration {
	return parseDurationOr(15*time.Second, s.PingInterval)
}

func (s *Session) WriteDeadline() time.Duration {
	return parseDurationOr(5*time.Second, s.WriteTimeout)
}

func parseDurationOr(def time.Duration, s string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}
