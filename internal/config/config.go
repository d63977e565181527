package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"tradelab/internal/common"
)

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type FeedConfig struct {
	URL                  string `yaml:"url"`
	Token                string `yaml:"token"`
	SubscribeGraceMs     int    `yaml:"subscribe_grace_ms"`
	MaxReconnectAttempts int    `yaml:"max_reconnect_attempts"`
}

type StorageConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type Config struct {
	Server            ServerConfig  `yaml:"server"`
	Feed              FeedConfig    `yaml:"feed"`
	Storage           StorageConfig `yaml:"storage"`
	Symbols           []string      `yaml:"symbols"`
	CandleIntervalSec int           `yaml:"candle_interval_sec"`
	ChannelBufferSize int           `yaml:"channel_buffer_size"`
	LogLevel          string        `yaml:"log_level"`
}

func LoadConfig(path string) (*Config, error) {
	config := &Config{
		LogLevel: "info",
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) GetSymbols() []string {
	if len(c.Symbols) == 0 {
		return common.Universe
	}
	return c.Symbols
}

func (c *Config) GetCandleInterval() time.Duration {
	if c.CandleIntervalSec <= 0 {
		return time.Duration(common.DefaultCandleIntervalSec) * time.Second
	}
	return time.Duration(c.CandleIntervalSec) * time.Second
}

func (c *Config) GetChannelBufferSize() int {
	if c.ChannelBufferSize <= 0 {
		return common.DefaultChannelBufferSize
	}
	return c.ChannelBufferSize
}

func (c *Config) GetFeedURL() string {
	if c.Feed.URL == "" {
		return common.DefaultFeedURL
	}
	return c.Feed.URL
}

func (c *Config) GetSubscribeGrace() time.Duration {
	if c.Feed.SubscribeGraceMs <= 0 {
		return time.Duration(common.DefaultSubscribeGraceMs) * time.Millisecond
	}
	return time.Duration(c.Feed.SubscribeGraceMs) * time.Millisecond
}

func (c *Config) GetMaxReconnectAttempts() int {
	if c.Feed.MaxReconnectAttempts <= 0 {
		return common.DefaultReconnectMaxTries
	}
	return c.Feed.MaxReconnectAttempts
}

func (c *Config) GetServerPort() int {
	if c.Server.Port <= 0 {
		return common.DefaultServerPort
	}
	return c.Server.Port
}
