package config

import (
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	MessageCol string `mapstructure:"message_collection"`
	UserCol    string `mapstructure:"user_collection"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type KafkaConfig struct {
	Brokers              []string `mapstructure:"brokers"`
	TopicMessageAccepted string   `mapstructure:"topic_message_accepted"`
}

type JWTConfig struct {
	Algorithm     string `mapstructure:"algorithm"` // "HS256" or "RS256"
	HSSecret      string `mapstructure:"hs_secret"`
	PublicKeyPath string `mapstructure:"public_key_path"`
}

type WSConfig struct {
	PingIntervalSeconds  int   `mapstructure:"ping_interval_seconds"`
	WriteDeadlineSeconds int   `mapstructure:"write_deadline_seconds"`
	MaxMessageSizeBytes  int64 `mapstructure:"max_message_size_bytes"`
	RateLimitPerSec      int   `mapstructure:"rate_limit_per_sec"`
	RoomQueueCapacity    int   `mapstructure:"room_queue_capacity"`
}

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Mongo MongoConfig `mapstructure:"mongo"`
	Redis RedisConfig `mapstructure:"redis"`
	Kafka KafkaConfig `mapstructure:"kafka"`
	JWT   JWTConfig   `mapstructure:"jwt"`
	WS    WSConfig    `mapstructure:"ws"`

	// derived
	PingInterval  time.Duration
	WriteDeadline time.Duration
}

// Load reads the config file at path and applies env overrides and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = 8085
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "coursedesk"
	}
	if c.Mongo.MessageCol == "" {
		c.Mongo.MessageCol = "chats"
	}
	if c.Mongo.UserCol == "" {
		c.Mongo.UserCol = "users"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "chat"
	}
	if c.Kafka.TopicMessageAccepted == "" {
		c.Kafka.TopicMessageAccepted = "chat.message.accepted"
	}
	if c.JWT.Algorithm == "" {
		c.JWT.Algorithm = "HS256"
	}
	if c.WS.PingIntervalSeconds == 0 {
		c.WS.PingIntervalSeconds = 25
	}
	if c.WS.WriteDeadlineSeconds == 0 {
		c.WS.WriteDeadlineSeconds = 10
	}
	if c.WS.MaxMessageSizeBytes == 0 {
		c.WS.MaxMessageSizeBytes = 64 * 1024
	}
	if c.WS.RateLimitPerSec == 0 {
		c.WS.RateLimitPerSec = 20
	}
	if c.WS.RoomQueueCapacity == 0 {
		c.WS.RoomQueueCapacity = 256
	}
	c.PingInterval = time.Duration(c.WS.PingIntervalSeconds) * time.Second
	c.WriteDeadline = time.Duration(c.WS.WriteDeadlineSeconds) * time.Second
}

// Default returns a config with every default applied, for tests and for
// running without a config file.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}
