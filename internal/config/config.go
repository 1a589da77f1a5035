package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Hub      HubConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	URI          string
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	MinIdleConns int
}

type JWTConfig struct {
	Secret string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type HubConfig struct {
	PingInterval time.Duration
}

var (
	instance *Config
	once     sync.Once
)

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development. Loaded once per process.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		_ = godotenv.Load()

		viper.SetDefault("HUB_HOST", "")
		viper.SetDefault("HUB_PORT", "8080")
		viper.SetDefault("HUB_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("HUB_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("HUB_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("HUB_JWT_SECRET", "secret")
		viper.SetDefault("HUB_PING_INTERVAL", 30*time.Second)
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("MYSQL_USER", "launcher")
		viper.SetDefault("MYSQL_PASSWORD", "password")
		viper.SetDefault("MYSQL_HOST", "localhost")
		viper.SetDefault("MYSQL_PORT", "3306")
		viper.SetDefault("MYSQL_DB", "launcher")
		viper.SetDefault("KAFKA_BROKERS", []string{})
		viper.SetDefault("KAFKA_TOPIC", "launcher-hub-events")
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("HUB_HOST"),
				Port:         viper.GetString("HUB_PORT"),
				ReadTimeout:  viper.GetDuration("HUB_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("HUB_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("HUB_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("MYSQL_HOST"),
				Port:     viper.GetString("MYSQL_PORT"),
				User:     viper.GetString("MYSQL_USER"),
				Password: viper.GetString("MYSQL_PASSWORD"),
				DBName:   viper.GetString("MYSQL_DB"),
			},
			Redis: RedisConfig{
				URI:          viper.GetString("REDIS_URL"),
				MaxRetries:   viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("HUB_JWT_SECRET"),
			},
			Kafka: KafkaConfig{
				Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
				Topic:   viper.GetString("KAFKA_TOPIC"),
			},
			Hub: HubConfig{
				PingInterval: viper.GetDuration("HUB_PING_INTERVAL"),
			},
		}
	})

	return instance, nil
}
