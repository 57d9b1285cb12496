package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	MySQL       MySQLConfig       `mapstructure:"mysql"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Auth        AuthConfig        `mapstructure:"auth"`
	RateLimit   RateLimitConfig   `mapstructure:"ratelimit"`
	Client      ClientConfig      `mapstructure:"client"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
}

type ServerConfig struct {
	Environment     string        `mapstructure:"environment"`
	Port            string        `mapstructure:"port"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	SeedRooms       bool          `mapstructure:"seed_rooms"`
	// Storage is "mysql" (MySQL plus redis) or "memory".
	Storage         string        `mapstructure:"storage"`
}

type MySQLConfig struct {
	DSN            string        `mapstructure:"dsn"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	SigningKey      string        `mapstructure:"signing_key"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	CaptchaTTL      time.Duration `mapstructure:"captcha_ttl"`
}

// RateLimitConfig bounds captcha requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond int `mapstructure:"requests_per_second"`
	Burst             int `mapstructure:"burst"`
}

// ClientConfig configures the API client used by roomctl.
type ClientConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay"`
	LoginPath     string        `mapstructure:"login_path"`
	Timezone      string        `mapstructure:"timezone"`
	Debug         bool          `mapstructure:"debug"`
}

// Location resolves Timezone, falling back to the local zone when unset.
func (c ClientConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// CredentialsConfig selects where the client keeps its token pair.
type CredentialsConfig struct {
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.port", ":3005")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.seed_rooms", true)
	v.SetDefault("server.storage", StorageMySQL)

	v.SetDefault("mysql.dsn", "root:root@tcp(127.0.0.1:3306)/meeting_room_booking?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("mysql.connect_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.signing_key", "roombook-dev-secret")
	v.SetDefault("auth.access_token_ttl", 30*time.Minute)
	v.SetDefault("auth.refresh_token_ttl", 7*24*time.Hour)
	v.SetDefault("auth.captcha_ttl", 5*time.Minute)

	v.SetDefault("ratelimit.requests_per_second", 1)
	v.SetDefault("ratelimit.burst", 3)

	v.SetDefault("client.base_url", "http://localhost:3005/")
	v.SetDefault("client.timeout", 3*time.Second)
	v.SetDefault("client.redirect_delay", time.Second)
	v.SetDefault("client.login_path", "/login")
	v.SetDefault("client.timezone", "")
	v.SetDefault("client.debug", false)

	v.SetDefault("credentials.backend", BackendFile)
	v.SetDefault("credentials.path", "")
	v.SetDefault("credentials.key_prefix", "roombook:cred:")
}

// Load reads configuration from file, or from config.yaml in . or ./config
// when file is empty. ROOMBOOK_* environment variables override both.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ROOMBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	switch cfg.Server.Storage {
	case StorageMySQL, StorageMemory:
	default:
		return nil, fmt.Errorf("unknown server storage %q", cfg.Server.Storage)
	}
	switch cfg.Credentials.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", cfg.Credentials.Backend)
	}
	return &cfg, nil
}
