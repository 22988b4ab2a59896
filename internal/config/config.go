package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret       string
		TokenTTLMinutes int
		RequireVoteAuth bool
		Argon2          struct {
			MemoryKiB   uint32
			Iterations  uint32
			Parallelism uint8
		}
	}
	Log struct {
		Level  string
		Format string
		File   string
	}
	Storage struct {
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
		URLTTLMinutes int
	}
	AWS struct {
		Profile string
	}
}

// TokenTTL is the lifetime of tokens issued at login.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// AttachmentURLTTL bounds presigned attachment links.
func (c Config) AttachmentURLTTL() time.Duration {
	return time.Duration(c.Storage.URLTTLMinutes) * time.Minute
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("UARCHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/uarchive.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlminutes", 7*24*60)
	v.SetDefault("auth.requirevoteauth", true)
	v.SetDefault("auth.argon2.memorykib", 64*1024)
	v.SetDefault("auth.argon2.iterations", 3)
	v.SetDefault("auth.argon2.parallelism", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "uarchive")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.urlttlminutes", 15)
	v.SetDefault("aws.profile", "")

	if err := v.BindEnv("auth.jwtsecret", "UARCHIVE_AUTH_JWTSECRET", "JWT_SECRET"); err != nil {
		return Config{}, fmt.Errorf("bind jwt secret env: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.TokenTTLMinutes <= 0 {
		return Config{}, fmt.Errorf("auth.tokenttlminutes must be positive")
	}

	return cfg, nil
}
