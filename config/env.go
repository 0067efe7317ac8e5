package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config là cấu hình của server, đọc từ biến môi trường
type Config struct {
	Port      string `env:"PORT" envDefault:"3000"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api"`

	DBDriver      string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresURI   string `env:"POSTGRESQL_URI"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"tasks.db"`
	MongoURI      string `env:"MONGODB_URI"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"taskapp"`

	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	MQTTURL      string `env:"MQTT_URL"`
	MQTTClientID string `env:"MQTT_CLIENT_ID" envDefault:"go-tasks-api"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	MigrateLegacyVocabulary bool `env:"MIGRATE_LEGACY_VOCABULARY" envDefault:"false"`
}

// LoadENV nạp biến môi trường từ file .env, không có file thì bỏ qua
func LoadENV(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load đọc và kiểm tra cấu hình
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate kiểm tra các giá trị bắt buộc
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.APIPrefix = "/" + strings.Trim(c.APIPrefix, "/")
	if c.APIPrefix == "/" {
		c.APIPrefix = ""
	}

	if c.JWTSecret == "" {
		return errors.New("you must set your 'JWT_SECRET' environmental variable")
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresURI == "" {
			return errors.New("you must set your 'POSTGRESQL_URI' environmental variable")
		}
	case "mongodb":
		if c.MongoURI == "" {
			return errors.New("you must set your 'MONGODB_URI' environmental variable")
		}
	case "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, sqlite or mongodb, got %q", c.DBDriver)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}
