package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
//
// Values come from the YAML file first; environment variables override them.
// The variable name is SECTION_FIELD, e.g. DATABASE_URL or SERVER_PORT.
type Config struct {
	Database struct {
		URL             string        `yaml:"url" envconfig:"URL"`
		MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
		MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
		ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" envconfig:"CONN_MAX_IDLE_TIME"`
		ConnectTimeout  time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
		MigrateOnStart  bool          `yaml:"migrate_on_start" envconfig:"MIGRATE_ON_START"`
	} `yaml:"database"`
	Server struct {
		Port            string        `yaml:"port" envconfig:"PORT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
		AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	} `yaml:"server"`
	Telegram struct {
		// BotToken enables the chat resolver. BOT_TOKEN is read as well.
		BotToken          string  `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		APIEndpoint       string  `yaml:"api_endpoint" envconfig:"API_ENDPOINT"`
		RequestsPerSecond float64 `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	} `yaml:"telegram"`
	Log struct {
		Level       string `yaml:"level" envconfig:"LEVEL"`
		Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
	} `yaml:"log"`
}

// Default returns the configuration used for anything the file and the
// environment leave out.
func Default() *Config {
	cfg := &Config{}
	cfg.Database.MaxOpenConns = 10
	cfg.Database.MaxIdleConns = 10
	cfg.Database.ConnMaxIdleTime = 30 * time.Second
	cfg.Database.ConnectTimeout = 10 * time.Second
	cfg.Database.MigrateOnStart = true
	cfg.Server.Port = "8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Telegram.RequestsPerSecond = 1
	cfg.Log.Level = "info"
	return cfg
}

// LoadConfig reads configuration from the specified YAML file, a .env file in
// the working directory and the environment. Missing files are skipped.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := decodeFile(configPath, config); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if config.Database.URL == "" {
		return nil, errors.New("database url is required (database.url or DATABASE_URL)")
	}
	return config, nil
}

func decodeFile(configPath string, config *Config) error {
	if configPath == "" {
		return nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(config); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	return nil
}
