package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Model    ModelConfig    `mapstructure:"model"`
}

// ServerConfig holds server-related settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	// AdminTokenHash is a bcrypt hash of the token guarding reset and retrain.
	AdminTokenHash string `mapstructure:"admin_token_hash"`
	RateLimit      int    `mapstructure:"rate_limit"`
}

// StorageConfig selects the blob store backend: sqlite, postgres or redis.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// ModelConfig holds training and scoring parameters.
type ModelConfig struct {
	MinTrainingSessions int           `mapstructure:"min_training_sessions"`
	MinKeystrokes       int           `mapstructure:"min_keystrokes"`
	SyntheticNegatives  int           `mapstructure:"synthetic_negatives"`
	SyntheticNoise      float64       `mapstructure:"synthetic_noise"`
	Seed                int64         `mapstructure:"seed"`
	UseCorpus           bool          `mapstructure:"use_corpus"`
	RetrainInterval     time.Duration `mapstructure:"retrain_interval"`
	AlertConfidence     float64       `mapstructure:"alert_confidence"`
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.admin_token_hash", "")
	v.SetDefault("server.rate_limit", 60) // requests per minute per client

	// Storage defaults
	v.SetDefault("storage.driver", "sqlite")

	// Database defaults
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "user")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "fingertail")
	v.SetDefault("database.sqlite_path", "fingertail.db")

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fingertail:")

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Model defaults
	v.SetDefault("model.min_training_sessions", 10)
	v.SetDefault("model.min_keystrokes", 10)
	v.SetDefault("model.synthetic_negatives", 5)
	v.SetDefault("model.synthetic_noise", 0.3)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.use_corpus", true)
	v.SetDefault("model.retrain_interval", "10m")
	v.SetDefault("model.alert_confidence", 0.8)
}

// Load reads the configuration with Viper. Changes to the config file are
// picked up while running and handed to onChange, which may be nil.
func Load(projectRoot string, log *zap.Logger, onChange func(*Config)) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// e.g., FINGERTAIL_SERVER_PORT
	v.SetEnvPrefix("FINGERTAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// It's okay if the file doesn't exist; defaults and env vars will be used.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		var next Config
		if err := v.Unmarshal(&next); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		if err := next.Validate(); err != nil {
			log.Error("Rejected reloaded configuration", zap.Error(err))
			return
		}
		if onChange != nil {
			onChange(&next)
		}
	})

	log.Info("Configuration loaded successfully", zap.String("storage", conf.Storage.Driver))
	return &conf, nil
}

// Validate checks values that would otherwise fail far from where they are set.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Model.MinTrainingSessions < 1 {
		return fmt.Errorf("model.min_training_sessions must be positive, got %d", c.Model.MinTrainingSessions)
	}
	if c.Model.SyntheticNoise < 0 {
		return fmt.Errorf("model.synthetic_noise must not be negative, got %v", c.Model.SyntheticNoise)
	}
	return nil
}
