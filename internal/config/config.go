package config

import (
	"fmt"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Activity ActivityConfig `mapstructure:"activity"`
	Server   ServerConfig   `mapstructure:"server"`
}

// StoreConfig selects the durable store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=memory sqlite mysql"`
	Path   string `mapstructure:"path" validate:"omitempty,parentdir"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// SeedConfig locates the seed documents. BaseURL wins over Directory;
// the embedded documents are used when both are empty.
type SeedConfig struct {
	BaseURL       string        `mapstructure:"base_url" validate:"omitempty,url"`
	Directory     string        `mapstructure:"directory" validate:"omitempty,dir"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RetryAttempts uint          `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gte=0"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type ActivityConfig struct {
	Capacity  int    `mapstructure:"capacity" validate:"min=1"`
	UserAgent string `mapstructure:"user_agent"`
	IPAddress string `mapstructure:"ip_address" validate:"omitempty,ip"`
}

type ServerConfig struct {
	Port          int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS          CORSConfig `mapstructure:"cors"`
	SeedDirectory string     `mapstructure:"seed_directory" validate:"omitempty,dir"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/elearn")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "elearn.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("seed.timeout", 10*time.Second)
	v.SetDefault("seed.retry_attempts", 2)
	v.SetDefault("seed.retry_delay", 200*time.Millisecond)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("activity.capacity", 1000)
	v.SetDefault("activity.user_agent", "elearn-cli")
	v.SetDefault("activity.ip_address", "192.168.1.100")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	// Secrets and deployment-specific endpoints come from the environment
	if err := v.BindEnv("database.password", "ELEARN_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind ELEARN_DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("seed.base_url", "ELEARN_SEED_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind ELEARN_SEED_BASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
