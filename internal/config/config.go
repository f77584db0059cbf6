package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// CARDHUB_DATABASE_PATH or CARDHUB_CATALOGS_PRIMARY_API_KEY.
const EnvPrefix = "CARDHUB"

type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Catalogs   CatalogsConfig   `mapstructure:"catalogs"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Prefetch   PrefetchConfig   `mapstructure:"prefetch"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	CLI        CLIConfig        `mapstructure:"cli"`
}

// Load reads configuration with priority env > config file > defaults.
// A missing config file is not an error.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.cardhub")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load configuration: %v", err))
	}
	return cfg
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	registerDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
