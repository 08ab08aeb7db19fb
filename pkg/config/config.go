package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Moderation ModerationConfig `mapstructure:"moderation"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type ModerationConfig struct {
	Environment               string           `mapstructure:"environment"`
	FailOpen                  bool             `mapstructure:"fail_open"`
	TimeoutMs                 int64            `mapstructure:"timeout_ms"`
	ConfidenceBypassThreshold float64          `mapstructure:"confidence_bypass_threshold"`
	HarassmentScoreThreshold  float64          `mapstructure:"harassment_score_threshold"`
	ToxicityThreshold         float64          `mapstructure:"toxicity_threshold"`
	Classifier                ClassifierConfig `mapstructure:"classifier"`
	Toxicity                  ToxicityConfig   `mapstructure:"toxicity"`
	Blocklist                 BlocklistConfig  `mapstructure:"blocklist"`
	PII                       PIIConfig        `mapstructure:"pii"`
}

type ClassifierConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type ToxicityConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
}

type BlocklistConfig struct {
	// Source selects the backing store: "redis", "postgres" or "memory".
	Source string `mapstructure:"source"`
	// RedisKey is where the redis store keeps the entry list.
	RedisKey string `mapstructure:"redis_key"`
	// Fallback is a JSON-encoded entry list for deployments without a
	// managed blocklist store.
	Fallback string `mapstructure:"fallback"`
}

type PIIConfig struct {
	BlockSocialHandles     bool `mapstructure:"block_social_handles"`
	AllowNameIntroductions bool `mapstructure:"allow_name_introductions"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load config file: %w", err)
	}
	setDefaultValues()
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("moderation.environment", "ENVIRONMENT", "MODERATION_ENVIRONMENT")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// env-only deployments are fine
			return nil
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
}

func GetConfig() *Config {
	return &globalConfig
}
