package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	EnvS3Bucket           = "VIDTRACK_S3_BUCKET"
	EnvAnalysisRole       = "VIDTRACK_ANALYSIS_ROLE"
	EnvNotificationTarget = "VIDTRACK_ANALYSIS_NOTIFICATION_TARGET"
	EnvJwtSecret          = "VIDTRACK_JWT_SECRET"
	EnvNotificationSecret = "VIDTRACK_NOTIFICATION_SECRET"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %v", err)
	}
	err = yaml.Unmarshal(data, cfg)
	return err
}

// loadEnv reads an optional .env file, then lets the environment override the file config.
func loadEnv(conf *Config, envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	overrides := map[string]*string{
		EnvS3Bucket:           &conf.S3.Bucket,
		EnvAnalysisRole:       &conf.Analysis.Role,
		EnvNotificationTarget: &conf.Analysis.NotificationTarget,
		EnvJwtSecret:          &conf.JwtSecret,
		EnvNotificationSecret: &conf.NotificationSecret,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}
	return nil
}

func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	err := LoadYAMLConfig(configPath, conf)
	if err != nil {
		return nil, err
	}

	if err := loadEnv(conf, ".env"); err != nil {
		return nil, err
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}
