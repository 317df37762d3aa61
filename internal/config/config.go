package config

import (
	"errors"
	"fmt"
	"time"
)

var ErrConfigMissing = errors.New("config missing")

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
	// presigned url lifetimes, in seconds
	UploadTTL int `yaml:"uploadTTL"`
	ViewTTL   int `yaml:"viewTTL"`
}

func (s3 *S3Config) UploadExpiry() time.Duration {
	return time.Duration(s3.UploadTTL) * time.Second
}

func (s3 *S3Config) ViewExpiry() time.Duration {
	return time.Duration(s3.ViewTTL) * time.Second
}

type StoreConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"inMemory"`
	PageSize int    `yaml:"pageSize"`
}

type AnalysisConfig struct {
	Region string `yaml:"region"`
	// overrides the regional rekognition endpoint when set
	Endpoint           string `yaml:"endpoint"`
	AccessKeyID        string `yaml:"accessKeyID"`
	SecretAccessKey    string `yaml:"secretAccessKey"`
	Role               string `yaml:"role"`
	NotificationTarget string `yaml:"notificationTarget"`
	// request timeout, in seconds
	Timeout    int `yaml:"timeout"`
	MaxResults int `yaml:"maxResults"`
}

type NSQConfig struct {
	// consume completions inside the serve process
	Enabled     bool     `yaml:"enabled"`
	NSQDAddrs   []string `yaml:"nsqdAddrs"`
	Topic       string   `yaml:"topic"`
	Channel     string   `yaml:"channel"`
	MaxAttempts uint16   `yaml:"maxAttempts"`
}

type Config struct {
	Addr      string `yaml:"addr"`
	SSLCert   string `yaml:"sslCert"`
	SSLKey    string `yaml:"sslKey"`
	JwtSecret string `yaml:"jwtSecret"`
	// shared with the notification sender, checked on POST /notifications
	NotificationSecret string         `yaml:"notificationSecret"`
	S3                 S3Config       `yaml:"s3"`
	Store              StoreConfig    `yaml:"store"`
	Analysis           AnalysisConfig `yaml:"analysis"`
	NSQ                NSQConfig      `yaml:"nsq"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr: "127.0.0.1:8081",
		S3: S3Config{
			Bucket:    "vidtrack",
			Endpoint:  "127.0.0.1:9000",
			UseSSL:    false,
			Region:    "us-east-1",
			UploadTTL: 3600,
			ViewTTL:   900,
		},
		Store: StoreConfig{
			Dir:      "./data/jobs",
			PageSize: 20,
		},
		Analysis: AnalysisConfig{
			Region:     "us-east-1",
			Timeout:    30,
			MaxResults: 1000,
		},
		NSQ: NSQConfig{
			NSQDAddrs:   []string{"127.0.0.1:4150"},
			Topic:       "analysis_completions",
			Channel:     "vidtrack",
			MaxAttempts: 2,
		},
	}
}

// Validate reports the first external identifier the process cannot run without.
func (c *Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"s3.bucket", c.S3.Bucket},
		{"s3.endpoint", c.S3.Endpoint},
		{"analysis.region", c.Analysis.Region},
		{"analysis.role", c.Analysis.Role},
		{"analysis.notificationTarget", c.Analysis.NotificationTarget},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrConfigMissing, r.name)
		}
	}
	if c.Store.Dir == "" && !c.Store.InMemory {
		return fmt.Errorf("%w: store.dir", ErrConfigMissing)
	}
	if c.S3.UploadTTL <= 0 || c.S3.ViewTTL <= 0 {
		return fmt.Errorf("s3 presign ttl must be positive, got upload=%d view=%d", c.S3.UploadTTL, c.S3.ViewTTL)
	}
	if c.Store.PageSize <= 0 {
		return fmt.Errorf("store.pageSize must be positive, got %d", c.Store.PageSize)
	}
	return nil
}
