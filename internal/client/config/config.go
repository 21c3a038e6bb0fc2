package config

import "time"

// Config holds runtime settings of the DBX console.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	DownloadDir    string
	LogLevel       string

	S3Region          string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BaseEndpoint    string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.S3Region = "ap-northeast-2"
	c.S3Bucket = "team-dbx"
	c.GoogleCallbackURL = "http://localhost:3000/auth/google/callback"
}

// LoadConfig applies defaults, then JSON, then environment, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
