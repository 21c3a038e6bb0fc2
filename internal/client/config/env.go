package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/team-dbx/dbx/internal/flagx"
)

const defaultEnvFile = ".env"

var envKeys = map[string]func(*Config) *string{
	"DBX_SERVER_URL":           func(c *Config) *string { return &c.ServerURL },
	"DBX_DOWNLOAD_DIR":         func(c *Config) *string { return &c.DownloadDir },
	"DBX_LOG_LEVEL":            func(c *Config) *string { return &c.LogLevel },
	"DBX_S3_REGION":            func(c *Config) *string { return &c.S3Region },
	"DBX_S3_BUCKET":            func(c *Config) *string { return &c.S3Bucket },
	"DBX_S3_ACCESS_KEY_ID":     func(c *Config) *string { return &c.S3AccessKeyID },
	"DBX_S3_SECRET_ACCESS_KEY": func(c *Config) *string { return &c.S3SecretAccessKey },
	"DBX_S3_BASE_ENDPOINT":     func(c *Config) *string { return &c.S3BaseEndpoint },
	"GOOGLE_CLIENT_ID":         func(c *Config) *string { return &c.GoogleClientID },
	"GOOGLE_CLIENT_SECRET":     func(c *Config) *string { return &c.GoogleClientSecret },
	"GOOGLE_CALLBACK_URL":      func(c *Config) *string { return &c.GoogleCallbackURL },
}

// parseEnv overlays cfg with the dotenv file and the process environment;
// the process environment wins over the file. An explicit -env file that
// cannot be read panics, a missing ./.env is ignored.
func parseEnv(cfg *Config) {
	values := map[string]string{}

	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	fileValues, err := godotenv.Read(path)
	switch {
	case err == nil:
		values = fileValues
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		panic(err)
	}

	for key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	for key, field := range envKeys {
		if v, ok := values[key]; ok && v != "" {
			*field(cfg) = v
		}
	}
}
