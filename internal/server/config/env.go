package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/team-dbx/dbx/internal/flagx"
)

const defaultEnvFile = ".env"

var envKeys = map[string]func(*Config) *string{
	"DBX_ENDPOINT_ADDR":        func(c *Config) *string { return &c.EndpointAddr },
	"DATABASE_DSN":             func(c *Config) *string { return &c.DatabaseDSN },
	"DBX_LOG_LEVEL":            func(c *Config) *string { return &c.LogLevel },
	"DBX_SECRET_KEY":           func(c *Config) *string { return &c.SecretKey },
	"GOOGLE_CLIENT_ID":         func(c *Config) *string { return &c.GoogleClientID },
	"GOOGLE_JWKS_URL":          func(c *Config) *string { return &c.GoogleJWKSURL },
	"DBX_S3_ACCESS_KEY_ID":     func(c *Config) *string { return &c.S3AccessKeyID },
	"DBX_S3_SECRET_ACCESS_KEY": func(c *Config) *string { return &c.S3SecretAccessKey },
	"DBX_S3_BUCKET":            func(c *Config) *string { return &c.S3Bucket },
	"DBX_S3_REGION":            func(c *Config) *string { return &c.S3Region },
	"DBX_S3_BASE_ENDPOINT":     func(c *Config) *string { return &c.S3BaseEndpoint },
	"DBX_S3_PUBLIC_URL":        func(c *Config) *string { return &c.S3PublicURL },
}

const rateLimitKey = "DBX_RATE_LIMIT"

// parseEnv overlays cfg with the dotenv file (-env, or ./.env when present)
// and the process environment, which wins over the file. Secrets such as
// the S3 keys are only read from here.
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

	for _, key := range append(envKeyNames(), rateLimitKey) {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	for key, field := range envKeys {
		if v := values[key]; v != "" {
			*field(cfg) = v
		}
	}
	if v := values[rateLimitKey]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		cfg.RateLimit = n
	}
}

func envKeyNames() []string {
	keys := make([]string, 0, len(envKeys))
	for k := range envKeys {
		keys = append(keys, k)
	}
	return keys
}
