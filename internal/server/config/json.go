package config

import (
	"encoding/json"
	"os"

	"github.com/team-dbx/dbx/internal/flagx"
	"github.com/team-dbx/dbx/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both "10s" strings and integer nanoseconds (see timex.Duration).
// Absent fields leave the current Config value untouched.
type JsonConfig struct {
	EndpointAddr    *string         `json:"endpoint_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	LogLevel        *string         `json:"log_level"`
	SecretKey       *string         `json:"secret_key"`
	GoogleClientID  *string         `json:"google_client_id"`
	GoogleJWKSURL   *string         `json:"google_jwks_url"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	S3PublicURL     *string         `json:"s3_public_url"`
	RateLimit       *int            `json:"rate_limit"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag. If neither is set, nothing is loaded.
//
// Read and decode errors panic: a server started with a broken config file
// must not come up with defaults.
func parseJson(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]*string{
		&cfg.EndpointAddr:   jc.EndpointAddr,
		&cfg.DatabaseDSN:    jc.DatabaseDSN,
		&cfg.LogLevel:       jc.LogLevel,
		&cfg.SecretKey:      jc.SecretKey,
		&cfg.GoogleClientID: jc.GoogleClientID,
		&cfg.GoogleJWKSURL:  jc.GoogleJWKSURL,
		&cfg.S3Bucket:       jc.S3Bucket,
		&cfg.S3Region:       jc.S3Region,
		&cfg.S3BaseEndpoint: jc.S3BaseEndpoint,
		&cfg.S3PublicURL:    jc.S3PublicURL,
	} {
		if v != nil {
			*dst = *v
		}
	}
	if jc.RateLimit != nil {
		cfg.RateLimit = *jc.RateLimit
	}
	if jc.ShutdownTimeout != nil {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
}
