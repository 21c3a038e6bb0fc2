package config

import (
	"encoding/json"
	"os"

	"github.com/team-dbx/dbx/internal/flagx"
	"github.com/team-dbx/dbx/internal/timex"
)

// JsonConfig is used only for unmarshalling. Absent fields keep the value
// already present in Config.
type JsonConfig struct {
	ServerURL         *string         `json:"server_url"`
	RequestTimeout    *timex.Duration `json:"request_timeout"`
	DownloadDir       *string         `json:"download_dir"`
	LogLevel          *string         `json:"log_level"`
	S3Region          *string         `json:"s3_region"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	GoogleClientID    *string         `json:"google_client_id"`
	GoogleCallbackURL *string         `json:"google_callback_url"`
}

// parseJson overlays cfg with the file named by -c/-config. Read or decode
// errors panic.
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

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DownloadDir, jc.DownloadDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.GoogleClientID, jc.GoogleClientID)
	setString(&cfg.GoogleCallbackURL, jc.GoogleCallbackURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
