// Package config loads runtime configuration for the DBX console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. A dotenv file (-env, or ./.env when it exists) and the process
//     environment (see parseEnv). The process environment wins.
//  4. Command-line flags (see parseFlags).
//
// Supported flags
//
//	-s string   Resource API base url
//	-d string   download directory
//	-l string   log level
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "https://api.dbx.io",
//	  "request_timeout": "15s",
//	  "download_dir": "downloads",
//	  "s3_bucket": "team-dbx"
//	}
//
// S3 keys and the Google client secret are read from the environment only
// (DBX_S3_ACCESS_KEY_ID, DBX_S3_SECRET_ACCESS_KEY, GOOGLE_CLIENT_SECRET).
package config
