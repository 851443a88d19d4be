package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/captionly/internal/flagx"
	"github.com/dmitrijs2005/captionly/internal/timex"
	"github.com/tidwall/jsonc"
)

// configFileEnv names the environment variable consulted when no -c/-config
// flag is given.
const configFileEnv = "CAPTIONLY_CONFIG"

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "30s" style strings and integer nanoseconds. Only fields present in the
// file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3PublicURL           string         `json:"s3_public_url"`
	GeminiAPIKey          string         `json:"gemini_api_key"`
	GeminiModel           string         `json:"gemini_model"`
	CaptionTimeout        timex.Duration `json:"caption_timeout"`
	UploadTimeout         timex.Duration `json:"upload_timeout"`
	MaxUploadSize         int64          `json:"max_upload_size"`
	CORSAllowOrigins      []string       `json:"cors_allow_origins"`
	CookieSecure          *bool          `json:"cookie_secure"`
	LogLevel              string         `json:"log_level"`
}

// parseJson overlays values from the config file, if one is named. The file
// may contain comments and trailing commas. An unreadable or invalid file
// panics, since the server cannot start with a half-applied config.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFilePath(args, configFileEnv)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(file), c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.CaptionTimeout.Duration > 0 {
		config.CaptionTimeout = c.CaptionTimeout.Duration
	}
	if c.UploadTimeout.Duration > 0 {
		config.UploadTimeout = c.UploadTimeout.Duration
	}
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if len(c.CORSAllowOrigins) > 0 {
		config.CORSAllowOrigins = c.CORSAllowOrigins
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
