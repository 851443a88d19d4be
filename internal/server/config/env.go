package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays values from environment variables. Malformed numeric,
// boolean or duration values are ignored and the previous value is kept.
//
//	ADDRESS, DATABASE_DSN, JWT_SECRET, TOKEN_VALIDITY (duration),
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_PUBLIC_URL, GEMINI_API_KEY, GEMINI_MODEL, CAPTION_TIMEOUT,
//	UPLOAD_TIMEOUT, MAX_UPLOAD_SIZE (bytes), CORS_ALLOW_ORIGINS (comma
//	separated), COOKIE_SECURE, LOG_LEVEL
func parseEnv(config *Config) {
	envString(&config.EndpointAddrHTTP, "ADDRESS")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "JWT_SECRET")
	envDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.S3PublicURL, "S3_PUBLIC_URL")
	envString(&config.GeminiAPIKey, "GEMINI_API_KEY")
	envString(&config.GeminiModel, "GEMINI_MODEL")
	envDuration(&config.CaptionTimeout, "CAPTION_TIMEOUT")
	envDuration(&config.UploadTimeout, "UPLOAD_TIMEOUT")
	envString(&config.LogLevel, "LOG_LEVEL")

	if v, ok := os.LookupEnv("MAX_UPLOAD_SIZE"); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadSize = n
		}
	}
	if v, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			config.CORSAllowOrigins = origins
		}
	}
	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = b
		}
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
