package config

import (
	"fmt"
	"strconv"
	"time"
)

// parseEnv overlays environment variables onto config. Unset or empty
// variables are ignored; malformed numbers and durations are errors.
//
//	HTTP_ADDR, PORT, DATABASE_URL, JWT_SECRET, JWT_EXPIRES_IN, FRONTEND_URL,
//	COOKIE_SECURE, BCRYPT_COST, PRESIGN_EXPIRES_IN, LOG_LEVEL,
//	S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_BUCKET, S3_REGION, S3_ENDPOINT
func parseEnv(config *Config, getenv func(string) string) error {
	if getenv == nil {
		return nil
	}

	if port := getenv("PORT"); port != "" {
		config.HTTPAddr = ":" + port
	}

	strs := map[string]*string{
		"HTTP_ADDR":            &config.HTTPAddr,
		"DATABASE_URL":         &config.DatabaseDSN,
		"JWT_SECRET":           &config.SecretKey,
		"FRONTEND_URL":         &config.FrontendURL,
		"LOG_LEVEL":            &config.LogLevel,
		"S3_ACCESS_KEY_ID":     &config.S3AccessKey,
		"S3_SECRET_ACCESS_KEY": &config.S3SecretKey,
		"S3_BUCKET":            &config.S3Bucket,
		"S3_REGION":            &config.S3Region,
		"S3_ENDPOINT":          &config.S3BaseEndpoint,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"JWT_EXPIRES_IN":     &config.TokenTTL,
		"PRESIGN_EXPIRES_IN": &config.PresignTTL,
	}
	for name, dst := range durations {
		v := getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	if v := getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		config.CookieSecure = b
	}

	if v := getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST: %w", err)
		}
		config.BcryptCost = n
	}

	return nil
}
