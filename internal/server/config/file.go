package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/grapevine/internal/flagx"
	"github.com/dmitrijs2005/grapevine/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the config file schema. Durations accept "15m" style
// strings or integer nanoseconds. Absent keys leave the current value alone.
type FileConfig struct {
	HTTPAddr       *string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN    *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey      *string         `json:"secret_key" yaml:"secret_key"`
	TokenTTL       *timex.Duration `json:"token_ttl" yaml:"token_ttl"`
	FrontendURL    *string         `json:"frontend_url" yaml:"frontend_url"`
	CookieSecure   *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	BcryptCost     *int            `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	PresignTTL     *timex.Duration `json:"presign_ttl" yaml:"presign_ttl"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	S3AccessKey    *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket       *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region       *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
}

// parseFile overlays the file named by -c/-config onto config. Files ending in
// .yaml or .yml are read as YAML, everything else as JSON. No flag, no change.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.FrontendURL, fc.FrontendURL)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.S3AccessKey, fc.S3AccessKey)
	setString(&c.S3SecretKey, fc.S3SecretKey)
	setString(&c.S3Bucket, fc.S3Bucket)
	setString(&c.S3Region, fc.S3Region)
	setString(&c.S3BaseEndpoint, fc.S3BaseEndpoint)

	if fc.TokenTTL != nil {
		c.TokenTTL = fc.TokenTTL.Duration
	}
	if fc.PresignTTL != nil {
		c.PresignTTL = fc.PresignTTL.Duration
	}
	if fc.CookieSecure != nil {
		c.CookieSecure = *fc.CookieSecure
	}
	if fc.BcryptCost != nil {
		c.BcryptCost = *fc.BcryptCost
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
