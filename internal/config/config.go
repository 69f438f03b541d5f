package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvSitesRoot    = "SITES_ROOT"
)

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 12 * time.Hour

// JWTConfig holds JWT secret and expiry settings for the admin API.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// OperatorConfig holds the operator login for the admin API.
type OperatorConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password-hash"` // bcrypt hash of the operator password
}

// FTPConfig holds transport service listener settings.
type FTPConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	PassivePortStart int    `yaml:"passive-port-start"`
	PassivePortEnd   int    `yaml:"passive-port-end"`
	MaxConnections   int    `yaml:"max-connections"`
	MaxPerIP         int    `yaml:"max-per-ip"`
	Banner           string `yaml:"banner"`
}

// APIConfig holds admin API listener settings.
type APIConfig struct {
	Port int `yaml:"port"`
}

// Config holds all resolved application configuration values.
type Config struct {
	DatabaseDSN string         `yaml:"database-dsn"`
	SitesRoot   string         `yaml:"sites-root"`
	FTP         FTPConfig      `yaml:"ftp"`
	API         APIConfig      `yaml:"api"`
	JWT         JWTConfig      `yaml:"jwt"`
	Operator    OperatorConfig `yaml:"operator"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies env overrides and defaults.
// A missing config file is not an error; defaults and env values apply.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", configPath, errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read %s: %w", configPath, errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if root := strings.TrimSpace(os.Getenv(EnvSitesRoot)); root != "" {
		cfg.SitesRoot = root
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults fills unset fields with built-in defaults.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		cfg.DatabaseDSN = "file:reseller_accounts.db"
	}
	if strings.TrimSpace(cfg.SitesRoot) == "" {
		cfg.SitesRoot = "reseller_sites"
	}
	if abs, err := filepath.Abs(cfg.SitesRoot); err == nil {
		cfg.SitesRoot = abs
	}
	if strings.TrimSpace(cfg.FTP.Host) == "" {
		cfg.FTP.Host = "0.0.0.0"
	}
	if cfg.FTP.Port <= 0 {
		cfg.FTP.Port = 2121
	}
	if cfg.FTP.PassivePortStart <= 0 {
		cfg.FTP.PassivePortStart = 60000
	}
	if cfg.FTP.PassivePortEnd < cfg.FTP.PassivePortStart {
		cfg.FTP.PassivePortEnd = cfg.FTP.PassivePortStart + 100
	}
	if cfg.FTP.MaxConnections <= 0 {
		cfg.FTP.MaxConnections = 256
	}
	if cfg.FTP.MaxPerIP <= 0 {
		cfg.FTP.MaxPerIP = 5
	}
	if strings.TrimSpace(cfg.FTP.Banner) == "" {
		cfg.FTP.Banner = "Reseller FTP Server Ready"
	}
	if cfg.API.Port <= 0 {
		cfg.API.Port = 8318
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
}
