package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if errLoad != nil {
		t.Fatalf("Load failed: %v", errLoad)
	}

	if cfg.DatabaseDSN != "file:reseller_accounts.db" {
		t.Fatalf("unexpected default dsn: %s", cfg.DatabaseDSN)
	}
	if !filepath.IsAbs(cfg.SitesRoot) {
		t.Fatalf("sites root should be absolute: %s", cfg.SitesRoot)
	}
	if cfg.FTP.Host != "0.0.0.0" || cfg.FTP.Port != 2121 {
		t.Fatalf("unexpected ftp defaults: %+v", cfg.FTP)
	}
	if cfg.FTP.PassivePortStart != 60000 || cfg.FTP.PassivePortEnd != 60100 {
		t.Fatalf("unexpected passive port defaults: %+v", cfg.FTP)
	}
	if cfg.FTP.MaxConnections != 256 || cfg.FTP.MaxPerIP != 5 {
		t.Fatalf("unexpected connection limit defaults: %+v", cfg.FTP)
	}
	if cfg.API.Port != 8318 {
		t.Fatalf("unexpected api port default: %d", cfg.API.Port)
	}
	if cfg.JWT.Expiry != 12*time.Hour {
		t.Fatalf("unexpected jwt expiry default: %v", cfg.JWT.Expiry)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `
database-dsn: "file:custom.db"
sites-root: "/srv/sites"
ftp:
  host: "10.0.0.1"
  port: 21
  passive-port-start: 50000
  passive-port-end: 50050
api:
  port: 9000
jwt:
  secret: "yaml-secret"
  expiry: 1h
operator:
  username: "root"
  password-hash: "$2a$10$abcdefghijklmnopqrstuv"
`
	if errWrite := os.WriteFile(path, []byte(payload), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("Load failed: %v", errLoad)
	}
	if cfg.DatabaseDSN != "file:custom.db" {
		t.Fatalf("unexpected dsn: %s", cfg.DatabaseDSN)
	}
	if cfg.SitesRoot != "/srv/sites" {
		t.Fatalf("unexpected sites root: %s", cfg.SitesRoot)
	}
	if cfg.FTP.Host != "10.0.0.1" || cfg.FTP.Port != 21 {
		t.Fatalf("unexpected ftp config: %+v", cfg.FTP)
	}
	if cfg.FTP.PassivePortStart != 50000 || cfg.FTP.PassivePortEnd != 50050 {
		t.Fatalf("unexpected passive range: %+v", cfg.FTP)
	}
	if cfg.API.Port != 9000 {
		t.Fatalf("unexpected api port: %d", cfg.API.Port)
	}
	if cfg.JWT.Secret != "yaml-secret" || cfg.JWT.Expiry != time.Hour {
		t.Fatalf("unexpected jwt config: %+v", cfg.JWT)
	}
	if cfg.Operator.Username != "root" {
		t.Fatalf("unexpected operator: %+v", cfg.Operator)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBConnection, "host=db user=app dbname=reseller")
	t.Setenv(EnvJWTSecret, "env-secret")
	t.Setenv(EnvJWTExpiry, "30m")
	t.Setenv(EnvSitesRoot, "/var/sites")

	cfg, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if errLoad != nil {
		t.Fatalf("Load failed: %v", errLoad)
	}
	if cfg.DatabaseDSN != "host=db user=app dbname=reseller" {
		t.Fatalf("env dsn not applied: %s", cfg.DatabaseDSN)
	}
	if cfg.JWT.Secret != "env-secret" {
		t.Fatalf("env jwt secret not applied: %s", cfg.JWT.Secret)
	}
	if cfg.JWT.Expiry != 30*time.Minute {
		t.Fatalf("env jwt expiry not applied: %v", cfg.JWT.Expiry)
	}
	if cfg.SitesRoot != "/var/sites" {
		t.Fatalf("env sites root not applied: %s", cfg.SitesRoot)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte("ftp: [not a map"), 0o644); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	if _, errLoad := Load(path); errLoad == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/etc/resellerd/config.yaml"); got != "/etc/resellerd/config.yaml" {
		t.Fatalf("absolute path should pass through: %s", got)
	}
	if got := ResolveConfigPath(""); !filepath.IsAbs(got) {
		t.Fatalf("default path should resolve absolute: %s", got)
	}

	t.Setenv(EnvConfigPath, "/opt/cfg.yaml")
	if got := ResolveConfigPath(""); got != "/opt/cfg.yaml" {
		t.Fatalf("env config path not applied: %s", got)
	}
}
